package overlay3d

import (
	"go.uber.org/zap"

	"github.com/mapstead/overlay3d/internal/engine/loader"
)

// LoadStrategy governs whether models become visible one by one or only
// as a complete batch. It is fixed at plugin construction.
type LoadStrategy string

const (
	// WaitAll reveals a batch all-or-nothing: one failure and nothing
	// shows.
	WaitAll LoadStrategy = "waitAll"

	// DontWaitAll reveals each model as soon as its own load resolves, in
	// completion order.
	DontWaitAll LoadStrategy = "dontWaitAll"
)

// PoiStyle is per-category label styling for POI groups.
type PoiStyle struct {
	FontSize  float64 `yaml:"font_size"`
	FontColor string  `yaml:"font_color"`
}

// Options configures a Plugin. Zero values fall back to DefaultOptions.
type Options struct {
	// ModelsLoadStrategy selects the batch reveal policy.
	ModelsLoadStrategy LoadStrategy

	// AmbientColor and AmbientIntensity configure the single ambient
	// light the plugin sets up.
	AmbientColor     [3]float32
	AmbientIntensity float32

	// PoiStyles maps a POI category to its label styling. The "default"
	// entry applies when a group names no category.
	PoiStyles map[string]PoiStyle

	// Fetcher retrieves model assets; nil means plain HTTP.
	Fetcher loader.Fetcher

	// Decoder parses model assets. Required for any model loading; the
	// binary format is outside this module.
	Decoder loader.Decoder

	// Logger receives plugin diagnostics; nil means no logging.
	Logger *zap.Logger
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() *Options {
	return &Options{
		ModelsLoadStrategy: WaitAll,
		AmbientColor:       [3]float32{1, 1, 1},
		AmbientIntensity:   2.5,
		PoiStyles: map[string]PoiStyle{
			"default": {FontSize: 14, FontColor: "#000000"},
			"primary": {FontSize: 16, FontColor: "#3a3a3a"},
		},
	}
}

// merged fills zero-valued fields of opts from the defaults.
func (o *Options) merged() Options {
	def := DefaultOptions()
	if o == nil {
		return *def
	}

	out := *o
	if out.ModelsLoadStrategy == "" {
		out.ModelsLoadStrategy = def.ModelsLoadStrategy
	}
	if out.AmbientColor == ([3]float32{}) {
		out.AmbientColor = def.AmbientColor
	}
	if out.AmbientIntensity == 0 {
		out.AmbientIntensity = def.AmbientIntensity
	}
	if out.PoiStyles == nil {
		out.PoiStyles = def.PoiStyles
	}
	if out.Fetcher == nil {
		out.Fetcher = &loader.HTTPFetcher{}
	}
	if out.Logger == nil {
		out.Logger = zap.NewNop()
	}
	return out
}
