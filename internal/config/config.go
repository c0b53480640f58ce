// Package config handles configuration for the overlay demo: plugin
// options, the simulated host surface, and logging.
package config

import (
	"fmt"
	"strconv"
)

// Config holds all demo settings.
type Config struct {
	Plugin  PluginConfig  `yaml:"plugin"`
	Host    HostConfig    `yaml:"host"`
	Logging LoggingConfig `yaml:"logging"`
}

// PluginConfig mirrors the plugin construction options.
type PluginConfig struct {
	// ModelsLoadStrategy is "waitAll" or "dontWaitAll".
	ModelsLoadStrategy string `yaml:"models_load_strategy"`

	// AmbientColor is a hex color like "#ffffff".
	AmbientColor     string  `yaml:"ambient_color"`
	AmbientIntensity float32 `yaml:"ambient_intensity"`

	// PoiStyles maps a POI category to label styling.
	PoiStyles map[string]PoiStyleConfig `yaml:"poi_styles"`
}

// PoiStyleConfig is per-category POI label styling.
type PoiStyleConfig struct {
	FontSize  float64 `yaml:"font_size"`
	FontColor string  `yaml:"font_color"`
}

// HostConfig describes the simulated map surface.
type HostConfig struct {
	Width      float64 `yaml:"width"`
	Height     float64 `yaml:"height"`
	PixelRatio float64 `yaml:"pixel_ratio"`

	// OriginLng/OriginLat anchor the geographic projection.
	OriginLng float64 `yaml:"origin_lng"`
	OriginLat float64 `yaml:"origin_lat"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Plugin: PluginConfig{
			ModelsLoadStrategy: "waitAll",
			AmbientColor:       "#ffffff",
			AmbientIntensity:   2.5,
			PoiStyles: map[string]PoiStyleConfig{
				"default": {FontSize: 14, FontColor: "#000000"},
			},
		},
		Host: HostConfig{
			Width:      800,
			Height:     600,
			PixelRatio: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ParseHexColor converts "#rrggbb" into normalized RGB components.
func ParseHexColor(s string) ([3]float32, error) {
	if len(s) != 7 || s[0] != '#' {
		return [3]float32{}, fmt.Errorf("invalid hex color %q", s)
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[1+i*2:3+i*2], 16, 8)
		if err != nil {
			return [3]float32{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		out[i] = float32(v) / 255
	}
	return out, nil
}
