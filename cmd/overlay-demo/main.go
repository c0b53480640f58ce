// Command overlay-demo runs the 3D overlay plugin against a simulated
// map host: it loads a batch of models, replays pointer interaction and
// a floor switch, and logs every event the plugin emits.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/mapstead/overlay3d"
	"github.com/mapstead/overlay3d/internal/config"
	"github.com/mapstead/overlay3d/internal/logger"
	"github.com/mapstead/overlay3d/pkg/host"
	"github.com/mapstead/overlay3d/pkg/host/hostsim"
	"github.com/mapstead/overlay3d/pkg/scene"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Log.Fatal("demo failed", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h := hostsim.New()
	h.SetRect(host.Rect{Width: cfg.Host.Width, Height: cfg.Host.Height})
	h.SetPixelRatio(cfg.Host.PixelRatio)
	h.SetOrigin(orb.Point{cfg.Host.OriginLng, cfg.Host.OriginLat})

	opts, err := pluginOptions(cfg)
	if err != nil {
		return err
	}

	plugin := overlay3d.New(h, countingRenderer{}, opts)
	defer plugin.Destroy()

	for _, kind := range []overlay3d.EventKind{
		overlay3d.EventModelClick,
		overlay3d.EventModelOver,
		overlay3d.EventModelOut,
		overlay3d.EventPoiClick,
		overlay3d.EventFloorChange,
	} {
		plugin.On(kind, logEvent)
	}

	// The host decides when the plugin may touch the scene.
	h.FireIdle()

	logger.Log.Info("loading models",
		zap.String("strategy", string(opts.ModelsLoadStrategy)))

	if err := plugin.AddModels(ctx, []overlay3d.Request{
		{
			ID:               "tower",
			Coords:           orb.Point{cfg.Host.OriginLng, cfg.Host.OriginLat},
			URL:              "asset://tower",
			Scale:            1,
			LinkedFeatureIDs: []string{"osm-tower-footprint"},
		},
		{
			ID:     "mall",
			Coords: orb.Point{cfg.Host.OriginLng + 0.01, cfg.Host.OriginLat},
			URL:    "asset://building:3",
			Scale:  1,
			Floors: []overlay3d.FloorLevel{
				{ID: "1", Label: "Ground"},
				{ID: "2", Label: "Shops"},
				{ID: "3", Label: "Food court"},
			},
			InitialFloor: "1",
		},
	}); err != nil {
		return fmt.Errorf("loading models: %w", err)
	}

	if err := plugin.AddPoiGroup(ctx, overlay3d.PoiGroupOptions{
		ID:        "amenities",
		Category:  "primary",
		Elevation: 12,
		Points: []overlay3d.PoiPoint{
			{Coords: orb.Point{cfg.Host.OriginLng + 0.005, cfg.Host.OriginLat}, Label: "Cafe"},
			{Coords: orb.Point{cfg.Host.OriginLng - 0.005, cfg.Host.OriginLat}, Label: "Exit"},
		},
	}); err != nil {
		return fmt.Errorf("adding poi group: %w", err)
	}

	// Draw a frame so the overlay camera picks up the host projection,
	// then click the screen center where the tower sits.
	h.Frame()
	h.FirePointer(host.PointerClick, host.PointerEvent{
		ClientX: cfg.Host.Width / 2,
		ClientY: cfg.Host.Height / 2,
		LngLat:  orb.Point{cfg.Host.OriginLng, cfg.Host.OriginLat},
	})

	// A click on a labeled 2D point of interest.
	h.FirePointer(host.PointerClick, host.PointerEvent{
		ClientX: 10,
		ClientY: 10,
		LngLat:  orb.Point{cfg.Host.OriginLng + 0.005, cfg.Host.OriginLat},
		Feature: &host.Feature{
			ID:           "poi-cafe",
			Source:       host.SourceGeoFeatures,
			SemanticType: host.ImmersivePoiType,
		},
	})

	if err := plugin.ShowFloorControl("mall"); err != nil {
		return fmt.Errorf("showing floor control: %w", err)
	}
	plugin.SetFloorLevel("3")
	h.Frame()

	plugin.RemoveModel("tower")
	h.Frame()

	logger.Log.Info("scenario complete",
		zap.Int("redraws", h.Redraws()),
		zap.Int("hidden_features", h.HiddenCount()))
	return nil
}

// pluginOptions maps the file/flag config onto plugin options.
func pluginOptions(cfg *config.Config) (*overlay3d.Options, error) {
	color, err := config.ParseHexColor(cfg.Plugin.AmbientColor)
	if err != nil {
		return nil, err
	}

	styles := make(map[string]overlay3d.PoiStyle, len(cfg.Plugin.PoiStyles))
	for name, s := range cfg.Plugin.PoiStyles {
		styles[name] = overlay3d.PoiStyle{FontSize: s.FontSize, FontColor: s.FontColor}
	}

	return &overlay3d.Options{
		ModelsLoadStrategy: overlay3d.LoadStrategy(cfg.Plugin.ModelsLoadStrategy),
		AmbientColor:       color,
		AmbientIntensity:   cfg.Plugin.AmbientIntensity,
		PoiStyles:          styles,
		Fetcher:            assetFetcher{},
		Decoder:            assetDecoder{},
		Logger:             logger.Log,
	}, nil
}

func logEvent(ev overlay3d.Event) {
	switch e := ev.(type) {
	case overlay3d.ModelEvent:
		logger.Log.Info("model event",
			zap.Stringer("action", e.Action),
			zap.String("model", e.ModelID),
			zap.Float64("lng", e.LngLat[0]),
			zap.Float64("lat", e.LngLat[1]))
	case overlay3d.PoiEvent:
		logger.Log.Info("poi event",
			zap.Stringer("action", e.Action),
			zap.String("feature", e.FeatureID))
	case overlay3d.FloorChangeEvent:
		logger.Log.Info("floor changed",
			zap.String("model", e.ModelID),
			zap.String("from", e.PrevLevelID),
			zap.String("to", e.LevelID))
	}
}

// assetFetcher resolves asset:// URLs to their payload name, standing in
// for network access in the demo.
type assetFetcher struct{}

func (assetFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	name, ok := strings.CutPrefix(url, "asset://")
	if !ok {
		return nil, fmt.Errorf("unknown asset url %q", url)
	}
	return []byte(name), nil
}

// assetDecoder builds placeholder geometry: "building:N" becomes a group
// with N stacked floor meshes named "1".."N", anything else a unit box.
type assetDecoder struct{}

func (assetDecoder) Decode(_ context.Context, data []byte) (*scene.Node, error) {
	payload := string(data)

	if floorSpec, ok := strings.CutPrefix(payload, "building:"); ok {
		var n int
		if _, err := fmt.Sscanf(floorSpec, "%d", &n); err != nil || n < 1 {
			return nil, fmt.Errorf("bad building payload %q", payload)
		}
		group := scene.NewGroup("")
		for i := 1; i <= n; i++ {
			floor := scene.NewMesh(fmt.Sprintf("%d", i), unitBox())
			floor.Position = mgl32.Vec3{0, float32(i-1) * 3, 0}
			group.Add(floor)
		}
		return group, nil
	}

	return scene.NewMesh("", unitBox()), nil
}

func unitBox() scene.AABB {
	return scene.AABB{
		Min: mgl32.Vec3{-0.5, -0.5, -0.5},
		Max: mgl32.Vec3{0.5, 0.5, 0.5},
	}
}

// countingRenderer satisfies the renderer contract without a GPU.
type countingRenderer struct{}

func (countingRenderer) ResetState()                {}
func (countingRenderer) SetViewport(_, _, _, _ int) {}
func (countingRenderer) Render(s *scene.Scene, _ *scene.Camera) error {
	logger.Log.Debug("frame", zap.Int("scene_nodes", len(s.Root().Children())))
	return nil
}
