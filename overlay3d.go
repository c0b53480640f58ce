// Package overlay3d augments a 2D map engine with interactive 3D content.
// It loads models at geographic coordinates, keeps the 3D camera aligned
// with the map camera every frame, resolves pointer input against both 3D
// meshes and 2D points of interest, and tracks the visible floor level of
// multi-story buildings.
//
// The map engine, the GPU renderer and the model file parser stay outside
// this module, behind the host.Engine, scene.Renderer and loader.Decoder
// interfaces.
package overlay3d

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/mapstead/overlay3d/internal/engine/bridge"
	"github.com/mapstead/overlay3d/internal/engine/floors"
	"github.com/mapstead/overlay3d/internal/engine/interact"
	"github.com/mapstead/overlay3d/internal/engine/loader"
	"github.com/mapstead/overlay3d/pkg/host"
	"github.com/mapstead/overlay3d/pkg/scene"
)

// Request describes one model to load: identifier, geographic anchor,
// asset URL, optional transform, linked 2D features and floor metadata.
type Request = loader.Request

// FloorLevel is one selectable vertical section of a building model.
type FloorLevel = floors.Level

// ErrUnknownModel is returned when an operation names a model that is not
// in the registry.
var ErrUnknownModel = errors.New("model not registered")

// PoiPoint is one labeled point inside a POI group.
type PoiPoint struct {
	Coords  orb.Point
	Label   string
	Image   string
	MinZoom float64
	MaxZoom float64
}

// PoiGroupOptions describes a batch of 2D points of interest rendered by
// the host at a shared elevation.
type PoiGroupOptions struct {
	ID        any
	Category  string
	Elevation float64
	Points    []PoiPoint
}

// Plugin is the public facade. Construct it with New, then let the host
// engine drive it: the one-shot idle notification completes
// initialization, and every API that mutates the scene graph waits behind
// that signal instead of failing early.
type Plugin struct {
	engine   host.Engine
	renderer scene.Renderer
	opts     Options
	log      *zap.Logger
	emitter  *Emitter
	registry *loader.Registry

	ready    chan struct{}
	initOnce sync.Once

	// mu serializes scene-graph and registry access: mutation in the
	// reveal/remove paths, reads in the frame bridge and the pointer
	// router. Loads complete on their own goroutines but never touch the
	// scene directly.
	mu        sync.Mutex
	scene     *scene.Scene
	camera    *scene.Camera
	bridge    *bridge.Bridge
	router    *interact.Router
	floorCtl  *floors.Controller
	coord     *loader.Coordinator
	poiGroups map[string]struct{}
}

// New creates a plugin bound to a host engine and a renderer. The 3D side
// is not constructed until the host signals idle.
func New(e host.Engine, r scene.Renderer, opts *Options) *Plugin {
	p := &Plugin{
		engine:    e,
		renderer:  r,
		opts:      opts.merged(),
		emitter:   NewEmitter(),
		registry:  loader.NewRegistry(),
		ready:     make(chan struct{}),
		poiGroups: make(map[string]struct{}),
	}
	p.log = p.opts.Logger

	e.OnIdle(p.initialize)
	return p
}

// initialize runs once, on the host's one-shot idle notification. The
// sync.Once also swallows any re-entrant transition attempt.
func (p *Plugin) initialize() {
	p.initOnce.Do(func() {
		s := scene.New()
		s.Ambient = scene.AmbientLight{
			Color:     p.opts.AmbientColor,
			Intensity: p.opts.AmbientIntensity,
		}
		cam := scene.NewCamera()

		p.scene = s
		p.camera = cam
		p.bridge = bridge.New(p.engine, p.renderer, s, cam)
		p.coord = loader.NewCoordinator(p.registry, p.opts.Fetcher, p.opts.Decoder, p.engine.Project, p.log)
		p.floorCtl = floors.New(p.engine, func(ch floors.Change) {
			p.emitter.Emit(FloorChangeEvent{
				ModelID:     ch.ModelID,
				PrevLevelID: ch.PrevLevelID,
				LevelID:     ch.LevelID,
			})
		})

		p.router = interact.New(p.engine, s, cam, routerSink{p}, &p.mu)
		p.router.Attach()

		p.engine.AddLayer(pluginLayer{p})

		close(p.ready)
		p.log.Info("plugin ready",
			zap.String("load_strategy", string(p.opts.ModelsLoadStrategy)),
		)
	})
}

// awaitReady blocks until the ready signal has fired. Calls made before
// readiness queue behind the signal rather than failing.
func (p *Plugin) awaitReady(ctx context.Context) error {
	select {
	case <-p.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// On subscribes to one event kind. The returned func unsubscribes.
func (p *Plugin) On(kind EventKind, fn func(Event)) (off func()) {
	return p.emitter.On(kind, fn)
}

// AddModel loads one model and reveals it immediately, regardless of the
// batch strategy.
func (p *Plugin) AddModel(ctx context.Context, req Request) error {
	if err := p.awaitReady(ctx); err != nil {
		return err
	}

	m, err := p.coord.LoadOne(ctx, req)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.reveal(m)
	p.mu.Unlock()
	p.engine.TriggerRedraw()
	return nil
}

// AddModels loads a batch concurrently and reveals it per the configured
// strategy: DontWaitAll shows each model in completion order as it
// resolves; WaitAll shows everything only after the whole batch resolved,
// and shows nothing when any member failed, successful siblings included.
func (p *Plugin) AddModels(ctx context.Context, reqs []Request) error {
	if err := p.awaitReady(ctx); err != nil {
		return err
	}

	if p.opts.ModelsLoadStrategy == DontWaitAll {
		// Loads race freely, but every reveal and every host-engine call
		// happens here on the calling goroutine, in completion order.
		loaded := make(chan *loader.Model)
		result := make(chan error, 1)
		go func() {
			result <- p.coord.LoadBatch(ctx, reqs, func(m *loader.Model) {
				loaded <- m
			})
			close(loaded)
		}()

		for m := range loaded {
			p.mu.Lock()
			p.reveal(m)
			p.mu.Unlock()
			p.engine.TriggerRedraw()
		}
		return <-result
	}

	if err := p.coord.LoadBatch(ctx, reqs, nil); err != nil {
		return err
	}

	p.mu.Lock()
	for _, req := range reqs {
		if m, ok := p.registry.Get(loader.IDOf(req.ID)); ok {
			p.reveal(m)
		}
	}
	p.mu.Unlock()
	p.engine.TriggerRedraw()
	return nil
}

// reveal hides the model's linked 2D features, attaches its node and
// engages the floor control for multi-story models. Callers hold p.mu.
func (p *Plugin) reveal(m *loader.Model) {
	if len(m.LinkedFeatureIDs) > 0 {
		p.engine.HideFeatures(m.LinkedFeatureIDs)
	}
	p.scene.Add(m.Node)

	if len(m.Floors) > 0 {
		initial := m.InitialFloor
		if initial == "" {
			initial = m.Floors[0].ID
		}
		if err := p.floorCtl.Show(m.ID, m.Node, m.Floors, initial); err != nil {
			p.log.Warn("floor control rejected", zap.String("model", m.ID), zap.Error(err))
		}
	}
}

// RemoveModel detaches a model and restores its linked 2D features.
// Removing an absent identifier is a no-op. An in-flight load for the
// same identifier is unaffected and will still insert when it completes.
func (p *Plugin) RemoveModel(id any) {
	key := loader.IDOf(id)

	p.mu.Lock()
	m, ok := p.registry.Delete(key)
	if !ok {
		p.mu.Unlock()
		return
	}

	p.scene.Remove(m.Node)
	if len(m.LinkedFeatureIDs) > 0 {
		p.engine.ShowFeatures(m.LinkedFeatureIDs)
	}
	if active, shown := p.floorCtl.ActiveModel(); shown && active == key {
		p.floorCtl.Hide()
	}
	p.mu.Unlock()

	p.engine.TriggerRedraw()
}

// Model returns the registered model node for an identifier.
func (p *Plugin) Model(id any) (*scene.Node, bool) {
	m, ok := p.registry.Get(loader.IDOf(id))
	if !ok {
		return nil, false
	}
	return m.Node, true
}

// AddPoiGroup registers a labeled POI group with the host, applying the
// configured per-category styling.
func (p *Plugin) AddPoiGroup(ctx context.Context, opts PoiGroupOptions) error {
	if err := p.awaitReady(ctx); err != nil {
		return err
	}

	style, ok := p.opts.PoiStyles[opts.Category]
	if !ok {
		style = p.opts.PoiStyles["default"]
	}

	g := host.LabelGroup{
		ID:        loader.IDOf(opts.ID),
		Elevation: opts.Elevation,
		Labels:    make([]host.Label, 0, len(opts.Points)),
	}
	for _, pt := range opts.Points {
		g.Labels = append(g.Labels, host.Label{
			Coords:    pt.Coords,
			Text:      pt.Label,
			Image:     pt.Image,
			MinZoom:   pt.MinZoom,
			MaxZoom:   pt.MaxZoom,
			FontSize:  style.FontSize,
			FontColor: style.FontColor,
		})
	}

	p.mu.Lock()
	p.poiGroups[g.ID] = struct{}{}
	p.mu.Unlock()

	p.engine.AddLabelGroup(g)
	p.engine.TriggerRedraw()
	return nil
}

// RemovePoiGroup unregisters a POI group. Unknown identifiers are a
// no-op.
func (p *Plugin) RemovePoiGroup(id any) {
	key := loader.IDOf(id)

	p.mu.Lock()
	_, ok := p.poiGroups[key]
	delete(p.poiGroups, key)
	p.mu.Unlock()

	if !ok {
		return
	}
	p.engine.RemoveLabelGroup(key)
	p.engine.TriggerRedraw()
}

// ShowFloorControl opens the floor control for a loaded multi-story
// model, replacing any previously shown control.
func (p *Plugin) ShowFloorControl(id any) error {
	key := loader.IDOf(id)

	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.registry.Get(key)
	if !ok {
		return fmt.Errorf("show floor control for %q: %w", key, ErrUnknownModel)
	}

	initial := m.InitialFloor
	if initial == "" && len(m.Floors) > 0 {
		initial = m.Floors[0].ID
	}
	return p.floorCtl.Show(m.ID, m.Node, m.Floors, initial)
}

// SetFloorLevel switches the active floor of the shown control. Unknown
// levels are silently ignored so live switching never disrupts the
// control.
func (p *Plugin) SetFloorLevel(levelID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.floorCtl.SetCurrentLevel(levelID)
}

// Destroy detaches the plugin from the host engine and hands back the 2D
// features and labels it took over.
func (p *Plugin) Destroy() {
	select {
	case <-p.ready:
	default:
		return // never initialized, nothing registered
	}

	p.mu.Lock()
	p.registry.Each(func(m *loader.Model) {
		if len(m.LinkedFeatureIDs) > 0 {
			p.engine.ShowFeatures(m.LinkedFeatureIDs)
		}
	})
	for id := range p.poiGroups {
		p.engine.RemoveLabelGroup(id)
	}
	p.poiGroups = map[string]struct{}{}
	p.mu.Unlock()

	p.engine.RemoveLayer(pluginLayer{p})
}

// pluginLayer adapts the plugin to the host's custom-layer hook.
type pluginLayer struct{ p *Plugin }

func (pluginLayer) OnAdd(host.Engine) {}

// Render runs once per host draw cycle. The scene lock is held for the
// whole frame so an in-flight reveal can never mutate the graph mid-draw.
// Frame errors are owned by the plugin here because the host callback has
// nowhere to return them.
func (l pluginLayer) Render(pluginProj, genericProj mgl32.Mat4) {
	l.p.mu.Lock()
	err := l.p.bridge.Render(pluginProj, genericProj)
	l.p.mu.Unlock()
	if err != nil {
		l.p.log.Error("camera sync failed", zap.Error(err))
	}
}

func (pluginLayer) OnRemove() {}

// routerSink forwards resolved interactions to the event emitter.
type routerSink struct{ p *Plugin }

func (s routerSink) ModelEvent(kind host.PointerKind, modelID string, ev host.PointerEvent) {
	s.p.emitter.Emit(ModelEvent{
		Action:  kind,
		ModelID: modelID,
		LngLat:  ev.LngLat,
		Pointer: ev,
	})
}

func (s routerSink) PoiEvent(kind host.PointerKind, ev host.PointerEvent) {
	var featureID string
	if ev.Feature != nil {
		featureID = ev.Feature.ID
	}
	s.p.emitter.Emit(PoiEvent{
		Action:    kind,
		FeatureID: featureID,
		LngLat:    ev.LngLat,
		Pointer:   ev,
	})
}
