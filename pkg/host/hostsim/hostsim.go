// Package hostsim is an in-memory map engine used by the demo binary and
// the end-to-end tests. It delivers idle, resize and pointer notifications
// synchronously in call order and keeps the camera contract the real
// engine has: the generic projection already contains the view transform,
// the plugin projection does not.
package hostsim

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/paulmach/orb"

	"github.com/mapstead/overlay3d/pkg/host"
)

// WorldScale converts degrees of longitude/latitude into world units.
const WorldScale = 1000.0

// Host implements host.Engine entirely in memory.
type Host struct {
	rect       host.Rect
	pixelRatio float64

	proj  mgl32.Mat4 // plugin (off-axis) projection
	world mgl32.Mat4 // camera world transform

	origin orb.Point

	hidden      map[string]bool
	redraws     int
	layers      []host.Layer
	labelGroups map[string]host.LabelGroup

	idleFns    []func()
	idleFired  bool
	resizeFns  []func()
	pointerFns map[host.PointerKind][]func(host.PointerEvent)
}

// New creates a host with an 800x600 surface, pixel ratio 1 and a camera
// five units above the world origin looking straight down the Z axis.
func New() *Host {
	return &Host{
		rect:        host.Rect{X: 0, Y: 0, Width: 800, Height: 600},
		pixelRatio:  1,
		proj:        mgl32.Perspective(mgl32.DegToRad(60), 800.0/600.0, 0.1, 1000),
		world:       mgl32.Translate3D(0, 0, 5),
		hidden:      make(map[string]bool),
		labelGroups: make(map[string]host.LabelGroup),
		pointerFns:  make(map[host.PointerKind][]func(host.PointerEvent)),
	}
}

// Container implements host.Engine.
func (h *Host) Container() host.Rect { return h.rect }

// PixelRatio implements host.Engine.
func (h *Host) PixelRatio() float64 { return h.pixelRatio }

// PluginProjection implements host.Engine.
func (h *Host) PluginProjection() mgl32.Mat4 { return h.proj }

// Projection implements host.Engine. The generic matrix is the plugin
// projection with the view transform folded in, which is what the bridge's
// matrix algebra expects to peel apart.
func (h *Host) Projection() mgl32.Mat4 {
	return h.proj.Mul4(h.world.Inv())
}

// Project implements host.Engine with a flat equirectangular mapping
// around the configured origin.
func (h *Host) Project(p orb.Point) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((p[0] - h.origin[0]) * WorldScale),
		0,
		float32(-(p[1] - h.origin[1]) * WorldScale),
	}
}

// HideFeatures implements host.Engine.
func (h *Host) HideFeatures(ids []string) {
	for _, id := range ids {
		h.hidden[id] = true
	}
}

// ShowFeatures implements host.Engine.
func (h *Host) ShowFeatures(ids []string) {
	for _, id := range ids {
		delete(h.hidden, id)
	}
}

// TriggerRedraw implements host.Engine.
func (h *Host) TriggerRedraw() { h.redraws++ }

// AddLayer implements host.Engine.
func (h *Host) AddLayer(l host.Layer) {
	h.layers = append(h.layers, l)
	l.OnAdd(h)
}

// RemoveLayer implements host.Engine.
func (h *Host) RemoveLayer(l host.Layer) {
	for i, cur := range h.layers {
		if cur == l {
			h.layers = append(h.layers[:i], h.layers[i+1:]...)
			l.OnRemove()
			return
		}
	}
}

// AddLabelGroup implements host.Engine.
func (h *Host) AddLabelGroup(g host.LabelGroup) { h.labelGroups[g.ID] = g }

// RemoveLabelGroup implements host.Engine.
func (h *Host) RemoveLabelGroup(id string) { delete(h.labelGroups, id) }

// OnIdle implements host.Engine. When the idle notification already
// fired, the callback runs immediately, matching a one-shot signal.
func (h *Host) OnIdle(fn func()) {
	if h.idleFired {
		fn()
		return
	}
	h.idleFns = append(h.idleFns, fn)
}

// OnResize implements host.Engine.
func (h *Host) OnResize(fn func()) { h.resizeFns = append(h.resizeFns, fn) }

// OnPointer implements host.Engine.
func (h *Host) OnPointer(kind host.PointerKind, fn func(host.PointerEvent)) {
	h.pointerFns[kind] = append(h.pointerFns[kind], fn)
}

// FireIdle delivers the one-shot readiness notification. Repeat calls are
// ignored.
func (h *Host) FireIdle() {
	if h.idleFired {
		return
	}
	h.idleFired = true
	for _, fn := range h.idleFns {
		fn()
	}
	h.idleFns = nil
}

// SetRect resizes the drawing surface and notifies subscribers.
func (h *Host) SetRect(r host.Rect) {
	h.rect = r
	for _, fn := range h.resizeFns {
		fn()
	}
}

// SetPixelRatio changes the device pixel ratio, as when the window moves
// to another display.
func (h *Host) SetPixelRatio(ratio float64) { h.pixelRatio = ratio }

// SetCamera replaces the camera world transform and plugin projection.
func (h *Host) SetCamera(world, proj mgl32.Mat4) {
	h.world = world
	h.proj = proj
}

// SetOrigin anchors the geographic projection.
func (h *Host) SetOrigin(p orb.Point) { h.origin = p }

// FirePointer delivers a pointer notification to subscribers in
// registration order.
func (h *Host) FirePointer(kind host.PointerKind, ev host.PointerEvent) {
	for _, fn := range h.pointerFns[kind] {
		fn(ev)
	}
}

// Frame runs one engine draw cycle: every registered layer renders with
// the current matrices.
func (h *Host) Frame() {
	for _, l := range h.layers {
		l.Render(h.PluginProjection(), h.Projection())
	}
}

// Hidden reports whether a 2D feature is currently hidden.
func (h *Host) Hidden(id string) bool { return h.hidden[id] }

// HiddenCount returns the number of hidden 2D features.
func (h *Host) HiddenCount() int { return len(h.hidden) }

// Redraws returns how many redraws the plugin requested.
func (h *Host) Redraws() int { return h.redraws }

// LabelGroup returns a registered label group by ID.
func (h *Host) LabelGroup(id string) (host.LabelGroup, bool) {
	g, ok := h.labelGroups[id]
	return g, ok
}
