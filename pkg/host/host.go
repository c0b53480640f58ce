// Package host defines the contract between the plugin and the 2D map
// engine it augments. The engine owns the drawing surface, the virtual
// camera, 2D feature hit-testing and geographic projection; the plugin
// only consumes them through these interfaces.
package host

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/paulmach/orb"
)

// Rect is the drawing-surface rectangle in CSS pixels.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// PointerKind identifies a pointer notification from the map engine.
type PointerKind int

const (
	PointerMove PointerKind = iota
	PointerOver
	PointerOut
	PointerClick
)

// String returns the host-level event name.
func (k PointerKind) String() string {
	switch k {
	case PointerMove:
		return "mousemove"
	case PointerOver:
		return "mouseover"
	case PointerOut:
		return "mouseout"
	case PointerClick:
		return "click"
	}
	return "unknown"
}

// FeatureSource tells which engine layer produced a hit feature.
type FeatureSource int

const (
	SourceOther FeatureSource = iota
	SourceGeoFeatures
)

// Feature is the classified metadata the engine attaches to a pointer
// event when its own 2D hit-testing found something.
type Feature struct {
	ID           string
	Source       FeatureSource
	SemanticType string
}

// ImmersivePoiType is the semantic type marking a feature as an immersive
// point of interest.
const ImmersivePoiType = "immersive_poi"

// Touch is a single touch point.
type Touch struct {
	ClientX float64
	ClientY float64
}

// PointerEvent carries one pointer notification. For touch input the
// changed touches are populated and client coordinates come from the
// first of them.
type PointerEvent struct {
	ClientX float64
	ClientY float64
	Touches []Touch

	LngLat  orb.Point
	Feature *Feature
}

// Client returns the effective client coordinates of the event,
// preferring the first changed touch point.
func (e PointerEvent) Client() (x, y float64) {
	if len(e.Touches) > 0 {
		return e.Touches[0].ClientX, e.Touches[0].ClientY
	}
	return e.ClientX, e.ClientY
}

// Layer is the custom-layer registration hook: the engine calls Render on
// every draw cycle with the plugin-specific off-axis projection and its
// generic projection.
type Layer interface {
	OnAdd(e Engine)
	Render(pluginProj, genericProj mgl32.Mat4)
	OnRemove()
}

// Label is one rendered POI label.
type Label struct {
	Coords  orb.Point
	Text    string
	Image   string
	MinZoom float64
	MaxZoom float64

	FontSize  float64
	FontColor string
}

// LabelGroup is a batch of labels the engine renders at a shared
// elevation.
type LabelGroup struct {
	ID        string
	Elevation float64
	Labels    []Label
}

// Engine is the host map engine surface consumed by the plugin.
type Engine interface {
	// Container returns the bounding rectangle of the drawing surface.
	Container() Rect

	// PixelRatio returns the current device pixel ratio. It can change at
	// runtime (window moved between displays), so callers sample it every
	// frame instead of caching.
	PixelRatio() float64

	// Projection returns the engine's generic projection matrix.
	Projection() mgl32.Mat4

	// PluginProjection returns the off-axis projection matrix specialized
	// for the plugin's drawing surface.
	PluginProjection() mgl32.Mat4

	// Project converts a geographic coordinate into the plugin's world
	// space.
	Project(p orb.Point) mgl32.Vec3

	// HideFeatures and ShowFeatures toggle 2D features linked to models.
	HideFeatures(ids []string)
	ShowFeatures(ids []string)

	// TriggerRedraw asks the engine to schedule another draw cycle.
	TriggerRedraw()

	AddLayer(l Layer)
	RemoveLayer(l Layer)

	AddLabelGroup(g LabelGroup)
	RemoveLabelGroup(id string)

	// OnIdle registers a callback for the one-shot readiness notification.
	OnIdle(fn func())

	// OnResize registers a callback for surface resize notifications.
	OnResize(fn func())

	// OnPointer registers a callback for one kind of pointer notification.
	OnPointer(kind PointerKind, fn func(PointerEvent))
}
