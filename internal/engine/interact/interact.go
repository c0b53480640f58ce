// Package interact resolves host pointer events against the 3D scene and
// the host's own 2D feature hits, and republishes them as unified events
// through a sink.
package interact

import (
	"sync"

	"github.com/mapstead/overlay3d/pkg/host"
	"github.com/mapstead/overlay3d/pkg/scene"
)

// Hit is a resolved 3D intersection.
type Hit struct {
	Node     *scene.Node
	ModelID  string
	Distance float32
}

// Sink receives the unified events the router produces. A single physical
// pointer event can produce a POI event, a model event, both, or neither.
type Sink interface {
	ModelEvent(kind host.PointerKind, modelID string, ev host.PointerEvent)
	PoiEvent(kind host.PointerKind, ev host.PointerEvent)
}

// Router owns the viewport rectangle and the hit-testing paths.
type Router struct {
	engine host.Engine
	scene  *scene.Scene
	camera *scene.Camera
	sink   Sink

	// lock guards scene-graph and camera reads during hit-testing. It is
	// the same mutex that serializes scene mutation, held only across the
	// read, never while the sink runs.
	lock sync.Locker

	rect host.Rect
}

// New creates a router. The viewport is read from the host once here and
// afterwards only on resize notifications, never inferred from pointer
// coordinates. lock may be nil when no concurrent scene mutation exists.
func New(e host.Engine, s *scene.Scene, cam *scene.Camera, sink Sink, lock sync.Locker) *Router {
	if lock == nil {
		lock = noLock{}
	}
	return &Router{
		engine: e,
		scene:  s,
		camera: cam,
		sink:   sink,
		lock:   lock,
		rect:   e.Container(),
	}
}

type noLock struct{}

func (noLock) Lock()   {}
func (noLock) Unlock() {}

// Attach subscribes the router to host resize and pointer notifications.
func (r *Router) Attach() {
	r.engine.OnResize(r.InvalidateViewport)
	for _, kind := range []host.PointerKind{host.PointerMove, host.PointerOver, host.PointerOut, host.PointerClick} {
		kind := kind
		r.engine.OnPointer(kind, func(ev host.PointerEvent) {
			r.dispatch(kind, ev)
		})
	}
}

// InvalidateViewport re-reads the drawing surface rectangle from the host.
func (r *Router) InvalidateViewport() {
	r.rect = r.engine.Container()
}

// Viewport returns the current viewport rectangle.
func (r *Router) Viewport() host.Rect { return r.rect }

// dispatch runs one pointer event through both hit paths.
func (r *Router) dispatch(kind host.PointerKind, ev host.PointerEvent) {
	if ClassifyPoi(ev) {
		r.sink.PoiEvent(kind, ev)
	}
	if hit, ok := r.PointerToMesh(ev); ok {
		r.sink.ModelEvent(kind, hit.ModelID, ev)
	}
}

// NormalizedDeviceCoords converts client coordinates into the [-1, 1]
// device space. Screen Y grows downward, device Y grows upward, hence the
// flip.
func (r *Router) NormalizedDeviceCoords(clientX, clientY float64) (ndcX, ndcY float32) {
	localX := clientX - r.rect.X
	localY := r.rect.Height - (clientY - r.rect.Y)

	ndcX = float32(localX/r.rect.Width*2 - 1)
	ndcY = float32(localY/r.rect.Height*2 - 1)
	return ndcX, ndcY
}

// PointerToMesh casts a ray through the pointer position and returns the
// nearest intersected mesh. Absence of a hit is a normal empty result,
// never an error; a degenerate camera also reads as no hit.
func (r *Router) PointerToMesh(ev host.PointerEvent) (Hit, bool) {
	clientX, clientY := ev.Client()
	ndcX, ndcY := r.NormalizedDeviceCoords(clientX, clientY)

	r.lock.Lock()
	defer r.lock.Unlock()

	ray, err := scene.RayFromNDC(r.camera, ndcX, ndcY)
	if err != nil {
		return Hit{}, false
	}

	node, dist, ok := r.scene.Pick(ray)
	if !ok {
		return Hit{}, false
	}

	return Hit{Node: node, ModelID: r.ownerID(node), Distance: dist}, true
}

// ownerID walks up to the model's root node, the one attached directly
// under the scene root, whose ID is the model identifier.
func (r *Router) ownerID(n *scene.Node) string {
	root := r.scene.Root()
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur.Parent() == root {
			return cur.ID
		}
	}
	return n.ID
}

// ClassifyPoi reports whether a host pointer event is a hit on an
// immersive 2D point of interest. This is a pure metadata predicate; the
// host engine already did the 2D hit-testing.
func ClassifyPoi(ev host.PointerEvent) bool {
	f := ev.Feature
	return f != nil &&
		f.Source == host.SourceGeoFeatures &&
		f.SemanticType == host.ImmersivePoiType
}
