package overlay3d

import (
	"sync"

	"github.com/paulmach/orb"

	"github.com/mapstead/overlay3d/pkg/host"
)

// EventKind tags the events the plugin republishes.
type EventKind int

const (
	EventModelMove EventKind = iota
	EventModelOver
	EventModelOut
	EventModelClick
	EventPoiMove
	EventPoiOver
	EventPoiOut
	EventPoiClick
	EventFloorChange
)

// Event is the tagged union of everything the plugin emits. Each kind has
// its own payload shape; subscribers type-switch on the concrete type.
type Event interface {
	Kind() EventKind
}

// ModelEvent is a pointer interaction resolved to a 3D model.
type ModelEvent struct {
	Action  host.PointerKind
	ModelID string
	LngLat  orb.Point
	Pointer host.PointerEvent
}

// Kind implements Event.
func (e ModelEvent) Kind() EventKind {
	switch e.Action {
	case host.PointerOver:
		return EventModelOver
	case host.PointerOut:
		return EventModelOut
	case host.PointerClick:
		return EventModelClick
	default:
		return EventModelMove
	}
}

// PoiEvent is a pointer interaction classified as a 2D point of interest.
type PoiEvent struct {
	Action    host.PointerKind
	FeatureID string
	LngLat    orb.Point
	Pointer   host.PointerEvent
}

// Kind implements Event.
func (e PoiEvent) Kind() EventKind {
	switch e.Action {
	case host.PointerOver:
		return EventPoiOver
	case host.PointerOut:
		return EventPoiOut
	case host.PointerClick:
		return EventPoiClick
	default:
		return EventPoiMove
	}
}

// FloorChangeEvent reports a completed floor transition.
type FloorChangeEvent struct {
	ModelID     string
	PrevLevelID string
	LevelID     string
}

// Kind implements Event.
func (FloorChangeEvent) Kind() EventKind { return EventFloorChange }

type subscriber struct {
	id int
	fn func(Event)
}

// Emitter dispatches typed events to subscribers, synchronously and in
// registration order. Every subscriber current at emission time is called
// once per emission.
type Emitter struct {
	mu   sync.Mutex
	next int
	subs map[EventKind][]subscriber
}

// NewEmitter creates an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{subs: make(map[EventKind][]subscriber)}
}

// On subscribes to one event kind and returns an unsubscribe func.
// Unsubscribing twice is harmless.
func (em *Emitter) On(kind EventKind, fn func(Event)) (off func()) {
	em.mu.Lock()
	em.next++
	id := em.next
	em.subs[kind] = append(em.subs[kind], subscriber{id: id, fn: fn})
	em.mu.Unlock()

	return func() {
		em.mu.Lock()
		defer em.mu.Unlock()
		list := em.subs[kind]
		for i, s := range list {
			if s.id == id {
				em.subs[kind] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Emit delivers ev to the subscribers of its kind. The subscriber list is
// snapshotted first, so handlers may subscribe or unsubscribe without
// affecting the current dispatch.
func (em *Emitter) Emit(ev Event) {
	em.mu.Lock()
	list := append([]subscriber(nil), em.subs[ev.Kind()]...)
	em.mu.Unlock()

	for _, s := range list {
		s.fn(ev)
	}
}
