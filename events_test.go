package overlay3d

import (
	"testing"

	"github.com/mapstead/overlay3d/pkg/host"
)

func TestEmitterOrderAndKinds(t *testing.T) {
	em := NewEmitter()

	var got []string
	em.On(EventModelClick, func(Event) { got = append(got, "first") })
	em.On(EventModelClick, func(Event) { got = append(got, "second") })
	em.On(EventPoiClick, func(Event) { got = append(got, "poi") })

	em.Emit(ModelEvent{Action: host.PointerClick, ModelID: "m"})

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("delivery order: got %v, want [first second]", got)
	}
}

func TestEmitterUnsubscribe(t *testing.T) {
	em := NewEmitter()

	calls := 0
	off := em.On(EventFloorChange, func(Event) { calls++ })

	em.Emit(FloorChangeEvent{ModelID: "b"})
	off()
	off() // double unsubscribe is harmless
	em.Emit(FloorChangeEvent{ModelID: "b"})

	if calls != 1 {
		t.Errorf("calls after unsubscribe: got %d, want 1", calls)
	}
}

func TestEmitterSnapshotDuringDispatch(t *testing.T) {
	em := NewEmitter()

	calls := 0
	em.On(EventModelClick, func(Event) {
		calls++
		// Subscribing mid-dispatch must not affect the current emission.
		em.On(EventModelClick, func(Event) { calls += 100 })
	})

	em.Emit(ModelEvent{Action: host.PointerClick})
	if calls != 1 {
		t.Errorf("mid-dispatch subscriber should not run in same emission, calls=%d", calls)
	}
}

func TestEventKindMapping(t *testing.T) {
	tests := []struct {
		ev   Event
		want EventKind
	}{
		{ModelEvent{Action: host.PointerMove}, EventModelMove},
		{ModelEvent{Action: host.PointerOver}, EventModelOver},
		{ModelEvent{Action: host.PointerOut}, EventModelOut},
		{ModelEvent{Action: host.PointerClick}, EventModelClick},
		{PoiEvent{Action: host.PointerMove}, EventPoiMove},
		{PoiEvent{Action: host.PointerClick}, EventPoiClick},
		{FloorChangeEvent{}, EventFloorChange},
	}
	for _, tt := range tests {
		if got := tt.ev.Kind(); got != tt.want {
			t.Errorf("%T(%+v).Kind(): got %v, want %v", tt.ev, tt.ev, got, tt.want)
		}
	}
}
