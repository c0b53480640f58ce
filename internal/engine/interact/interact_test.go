package interact

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapstead/overlay3d/pkg/host"
	"github.com/mapstead/overlay3d/pkg/host/hostsim"
	"github.com/mapstead/overlay3d/pkg/scene"
)

type recorded struct {
	kind    host.PointerKind
	modelID string
	poi     bool
}

type recordSink struct {
	events []recorded
}

func (s *recordSink) ModelEvent(kind host.PointerKind, modelID string, _ host.PointerEvent) {
	s.events = append(s.events, recorded{kind: kind, modelID: modelID})
}

func (s *recordSink) PoiEvent(kind host.PointerKind, _ host.PointerEvent) {
	s.events = append(s.events, recorded{kind: kind, poi: true})
}

// testScene returns a scene with one model mesh dead ahead of the camera.
func testScene() (*scene.Scene, *scene.Camera) {
	s := scene.New()
	model := scene.NewMesh("tower", scene.AABB{
		Min: mgl32.Vec3{-1, -1, -1},
		Max: mgl32.Vec3{1, 1, 1},
	})
	s.Add(model)

	cam := scene.NewCamera()
	cam.SetProjection(mgl32.Perspective(mgl32.DegToRad(60), 800.0/600.0, 0.1, 1000))
	cam.Position = mgl32.Vec3{0, 0, 5}
	return s, cam
}

func TestNormalizedDeviceCoords(t *testing.T) {
	h := hostsim.New()
	h.SetRect(host.Rect{X: 0, Y: 0, Width: 800, Height: 600})
	s, cam := testScene()
	r := New(h, s, cam, &recordSink{}, nil)

	tests := []struct {
		name           string
		clientX        float64
		clientY        float64
		wantX, wantY   float32
	}{
		{"center", 400, 300, 0, 0},
		{"bottom_left", 0, 600, -1, -1},
		{"top_right", 800, 0, 1, 1},
		{"quarter", 200, 150, -0.5, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := r.NormalizedDeviceCoords(tt.clientX, tt.clientY)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("got (%f, %f), want (%f, %f)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestNormalizedDeviceCoordsOffsetRect(t *testing.T) {
	h := hostsim.New()
	h.SetRect(host.Rect{X: 100, Y: 50, Width: 400, Height: 200})
	s, cam := testScene()
	r := New(h, s, cam, &recordSink{}, nil)

	// Center of the offset surface.
	x, y := r.NormalizedDeviceCoords(300, 150)
	if x != 0 || y != 0 {
		t.Errorf("offset center: got (%f, %f), want (0, 0)", x, y)
	}
}

func TestNormalizedDeviceCoordsInsideBounds(t *testing.T) {
	h := hostsim.New()
	h.SetRect(host.Rect{X: 0, Y: 0, Width: 640, Height: 480})
	s, cam := testScene()
	r := New(h, s, cam, &recordSink{}, nil)

	for _, p := range [][2]float64{{1, 1}, {320, 17}, {639, 479}, {5, 240}} {
		x, y := r.NormalizedDeviceCoords(p[0], p[1])
		if x < -1 || x > 1 || y < -1 || y > 1 {
			t.Errorf("pointer (%v) maps outside device space: (%f, %f)", p, x, y)
		}
	}
}

func TestInvalidateViewportTracksHost(t *testing.T) {
	h := hostsim.New()
	s, cam := testScene()
	r := New(h, s, cam, &recordSink{}, nil)
	r.Attach()

	h.SetRect(host.Rect{X: 0, Y: 0, Width: 1024, Height: 768})

	if got := r.Viewport(); got.Width != 1024 || got.Height != 768 {
		t.Errorf("viewport after resize: got %+v", got)
	}
}

func TestPointerToMeshCenterHit(t *testing.T) {
	h := hostsim.New()
	s, cam := testScene()
	r := New(h, s, cam, &recordSink{}, nil)

	hit, ok := r.PointerToMesh(host.PointerEvent{ClientX: 400, ClientY: 300})
	if !ok {
		t.Fatal("expected a hit at screen center")
	}
	if hit.ModelID != "tower" {
		t.Errorf("model ID: got %q, want tower", hit.ModelID)
	}
}

func TestPointerToMeshUsesFirstTouch(t *testing.T) {
	h := hostsim.New()
	s, cam := testScene()
	r := New(h, s, cam, &recordSink{}, nil)

	ev := host.PointerEvent{
		// Client coordinates point far off; the touch point is centered
		// and must win.
		ClientX: 0,
		ClientY: 0,
		Touches: []host.Touch{{ClientX: 400, ClientY: 300}, {ClientX: 9, ClientY: 9}},
	}

	if _, ok := r.PointerToMesh(ev); !ok {
		t.Error("first changed touch should drive the ray")
	}
}

func TestPointerToMeshMiss(t *testing.T) {
	h := hostsim.New()
	s, cam := testScene()
	r := New(h, s, cam, &recordSink{}, nil)

	if _, ok := r.PointerToMesh(host.PointerEvent{ClientX: 5, ClientY: 5}); ok {
		t.Error("corner pointer should miss the centered mesh")
	}
}

func TestPointerToMeshNestedModelID(t *testing.T) {
	h := hostsim.New()
	s := scene.New()
	building := scene.NewGroup("building-7")
	level := scene.NewMesh("2", scene.AABB{
		Min: mgl32.Vec3{-1, -1, -1},
		Max: mgl32.Vec3{1, 1, 1},
	})
	building.Add(level)
	s.Add(building)

	cam := scene.NewCamera()
	cam.SetProjection(mgl32.Perspective(mgl32.DegToRad(60), 800.0/600.0, 0.1, 1000))
	cam.Position = mgl32.Vec3{0, 0, 5}

	r := New(h, s, cam, &recordSink{}, nil)

	hit, ok := r.PointerToMesh(host.PointerEvent{ClientX: 400, ClientY: 300})
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.ModelID != "building-7" {
		t.Errorf("nested hit should resolve to the model root, got %q", hit.ModelID)
	}
	if hit.Node != level {
		t.Error("hit node should be the intersected mesh itself")
	}
}

func TestClassifyPoi(t *testing.T) {
	tests := []struct {
		name string
		f    *host.Feature
		want bool
	}{
		{"nil_feature", nil, false},
		{"immersive_geo", &host.Feature{Source: host.SourceGeoFeatures, SemanticType: host.ImmersivePoiType}, true},
		{"wrong_source", &host.Feature{Source: host.SourceOther, SemanticType: host.ImmersivePoiType}, false},
		{"wrong_type", &host.Feature{Source: host.SourceGeoFeatures, SemanticType: "road"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyPoi(host.PointerEvent{Feature: tt.f}); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDispatchCanEmitBoth(t *testing.T) {
	h := hostsim.New()
	s, cam := testScene()
	sink := &recordSink{}
	r := New(h, s, cam, sink, nil)
	r.Attach()

	// A click that is simultaneously a POI hit (metadata) and a mesh hit
	// (center ray) emits two events.
	h.FirePointer(host.PointerClick, host.PointerEvent{
		ClientX: 400,
		ClientY: 300,
		Feature: &host.Feature{Source: host.SourceGeoFeatures, SemanticType: host.ImmersivePoiType},
	})

	if len(sink.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(sink.events))
	}
	if !sink.events[0].poi {
		t.Error("POI classification runs first")
	}
	if sink.events[1].modelID != "tower" {
		t.Errorf("model event: got %+v", sink.events[1])
	}

	// A miss with no feature metadata emits nothing.
	sink.events = nil
	h.FirePointer(host.PointerMove, host.PointerEvent{ClientX: 1, ClientY: 1})
	if len(sink.events) != 0 {
		t.Errorf("expected no events, got %d", len(sink.events))
	}
}
