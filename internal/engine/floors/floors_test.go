package floors

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapstead/overlay3d/pkg/host/hostsim"
	"github.com/mapstead/overlay3d/pkg/scene"
)

func buildingNode(levelIDs ...string) *scene.Node {
	n := scene.NewGroup("building")
	for _, id := range levelIDs {
		n.Add(scene.NewMesh(id, scene.AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}))
	}
	return n
}

func levels(ids ...string) []Level {
	out := make([]Level, len(ids))
	for i, id := range ids {
		out[i] = Level{ID: id, Label: id}
	}
	return out
}

func TestShowValidatesInitialLevel(t *testing.T) {
	c := New(hostsim.New(), nil)
	node := buildingNode("1", "2")

	err := c.Show("b1", node, levels("1", "2"), "99")
	if !errors.Is(err, ErrInvalidFloorLevel) {
		t.Fatalf("expected ErrInvalidFloorLevel, got %v", err)
	}
	if _, ok := c.ActiveModel(); ok {
		t.Error("failed Show must not leave a control active")
	}
}

func TestShowAppliesVisibility(t *testing.T) {
	c := New(hostsim.New(), nil)
	node := buildingNode("1", "2", "parking")

	if err := c.Show("b1", node, levels("parking", "1", "2"), "1"); err != nil {
		t.Fatalf("Show: %v", err)
	}

	if !node.Child("1").Visible {
		t.Error("active level should be visible")
	}
	if node.Child("2").Visible || node.Child("parking").Visible {
		t.Error("inactive levels should be hidden")
	}
}

func TestShowPreservesLevelOrder(t *testing.T) {
	c := New(hostsim.New(), nil)
	node := buildingNode("2", "1")

	// Order given drives display order, not a sorted lookup.
	if err := c.Show("b1", node, levels("2", "1"), "2"); err != nil {
		t.Fatalf("Show: %v", err)
	}

	got := c.Levels()
	if got[0].ID != "2" || got[1].ID != "1" {
		t.Errorf("level order: got %v, want [2 1]", got)
	}
}

func TestSetCurrentLevelTransitions(t *testing.T) {
	var changes []Change
	c := New(hostsim.New(), func(ch Change) { changes = append(changes, ch) })
	node := buildingNode("1", "2")

	if err := c.Show("b1", node, levels("1", "2"), "1"); err != nil {
		t.Fatalf("Show: %v", err)
	}

	c.SetCurrentLevel("2")

	if cur, _ := c.CurrentLevel(); cur != "2" {
		t.Errorf("current level: got %q, want 2", cur)
	}
	if !node.Child("2").Visible || node.Child("1").Visible {
		t.Error("visibility should follow the transition")
	}
	if len(changes) != 1 {
		t.Fatalf("expected 1 change event, got %d", len(changes))
	}
	if changes[0] != (Change{ModelID: "b1", PrevLevelID: "1", LevelID: "2"}) {
		t.Errorf("change payload: got %+v", changes[0])
	}
}

func TestSetCurrentLevelUnknownIsNoop(t *testing.T) {
	var changes []Change
	c := New(hostsim.New(), func(ch Change) { changes = append(changes, ch) })
	node := buildingNode("1", "2")

	if err := c.Show("b1", node, levels("1", "2"), "1"); err != nil {
		t.Fatalf("Show: %v", err)
	}

	c.SetCurrentLevel("nope")

	if cur, _ := c.CurrentLevel(); cur != "1" {
		t.Errorf("current level changed on unknown id: %q", cur)
	}
	if len(changes) != 0 {
		t.Errorf("no event should be emitted, got %d", len(changes))
	}
}

func TestSetCurrentLevelSameIsNoop(t *testing.T) {
	var changes []Change
	c := New(hostsim.New(), func(ch Change) { changes = append(changes, ch) })
	node := buildingNode("1")

	if err := c.Show("b1", node, levels("1"), "1"); err != nil {
		t.Fatalf("Show: %v", err)
	}
	c.SetCurrentLevel("1")

	if len(changes) != 0 {
		t.Errorf("re-selecting the active level should not emit, got %d", len(changes))
	}
}

func TestShowReplacesPreviousControl(t *testing.T) {
	c := New(hostsim.New(), nil)
	a := buildingNode("1")
	b := buildingNode("g", "u1")

	if err := c.Show("a", a, levels("1"), "1"); err != nil {
		t.Fatalf("Show a: %v", err)
	}
	if err := c.Show("b", b, levels("g", "u1"), "g"); err != nil {
		t.Fatalf("Show b: %v", err)
	}

	if id, _ := c.ActiveModel(); id != "b" {
		t.Errorf("active model: got %q, want b", id)
	}
	// Switching levels now must only affect model b.
	c.SetCurrentLevel("u1")
	if !a.Child("1").Visible {
		t.Error("previous model's visibility must be untouched by the new control")
	}
}

func TestSetCurrentLevelWithoutControlIsNoop(t *testing.T) {
	c := New(hostsim.New(), nil)
	c.SetCurrentLevel("1") // must not panic
}
