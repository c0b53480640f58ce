// Package floors tracks which vertical level of a multi-story model is
// visible and drives per-level visibility in the scene.
package floors

import (
	"errors"
	"fmt"

	"github.com/mapstead/overlay3d/pkg/host"
	"github.com/mapstead/overlay3d/pkg/scene"
)

// ErrInvalidFloorLevel is returned by Show when the requested initial
// level is not part of the model's level set.
var ErrInvalidFloorLevel = errors.New("floor level not in the model's level set")

// Level is one selectable vertical section of a building model. Kind tags
// special sections, e.g. "parking".
type Level struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Icon  string `yaml:"icon,omitempty"`
	Kind  string `yaml:"kind,omitempty"`
}

// Change describes one completed floor transition.
type Change struct {
	ModelID     string
	PrevLevelID string
	LevelID     string
}

// control is the single active floor control. The design is single-focus:
// at most one building has a control at a time.
type control struct {
	modelID string
	node    *scene.Node
	levels  []Level
	current string
}

func (c *control) has(levelID string) bool {
	for _, l := range c.levels {
		if l.ID == levelID {
			return true
		}
	}
	return false
}

// Controller owns the floor control state machine.
type Controller struct {
	engine   host.Engine
	onChange func(Change)
	active   *control
}

// New creates a controller. onChange may be nil.
func New(e host.Engine, onChange func(Change)) *Controller {
	return &Controller{engine: e, onChange: onChange}
}

// Show opens the floor control for a building model. The level order is
// preserved as given since it drives display order. Opening a control
// tears down any previously shown one first; the teardown and the new
// setup run back to back, never leaving two controls alive.
//
// Show fails loud: an initial level outside the level set is a
// construction error.
func (c *Controller) Show(modelID string, node *scene.Node, levels []Level, currentID string) error {
	next := &control{
		modelID: modelID,
		node:    node,
		levels:  append([]Level(nil), levels...),
		current: currentID,
	}
	if !next.has(currentID) {
		return fmt.Errorf("show floors for %q: level %q: %w", modelID, currentID, ErrInvalidFloorLevel)
	}

	c.active = nil // teardown before setup
	c.active = next
	c.applyVisibility()
	c.engine.TriggerRedraw()
	return nil
}

// Hide tears down the active control, if any. Visibility of the model is
// left as last applied.
func (c *Controller) Hide() { c.active = nil }

// SetCurrentLevel transitions the active level. An unknown level or a
// missing control is a silent no-op: live switching must not disrupt the
// interactive control, unlike Show.
func (c *Controller) SetCurrentLevel(levelID string) {
	if c.active == nil || !c.active.has(levelID) {
		return
	}
	if c.active.current == levelID {
		return
	}

	prev := c.active.current
	c.active.current = levelID
	c.applyVisibility()
	c.engine.TriggerRedraw()

	if c.onChange != nil {
		c.onChange(Change{
			ModelID:     c.active.modelID,
			PrevLevelID: prev,
			LevelID:     levelID,
		})
	}
}

// ActiveModel returns the model the control is shown for.
func (c *Controller) ActiveModel() (string, bool) {
	if c.active == nil {
		return "", false
	}
	return c.active.modelID, true
}

// CurrentLevel returns the active level ID.
func (c *Controller) CurrentLevel() (string, bool) {
	if c.active == nil {
		return "", false
	}
	return c.active.current, true
}

// Levels returns the level set in display order.
func (c *Controller) Levels() []Level {
	if c.active == nil {
		return nil
	}
	return append([]Level(nil), c.active.levels...)
}

// applyVisibility shows only the child group matching the current level.
// Children that do not correspond to a level (shared structure) stay
// visible.
func (c *Controller) applyVisibility() {
	if c.active == nil || c.active.node == nil {
		return
	}
	for _, l := range c.active.levels {
		if child := c.active.node.Child(l.ID); child != nil {
			child.Visible = l.ID == c.active.current
		}
	}
}
