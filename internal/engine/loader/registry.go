package loader

import (
	"sync"

	"github.com/paulmach/orb"

	"github.com/mapstead/overlay3d/internal/engine/floors"
	"github.com/mapstead/overlay3d/pkg/scene"
)

// Model is one loaded 3D model, owned by the registry from insertion until
// explicit removal.
type Model struct {
	ID     string
	Node   *scene.Node
	Coords orb.Point

	// LinkedFeatureIDs are 2D features to hide once the model is visible.
	LinkedFeatureIDs []string

	// Floors is the level metadata for multi-story models, in display
	// order. Empty for plain models.
	Floors       []floors.Level
	InitialFloor string
}

// Registry maps model IDs to loaded models. Mutation happens from whatever
// goroutine a load completes on, so access is serialized here.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// Insert stores a model under its ID. Re-inserting an existing ID
// overwrites the entry but does not detach the prior scene node; the
// caller must remove first. That is the documented contract, not an
// oversight.
func (r *Registry) Insert(m *Model) {
	r.mu.Lock()
	r.models[m.ID] = m
	r.mu.Unlock()
}

// Get returns the model for an ID.
func (r *Registry) Get(id string) (*Model, bool) {
	r.mu.RLock()
	m, ok := r.models[id]
	r.mu.RUnlock()
	return m, ok
}

// Delete removes and returns the model for an ID. Deleting an absent ID
// returns ok=false and changes nothing.
func (r *Registry) Delete(id string) (*Model, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.models[id]
	if ok {
		delete(r.models, id)
	}
	return m, ok
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.models)
}

// Each calls fn for every registered model.
func (r *Registry) Each(fn func(*Model)) {
	r.mu.RLock()
	models := make([]*Model, 0, len(r.models))
	for _, m := range r.models {
		models = append(models, m)
	}
	r.mu.RUnlock()

	for _, m := range models {
		fn(m)
	}
}
