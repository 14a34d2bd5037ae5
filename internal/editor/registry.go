package editor

import (
	"sync"

	"github.com/Faultbox/matedit/pkg/scene"
)

// MapIDKey is the material user-data key holding a snapshot's map identifier.
const MapIDKey = "mapId"

// Registry holds the as-loaded material of every mesh, keyed by mesh ID.
// Entries are written once and never mutated.
type Registry struct {
	entries map[string]*scene.Material
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*scene.Material),
	}
}

// Capture stores a clone of the mesh's current material tagged with mapID.
// It reports false when the mesh was already captured.
func (r *Registry) Capture(mesh *scene.Node, mapID string) bool {
	if mesh == nil || mesh.Material == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[mesh.ID]; ok {
		return false
	}
	snap := mesh.Material.Clone()
	snap.UserData[MapIDKey] = mapID
	r.entries[mesh.ID] = snap
	return true
}

// Get returns the stored snapshot. Callers must not modify it.
func (r *Registry) Get(meshID string) (*scene.Material, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.entries[meshID]
	return m, ok
}

// Snapshot returns a fresh clone of the stored snapshot.
func (r *Registry) Snapshot(meshID string) (*scene.Material, bool) {
	m, ok := r.Get(meshID)
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// MapID returns the map identifier recorded at capture.
func (r *Registry) MapID(meshID string) string {
	m, ok := r.Get(meshID)
	if !ok {
		return ""
	}
	return m.UserData[MapIDKey]
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear discards all entries.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]*scene.Material)
}
