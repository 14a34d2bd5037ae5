package editor

import "sync"

// Gate hands out per-mesh generations so callers can drop superseded async results.
type Gate struct {
	mu   sync.Mutex
	gens map[string]uint64
}

// NewGate creates a gate.
func NewGate() *Gate {
	return &Gate{gens: make(map[string]uint64)}
}

// Next starts a new generation for meshID and returns it.
func (g *Gate) Next(meshID string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens[meshID]++
	return g.gens[meshID]
}

// Current reports whether gen is still the latest generation for meshID.
func (g *Gate) Current(meshID string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[meshID] == gen
}

// Reset forgets all generations.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gens = make(map[string]uint64)
}
