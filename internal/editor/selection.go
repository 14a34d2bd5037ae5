package editor

import (
	"sync"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/Faultbox/matedit/pkg/scene"
)

// Outline edge colors for the selected mesh.
var (
	OutlineVisibleEdge = scene.MustColor("#FF8C00")
	OutlineHiddenEdge  = scene.MustColor("#8a90f3")
)

// Outline is the highlight target drawn by the render host.
type Outline struct {
	Target      *scene.Node
	VisibleEdge colorful.Color
	HiddenEdge  colorful.Color
}

// Selection is the shared "current selection" cell: a mesh ID or empty.
type Selection struct {
	mu      sync.Mutex
	current string
	seq     uint64
	subs    map[int]func(string)
	next    int

	notifyMu sync.Mutex
}

// NewSelection creates an empty selection cell.
func NewSelection() *Selection {
	return &Selection{subs: make(map[int]func(string))}
}

// Current returns the selected mesh ID, or "" when nothing is selected.
func (s *Selection) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set updates the cell and notifies subscribers when the value changed.
// Subscribers run serially and must not change the selection themselves.
func (s *Selection) Set(meshID string) {
	s.set(meshID)()
}

// set updates the value and returns the notification to run once the caller has
// released its own locks. A notification overtaken by a later set is dropped, so
// subscribers never see a stale value last.
func (s *Selection) set(meshID string) (notify func()) {
	s.mu.Lock()
	if s.current == meshID {
		s.mu.Unlock()
		return func() {}
	}
	s.current = meshID
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()

		s.mu.Lock()
		if s.seq != seq {
			s.mu.Unlock()
			return
		}
		subs := make([]func(string), 0, len(s.subs))
		for i := 0; i < s.next; i++ {
			if fn, ok := s.subs[i]; ok {
				subs = append(subs, fn)
			}
		}
		s.mu.Unlock()

		for _, fn := range subs {
			fn(meshID)
		}
	}
}

// Subscribe registers fn for changes and returns a function that unregisters it.
func (s *Selection) Subscribe(fn func(string)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
