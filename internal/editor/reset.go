package editor

import (
	"go.uber.org/zap"
)

// ResetAll restores every mesh to a fresh clone of its as-loaded material, restores its
// map identifier, makes it visible and clears its texture source tag. The material list
// is reset to match and the selection is cleared.
func (e *Editor) ResetAll() {
	e.mu.Lock()
	restored := 0
	for _, n := range e.meshes() {
		snap, ok := e.registry.Snapshot(n.ID)
		if !ok {
			e.stale("reset", n.ID)
			continue
		}
		e.assign(n, snap)
		n.MapID = snap.UserData[MapIDKey]
		n.Visible = true
		n.TextureSource = ""
		restored++
	}

	for i := range e.list {
		entry := &e.list[i]
		snap, ok := e.registry.Get(entry.MeshID)
		if !ok {
			continue
		}
		entry.Visible = true
		entry.MapID = snap.UserData[MapIDKey]
		entry.Material = viewOf(snap)
		entry.Class = string(snap.Class)
		entry.TextureSource = ""
	}

	e.clearSelection()
	notify := e.selection.set("")
	e.mu.Unlock()

	notify()
	e.log.Info("materials reset", zap.Int("meshes", restored))
	e.redraw()
}
