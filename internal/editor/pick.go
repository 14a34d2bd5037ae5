package editor

import (
	"go.uber.org/zap"

	"github.com/Faultbox/matedit/internal/picking"
	"github.com/Faultbox/matedit/pkg/scene"
)

// Pointer is a pointer position in window pixels.
type Pointer struct {
	X, Y float32
}

// Viewport is the canvas rectangle in window pixels.
type Viewport struct {
	X, Y          float32
	Width, Height float32
}

// Pick selects the nearest mesh under the pointer. Meshes in the geometry group take
// precedence over the model while the group is non-empty. On a miss the selection is
// cleared unless a gizmo is attached. Pick returns nil for an empty scene.
func (e *Editor) Pick(p Pointer, vp Viewport, cam Camera) *scene.Node {
	e.mu.Lock()
	root := e.activeRoot()
	if root == nil || len(root.Children()) == 0 || vp.Width <= 0 || vp.Height <= 0 {
		e.mu.Unlock()
		return nil
	}

	x, y := picking.NDC(p.X, p.Y, vp.X, vp.Y, vp.Width, vp.Height)
	inv := cam.ViewProjection(vp.Width / vp.Height).Inv()
	ray := picking.FromNDC(x, y, inv)

	var target *scene.Node
	for _, hit := range ray.IntersectObjects(root.Children()) {
		if hit.Object.IsMesh() {
			target = hit.Object
			break
		}
	}

	if target == nil {
		if e.attached != nil {
			e.mu.Unlock()
			return nil
		}
		e.clearSelection()
		notify := e.selection.set("")
		e.mu.Unlock()
		notify()
		e.redraw()
		return nil
	}

	e.selectMesh(target)
	notify := e.selection.set(target.ID)
	e.mu.Unlock()

	e.log.Debug("mesh picked", zap.String("mesh", target.Name), zap.String("id", target.ID))
	notify()
	e.redraw()
	return target
}

// SelectByName selects the first mesh with the given name.
func (e *Editor) SelectByName(name string) *scene.Node {
	e.mu.Lock()
	var target *scene.Node
	for _, n := range e.meshes() {
		if n.Name == name {
			target = n
			break
		}
	}
	if target == nil {
		e.mu.Unlock()
		return nil
	}
	e.selectMesh(target)
	notify := e.selection.set(target.ID)
	e.mu.Unlock()

	notify()
	e.redraw()
	return target
}

// ClearSelection drops the selection, the outline and the gizmo.
func (e *Editor) ClearSelection() {
	e.mu.Lock()
	e.clearSelection()
	notify := e.selection.set("")
	e.mu.Unlock()
	notify()
	e.redraw()
}

func (e *Editor) activeRoot() *scene.Node {
	if len(e.geometry.Children()) > 0 {
		return e.geometry
	}
	return e.model
}

func (e *Editor) selectMesh(n *scene.Node) {
	e.outline = Outline{
		Target:      n,
		VisibleEdge: OutlineVisibleEdge,
		HiddenEdge:  OutlineHiddenEdge,
	}
	if e.opts.Gizmo == nil {
		return
	}
	if n.Anchor == nil {
		c := n.WorldBounds().Center()
		n.Anchor = &c
	}
	e.opts.Gizmo.Attach(n, *n.Anchor)
	e.attached = n
}

func (e *Editor) clearSelection() {
	e.outline = Outline{}
	if e.attached != nil && e.opts.Gizmo != nil {
		e.opts.Gizmo.Detach()
	}
	e.attached = nil
}
