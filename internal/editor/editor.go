// Package editor implements the material-state engine: it snapshots every mesh's material
// at load, applies reversible edits to the live materials, resolves the selected mesh by
// ray picking and restores the loaded state on demand.
//
// All state lives in an Editor. Its methods are safe for concurrent use; synchronous
// operations are atomic with respect to each other and run in call order.
package editor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/matedit/internal/camera"
	"github.com/Faultbox/matedit/internal/texture"
	"github.com/Faultbox/matedit/pkg/scene"
)

// ErrStaleReference is returned when a command targets a mesh that is no longer loaded.
var ErrStaleReference = errors.New("stale mesh reference")

// transformKey is the node user-data key holding the load-time transform.
const transformKey = "transform"

// Host is the render host. RequestRedraw is called after every visible mutation.
type Host interface {
	RequestRedraw()
}

// Camera supplies the view-projection used for picking.
type Camera interface {
	ViewProjection(aspect float32) mgl32.Mat4
}

// Gizmo is the transform gizmo attached to the selected mesh.
type Gizmo interface {
	Attach(node *scene.Node, anchor mgl32.Vec3)
	Detach()
}

// ReapplyMode selects which attributes of the previous material survive a class change.
type ReapplyMode int

const (
	// ReapplyLegacy carries over depth write, opacity and wireframe only when they are
	// truthy, so false and zero values fall back to the new material's defaults.
	ReapplyLegacy ReapplyMode = iota
	// ReapplyDefined always carries the three attributes over.
	ReapplyDefined
)

// ParseReapplyMode parses "legacy" or "defined".
func ParseReapplyMode(s string) (ReapplyMode, error) {
	switch strings.ToLower(s) {
	case "", "legacy":
		return ReapplyLegacy, nil
	case "defined":
		return ReapplyDefined, nil
	}
	return ReapplyLegacy, fmt.Errorf("unknown reapply mode %q", s)
}

func (m ReapplyMode) String() string {
	if m == ReapplyDefined {
		return "defined"
	}
	return "legacy"
}

// Options configures an Editor.
type Options struct {
	Logger      *zap.Logger
	Host        Host
	Gizmo       Gizmo
	Textures    *texture.Service
	ReapplyMode ReapplyMode
	// FitSize is the largest model extent after FitModel.
	FitSize float32
}

// Editor owns the loaded model and all material editing state.
type Editor struct {
	opts Options
	log  *zap.Logger

	mu        sync.Mutex
	model     *scene.Node
	geometry  *scene.Node
	registry  *Registry
	list      []MaterialListEntry
	outline   Outline
	attached  *scene.Node
	selection *Selection
	gate      *Gate
}

// New creates an editor with no model loaded.
func New(opts Options) *Editor {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.FitSize <= 0 {
		opts.FitSize = 2.5
	}
	return &Editor{
		opts:      opts,
		log:       opts.Logger,
		geometry:  scene.NewGroup("geometry"),
		registry:  NewRegistry(),
		selection: NewSelection(),
		gate:      NewGate(),
	}
}

// Load replaces the current model. Every mesh gets its own material clone, its
// as-loaded material is captured in the registry and the material list is built.
func (e *Editor) Load(model *scene.Node) {
	e.mu.Lock()
	e.unload()

	e.model = model
	index := 0
	model.Traverse(func(n *scene.Node) {
		if !n.IsMesh() {
			return
		}
		e.register(n, fmt.Sprintf("%s_%d", n.Name, index))
		index++
	})
	notify := e.selection.set("")
	e.mu.Unlock()
	notify()

	e.log.Info("model loaded",
		zap.String("model", model.Name),
		zap.Int("meshes", index))
	e.redraw()
}

// register gives the mesh an exclusive material, captures it and appends its list entry.
func (e *Editor) register(n *scene.Node, mapID string) {
	n.Material = n.Material.Clone()
	n.MapID = mapID
	n.TextureSource = ""
	if n.Material.Map != nil {
		n.Material.Map.Bind()
	}
	if _, ok := n.UserData[transformKey]; !ok {
		n.UserData[transformKey] = n.Transform
	}
	e.registry.Capture(n, mapID)
	e.list = append(e.list, entryOf(n))
}

// Unload discards the model, registry, list, selection and geometry group.
func (e *Editor) Unload() {
	e.mu.Lock()
	e.unload()
	notify := e.selection.set("")
	e.mu.Unlock()
	notify()
}

func (e *Editor) unload() {
	if e.model != nil {
		e.log.Debug("model unloaded", zap.String("model", e.model.Name))
	}
	e.model = nil
	e.geometry.Clear()
	e.registry.Clear()
	e.list = nil
	e.gate.Reset()
	e.clearSelection()
}

// Model returns the loaded model root, or nil.
func (e *Editor) Model() *scene.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.model
}

// GeometryGroup returns the group holding standalone editable primitives.
func (e *Editor) GeometryGroup() *scene.Node {
	return e.geometry
}

// Registry returns the original-state registry.
func (e *Editor) Registry() *Registry {
	return e.registry
}

// Selection returns the current-selection cell.
func (e *Editor) Selection() *Selection {
	return e.selection
}

// Gate returns the per-mesh generation gate used by ApplyTextureLatest.
func (e *Editor) Gate() *Gate {
	return e.gate
}

// Outline returns the current highlight target.
func (e *Editor) Outline() Outline {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outline
}

// AddGeometry adds a standalone primitive to the geometry group and registers it.
// Picking prefers the geometry group while it is non-empty.
func (e *Editor) AddGeometry(mesh *scene.Node) error {
	if !mesh.IsMesh() {
		return fmt.Errorf("%s is not a mesh", mesh.Name)
	}

	e.mu.Lock()
	e.geometry.Add(mesh)
	e.register(mesh, mesh.Name)
	e.mu.Unlock()

	e.log.Debug("geometry added", zap.String("mesh", mesh.Name), zap.String("id", mesh.ID))
	e.redraw()
	return nil
}

// FitModel scales the model so its largest extent equals the fit size, centers it at the
// origin and frames it with cam. It reports false when no model with geometry is loaded.
func (e *Editor) FitModel(cam *camera.Perspective) bool {
	e.mu.Lock()
	model := e.model
	if model == nil {
		e.mu.Unlock()
		return false
	}
	box := model.WorldBounds()
	if box.IsEmpty() {
		e.mu.Unlock()
		return false
	}

	size := box.Size()
	maxDim := max(size.X(), size.Y(), size.Z())
	div := maxDim
	if maxDim <= 1 {
		div = 0.5
	}
	model.Scale = model.Scale.Mul(e.opts.FitSize / div)
	model.Position = model.Position.Sub(model.WorldBounds().Center())

	box = model.WorldBounds()
	cam.FitToBounds(box.Min, box.Max)
	cam.Position = mgl32.Vec3{0, 2, 6}

	// Anchors were cached in the old world space
	model.Traverse(func(n *scene.Node) { n.Anchor = nil })
	e.mu.Unlock()

	e.log.Debug("model framed",
		zap.Float32("extent", maxDim),
		zap.Float32("max_distance", cam.MaxDistance))
	e.redraw()
	return true
}

// mesh finds a mesh by ID in the model or the geometry group.
func (e *Editor) mesh(id string) *scene.Node {
	var n *scene.Node
	if e.model != nil {
		n = e.model.FindByID(id)
	}
	if n == nil {
		n = e.geometry.FindByID(id)
	}
	if n == nil || !n.IsMesh() {
		return nil
	}
	return n
}

// meshes returns every mesh of the model followed by the geometry group.
func (e *Editor) meshes() []*scene.Node {
	var out []*scene.Node
	if e.model != nil {
		out = e.model.Meshes()
	}
	return append(out, e.geometry.Meshes()...)
}

// releaseIfOrphaned frees tex unless a live material still binds it.
func (e *Editor) releaseIfOrphaned(tex *scene.Texture) {
	if tex == nil {
		return
	}
	for _, n := range e.meshes() {
		if n.Material.Map == tex {
			return
		}
	}
	tex.Release()
	e.log.Debug("texture released", zap.String("texture", tex.Name))
}

func (e *Editor) stale(op, meshID string) {
	e.log.Debug("stale mesh reference", zap.String("op", op), zap.String("mesh", meshID))
}

func (e *Editor) redraw() {
	if e.opts.Host != nil {
		e.opts.Host.RequestRedraw()
	}
}
