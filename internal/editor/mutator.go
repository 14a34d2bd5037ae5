package editor

import (
	"context"
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/Faultbox/matedit/internal/texture"
	"github.com/Faultbox/matedit/pkg/scene"
)

// ErrSuperseded is returned by ApplyTextureLatest when a newer request for the same mesh
// was issued before this one resolved.
var ErrSuperseded = errors.New("texture request superseded")

// Appearance is the set of attributes changed by SetAppearance.
type Appearance struct {
	Color      colorful.Color
	Wireframe  bool
	DepthWrite bool
	Opacity    float64
}

// EmbeddedTexture tags a mesh that returned to its embedded texture.
type EmbeddedTexture struct {
	MapID      string
	SourceName string
}

// Provenance identifies where a resolved texture came from.
type Provenance struct {
	ID     string
	Source string
}

// SetAppearance applies a on a clone of the mesh's live material and mirrors it into the
// material list. It reports false when the mesh or its list entry is gone.
func (e *Editor) SetAppearance(meshID string, a Appearance) bool {
	e.mu.Lock()
	ok := e.setAppearance(meshID, a)
	e.mu.Unlock()
	if ok {
		e.redraw()
	}
	return ok
}

func (e *Editor) setAppearance(meshID string, a Appearance) bool {
	n := e.mesh(meshID)
	entry := e.entry(meshID)
	if n == nil || entry == nil {
		e.stale("set appearance", meshID)
		return false
	}

	m := n.Material.Clone()
	m.Color = a.Color
	m.Wireframe = a.Wireframe
	m.DepthWrite = a.DepthWrite
	m.Opacity = a.Opacity
	m.Transparent = true
	n.Material = m

	entry.Material = viewOf(m)
	return true
}

// SetVisibility shows or hides a mesh. The material list is not updated.
func (e *Editor) SetVisibility(meshID string, visible bool) bool {
	e.mu.Lock()
	n := e.mesh(meshID)
	if n == nil {
		e.mu.Unlock()
		e.stale("set visibility", meshID)
		return false
	}
	n.Visible = visible
	e.mu.Unlock()

	e.redraw()
	return true
}

// SetEmbeddedTexture restores the mesh's as-loaded material, discarding any override,
// and tags the mesh with the given map identifier and source name.
func (e *Editor) SetEmbeddedTexture(meshID string, t EmbeddedTexture) bool {
	e.mu.Lock()
	n := e.mesh(meshID)
	snap, ok := e.registry.Snapshot(meshID)
	if n == nil || !ok {
		e.mu.Unlock()
		e.stale("set embedded texture", meshID)
		return false
	}
	e.assign(n, snap)
	n.MapID = t.MapID
	n.TextureSource = t.SourceName
	e.mu.Unlock()

	e.redraw()
	return true
}

// SetResolvedTexture binds tex to a clone of the mesh's live material and tags the mesh.
// The texture it supersedes is released unless another mesh still binds it.
func (e *Editor) SetResolvedTexture(meshID string, tex *scene.Texture, p Provenance) bool {
	e.mu.Lock()
	n := e.mesh(meshID)
	if n == nil {
		e.mu.Unlock()
		e.stale("set resolved texture", meshID)
		return false
	}

	tex.Normalize()
	m := n.Material.Clone()
	m.Map = tex
	e.assign(n, m)
	n.MapID = p.ID
	n.TextureSource = p.Source
	e.mu.Unlock()

	e.log.Debug("texture applied",
		zap.String("mesh", n.Name),
		zap.String("texture", tex.Name),
		zap.String("source", p.Source))
	e.redraw()
	return true
}

// ApplyTexture resolves src and binds the result to the mesh. Embedded sources restore the
// mesh's as-loaded texture. On failure the live material is left untouched.
func (e *Editor) ApplyTexture(ctx context.Context, meshID string, src texture.Source, p Provenance) error {
	if src.Kind == texture.Embedded {
		if !e.SetEmbeddedTexture(meshID, EmbeddedTexture{MapID: p.ID, SourceName: p.Source}) {
			return ErrStaleReference
		}
		return nil
	}

	tex, err := e.resolve(ctx, meshID, src)
	if err != nil {
		return err
	}
	if !e.SetResolvedTexture(meshID, tex, p) {
		return ErrStaleReference
	}
	return nil
}

// ApplyTextureAsync runs ApplyTexture in the background. The channel receives exactly one
// result. Concurrent requests for one mesh are not ordered: the last to finish wins.
func (e *Editor) ApplyTextureAsync(ctx context.Context, meshID string, src texture.Source, p Provenance) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- e.ApplyTexture(ctx, meshID, src, p)
	}()
	return ch
}

// ApplyTextureLatest is ApplyTexture that drops its result with ErrSuperseded when a newer
// ApplyTextureLatest call for the same mesh started while it was resolving.
func (e *Editor) ApplyTextureLatest(ctx context.Context, meshID string, src texture.Source, p Provenance) error {
	gen := e.gate.Next(meshID)
	if src.Kind == texture.Embedded {
		return e.ApplyTexture(ctx, meshID, src, p)
	}

	tex, err := e.resolve(ctx, meshID, src)
	if err != nil {
		return err
	}
	if !e.gate.Current(meshID, gen) {
		e.log.Debug("dropping superseded texture", zap.String("mesh", meshID), zap.String("ref", src.Ref))
		return ErrSuperseded
	}
	if !e.SetResolvedTexture(meshID, tex, p) {
		return ErrStaleReference
	}
	return nil
}

// resolve loads src outside the editor lock.
func (e *Editor) resolve(ctx context.Context, meshID string, src texture.Source) (*scene.Texture, error) {
	if e.opts.Textures == nil {
		return nil, fmt.Errorf("no texture service configured")
	}

	e.mu.Lock()
	n := e.mesh(meshID)
	e.mu.Unlock()
	if n == nil {
		e.stale("apply texture", meshID)
		return nil, ErrStaleReference
	}

	tex, err := e.opts.Textures.Resolve(ctx, src)
	if err != nil {
		e.log.Warn("texture resolution failed",
			zap.String("mesh", n.Name),
			zap.String("ref", src.Ref),
			zap.Error(err))
		return nil, fmt.Errorf("applying texture to %s: %w", n.Name, err)
	}
	return tex, nil
}

// ChangeMaterialClass swaps the mesh's material for a new one of the given class carrying
// over texture, color and name. A nil class restores the as-loaded material. Depth write,
// opacity and wireframe of the previous material are re-applied per the reapply mode, and
// the result is always double sided.
func (e *Editor) ChangeMaterialClass(meshID string, class *scene.MaterialClass) bool {
	e.mu.Lock()
	ok := e.changeClass(meshID, class)
	e.mu.Unlock()
	if ok {
		e.redraw()
	}
	return ok
}

// ChangeMaterialClassAll applies ChangeMaterialClass to every mesh and returns the number
// of meshes changed.
func (e *Editor) ChangeMaterialClassAll(class *scene.MaterialClass) int {
	e.mu.Lock()
	changed := 0
	for _, n := range e.meshes() {
		if e.changeClass(n.ID, class) {
			changed++
		}
	}
	e.mu.Unlock()

	if changed > 0 {
		e.redraw()
	}
	return changed
}

func (e *Editor) changeClass(meshID string, class *scene.MaterialClass) bool {
	n := e.mesh(meshID)
	if n == nil {
		e.stale("change material class", meshID)
		return false
	}
	prev := n.Material

	var m *scene.Material
	if class != nil {
		m = scene.NewMaterial(*class)
		m.Map = prev.Map
		m.Color = prev.Color
		m.Name = prev.Name
		m.Transparent = true
	} else {
		snap, ok := e.registry.Snapshot(meshID)
		if !ok {
			e.stale("change material class", meshID)
			return false
		}
		m = snap
	}

	e.reapply(prev, m)
	m.Side = scene.DoubleSide
	e.assign(n, m)
	return true
}

// reapply carries depth write, opacity and wireframe from prev to m.
func (e *Editor) reapply(prev, m *scene.Material) {
	if e.opts.ReapplyMode == ReapplyDefined {
		m.DepthWrite = prev.DepthWrite
		m.Opacity = prev.Opacity
		m.Wireframe = prev.Wireframe
		return
	}
	if prev.DepthWrite {
		m.DepthWrite = prev.DepthWrite
	}
	if prev.Opacity != 0 {
		m.Opacity = prev.Opacity
	}
	if prev.Wireframe {
		m.Wireframe = prev.Wireframe
	}
}

// assign makes m the live material of n, binding its texture and releasing the
// superseded one.
func (e *Editor) assign(n *scene.Node, m *scene.Material) {
	prev := n.Material
	if m.Map != nil {
		m.Map.Bind()
	}
	n.Material = m
	if prev != nil && prev.Map != m.Map {
		e.releaseIfOrphaned(prev.Map)
	}
}
