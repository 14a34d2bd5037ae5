package editor

import (
	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/Faultbox/matedit/pkg/scene"
)

// MaterialView is the reduced material shown in the material list.
type MaterialView struct {
	Color      string  `yaml:"color"`
	Wireframe  bool    `yaml:"wireframe"`
	DepthWrite bool    `yaml:"depth_write"`
	Opacity    float64 `yaml:"opacity"`
}

// Metadata is the mesh's load-time transform.
type Metadata struct {
	Position [3]float32 `yaml:"position"`
	Rotation [4]float32 `yaml:"rotation"` // quaternion W, X, Y, Z
	Scale    [3]float32 `yaml:"scale"`
}

// MaterialListEntry is the UI-facing projection of one mesh and its live material.
type MaterialListEntry struct {
	MapID         string       `yaml:"map_id"`
	MeshID        string       `yaml:"mesh_id"`
	Metadata      Metadata     `yaml:"metadata"`
	Type          string       `yaml:"type"`
	Name          string       `yaml:"name"`
	Visible       bool         `yaml:"visible"`
	Material      MaterialView `yaml:"material"`
	Class         string       `yaml:"class"`
	TextureSource string       `yaml:"texture_source,omitempty"`
}

func viewOf(m *scene.Material) MaterialView {
	return MaterialView{
		Color:      m.ColorHex(),
		Wireframe:  m.Wireframe,
		DepthWrite: m.DepthWrite,
		Opacity:    m.Opacity,
	}
}

func metadataOf(n *scene.Node) Metadata {
	t, ok := n.UserData[transformKey].(scene.Transform)
	if !ok {
		t = n.Transform
	}
	return Metadata{
		Position: [3]float32(t.Position),
		Rotation: [4]float32{t.Rotation.W, t.Rotation.V[0], t.Rotation.V[1], t.Rotation.V[2]},
		Scale:    [3]float32(t.Scale),
	}
}

func entryOf(n *scene.Node) MaterialListEntry {
	return MaterialListEntry{
		MapID:         n.MapID,
		MeshID:        n.ID,
		Metadata:      metadataOf(n),
		Type:          n.Kind.String(),
		Name:          n.Name,
		Visible:       n.Visible,
		Material:      viewOf(n.Material),
		Class:         string(n.Material.Class),
		TextureSource: n.TextureSource,
	}
}

// ListCurrentMaterials derives the material list from the live scene graph.
func (e *Editor) ListCurrentMaterials() []MaterialListEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.derive()
}

func (e *Editor) derive() []MaterialListEntry {
	meshes := e.meshes()
	out := make([]MaterialListEntry, 0, len(meshes))
	for _, n := range meshes {
		out = append(out, entryOf(n))
	}
	return out
}

// MaterialList returns a copy of the stored list. It only reflects SetAppearance and
// ResetAll until ResyncMaterialList is called.
func (e *Editor) MaterialList() []MaterialListEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []MaterialListEntry
	if err := copier.CopyWithOption(&out, e.list, copier.Option{DeepCopy: true}); err != nil {
		e.log.Warn("copying material list", zap.Error(err))
		return nil
	}
	return out
}

// ResyncMaterialList replaces the stored list with one derived from the live graph.
func (e *Editor) ResyncMaterialList() {
	e.mu.Lock()
	e.list = e.derive()
	e.mu.Unlock()
}

func (e *Editor) entry(meshID string) *MaterialListEntry {
	for i := range e.list {
		if e.list[i].MeshID == meshID {
			return &e.list[i]
		}
	}
	return nil
}
