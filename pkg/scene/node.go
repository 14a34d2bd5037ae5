// Package scene provides the scene graph edited by the material editor:
// group and mesh nodes, materials and texture handles.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// NodeKind distinguishes grouping nodes from renderable meshes.
type NodeKind int

const (
	GroupNode NodeKind = iota
	MeshNode
)

// String returns the node type name as shown in material lists.
func (k NodeKind) String() string {
	if k == MeshNode {
		return "Mesh"
	}
	return "Group"
}

// Transform is a local translation, rotation and scale.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

// IdentityTransform returns a transform that leaves points unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns T * R * S.
func (t Transform) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// Node is a scene graph node. Mesh nodes carry geometry and exactly one live material.
type Node struct {
	ID      string
	Name    string
	Kind    NodeKind
	Visible bool

	Transform

	Geometry *Geometry
	Material *Material

	// Editor metadata.
	MapID         string
	TextureSource string
	Anchor        *mgl32.Vec3
	UserData      map[string]any

	parent   *Node
	children []*Node
}

// NewGroup creates an empty visible group.
func NewGroup(name string) *Node {
	return &Node{
		ID:        uuid.NewString(),
		Name:      name,
		Kind:      GroupNode,
		Visible:   true,
		Transform: IdentityTransform(),
		UserData:  map[string]any{},
	}
}

// NewMesh creates a visible mesh node.
func NewMesh(name string, geo *Geometry, mat *Material) *Node {
	n := NewGroup(name)
	n.Kind = MeshNode
	n.Geometry = geo
	n.Material = mat
	return n
}

// IsMesh reports whether the node is a mesh that carries a material.
func (n *Node) IsMesh() bool {
	return n.Kind == MeshNode && n.Material != nil
}

// Add appends children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) {
	for _, c := range children {
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
}

// Remove detaches a direct child.
func (n *Node) Remove(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Clear detaches all children.
func (n *Node) Clear() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
}

// Children returns the direct children.
func (n *Node) Children() []*Node {
	return n.children
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Traverse visits n and all descendants depth-first, parents before children.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// Meshes returns every mesh descendant (including n) in traversal order.
func (n *Node) Meshes() []*Node {
	var out []*Node
	n.Traverse(func(v *Node) {
		if v.IsMesh() {
			out = append(out, v)
		}
	})
	return out
}

// FindByID returns the first node in the subtree with the given identity.
func (n *Node) FindByID(id string) *Node {
	var found *Node
	n.Traverse(func(v *Node) {
		if found == nil && v.ID == id {
			found = v
		}
	})
	return found
}

// FindByName returns the first node in the subtree with the given name.
func (n *Node) FindByName(name string) *Node {
	var found *Node
	n.Traverse(func(v *Node) {
		if found == nil && v.Name == name {
			found = v
		}
	})
	return found
}

// WorldMatrix returns the node's transform composed with all ancestors.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.Matrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.Matrix().Mul4(m)
	}
	return m
}

// WorldBounds returns the world-space bounds of every mesh in the subtree.
func (n *Node) WorldBounds() Box3 {
	box := EmptyBox()
	for _, m := range n.Meshes() {
		if m.Geometry == nil {
			continue
		}
		world := m.WorldMatrix()
		for _, p := range m.Geometry.Positions {
			box = box.ExpandByPoint(mgl32.TransformCoordinate(p, world))
		}
	}
	return box
}
