package picking

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/matedit/pkg/scene"
)

// Intersection is a ray hit on a mesh.
type Intersection struct {
	Distance float32
	Point    mgl32.Vec3
	Object   *scene.Node
	Face     int
}

// IntersectObjects tests the ray against every node in nodes and their descendants.
// Results are sorted by distance; equal distances keep traversal order.
// Only the nearest hit per mesh is reported.
func (r Ray) IntersectObjects(nodes []*scene.Node) []Intersection {
	var hits []Intersection
	for _, n := range nodes {
		n.Traverse(func(v *scene.Node) {
			if hit, ok := r.IntersectMesh(v); ok {
				hits = append(hits, hit)
			}
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	return hits
}

// IntersectMesh returns the nearest hit on a mesh node's geometry in world space.
func (r Ray) IntersectMesh(n *scene.Node) (Intersection, bool) {
	if n.Kind != scene.MeshNode || n.Geometry == nil {
		return Intersection{}, false
	}

	world := n.WorldMatrix()

	// Broad phase against the world bounds
	if _, ok := r.IntersectAABB(n.WorldBounds()); !ok {
		return Intersection{}, false
	}

	best := Intersection{Object: n, Face: -1}
	for i := 0; i < n.Geometry.Triangles(); i++ {
		a, b, c := n.Geometry.Triangle(i)
		a = mgl32.TransformCoordinate(a, world)
		b = mgl32.TransformCoordinate(b, world)
		c = mgl32.TransformCoordinate(c, world)
		t, ok := r.IntersectTriangle(a, b, c)
		if !ok {
			continue
		}
		if best.Face < 0 || t < best.Distance {
			best.Distance = t
			best.Face = i
		}
	}
	if best.Face < 0 {
		return Intersection{}, false
	}
	best.Point = r.At(best.Distance)
	return best, true
}
