// Package camera provides the perspective camera used to view and pick the edited model.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Perspective is a camera looking from Position at Target.
type Perspective struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3

	FovY float32 // Vertical field of view, degrees
	Near float32
	Far  float32

	// Constraints for the host's orbit controls
	MinDistance float32
	MaxDistance float32
}

// NewPerspective creates a camera with editor defaults: 45° FOV at (0, 2, 6) looking at the origin.
func NewPerspective() *Perspective {
	return &Perspective{
		Position:    mgl32.Vec3{0, 2, 6},
		Up:          mgl32.Vec3{0, 1, 0},
		FovY:        45,
		Near:        0.1,
		Far:         1000,
		MinDistance: 0.1,
		MaxDistance: 100,
	}
}

// ViewMatrix returns the view matrix for this camera.
func (c *Perspective) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the projection for the given viewport aspect (width/height).
func (c *Perspective) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

// ViewProjection returns projection * view.
func (c *Perspective) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}

// Distance returns the distance from the camera to its target.
func (c *Perspective) Distance() float32 {
	return c.Position.Sub(c.Target).Len()
}

// Zoom moves the camera along its view axis by a fraction of the current distance,
// clamped to MinDistance and MaxDistance.
func (c *Perspective) Zoom(delta float32) {
	dist := c.Distance()
	dist -= delta * dist
	if dist < c.MinDistance {
		dist = c.MinDistance
	}
	if dist > c.MaxDistance {
		dist = c.MaxDistance
	}
	dir := c.Position.Sub(c.Target).Normalize()
	c.Position = c.Target.Add(dir.Mul(dist))
}

// FitToBounds aims the camera at the center of the given box and sets MaxDistance
// so the whole box stays reachable.
func (c *Perspective) FitToBounds(min, max mgl32.Vec3) {
	c.Target = min.Add(max).Mul(0.5)
	c.MaxDistance = max.Sub(min).Len() * 10
	if c.MaxDistance < c.MinDistance {
		c.MaxDistance = c.MinDistance
	}
}
