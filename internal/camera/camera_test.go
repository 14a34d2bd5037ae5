package camera

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestNewPerspectiveDefaults(t *testing.T) {
	c := NewPerspective()
	if !c.Position.ApproxEqual(mgl32.Vec3{0, 2, 6}) {
		t.Errorf("expected position (0,2,6), got %v", c.Position)
	}
	if c.FovY != 45 {
		t.Errorf("expected fov 45, got %f", c.FovY)
	}
}

func TestViewProjectionCentersTarget(t *testing.T) {
	c := NewPerspective()
	vp := c.ViewProjection(800.0 / 600.0)

	clip := vp.Mul4x1(c.Target.Vec4(1))
	ndc := clip.Vec3().Mul(1 / clip.W())
	if math32.Abs(ndc.X()) > 1e-5 || math32.Abs(ndc.Y()) > 1e-5 {
		t.Errorf("expected target at screen center, got %v", ndc)
	}
}

func TestZoomClamps(t *testing.T) {
	c := NewPerspective()
	c.MaxDistance = 8

	c.Zoom(-10) // zoom far out
	if math32.Abs(c.Distance()-8) > 1e-4 {
		t.Errorf("expected distance clamped to 8, got %f", c.Distance())
	}

	c.Zoom(0.99999)
	if c.Distance() < c.MinDistance-1e-5 {
		t.Errorf("expected distance >= %f, got %f", c.MinDistance, c.Distance())
	}
}

func TestFitToBounds(t *testing.T) {
	c := NewPerspective()
	c.FitToBounds(mgl32.Vec3{-1, -1, -1}, mgl32.Vec3{3, 1, 1})

	if !c.Target.ApproxEqual(mgl32.Vec3{1, 0, 0}) {
		t.Errorf("expected target (1,0,0), got %v", c.Target)
	}
	want := mgl32.Vec3{4, 2, 2}.Len() * 10
	if math32.Abs(c.MaxDistance-want) > 1e-4 {
		t.Errorf("expected max distance %f, got %f", want, c.MaxDistance)
	}
}
