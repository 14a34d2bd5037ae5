package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestMaterialCloneIsIndependent(t *testing.T) {
	tex := NewTexture("albedo", nil)
	m := NewMaterial(StandardMaterial)
	m.Map = tex
	m.UserData["mapId"] = "body_0"

	c := m.Clone()
	if c == m {
		t.Fatal("expected a distinct instance")
	}
	if c.Map != tex {
		t.Error("expected the texture reference to be shared")
	}

	c.Opacity = 0.25
	c.UserData["mapId"] = "changed"
	if m.Opacity != 1 {
		t.Errorf("expected original opacity 1, got %f", m.Opacity)
	}
	if m.UserData["mapId"] != "body_0" {
		t.Errorf("expected original mapId body_0, got %s", m.UserData["mapId"])
	}
}

func TestParseMaterialClass(t *testing.T) {
	tests := []struct {
		in      string
		want    MaterialClass
		wantErr bool
	}{
		{"phong", PhongMaterial, false},
		{"MeshBasicMaterial", BasicMaterial, false},
		{"toon", ToonMaterial, false},
		{"glass", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMaterialClass(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("unexpected error state: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestColorHexRoundTrip(t *testing.T) {
	m := NewMaterial(BasicMaterial)
	m.Color = MustColor("#ff0000")
	if m.ColorHex() != "#ff0000" {
		t.Errorf("expected #ff0000, got %s", m.ColorHex())
	}
	if _, err := ParseColor("red"); err == nil {
		t.Error("expected error for non-hex color")
	}
}

func TestTextureReleaseOncePerResidency(t *testing.T) {
	tex := NewTexture("t", nil)
	calls := 0
	tex.OnRelease(func(*Texture) { calls++ })

	tex.Release()
	if calls != 0 {
		t.Errorf("expected no release of a non-resident texture, got %d", calls)
	}

	tex.Bind()
	tex.Release()
	tex.Release()
	if calls != 1 || tex.Releases() != 1 {
		t.Errorf("expected exactly one release, got hook=%d count=%d", calls, tex.Releases())
	}
	if tex.Resident() {
		t.Error("expected texture to be non-resident after release")
	}
}

func TestTextureNormalize(t *testing.T) {
	tex := NewTexture("t", nil)
	tex.Normalize()
	if tex.WrapS != MirroredRepeat || tex.WrapT != MirroredRepeat {
		t.Error("expected mirrored repeat wrapping")
	}
	if tex.FlipY {
		t.Error("expected flipY disabled")
	}
	if tex.ColorSpace != SRGB {
		t.Error("expected sRGB color space")
	}
	if tex.MinFilter != Linear || tex.MagFilter != Linear {
		t.Error("expected linear filtering")
	}
}

func TestTraversalOrderAndLookup(t *testing.T) {
	root := NewGroup("root")
	a := NewMesh("a", PlaneGeometry(1, 1), NewMaterial(BasicMaterial))
	g := NewGroup("g")
	b := NewMesh("b", PlaneGeometry(1, 1), NewMaterial(BasicMaterial))
	c := NewMesh("c", PlaneGeometry(1, 1), NewMaterial(BasicMaterial))
	g.Add(b)
	root.Add(a, g, c)

	meshes := root.Meshes()
	if len(meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(meshes))
	}
	for i, want := range []string{"a", "b", "c"} {
		if meshes[i].Name != want {
			t.Errorf("mesh %d: expected %s, got %s", i, want, meshes[i].Name)
		}
	}

	if root.FindByID(b.ID) != b {
		t.Error("FindByID did not return the nested mesh")
	}
	if root.FindByName("c") != c {
		t.Error("FindByName did not return mesh c")
	}

	g.Remove(b)
	if b.Parent() != nil || len(root.Meshes()) != 2 {
		t.Error("expected b to be detached")
	}
}

func TestWorldBounds(t *testing.T) {
	root := NewGroup("root")
	root.Position = mgl32.Vec3{10, 0, 0}
	root.Scale = mgl32.Vec3{2, 2, 2}
	box := NewMesh("box", BoxGeometry(1, 1, 1), NewMaterial(BasicMaterial))
	root.Add(box)

	b := root.WorldBounds()
	if !b.Min.ApproxEqual(mgl32.Vec3{9, -1, -1}) || !b.Max.ApproxEqual(mgl32.Vec3{11, 1, 1}) {
		t.Errorf("unexpected bounds: min=%v max=%v", b.Min, b.Max)
	}
	if !b.Center().ApproxEqual(mgl32.Vec3{10, 0, 0}) {
		t.Errorf("expected center (10,0,0), got %v", b.Center())
	}

	if !NewGroup("empty").WorldBounds().IsEmpty() {
		t.Error("expected empty bounds for a group without meshes")
	}
}
