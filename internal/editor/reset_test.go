package editor

import (
	"image"
	"testing"

	"github.com/Faultbox/matedit/pkg/scene"
)

func TestResetAllRestoresLoadedState(t *testing.T) {
	e, m := loaded(t, Options{})
	want := e.ListCurrentMaterials()

	left := m.FindByName("left")
	right := m.FindByName("right")
	sign := m.FindByName("sign")
	original := sign.Material.Map

	e.SetAppearance(left.ID, Appearance{Color: scene.MustColor("#ff0000"), Wireframe: true, Opacity: 0.1})
	e.SetVisibility(right.ID, false)
	toon := scene.ToonMaterial
	e.ChangeMaterialClass(right.ID, &toon)
	replacement := scene.NewTexture("r.png", image.NewRGBA(image.Rect(0, 0, 1, 1)))
	e.SetResolvedTexture(sign.ID, replacement, Provenance{ID: "r", Source: "external"})
	e.SelectByName("left")

	e.ResetAll()

	got := e.ListCurrentMaterials()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].Material != want[i].Material {
			t.Errorf("%s: expected %+v, got %+v", want[i].Name, want[i].Material, got[i].Material)
		}
		if !got[i].Visible {
			t.Errorf("%s: expected visible", got[i].Name)
		}
		if got[i].MapID != want[i].MapID || got[i].Class != want[i].Class {
			t.Errorf("%s: expected %s/%s, got %s/%s", want[i].Name, want[i].MapID, want[i].Class, got[i].MapID, got[i].Class)
		}
		if got[i].TextureSource != "" {
			t.Errorf("%s: expected texture source cleared", got[i].Name)
		}
	}

	// The stored list is reset as well
	for _, entry := range e.MaterialList() {
		if !entry.Visible {
			t.Errorf("%s: expected stored entry visible", entry.Name)
		}
	}
	if findEntry(e.MaterialList(), left.ID).Material != findEntry(want, left.ID).Material {
		t.Error("expected stored entry to mirror the snapshot")
	}

	if sign.Material.Map != original || !original.Resident() {
		t.Error("expected original texture re-bound")
	}
	if replacement.Releases() != 1 {
		t.Errorf("expected replacement texture released once, got %d", replacement.Releases())
	}
	if e.Selection().Current() != "" || e.Outline().Target != nil {
		t.Error("expected reset to clear the selection")
	}

	for _, n := range m.Meshes() {
		snap, _ := e.Registry().Get(n.ID)
		if n.Material == snap {
			t.Errorf("%s: expected a fresh clone of the snapshot", n.Name)
		}
	}
}

func TestResetAllIsRepeatable(t *testing.T) {
	e, m := loaded(t, Options{})
	left := m.FindByName("left")

	for i := 0; i < 3; i++ {
		e.SetAppearance(left.ID, Appearance{Color: scene.MustColor("#000000"), Opacity: 0.2})
		e.ResetAll()
		if left.Material.ColorHex() != "#336699" || left.Material.Opacity != 0.8 {
			t.Fatalf("round %d: expected loaded appearance, got %s %f", i, left.Material.ColorHex(), left.Material.Opacity)
		}
	}
}
