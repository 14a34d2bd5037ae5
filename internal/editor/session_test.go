package editor

import (
	"context"
	"sort"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/matedit/pkg/scene"
)

// memStore keeps YAML documents in memory.
type memStore map[string][]byte

func (m memStore) Save(_ context.Context, key string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	m[key] = data
	return nil
}

func (m memStore) Load(_ context.Context, key string, v any) (bool, error) {
	data, ok := m[key]
	if !ok {
		return false, nil
	}
	return true, yaml.Unmarshal(data, v)
}

func (m memStore) Remove(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func (m memStore) Keys(context.Context) ([]string, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func TestEditRecords(t *testing.T) {
	e, m := loaded(t, Options{})
	sign := m.FindByName("sign")
	e.SetResolvedTexture(sign.ID, scene.NewTexture("x.png", nil), Provenance{ID: "x", Source: "external"})

	records := e.EditRecords()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for _, r := range records {
		if r.Name == "sign" {
			if r.MapID != "sign_2" {
				t.Errorf("expected load-time map id sign_2, got %s", r.MapID)
			}
			if r.TextureSource != "external" {
				t.Errorf("expected texture source external, got %s", r.TextureSource)
			}
			if r.Class != string(scene.PhongMaterial) {
				t.Errorf("expected phong class, got %s", r.Class)
			}
		}
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memStore{}

	e, m := loaded(t, Options{})
	left := m.FindByName("left")
	right := m.FindByName("right")
	e.SetAppearance(left.ID, Appearance{Color: scene.MustColor("#ff0000"), Wireframe: true, Opacity: 0.5})
	e.SetVisibility(right.ID, false)
	toon := scene.ToonMaterial
	e.ChangeMaterialClass(right.ID, &toon)

	if err := e.SaveSession(ctx, store, "robot-red"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	// A fresh load of the same model gets new mesh IDs
	e2 := New(Options{})
	m2 := testModel()
	e2.Load(m2)

	found, missing, err := e2.LoadSession(ctx, store, "robot-red")
	if err != nil || !found {
		t.Fatalf("expected session to load, got found=%v err=%v", found, err)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing records, got %v", missing)
	}

	left2 := m2.FindByName("left")
	right2 := m2.FindByName("right")
	if left2.Material.ColorHex() != "#ff0000" || !left2.Material.Wireframe || left2.Material.Opacity != 0.5 {
		t.Errorf("expected left edits restored, got %s %v %f", left2.Material.ColorHex(), left2.Material.Wireframe, left2.Material.Opacity)
	}
	if right2.Visible {
		t.Error("expected right hidden")
	}
	if right2.Material.Class != scene.ToonMaterial {
		t.Errorf("expected toon class restored, got %s", right2.Material.Class)
	}

	found, _, err = e2.LoadSession(ctx, store, "unknown")
	if err != nil || found {
		t.Errorf("expected missing session, got found=%v err=%v", found, err)
	}
}

func TestApplyRecordsReportsMissing(t *testing.T) {
	e, _ := loaded(t, Options{})
	missing := e.ApplyRecords([]EditRecord{
		{MapID: "left_0", Visible: true, Material: MaterialView{Color: "#00ff00", DepthWrite: true, Opacity: 1}},
		{MapID: "wing_9", Visible: true, Material: MaterialView{Color: "#00ff00", Opacity: 1}},
		{MapID: "right_1", Visible: true, Material: MaterialView{Color: "bogus"}},
	})
	if len(missing) != 2 || missing[0] != "wing_9" || missing[1] != "right_1" {
		t.Errorf("expected [wing_9 right_1], got %v", missing)
	}
}

func TestSaveSessionWithoutModel(t *testing.T) {
	e := New(Options{})
	if err := e.SaveSession(context.Background(), memStore{}, "k"); err == nil {
		t.Error("expected error without a model")
	}
}
