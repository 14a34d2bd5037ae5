package editor

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Faultbox/matedit/internal/texture"
	"github.com/Faultbox/matedit/pkg/scene"
)

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{255, 0, 0, 255})
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", name, err)
	}
	return p
}

func findEntry(list []MaterialListEntry, meshID string) *MaterialListEntry {
	for i := range list {
		if list[i].MeshID == meshID {
			return &list[i]
		}
	}
	return nil
}

func TestSetAppearance(t *testing.T) {
	e, m := loaded(t, Options{})
	left := m.FindByName("left")
	before, _ := e.Registry().Snapshot(left.ID)

	ok := e.SetAppearance(left.ID, Appearance{
		Color:      scene.MustColor("#ff0000"),
		Wireframe:  true,
		DepthWrite: false,
		Opacity:    0.5,
	})
	if !ok {
		t.Fatal("expected SetAppearance to succeed")
	}

	entry := findEntry(e.ListCurrentMaterials(), left.ID)
	if entry == nil {
		t.Fatal("expected list entry for left")
	}
	want := MaterialView{Color: "#ff0000", Wireframe: true, DepthWrite: false, Opacity: 0.5}
	if entry.Material != want {
		t.Errorf("expected %+v, got %+v", want, entry.Material)
	}

	// Mirrored into the stored list without a resync
	stored := findEntry(e.MaterialList(), left.ID)
	if stored.Material != want {
		t.Errorf("expected stored list to mirror %+v, got %+v", want, stored.Material)
	}

	snap, _ := e.Registry().Get(left.ID)
	if snap.ColorHex() != before.ColorHex() || snap.Opacity != before.Opacity || snap.Wireframe || !snap.DepthWrite {
		t.Error("expected registry snapshot to be unchanged")
	}
	if !left.Material.Transparent {
		t.Error("expected appearance edits to enable transparency")
	}

	right := m.FindByName("right")
	if right.Material.ColorHex() != "#336699" {
		t.Errorf("expected edit not to leak into right, got %s", right.Material.ColorHex())
	}
}

func TestSetAppearanceStale(t *testing.T) {
	e, _ := loaded(t, Options{})
	if e.SetAppearance("no-such-mesh", Appearance{Opacity: 1}) {
		t.Error("expected stale id to be a no-op")
	}
	if e.SetVisibility("no-such-mesh", false) {
		t.Error("expected stale visibility to be a no-op")
	}
	if e.SetEmbeddedTexture("no-such-mesh", EmbeddedTexture{}) {
		t.Error("expected stale embedded texture to be a no-op")
	}
	if e.ChangeMaterialClass("no-such-mesh", nil) {
		t.Error("expected stale class change to be a no-op")
	}
}

func TestListIsEventuallyConsistent(t *testing.T) {
	e, m := loaded(t, Options{})
	left := m.FindByName("left")

	e.SetVisibility(left.ID, false)
	if !findEntry(e.MaterialList(), left.ID).Visible {
		t.Error("expected stored list to lag until resync")
	}
	if findEntry(e.ListCurrentMaterials(), left.ID).Visible {
		t.Error("expected derived list to show the hidden mesh")
	}

	e.ResyncMaterialList()
	if findEntry(e.MaterialList(), left.ID).Visible {
		t.Error("expected resync to pick up visibility")
	}

	// Copies are detached from editor state
	list := e.MaterialList()
	list[0].Name = "changed"
	if e.MaterialList()[0].Name == "changed" {
		t.Error("expected MaterialList to return a copy")
	}
}

func TestEmbeddedThenResolvedTexture(t *testing.T) {
	e, m := loaded(t, Options{})
	sign := m.FindByName("sign")
	original := sign.Material.Map

	released := 0
	original.OnRelease(func(*scene.Texture) { released++ })

	if !e.SetEmbeddedTexture(sign.ID, EmbeddedTexture{MapID: "sign_2", SourceName: "embedded"}) {
		t.Fatal("expected SetEmbeddedTexture to succeed")
	}
	if sign.TextureSource != "embedded" || sign.Material.Map != original {
		t.Error("expected embedded texture restored and tagged")
	}

	resolved := scene.NewTexture("brick.png", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if !e.SetResolvedTexture(sign.ID, resolved, Provenance{ID: "brick", Source: "system"}) {
		t.Fatal("expected SetResolvedTexture to succeed")
	}

	if sign.Material.Map != resolved {
		t.Error("expected resolved texture to win")
	}
	if sign.MapID != "brick" || sign.TextureSource != "system" {
		t.Errorf("expected tags brick/system, got %s/%s", sign.MapID, sign.TextureSource)
	}
	if !resolved.Resident() || resolved.WrapS != scene.MirroredRepeat || resolved.FlipY {
		t.Error("expected resolved texture bound and normalized")
	}
	if released != 1 || original.Releases() != 1 {
		t.Errorf("expected original texture released once, got %d", original.Releases())
	}

	// A second supersede must not release the original again
	again := scene.NewTexture("tile.png", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	e.SetResolvedTexture(sign.ID, again, Provenance{ID: "tile", Source: "external"})
	if original.Releases() != 1 {
		t.Errorf("expected original released exactly once, got %d", original.Releases())
	}
	if resolved.Releases() != 1 {
		t.Errorf("expected superseded texture released, got %d", resolved.Releases())
	}
}

func TestSharedTextureNotReleasedWhileBound(t *testing.T) {
	tex := scene.NewTexture("shared.png", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	mat := scene.NewMaterial(scene.StandardMaterial)
	mat.Map = tex
	root := scene.NewGroup("pair")
	a := scene.NewMesh("a", scene.BoxGeometry(1, 1, 1), mat)
	b := scene.NewMesh("b", scene.BoxGeometry(1, 1, 1), mat)
	root.Add(a, b)

	e := New(Options{})
	e.Load(root)

	e.SetResolvedTexture(a.ID, scene.NewTexture("x.png", image.NewRGBA(image.Rect(0, 0, 1, 1))), Provenance{ID: "x"})
	if tex.Releases() != 0 {
		t.Error("expected texture still bound by b to stay resident")
	}
	e.SetResolvedTexture(b.ID, scene.NewTexture("y.png", image.NewRGBA(image.Rect(0, 0, 1, 1))), Provenance{ID: "y"})
	if tex.Releases() != 1 {
		t.Errorf("expected texture released once orphaned, got %d", tex.Releases())
	}
}

func TestChangeMaterialClass(t *testing.T) {
	e, m := loaded(t, Options{})
	sign := m.FindByName("sign")
	toon := scene.ToonMaterial
	basic := scene.BasicMaterial

	if !e.ChangeMaterialClass(sign.ID, &toon) {
		t.Fatal("expected class change to succeed")
	}
	if sign.Material.Class != scene.ToonMaterial {
		t.Errorf("expected toon class, got %s", sign.Material.Class)
	}
	if sign.Material.Map == nil || sign.Material.Name != "sign" {
		t.Error("expected texture and name to carry over")
	}
	if sign.Material.Side != scene.DoubleSide {
		t.Error("expected double sided material")
	}

	e.ChangeMaterialClass(sign.ID, &basic)
	e.SetAppearance(sign.ID, Appearance{Color: scene.MustColor("#00ff00"), Opacity: 0.3, DepthWrite: true})
	e.ChangeMaterialClass(sign.ID, &toon)

	if !e.ChangeMaterialClass(sign.ID, nil) {
		t.Fatal("expected restore to succeed")
	}
	snap, _ := e.Registry().Get(sign.ID)
	if sign.Material == snap {
		t.Error("expected a fresh clone, not the snapshot itself")
	}
	if sign.Material.Class != snap.Class || sign.Material.ColorHex() != snap.ColorHex() || sign.Material.Map != snap.Map {
		t.Errorf("expected class and core attributes of the snapshot, got %s %s", sign.Material.Class, sign.Material.ColorHex())
	}
	if sign.Material.Side != scene.DoubleSide {
		t.Error("expected double sided after restore")
	}
}

func TestChangeMaterialClassReapply(t *testing.T) {
	tests := []struct {
		name           string
		mode           ReapplyMode
		wantDepthWrite bool
		wantOpacity    float64
	}{
		// Legacy skips false and zero, so the new material keeps its defaults
		{"legacy", ReapplyLegacy, true, 1},
		{"defined", ReapplyDefined, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, m := loaded(t, Options{ReapplyMode: tt.mode})
			left := m.FindByName("left")
			e.SetAppearance(left.ID, Appearance{Color: scene.MustColor("#ffffff"), Wireframe: true, DepthWrite: false, Opacity: 0})

			phong := scene.PhongMaterial
			e.ChangeMaterialClass(left.ID, &phong)

			if left.Material.DepthWrite != tt.wantDepthWrite {
				t.Errorf("expected depth write %v, got %v", tt.wantDepthWrite, left.Material.DepthWrite)
			}
			if left.Material.Opacity != tt.wantOpacity {
				t.Errorf("expected opacity %f, got %f", tt.wantOpacity, left.Material.Opacity)
			}
			if !left.Material.Wireframe {
				t.Error("expected wireframe carried over")
			}
		})
	}
}

func TestChangeMaterialClassAll(t *testing.T) {
	e, m := loaded(t, Options{})
	lambert := scene.LambertMaterial
	if n := e.ChangeMaterialClassAll(&lambert); n != 3 {
		t.Errorf("expected 3 meshes changed, got %d", n)
	}
	for _, n := range m.Meshes() {
		if n.Material.Class != scene.LambertMaterial {
			t.Errorf("expected %s to be lambert, got %s", n.Name, n.Material.Class)
		}
	}
	if m.FindByName("left").Material == m.FindByName("right").Material {
		t.Error("expected each mesh to get its own material")
	}
}

func TestApplyTexture(t *testing.T) {
	dir := t.TempDir()
	good := writePNG(t, dir, "good.png")
	svc := texture.NewService(texture.Options{})
	e, m := loaded(t, Options{Textures: svc})
	left := m.FindByName("left")

	err := e.ApplyTexture(context.Background(), left.ID, texture.Source{Kind: texture.External, Ref: good}, Provenance{ID: "good", Source: "external"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left.Material.Map == nil || left.Material.Map.Name != "good.png" {
		t.Error("expected texture bound to left")
	}

	before := left.Material
	err = e.ApplyTexture(context.Background(), left.ID, texture.Source{Kind: texture.External, Ref: filepath.Join(dir, "missing.png")}, Provenance{ID: "missing"})
	if !errors.Is(err, texture.ErrResourceLoad) {
		t.Errorf("expected ErrResourceLoad, got %v", err)
	}
	if left.Material != before || left.MapID != "good" {
		t.Error("expected failed load to leave the material untouched")
	}

	// Retry after failure
	if err := e.ApplyTexture(context.Background(), left.ID, texture.Source{Kind: texture.External, Ref: good}, Provenance{ID: "again"}); err != nil {
		t.Errorf("expected retry to succeed, got %v", err)
	}

	err = e.ApplyTexture(context.Background(), "gone", texture.Source{Kind: texture.External, Ref: good}, Provenance{})
	if !errors.Is(err, ErrStaleReference) {
		t.Errorf("expected ErrStaleReference, got %v", err)
	}

	// Embedded sources restore the as-loaded material
	if err := e.ApplyTexture(context.Background(), left.ID, texture.Source{Kind: texture.Embedded}, Provenance{ID: "left_0", Source: "embedded"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if left.Material.Map != nil || left.TextureSource != "embedded" {
		t.Error("expected embedded restore")
	}
}

func TestApplyTextureAsync(t *testing.T) {
	dir := t.TempDir()
	p := writePNG(t, dir, "async.png")
	e, m := loaded(t, Options{Textures: texture.NewService(texture.Options{})})
	left := m.FindByName("left")

	select {
	case err := <-e.ApplyTextureAsync(context.Background(), left.ID, texture.Source{Kind: texture.External, Ref: p}, Provenance{ID: "async"}):
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for async apply")
	}
	if left.MapID != "async" {
		t.Errorf("expected map id async, got %s", left.MapID)
	}
}

func TestApplyTextureLatestDropsSuperseded(t *testing.T) {
	dir := t.TempDir()
	fast := writePNG(t, dir, "fast.png")
	slowBody, err := os.ReadFile(fast)
	if err != nil {
		t.Fatalf("failed to read png: %v", err)
	}

	requested := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(requested)
		<-release
		w.Write(slowBody)
	}))
	defer srv.Close()

	svc := texture.NewService(texture.Options{Client: srv.Client()})
	e, m := loaded(t, Options{Textures: svc})
	left := m.FindByName("left")

	slowErr := make(chan error, 1)
	go func() {
		slowErr <- e.ApplyTextureLatest(context.Background(), left.ID, texture.Source{Kind: texture.External, Ref: srv.URL + "/slow.png"}, Provenance{ID: "slow"})
	}()
	<-requested

	if err := e.ApplyTextureLatest(context.Background(), left.ID, texture.Source{Kind: texture.External, Ref: fast}, Provenance{ID: "fast"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(release)

	if err := <-slowErr; !errors.Is(err, ErrSuperseded) {
		t.Errorf("expected ErrSuperseded, got %v", err)
	}
	if left.MapID != "fast" {
		t.Errorf("expected the latest request to win, got %s", left.MapID)
	}
}

func TestApplyTextureAsyncLastFinishedWins(t *testing.T) {
	dir := t.TempDir()
	fast := writePNG(t, dir, "fast.png")
	slowBody, err := os.ReadFile(fast)
	if err != nil {
		t.Fatalf("failed to read png: %v", err)
	}

	requested := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(requested)
		<-release
		w.Write(slowBody)
	}))
	defer srv.Close()

	e, m := loaded(t, Options{Textures: texture.NewService(texture.Options{Client: srv.Client()})})
	left := m.FindByName("left")
	ctx := context.Background()

	slowDone := e.ApplyTextureAsync(ctx, left.ID, texture.Source{Kind: texture.External, Ref: srv.URL + "/slow.png"}, Provenance{ID: "slow"})
	<-requested

	if err := <-e.ApplyTextureAsync(ctx, left.ID, texture.Source{Kind: texture.External, Ref: fast}, Provenance{ID: "fast"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fastTex := left.Material.Map
	if fastTex == nil || left.MapID != "fast" {
		t.Fatal("expected the fast texture bound first")
	}

	close(release)
	select {
	case err := <-slowDone:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for slow apply")
	}

	if left.MapID != "slow" || left.Material.Map.Name != "slow.png" {
		t.Errorf("expected the last finished request bound, got %s (%s)", left.MapID, left.Material.Map.Name)
	}
	if fastTex.Releases() != 1 {
		t.Errorf("expected superseded texture released once, got %d", fastTex.Releases())
	}
	if !left.Material.Map.Resident() {
		t.Error("expected the bound texture resident")
	}
}
