package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"go.uber.org/zap"

	"github.com/Faultbox/matedit/pkg/scene"
)

// Persistence is an opaque key-value store for plain session data.
type Persistence interface {
	Save(ctx context.Context, key string, v any) error
	Load(ctx context.Context, key string, v any) (bool, error)
	Remove(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// EditRecord is the persisted state of one mesh, keyed by its load-time map identifier.
type EditRecord struct {
	MapID         string       `yaml:"map_id"`
	Name          string       `yaml:"name"`
	Visible       bool         `yaml:"visible"`
	Class         string       `yaml:"class"`
	Material      MaterialView `yaml:"material"`
	TextureSource string       `yaml:"texture_source,omitempty"`
}

// Session is a saved set of edits for one model.
type Session struct {
	Model   string       `yaml:"model"`
	SavedAt time.Time    `yaml:"saved_at"`
	Records []EditRecord `yaml:"records"`
}

// EditRecords returns plain records of the live state of every mesh. Records hold no
// references into the scene graph.
func (e *Editor) EditRecords() []EditRecord {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries := e.derive()
	var records []EditRecord
	if err := copier.Copy(&records, &entries); err != nil {
		e.log.Warn("copying edit records", zap.Error(err))
		return nil
	}
	// Records are keyed by the load-time identifier, not the texture tag.
	for i := range records {
		records[i].MapID = e.registry.MapID(entries[i].MeshID)
	}
	return records
}

// ApplyRecords re-applies saved records to the meshes with matching load-time map
// identifiers. It returns the identifiers that matched no mesh.
func (e *Editor) ApplyRecords(records []EditRecord) (missing []string) {
	e.mu.Lock()
	byMapID := make(map[string]*scene.Node)
	for _, n := range e.meshes() {
		byMapID[e.registry.MapID(n.ID)] = n
	}

	applied := 0
	for _, r := range records {
		n, ok := byMapID[r.MapID]
		if !ok {
			missing = append(missing, r.MapID)
			continue
		}
		if err := e.applyRecord(n, r); err != nil {
			e.log.Warn("skipping edit record", zap.String("map_id", r.MapID), zap.Error(err))
			missing = append(missing, r.MapID)
			continue
		}
		applied++
	}
	e.mu.Unlock()

	e.log.Info("edit records applied", zap.Int("applied", applied), zap.Int("missing", len(missing)))
	e.redraw()
	return missing
}

func (e *Editor) applyRecord(n *scene.Node, r EditRecord) error {
	color, err := scene.ParseColor(r.Material.Color)
	if err != nil {
		return err
	}
	if r.Class != "" && r.Class != string(n.Material.Class) {
		class, err := scene.ParseMaterialClass(r.Class)
		if err != nil {
			return err
		}
		e.changeClass(n.ID, &class)
	}
	e.setAppearance(n.ID, Appearance{
		Color:      color,
		Wireframe:  r.Material.Wireframe,
		DepthWrite: r.Material.DepthWrite,
		Opacity:    r.Material.Opacity,
	})
	n.Visible = r.Visible
	return nil
}

// SaveSession stores the current edit records under key.
func (e *Editor) SaveSession(ctx context.Context, p Persistence, key string) error {
	model := e.Model()
	if model == nil {
		return fmt.Errorf("no model loaded")
	}
	s := Session{
		Model:   model.Name,
		SavedAt: time.Now().UTC(),
		Records: e.EditRecords(),
	}
	if err := p.Save(ctx, key, &s); err != nil {
		return fmt.Errorf("saving session %s: %w", key, err)
	}
	e.log.Info("session saved", zap.String("key", key), zap.Int("records", len(s.Records)))
	return nil
}

// LoadSession loads the session stored under key and applies it. It reports false when
// no session exists.
func (e *Editor) LoadSession(ctx context.Context, p Persistence, key string) (bool, []string, error) {
	var s Session
	found, err := p.Load(ctx, key, &s)
	if err != nil {
		return false, nil, fmt.Errorf("loading session %s: %w", key, err)
	}
	if !found {
		return false, nil, nil
	}
	if model := e.Model(); model != nil && s.Model != model.Name {
		e.log.Warn("session belongs to another model",
			zap.String("session_model", s.Model),
			zap.String("model", model.Name))
	}
	return true, e.ApplyRecords(s.Records), nil
}
