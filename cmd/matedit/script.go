package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/matedit/internal/editor"
	"github.com/Faultbox/matedit/internal/logger"
	"github.com/Faultbox/matedit/internal/texture"
	"github.com/Faultbox/matedit/pkg/scene"
)

// Script is a list of editing steps applied in order. Each step sets exactly one action.
//
//	steps:
//	  - select: body
//	  - appearance: {color: "#ff0000", opacity: 0.5, wireframe: true, depth_write: false}
//	  - texture: {mesh: visor, kind: external, ref: glass.hdr, format: hdr}
//	  - class: {mesh: body, class: phong}
//	  - reset: true
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step is one editing action. Mesh fields name a mesh; empty means the current selection.
type Step struct {
	Select     string          `yaml:"select,omitempty"`
	Pick       *[2]float32     `yaml:"pick,omitempty"`
	Appearance *AppearanceStep `yaml:"appearance,omitempty"`
	Visibility *VisibilityStep `yaml:"visibility,omitempty"`
	Texture    *TextureStep    `yaml:"texture,omitempty"`
	Class      *ClassStep      `yaml:"class,omitempty"`
	ClassAll   *string         `yaml:"class_all,omitempty"`
	Embedded   *EmbeddedStep   `yaml:"embedded,omitempty"`
	Reset      bool            `yaml:"reset,omitempty"`
}

// AppearanceStep sets color, wireframe, depth write and opacity together.
// Omitted depth_write and opacity keep the mesh's current values.
type AppearanceStep struct {
	Mesh       string   `yaml:"mesh"`
	Color      string   `yaml:"color"`
	Wireframe  bool     `yaml:"wireframe"`
	DepthWrite *bool    `yaml:"depth_write"`
	Opacity    *float64 `yaml:"opacity"`
}

// VisibilityStep shows or hides a mesh.
type VisibilityStep struct {
	Mesh    string `yaml:"mesh"`
	Visible bool   `yaml:"visible"`
}

// TextureStep resolves a texture source and binds it to a mesh.
type TextureStep struct {
	Mesh   string `yaml:"mesh"`
	Kind   string `yaml:"kind"`
	Ref    string `yaml:"ref"`
	Format string `yaml:"format"`
}

// ClassStep switches a mesh to another material class.
type ClassStep struct {
	Mesh  string `yaml:"mesh"`
	Class string `yaml:"class"` // empty restores the loaded material
}

// EmbeddedStep restores a mesh's as-loaded texture.
type EmbeddedStep struct {
	Mesh string `yaml:"mesh"`
}

// LoadScript reads a script file.
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeScript(f)
}

// DecodeScript parses a script and checks that every step has exactly one action.
func DecodeScript(r io.Reader) (*Script, error) {
	var s Script
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	for i, st := range s.Steps {
		if n := st.actions(); n != 1 {
			return nil, fmt.Errorf("step %d: expected one action, got %d", i+1, n)
		}
	}
	return &s, nil
}

func (st Step) actions() int {
	n := 0
	for _, set := range []bool{
		st.Select != "",
		st.Pick != nil,
		st.Appearance != nil,
		st.Visibility != nil,
		st.Texture != nil,
		st.Class != nil,
		st.ClassAll != nil,
		st.Embedded != nil,
		st.Reset,
	} {
		if set {
			n++
		}
	}
	return n
}

// Run applies the script to the session. It stops at the first failing step.
func (sc *Script) Run(ctx context.Context, s *session) error {
	log := logger.Named("script")
	for i, st := range sc.Steps {
		if err := st.run(ctx, s); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Debug("step applied", zap.Int("step", i+1))
	}
	return nil
}

func (st Step) run(ctx context.Context, s *session) error {
	ed := s.editor

	switch {
	case st.Select != "":
		if ed.SelectByName(st.Select) == nil {
			return fmt.Errorf("no mesh named %q", st.Select)
		}
		return nil

	case st.Pick != nil:
		p := editor.Pointer{X: st.Pick[0], Y: st.Pick[1]}
		if n := ed.Pick(p, s.viewport, s.camera); n != nil {
			fmt.Fprintf(s.out, "picked %s\n", n.Name)
		} else {
			fmt.Fprintln(s.out, "picked nothing")
		}
		return nil

	case st.Appearance != nil:
		a := st.Appearance
		id, err := meshID(ed, a.Mesh)
		if err != nil {
			return err
		}
		color, err := scene.ParseColor(a.Color)
		if err != nil {
			return err
		}
		current, ok := currentView(ed, id)
		if !ok {
			return fmt.Errorf("mesh %s is gone", id)
		}
		depthWrite, opacity := current.DepthWrite, current.Opacity
		if a.DepthWrite != nil {
			depthWrite = *a.DepthWrite
		}
		if a.Opacity != nil {
			opacity = *a.Opacity
		}
		ed.SetAppearance(id, editor.Appearance{
			Color:      color,
			Wireframe:  a.Wireframe,
			DepthWrite: depthWrite,
			Opacity:    opacity,
		})
		return nil

	case st.Visibility != nil:
		id, err := meshID(ed, st.Visibility.Mesh)
		if err != nil {
			return err
		}
		ed.SetVisibility(id, st.Visibility.Visible)
		return nil

	case st.Texture != nil:
		t := st.Texture
		id, err := meshID(ed, t.Mesh)
		if err != nil {
			return err
		}
		kind, err := texture.ParseKind(t.Kind)
		if err != nil {
			return err
		}
		src := texture.Source{Kind: kind, Ref: t.Ref, Format: t.Format}
		return ed.ApplyTexture(ctx, id, src, editor.Provenance{ID: t.Ref, Source: kind.String()})

	case st.Class != nil:
		id, err := meshID(ed, st.Class.Mesh)
		if err != nil {
			return err
		}
		class, err := optionalClass(st.Class.Class)
		if err != nil {
			return err
		}
		ed.ChangeMaterialClass(id, class)
		return nil

	case st.ClassAll != nil:
		class, err := optionalClass(*st.ClassAll)
		if err != nil {
			return err
		}
		ed.ChangeMaterialClassAll(class)
		return nil

	case st.Embedded != nil:
		id, err := meshID(ed, st.Embedded.Mesh)
		if err != nil {
			return err
		}
		ed.SetEmbeddedTexture(id, editor.EmbeddedTexture{
			MapID:      ed.Registry().MapID(id),
			SourceName: texture.Embedded.String(),
		})
		return nil

	case st.Reset:
		ed.ResetAll()
		return nil
	}
	return fmt.Errorf("empty step")
}

// meshID resolves a mesh name, or the current selection when name is empty.
func meshID(ed *editor.Editor, name string) (string, error) {
	if name == "" {
		if id := ed.Selection().Current(); id != "" {
			return id, nil
		}
		return "", fmt.Errorf("no mesh named and nothing selected")
	}
	for _, e := range ed.ListCurrentMaterials() {
		if e.Name == name {
			return e.MeshID, nil
		}
	}
	return "", fmt.Errorf("no mesh named %q", name)
}

// currentView returns the live material values of a mesh.
func currentView(ed *editor.Editor, id string) (editor.MaterialView, bool) {
	for _, e := range ed.ListCurrentMaterials() {
		if e.MeshID == id {
			return e.Material, true
		}
	}
	return editor.MaterialView{}, false
}

func optionalClass(s string) (*scene.MaterialClass, error) {
	if s == "" {
		return nil, nil
	}
	c, err := scene.ParseMaterialClass(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
