// Package modelfile decodes YAML model descriptions into a scene graph.
//
// A model file lists textures, materials and a node tree:
//
//	textures:
//	  - {name: body_diffuse, file: body.png}
//	materials:
//	  - {name: metal, class: standard, color: "#aaaaaa", map: body_diffuse}
//	nodes:
//	  - name: body
//	    geometry: {box: [1, 2, 1]}
//	    material: metal
//
// Nodes referencing the same material share one instance, as in most interchange formats.
package modelfile

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/matedit/pkg/scene"
)

// File is the YAML document.
type File struct {
	Name      string        `yaml:"name"`
	Textures  []TextureDef  `yaml:"textures,omitempty"`
	Materials []MaterialDef `yaml:"materials,omitempty"`
	Nodes     []NodeDef     `yaml:"nodes"`
}

// TextureDef references an image file relative to the model file.
type TextureDef struct {
	Name   string `yaml:"name"`
	File   string `yaml:"file"`
	Format string `yaml:"format,omitempty"`
}

// MaterialDef describes a material. Unset fields take the class defaults.
type MaterialDef struct {
	Name        string   `yaml:"name"`
	Class       string   `yaml:"class,omitempty"`
	Color       string   `yaml:"color,omitempty"`
	Opacity     *float64 `yaml:"opacity,omitempty"`
	Transparent bool     `yaml:"transparent,omitempty"`
	Wireframe   bool     `yaml:"wireframe,omitempty"`
	DepthWrite  *bool    `yaml:"depth_write,omitempty"`
	Side        string   `yaml:"side,omitempty"`
	Map         string   `yaml:"map,omitempty"`
}

// NodeDef describes a group or mesh node.
type NodeDef struct {
	Name      string       `yaml:"name"`
	Type      string       `yaml:"type,omitempty"` // "mesh" or "group"; inferred from geometry
	Position  *[3]float32  `yaml:"position,omitempty"`
	Rotation  *[3]float32  `yaml:"rotation,omitempty"` // Euler XYZ, degrees
	Scale     *[3]float32  `yaml:"scale,omitempty"`
	Visible   *bool        `yaml:"visible,omitempty"`
	Geometry  *GeometryDef `yaml:"geometry,omitempty"`
	Material  string       `yaml:"material,omitempty"`
	Materials []string     `yaml:"materials,omitempty"` // multi-material meshes keep the first
	Children  []NodeDef    `yaml:"children,omitempty"`
}

// GeometryDef selects one of the supported shapes.
type GeometryDef struct {
	Box       *[3]float32  `yaml:"box,omitempty"`
	Plane     *[2]float32  `yaml:"plane,omitempty"`
	Positions [][3]float32 `yaml:"positions,omitempty"`
	Indices   []uint32     `yaml:"indices,omitempty"`
}

// ImageDecoder loads a texture image from disk.
type ImageDecoder func(path, format string) (image.Image, error)

// Options controls decoding.
type Options struct {
	// BaseDir resolves relative texture paths.
	BaseDir string
	// DecodeImage overrides the default PNG/JPEG decoder.
	DecodeImage ImageDecoder
}

// Load reads and decodes a model file. Texture paths resolve against the file's directory.
func Load(path string, opts Options) (*scene.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if opts.BaseDir == "" {
		opts.BaseDir = filepath.Dir(path)
	}
	root, err := Decode(f, opts)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", path, err)
	}
	return root, nil
}

// Decode parses a model document into a group node holding the model's top-level nodes.
func Decode(r io.Reader, opts Options) (*scene.Node, error) {
	var doc File
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	if opts.DecodeImage == nil {
		opts.DecodeImage = decodeImageFile
	}
	b := &builder{
		opts:      opts,
		textures:  make(map[string]*scene.Texture),
		materials: make(map[string]*scene.Material),
	}
	return b.build(&doc)
}

type builder struct {
	opts      Options
	textures  map[string]*scene.Texture
	materials map[string]*scene.Material
}

func (b *builder) build(doc *File) (*scene.Node, error) {
	for _, td := range doc.Textures {
		if td.Name == "" {
			return nil, fmt.Errorf("texture without name")
		}
		p := td.File
		if !filepath.IsAbs(p) {
			p = filepath.Join(b.opts.BaseDir, p)
		}
		img, err := b.opts.DecodeImage(p, td.Format)
		if err != nil {
			return nil, fmt.Errorf("texture %s: %w", td.Name, err)
		}
		tex := scene.NewTexture(td.Name, img)
		tex.Format = td.Format
		tex.Bind()
		b.textures[td.Name] = tex
	}

	for _, md := range doc.Materials {
		m, err := b.material(md)
		if err != nil {
			return nil, fmt.Errorf("material %s: %w", md.Name, err)
		}
		b.materials[md.Name] = m
	}

	name := doc.Name
	if name == "" {
		name = "model"
	}
	root := scene.NewGroup(name)
	for _, nd := range doc.Nodes {
		n, err := b.node(nd)
		if err != nil {
			return nil, err
		}
		root.Add(n)
	}
	return root, nil
}

func (b *builder) material(md MaterialDef) (*scene.Material, error) {
	class := scene.StandardMaterial
	if md.Class != "" {
		c, err := scene.ParseMaterialClass(md.Class)
		if err != nil {
			return nil, err
		}
		class = c
	}

	m := scene.NewMaterial(class)
	m.Name = md.Name
	if md.Color != "" {
		c, err := scene.ParseColor(md.Color)
		if err != nil {
			return nil, err
		}
		m.Color = c
	}
	if md.Opacity != nil {
		m.Opacity = *md.Opacity
	}
	if md.DepthWrite != nil {
		m.DepthWrite = *md.DepthWrite
	}
	m.Transparent = md.Transparent
	m.Wireframe = md.Wireframe

	switch md.Side {
	case "", "front":
		m.Side = scene.FrontSide
	case "back":
		m.Side = scene.BackSide
	case "double":
		m.Side = scene.DoubleSide
	default:
		return nil, fmt.Errorf("unknown side %q", md.Side)
	}

	if md.Map != "" {
		tex, ok := b.textures[md.Map]
		if !ok {
			return nil, fmt.Errorf("unknown texture %q", md.Map)
		}
		m.Map = tex
	}
	return m, nil
}

func (b *builder) node(nd NodeDef) (*scene.Node, error) {
	var n *scene.Node
	isMesh := nd.Type == "mesh" || (nd.Type == "" && nd.Geometry != nil)

	switch {
	case nd.Type != "" && nd.Type != "mesh" && nd.Type != "group":
		return nil, fmt.Errorf("node %s: unknown type %q", nd.Name, nd.Type)

	case isMesh:
		geo, err := geometry(nd.Geometry)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", nd.Name, err)
		}
		matName := nd.Material
		if matName == "" && len(nd.Materials) > 0 {
			matName = nd.Materials[0]
		}
		var mat *scene.Material
		if matName != "" {
			m, ok := b.materials[matName]
			if !ok {
				return nil, fmt.Errorf("node %s: unknown material %q", nd.Name, matName)
			}
			mat = m
		} else {
			mat = scene.NewMaterial(scene.StandardMaterial)
		}
		n = scene.NewMesh(nd.Name, geo, mat)

	default:
		n = scene.NewGroup(nd.Name)
	}

	if nd.Position != nil {
		n.Position = mgl32.Vec3(*nd.Position)
	}
	if nd.Rotation != nil {
		r := *nd.Rotation
		n.Rotation = mgl32.AnglesToQuat(mgl32.DegToRad(r[0]), mgl32.DegToRad(r[1]), mgl32.DegToRad(r[2]), mgl32.XYZ)
	}
	if nd.Scale != nil {
		n.Scale = mgl32.Vec3(*nd.Scale)
	}
	if nd.Visible != nil {
		n.Visible = *nd.Visible
	}

	for _, cd := range nd.Children {
		c, err := b.node(cd)
		if err != nil {
			return nil, err
		}
		n.Add(c)
	}
	return n, nil
}

func geometry(gd *GeometryDef) (*scene.Geometry, error) {
	switch {
	case gd == nil:
		return nil, fmt.Errorf("mesh without geometry")
	case gd.Box != nil:
		return scene.BoxGeometry(gd.Box[0], gd.Box[1], gd.Box[2]), nil
	case gd.Plane != nil:
		return scene.PlaneGeometry(gd.Plane[0], gd.Plane[1]), nil
	case len(gd.Positions) > 0:
		geo := &scene.Geometry{Indices: gd.Indices}
		for _, p := range gd.Positions {
			geo.Positions = append(geo.Positions, mgl32.Vec3(p))
		}
		if len(geo.Indices) > 0 {
			if len(geo.Indices)%3 != 0 {
				return nil, fmt.Errorf("index count %d is not a multiple of 3", len(geo.Indices))
			}
			for _, i := range geo.Indices {
				if int(i) >= len(geo.Positions) {
					return nil, fmt.Errorf("index %d out of range", i)
				}
			}
		} else if len(geo.Positions)%3 != 0 {
			return nil, fmt.Errorf("position count %d is not a multiple of 3", len(geo.Positions))
		}
		return geo, nil
	}
	return nil, fmt.Errorf("empty geometry")
}

func decodeImageFile(path, _ string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}
