package scene

import (
	"fmt"
	"maps"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// MaterialClass is the shading model of a material.
type MaterialClass string

const (
	BasicMaterial    MaterialClass = "MeshBasicMaterial"
	StandardMaterial MaterialClass = "MeshStandardMaterial"
	PhongMaterial    MaterialClass = "MeshPhongMaterial"
	LambertMaterial  MaterialClass = "MeshLambertMaterial"
	PhysicalMaterial MaterialClass = "MeshPhysicalMaterial"
	ToonMaterial     MaterialClass = "MeshToonMaterial"
)

// MaterialClasses lists every supported class.
var MaterialClasses = []MaterialClass{
	BasicMaterial,
	StandardMaterial,
	PhongMaterial,
	LambertMaterial,
	PhysicalMaterial,
	ToonMaterial,
}

// ParseMaterialClass accepts a class name ("MeshPhongMaterial") or its short form ("phong").
func ParseMaterialClass(s string) (MaterialClass, error) {
	for _, c := range MaterialClasses {
		if string(c) == s || c.Short() == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown material class %q", s)
}

// Short returns the lowercase short name, e.g. "phong".
func (c MaterialClass) Short() string {
	switch c {
	case BasicMaterial:
		return "basic"
	case StandardMaterial:
		return "standard"
	case PhongMaterial:
		return "phong"
	case LambertMaterial:
		return "lambert"
	case PhysicalMaterial:
		return "physical"
	case ToonMaterial:
		return "toon"
	}
	return ""
}

// Side selects which faces are rendered.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Material describes the appearance of a mesh surface.
type Material struct {
	Name        string
	Class       MaterialClass
	Color       colorful.Color
	Opacity     float64
	Transparent bool
	Wireframe   bool
	DepthWrite  bool
	Side        Side

	// Map is the bound surface texture. Clones share the reference.
	Map *Texture

	UserData map[string]string
}

// NewMaterial returns a material of the given class with default attributes.
func NewMaterial(class MaterialClass) *Material {
	return &Material{
		Class:      class,
		Color:      colorful.Color{R: 1, G: 1, B: 1},
		Opacity:    1,
		DepthWrite: true,
		Side:       FrontSide,
		UserData:   map[string]string{},
	}
}

// Clone returns an independent copy. The texture is shared by reference.
func (m *Material) Clone() *Material {
	c := *m
	c.UserData = maps.Clone(m.UserData)
	if c.UserData == nil {
		c.UserData = map[string]string{}
	}
	return &c
}

// ColorHex returns the color as "#rrggbb".
func (m *Material) ColorHex() string {
	return m.Color.Clamped().Hex()
}

// ParseColor parses a "#rrggbb" or "#rgb" color string.
func ParseColor(s string) (colorful.Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parsing color %q: %w", s, err)
	}
	return c, nil
}

// MustColor is ParseColor for constants; it panics on malformed input.
func MustColor(s string) colorful.Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}
