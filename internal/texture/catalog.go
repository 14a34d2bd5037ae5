package texture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is one entry of the system texture catalog.
type Preset struct {
	ID     string `yaml:"id"`
	Name   string `yaml:"name"`
	URL    string `yaml:"url"`
	Format string `yaml:"format,omitempty"`
}

// Catalog lists the system preset textures offered to the user.
type Catalog struct {
	Presets []Preset `yaml:"presets"`

	byID map[string]int
}

// NewCatalog builds a catalog from presets. Later duplicates of an ID win.
func NewCatalog(presets ...Preset) *Catalog {
	c := &Catalog{Presets: presets}
	c.index()
	return c
}

// LoadCatalog reads a YAML catalog. Relative preset URLs resolve against the catalog's directory.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i, p := range c.Presets {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog %s: preset %d has no id", path, i)
		}
		if !strings.Contains(p.URL, "://") && !filepath.IsAbs(p.URL) {
			c.Presets[i].URL = filepath.Join(base, p.URL)
		}
	}
	c.index()
	return &c, nil
}

func (c *Catalog) index() {
	c.byID = make(map[string]int, len(c.Presets))
	for i, p := range c.Presets {
		c.byID[p.ID] = i
	}
}

// Lookup returns the preset with the given ID.
func (c *Catalog) Lookup(id string) (Preset, bool) {
	if c == nil {
		return Preset{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Preset{}, false
	}
	return c.Presets[i], true
}

// Len returns the number of presets.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Presets)
}
