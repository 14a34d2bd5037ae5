package texture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/anthonynsimon/bild/transform"

	"github.com/Faultbox/matedit/pkg/scene"
)

// Preview renders the material's existing map into a fixed-size thumbnail texture.
// The result is for listing only and is never bound to a material.
func (s *Service) Preview(m *scene.Material) (*scene.Texture, error) {
	if m == nil || m.Map == nil || m.Map.Image == nil {
		return nil, &LoadError{Kind: Embedded, Ref: materialName(m), Err: fmt.Errorf("material has no texture image")}
	}
	n := s.opts.PreviewSize
	thumb := transform.Resize(m.Map.Image, n, n, transform.Linear)

	tex := scene.NewTexture(m.Map.Name, thumb)
	tex.Format = "png"
	return tex, nil
}

// PreviewDataURL encodes a preview texture as a PNG data URL for thumbnail lists.
func PreviewDataURL(tex *scene.Texture) (string, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, tex.Image); err != nil {
		return "", fmt.Errorf("encoding preview: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EmbeddedPreview is a thumbnail of a texture that shipped with the model.
type EmbeddedPreview struct {
	Material string
	Texture  string
	URL      string
}

// EmbeddedPreviews collects a thumbnail for every material that carries a map.
// Materials without a map are skipped.
func (s *Service) EmbeddedPreviews(materials []*scene.Material) ([]EmbeddedPreview, error) {
	var out []EmbeddedPreview
	for _, m := range materials {
		if m == nil || m.Map == nil || m.Map.Image == nil {
			continue
		}
		tex, err := s.Preview(m)
		if err != nil {
			return nil, err
		}
		url, err := PreviewDataURL(tex)
		if err != nil {
			return nil, err
		}
		out = append(out, EmbeddedPreview{Material: m.Name, Texture: m.Map.Name, URL: url})
	}
	return out, nil
}

func materialName(m *scene.Material) string {
	if m == nil {
		return ""
	}
	return m.Name
}
