// Package texture resolves texture sources into texture handles ready to bind to a material.
package texture

import (
	"errors"
	"fmt"

	"github.com/Faultbox/matedit/pkg/scene"
)

// Kind identifies where a texture comes from.
type Kind int

const (
	// Embedded textures ship with the loaded model.
	Embedded Kind = iota
	// SystemPreset textures come from the preset catalog.
	SystemPreset
	// External textures are supplied by the user.
	External
)

// String returns the provenance name used in logs and saved sessions.
func (k Kind) String() string {
	switch k {
	case Embedded:
		return "embedded"
	case SystemPreset:
		return "system"
	case External:
		return "external"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "embedded":
		return Embedded, nil
	case "system", "preset":
		return SystemPreset, nil
	case "external":
		return External, nil
	}
	return 0, fmt.Errorf("unknown texture source %q", s)
}

// FormatHDR selects the Radiance RGBE decoder.
const FormatHDR = "hdr"

// Source describes a texture to resolve.
type Source struct {
	Kind Kind

	// Ref is a catalog ID or URL for SystemPreset, a path or URL for External.
	Ref string

	// Format is the declared format tag; FormatHDR selects the radiance decoder.
	Format string

	// Material holds the existing map for Embedded sources.
	Material *scene.Material
}

// ErrResourceLoad matches every texture load or decode failure.
var ErrResourceLoad = errors.New("texture resource load failed")

// LoadError reports a failed resolution. Existing material state is never touched by a failed load.
type LoadError struct {
	Kind Kind
	Ref  string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s texture %q: %v", e.Kind, e.Ref, e.Err)
}

// Unwrap exposes both ErrResourceLoad and the cause to errors.Is / errors.As.
func (e *LoadError) Unwrap() []error {
	return []error{ErrResourceLoad, e.Err}
}
