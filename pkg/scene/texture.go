package scene

import (
	"image"
	"sync"

	"github.com/google/uuid"
)

// Wrapping is a texture coordinate wrap mode.
type Wrapping int

const (
	ClampToEdge Wrapping = iota
	Repeat
	MirroredRepeat
)

// Filter is a texture sampling filter.
type Filter int

const (
	Nearest Filter = iota
	Linear
	LinearMipmapLinear
)

// ColorSpace describes how texel values are interpreted.
type ColorSpace int

const (
	NoColorSpace ColorSpace = iota
	SRGB
	LinearSRGB
)

// Texture is a loaded image usable as a material's surface map.
//
// A texture is owned by the material that binds it. Bind marks it resident on the
// rendering device; Release frees the device resource once per residency.
type Texture struct {
	ID     string
	Name   string
	Format string // declared source format, e.g. "png" or "hdr"
	Image  image.Image

	WrapS      Wrapping
	WrapT      Wrapping
	FlipY      bool
	ColorSpace ColorSpace
	MinFilter  Filter
	MagFilter  Filter

	mu        sync.Mutex
	resident  bool
	releases  int
	onRelease func(*Texture)
}

// NewTexture creates a texture with default sampling parameters.
func NewTexture(name string, img image.Image) *Texture {
	return &Texture{
		ID:        uuid.NewString(),
		Name:      name,
		Image:     img,
		WrapS:     ClampToEdge,
		WrapT:     ClampToEdge,
		FlipY:     true,
		MinFilter: LinearMipmapLinear,
		MagFilter: Linear,
	}
}

// Normalize applies the sampling parameters used for every texture bound by the editor:
// mirrored repeat on both axes, no vertical flip, sRGB, linear filtering.
func (t *Texture) Normalize() {
	t.WrapS = MirroredRepeat
	t.WrapT = MirroredRepeat
	t.FlipY = false
	t.ColorSpace = SRGB
	t.MinFilter = Linear
	t.MagFilter = Linear
}

// OnRelease registers a hook called each time the device resource is freed.
func (t *Texture) OnRelease(fn func(*Texture)) {
	t.mu.Lock()
	t.onRelease = fn
	t.mu.Unlock()
}

// Bind marks the texture as resident on the rendering device.
func (t *Texture) Bind() {
	t.mu.Lock()
	t.resident = true
	t.mu.Unlock()
}

// Release frees the device resource. It is a no-op when the texture is not resident.
func (t *Texture) Release() {
	t.mu.Lock()
	if !t.resident {
		t.mu.Unlock()
		return
	}
	t.resident = false
	t.releases++
	hook := t.onRelease
	t.mu.Unlock()

	if hook != nil {
		hook(t)
	}
}

// Resident reports whether the texture currently holds a device resource.
func (t *Texture) Resident() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resident
}

// Releases returns how many times the device resource has been freed.
func (t *Texture) Releases() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.releases
}

// Size returns the image dimensions, or zero when no image is attached.
func (t *Texture) Size() (w, h int) {
	if t.Image == nil {
		return 0, 0
	}
	b := t.Image.Bounds()
	return b.Dx(), b.Dy()
}
