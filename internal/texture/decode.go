package texture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels caps the dimensions accepted from an image header before any pixel
// memory is allocated.
const DefaultMaxPixels = 1 << 26

// checkSize rejects empty dimensions and images above maxPixels without overflowing.
func checkSize(w, h, maxPixels int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid image size %dx%d", w, h)
	}
	if maxPixels > 0 && w > maxPixels/h {
		return fmt.Errorf("image size %dx%d exceeds %d pixels", w, h, maxPixels)
	}
	return nil
}

// decode picks a decoder from the declared format tag.
func decode(data []byte, format string, maxPixels int) (image.Image, error) {
	switch strings.ToLower(format) {
	case FormatHDR:
		img, err := decodeHDR(bytes.NewReader(data), maxPixels)
		if err != nil {
			return nil, err
		}
		return img, nil
	case FormatTGA:
		img, err := decodeTGA(data, maxPixels)
		if err != nil {
			return nil, err
		}
		return img, nil
	}
	return decodeRaster(data, maxPixels)
}

// decodeRaster sniffs the content before handing it to the registered image decoders,
// so that an HTML error page or a truncated download fails with a useful message.
func decodeRaster(data []byte, maxPixels int) (image.Image, error) {
	if !filetype.IsImage(data) {
		kind, _ := filetype.Match(data)
		if kind == filetype.Unknown {
			return nil, fmt.Errorf("content is not a recognized image")
		}
		return nil, fmt.Errorf("content is %s, not an image", kind.MIME.Value)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image header: %w", err)
	}
	if err := checkSize(cfg.Width, cfg.Height, maxPixels); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	return img, nil
}

// DecodeFile decodes an image file from disk using the same decoders as Resolve.
func DecodeFile(path, format string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decode(data, format, DefaultMaxPixels)
}
