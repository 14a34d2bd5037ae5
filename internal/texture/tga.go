package texture

import (
	"fmt"
	"image"
	"image/color"
)

// FormatTGA selects the Truevision TGA decoder. TGA has no signature, so it is
// only used when the source declares it.
const FormatTGA = "tga"

const (
	tgaTrueColor    = 2
	tgaTrueColorRLE = 10
)

// DecodeTGA decodes uncompressed or RLE true-color TGA data with 24 or 32 bits per pixel.
// Images above DefaultMaxPixels are rejected.
func DecodeTGA(data []byte) (*image.NRGBA, error) {
	return decodeTGA(data, DefaultMaxPixels)
}

func decodeTGA(data []byte, maxPixels int) (*image.NRGBA, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("tga: header truncated")
	}
	idLen := int(data[0])
	if data[1] != 0 {
		return nil, fmt.Errorf("tga: color-mapped images not supported")
	}
	kind := data[2]
	if kind != tgaTrueColor && kind != tgaTrueColorRLE {
		return nil, fmt.Errorf("tga: unsupported image type %d", kind)
	}
	w := int(data[12]) | int(data[13])<<8
	h := int(data[14]) | int(data[15])<<8
	depth := int(data[16]) / 8
	if depth != 3 && depth != 4 {
		return nil, fmt.Errorf("tga: unsupported depth %d bits", data[16])
	}
	topDown := data[17]&0x20 != 0
	if err := checkSize(w, h, maxPixels); err != nil {
		return nil, fmt.Errorf("tga: %w", err)
	}

	src := data[min(18+idLen, len(data)):]
	total := w * h
	if kind == tgaTrueColor && len(src) < total*depth {
		return nil, fmt.Errorf("tga: pixel data truncated")
	}
	// An RLE packet expands to at most 128 pixels
	if kind == tgaTrueColorRLE && len(src)*128 < total {
		return nil, fmt.Errorf("tga: rle data truncated")
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	// put writes the i-th pixel in file order.
	put := func(i int, px []byte) {
		x, y := i%w, i/w
		if !topDown {
			y = h - 1 - y
		}
		a := uint8(255)
		if depth == 4 {
			a = px[3]
		}
		img.SetNRGBA(x, y, color.NRGBA{R: px[2], G: px[1], B: px[0], A: a})
	}

	if kind == tgaTrueColor {
		for i := 0; i < total; i++ {
			put(i, src[i*depth:])
		}
		return img, nil
	}

	for i, off := 0, 0; i < total; {
		if off >= len(src) {
			return nil, fmt.Errorf("tga: rle data truncated at pixel %d", i)
		}
		hdr := src[off]
		off++
		n := int(hdr&0x7f) + 1
		repeat := hdr&0x80 != 0

		need := depth
		if !repeat {
			need = n * depth
		}
		if off+need > len(src) {
			return nil, fmt.Errorf("tga: rle data truncated at pixel %d", i)
		}
		for j := 0; j < n && i < total; j++ {
			if repeat {
				put(i, src[off:])
			} else {
				put(i, src[off+j*depth:])
			}
			i++
		}
		off += need
	}
	return img, nil
}
