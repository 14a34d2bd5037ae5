package texture

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/chewxy/math32"
)

// HDRImage holds linear RGB radiance values decoded from a Radiance (.hdr) file.
// At clamps to [0,1] so the image can be previewed like any other raster.
type HDRImage struct {
	Rect image.Rectangle
	Pix  []float32 // R, G, B per pixel, row-major, top-to-bottom
}

func (m *HDRImage) ColorModel() color.Model { return color.RGBA64Model }

func (m *HDRImage) Bounds() image.Rectangle { return m.Rect }

func (m *HDRImage) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(m.Rect)) {
		return color.RGBA64{}
	}
	i := ((y-m.Rect.Min.Y)*m.Rect.Dx() + (x - m.Rect.Min.X)) * 3
	return color.RGBA64{
		R: toUint16(m.Pix[i]),
		G: toUint16(m.Pix[i+1]),
		B: toUint16(m.Pix[i+2]),
		A: 0xffff,
	}
}

// Radiance returns the unclamped linear RGB value at (x, y).
func (m *HDRImage) Radiance(x, y int) (r, g, b float32) {
	i := ((y-m.Rect.Min.Y)*m.Rect.Dx() + (x - m.Rect.Min.X)) * 3
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

func toUint16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

// DecodeHDR decodes a Radiance RGBE image with flat or adaptive run-length encoded scanlines.
// Only the standard "-Y height +X width" orientation is supported. Images above
// DefaultMaxPixels are rejected.
func DecodeHDR(r io.Reader) (*HDRImage, error) {
	return decodeHDR(r, DefaultMaxPixels)
}

func decodeHDR(r io.Reader, maxPixels int) (*HDRImage, error) {
	br := bufio.NewReader(r)

	magic, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading HDR header: %w", err)
	}
	if !strings.HasPrefix(magic, "#?RADIANCE") && !strings.HasPrefix(magic, "#?RGBE") {
		return nil, fmt.Errorf("not a Radiance HDR file")
	}

	// Header lines until an empty line
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading HDR header: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "FORMAT=") && line != "FORMAT=32-bit_rle_rgbe" {
			return nil, fmt.Errorf("unsupported HDR format %q", strings.TrimPrefix(line, "FORMAT="))
		}
	}

	resLine, err := br.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("reading HDR resolution: %w", err)
	}
	var width, height int
	if _, err := fmt.Sscanf(strings.TrimSpace(resLine), "-Y %d +X %d", &height, &width); err != nil {
		return nil, fmt.Errorf("unsupported HDR resolution line %q", strings.TrimSpace(resLine))
	}
	if err := checkSize(width, height, maxPixels); err != nil {
		return nil, fmt.Errorf("HDR: %w", err)
	}

	img := &HDRImage{
		Rect: image.Rect(0, 0, width, height),
		Pix:  make([]float32, width*height*3),
	}
	scan := make([]byte, width*4)
	for y := 0; y < height; y++ {
		if err := readScanline(br, scan, width); err != nil {
			return nil, fmt.Errorf("HDR scanline %d: %w", y, err)
		}
		for x := 0; x < width; x++ {
			rgbe := scan[x*4 : x*4+4]
			o := (y*width + x) * 3
			if rgbe[3] == 0 {
				continue
			}
			f := math32.Ldexp(1, int(rgbe[3])-(128+8))
			img.Pix[o] = float32(rgbe[0]) * f
			img.Pix[o+1] = float32(rgbe[1]) * f
			img.Pix[o+2] = float32(rgbe[2]) * f
		}
	}
	return img, nil
}

// readScanline fills scan with width RGBE quadruplets.
func readScanline(br *bufio.Reader, scan []byte, width int) error {
	head := make([]byte, 4)
	if _, err := io.ReadFull(br, head); err != nil {
		return err
	}

	adaptive := width >= 8 && width < 0x8000 && head[0] == 2 && head[1] == 2 && head[2]&0x80 == 0
	if !adaptive {
		copy(scan, head)
		_, err := io.ReadFull(br, scan[4:])
		return err
	}
	if int(head[2])<<8|int(head[3]) != width {
		return fmt.Errorf("scanline width mismatch")
	}

	// Adaptive RLE stores each of the four channels separately
	for ch := 0; ch < 4; ch++ {
		for x := 0; x < width; {
			count, err := br.ReadByte()
			if err != nil {
				return err
			}
			if count > 128 {
				run := int(count) - 128
				if x+run > width {
					return fmt.Errorf("run overflows scanline")
				}
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				for i := 0; i < run; i++ {
					scan[(x+i)*4+ch] = v
				}
				x += run
				continue
			}
			n := int(count)
			if n == 0 || x+n > width {
				return fmt.Errorf("invalid literal run")
			}
			for i := 0; i < n; i++ {
				v, err := br.ReadByte()
				if err != nil {
					return err
				}
				scan[(x+i)*4+ch] = v
			}
			x += n
		}
	}
	return nil
}
