package collapse

import (
	"fmt"
	"image"
)

// Sample is an immutable grid of colours the output is meant to resemble.
type Sample struct {
	width  int
	height int
	pix    []Color
}

// NewSample creates a sample from row-major pixels. The slice is copied.
func NewSample(width, height int, pix []Color) (*Sample, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: sample size %dx%d", ErrInvalidConfiguration, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: sample has %d pixels, want %d", ErrInvalidConfiguration, len(pix), width*height)
	}

	s := &Sample{width: width, height: height, pix: make([]Color, len(pix))}
	copy(s.pix, pix)
	return s, nil
}

// SampleFromRows creates a sample from rows of colours. All rows must have
// the same length.
func SampleFromRows(rows [][]Color) (*Sample, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sample has no rows", ErrInvalidConfiguration)
	}

	width := len(rows[0])
	pix := make([]Color, 0, width*len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: sample row %d has %d pixels, want %d", ErrInvalidConfiguration, y, len(row), width)
		}
		pix = append(pix, row...)
	}
	return NewSample(width, len(rows), pix)
}

// SampleFromImage copies the pixels of img into a sample.
func SampleFromImage(img image.Image) (*Sample, error) {
	b := img.Bounds()
	pix := make([]Color, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pix = append(pix, FromColor(img.At(x, y)))
		}
	}
	return NewSample(b.Dx(), b.Dy(), pix)
}

// Width returns the sample width in pixels.
func (s *Sample) Width() int { return s.width }

// Height returns the sample height in pixels.
func (s *Sample) Height() int { return s.height }

// At returns the colour at (x, y). Out of range coordinates panic.
func (s *Sample) At(x, y int) Color {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		panic(fmt.Sprintf("collapse: sample coordinate (%d,%d) out of range", x, y))
	}
	return s.pix[x+y*s.width]
}

// Palette returns the distinct colours of the sample in first-seen order.
func (s *Sample) Palette() []Color {
	seen := make(map[Color]bool)
	var palette []Color
	for _, c := range s.pix {
		if !seen[c] {
			seen[c] = true
			palette = append(palette, c)
		}
	}
	return palette
}
