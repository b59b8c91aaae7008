// Package collapse implements a simplified wave function collapse over
// overlapping 3x3 tiles extracted from a sample image.
package collapse

import (
	"fmt"
	"image/color"
)

// Color is an 8-bit RGBA colour. Equality is exact.
type Color struct {
	R, G, B, A uint8
}

// Common colours.
var (
	White = Color{255, 255, 255, 255}
	Black = Color{0, 0, 0, 255}
	Red   = Color{255, 0, 0, 255}

	// Placeholder marks output cells that have not been resolved yet.
	Placeholder = Color{255, 0, 255, 255}
)

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// String returns the colour as #rrggbbaa.
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// FromColor converts any color.Color to a Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B, A: n.A}
}
