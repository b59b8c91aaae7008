package collapse

import "image"

// Output holds one resolved colour per cell. Cells that have not been
// resolved yet hold Placeholder.
type Output struct {
	Width  int
	Height int
	Colors []Color
}

// At returns the colour of cell (x, y).
func (o *Output) At(x, y int) Color {
	return o.Colors[x+y*o.Width]
}

// AtIndex returns the colour of the cell with linear index i (x + y*Width).
func (o *Output) AtIndex(i int) Color {
	return o.Colors[i]
}

// Image converts the output to an RGBA image, one pixel per cell.
func (o *Output) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	for y := 0; y < o.Height; y++ {
		for x := 0; x < o.Width; x++ {
			img.Set(x, y, o.At(x, y))
		}
	}
	return img
}
