package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/samdwyer/wavecollapse/internal/collapse"
)

// CellWidth is the number of terminal columns per output cell; two columns
// make cells roughly square.
const CellWidth = 2

var (
	lowEntropy  = colorful.Color{R: 0.08, G: 0.08, B: 0.10}
	highEntropy = colorful.Color{R: 0.70, G: 0.70, B: 0.74}
)

// Renderer draws engine snapshots to the screen.
type Renderer struct {
	screen *Screen
}

// NewRenderer creates a new renderer for the given screen.
func NewRenderer(screen *Screen) *Renderer {
	return &Renderer{screen: screen}
}

// Render draws the snapshot grid with the sample to its right, followed by
// a status line. maxEntropy is the size of the tile pool. sample may be nil.
func (r *Renderer) Render(snap collapse.Snapshot, sample *collapse.Sample, maxEntropy int, status string) {
	r.screen.Clear()

	out := snap.Output
	for y := 0; y < out.Height; y++ {
		for x := 0; x < out.Width; x++ {
			i := x + y*out.Width
			c := out.AtIndex(i)
			if !snap.Resolved[i] {
				c = EntropyShade(snap.Entropy[i], maxEntropy)
			}
			r.drawCell(x*CellWidth, y, c)
		}
	}

	rows := out.Height
	if sample != nil {
		left := SampleOffset(out.Width)
		for y := 0; y < sample.Height(); y++ {
			for x := 0; x < sample.Width(); x++ {
				r.drawCell(left+x*CellWidth, y, sample.At(x, y))
			}
		}
		rows = max(rows, sample.Height())
	}

	r.RenderMessage(status, rows+1)
	r.screen.Show()
}

// SampleOffset returns the screen column where the sample starts for an
// output that is outputWidth cells wide. One empty cell separates them.
func SampleOffset(outputWidth int) int {
	return (outputWidth + 1) * CellWidth
}

func (r *Renderer) drawCell(col, row int, c collapse.Color) {
	style := tcell.StyleDefault.Background(toTCell(c))
	for dx := 0; dx < CellWidth; dx++ {
		r.screen.SetContent(col+dx, row, ' ', style)
	}
}

// RenderMessage displays a message on row y.
func (r *Renderer) RenderMessage(msg string, y int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, ch := range []rune(msg) {
		r.screen.SetContent(i, y, ch, style)
	}
}

// EntropyShade maps an unresolved cell's candidate count to a grey: more
// candidates draw brighter.
func EntropyShade(entropy, maxEntropy int) collapse.Color {
	t := 1.0
	if maxEntropy > 1 {
		t = float64(entropy-1) / float64(maxEntropy-1)
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	cr, cg, cb := lowEntropy.BlendLab(highEntropy, t).Clamped().RGB255()
	return collapse.Color{R: cr, G: cg, B: cb, A: 255}
}

func toTCell(c collapse.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
