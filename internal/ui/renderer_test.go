package ui

import (
	"context"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/wavecollapse/internal/collapse"
)

func newSimScreen(t *testing.T) *Screen {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	s, err := Wrap(sim)
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	sim.SetSize(80, 24)
	t.Cleanup(s.Close)
	return s
}

func TestEventsClosesWhenReaderStops(t *testing.T) {
	sim := tcell.NewSimulationScreen("")
	s, err := Wrap(sim)
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	// Unbuffered, so the pump blocks on the first event nobody reads
	s.buffer = 0
	events := s.Events()
	for i := 0; i < 3; i++ {
		sim.InjectKey(tcell.KeyRune, 'x', tcell.ModNone)
	}

	s.Close()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("Events() channel not closed after Close()")
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s, err := Wrap(tcell.NewSimulationScreen(""))
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	s.Close()
	s.Close()
}

func TestEntropyShadeIsMonotonic(t *testing.T) {
	prev := EntropyShade(1, 9)
	for e := 2; e <= 9; e++ {
		cur := EntropyShade(e, 9)
		if cur.R < prev.R {
			t.Errorf("EntropyShade(%d, 9).R = %d, darker than entropy %d (%d)", e, cur.R, e-1, prev.R)
		}
		prev = cur
	}
	if EntropyShade(1, 9) == EntropyShade(9, 9) {
		t.Error("EntropyShade should differ between lowest and highest entropy")
	}
}

func TestEntropyShadeSingleTilePool(t *testing.T) {
	// Must not divide by zero
	c := EntropyShade(1, 1)
	if c.A != 255 {
		t.Errorf("EntropyShade(1, 1).A = %d, want 255", c.A)
	}
}

func TestRenderResolvedAndUnresolvedCells(t *testing.T) {
	screen := newSimScreen(t)
	r := NewRenderer(screen)

	tiles := []collapse.Tile{
		collapse.NewTile(0, [9]collapse.Color{
			collapse.Red, collapse.Red, collapse.Red,
			collapse.Red, collapse.Red, collapse.Red,
			collapse.Red, collapse.Red, collapse.Red,
		}),
	}
	e, err := collapse.New(tiles, 3, 2, collapse.WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := e.Collapse(context.Background(), 0, 0); err != nil {
		t.Fatalf("Collapse() error = %v", err)
	}

	r.Render(e.Snapshot(), nil, len(tiles), "status")

	_, style := screen.Content(0, 0)
	_, bg, _ := style.Decompose()
	if bg != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("resolved cell background = %v, want red", bg)
	}

	_, style = screen.Content(CellWidth*2, 1)
	_, bg, _ = style.Decompose()
	shade := EntropyShade(1, 1)
	if bg != tcell.NewRGBColor(int32(shade.R), int32(shade.G), int32(shade.B)) {
		t.Errorf("unresolved cell background = %v, want entropy shade", bg)
	}

	if ch, _ := screen.Content(0, 3); ch != 's' {
		t.Errorf("status line starts with %q, want 's'", ch)
	}
}

func backgroundAt(t *testing.T, screen *Screen, x, y int) tcell.Color {
	t.Helper()
	_, style := screen.Content(x, y)
	_, bg, _ := style.Decompose()
	return bg
}

func TestRenderDrawsSampleBesideOutput(t *testing.T) {
	screen := newSimScreen(t)
	r := NewRenderer(screen)

	sample, err := collapse.SampleFromRows([][]collapse.Color{
		{collapse.White, collapse.White, collapse.White, collapse.White},
		{collapse.White, collapse.Red, collapse.Black, collapse.White},
		{collapse.White, collapse.Black, collapse.Black, collapse.White},
		{collapse.White, collapse.White, collapse.White, collapse.White},
	})
	if err != nil {
		t.Fatalf("SampleFromRows() error = %v", err)
	}
	tiles, err := collapse.ExtractTiles(context.Background(), sample, collapse.ColumnMajor)
	if err != nil {
		t.Fatalf("ExtractTiles() error = %v", err)
	}
	e, err := collapse.New(tiles, 3, 2, collapse.WithSeed(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	r.Render(e.Snapshot(), sample, len(tiles), "status")

	left := SampleOffset(3)
	if left != 8 {
		t.Fatalf("SampleOffset(3) = %d, want 8", left)
	}
	for y := 0; y < sample.Height(); y++ {
		for x := 0; x < sample.Width(); x++ {
			c := sample.At(x, y)
			want := tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
			for dx := 0; dx < CellWidth; dx++ {
				if got := backgroundAt(t, screen, left+x*CellWidth+dx, y); got != want {
					t.Errorf("sample pixel (%d,%d) column %d background = %v, want %v", x, y, dx, got, want)
				}
			}
		}
	}

	// The sample is taller than the output, so the status line moves below it
	if ch, _ := screen.Content(0, sample.Height()+1); ch != 's' {
		t.Errorf("status line starts with %q, want 's'", ch)
	}
}
