package collapse

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/wavecollapse/internal/telemetry"
)

// TileSize is the width and height of every tile.
const TileSize = 3

// Direction is an offset to one of the eight neighbours of a cell.
type Direction struct {
	DX, DY int
}

// The eight neighbour directions. Y grows downwards.
var (
	North     = Direction{0, -1}
	NorthEast = Direction{1, -1}
	East      = Direction{1, 0}
	SouthEast = Direction{1, 1}
	South     = Direction{0, 1}
	SouthWest = Direction{-1, 1}
	West      = Direction{-1, 0}
	NorthWest = Direction{-1, -1}
)

// Directions lists all eight neighbour directions.
var Directions = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// Opposite returns the direction pointing the other way.
func (d Direction) Opposite() Direction {
	return Direction{-d.DX, -d.DY}
}

// valid reports whether d is one of the eight neighbour offsets.
func (d Direction) valid() bool {
	return d.DX >= -1 && d.DX <= 1 && d.DY >= -1 && d.DY <= 1 && (d.DX != 0 || d.DY != 0)
}

// Tile is an immutable 3x3 patch of sample colours. ID is the tile's index in
// the pool it was extracted into; two tiles with identical colours are still
// different candidates.
type Tile struct {
	ID     int
	colors [TileSize * TileSize]Color
}

// NewTile creates a tile from row-major colours: colors[x + y*TileSize].
func NewTile(id int, colors [TileSize * TileSize]Color) Tile {
	return Tile{ID: id, colors: colors}
}

// ColorAt returns the colour at local (x, y). (1, 1) is the centre.
func (t Tile) ColorAt(x, y int) Color {
	return t.colors[x+y*TileSize]
}

// Center returns the centre colour, the one written to the output.
func (t Tile) Center() Color {
	return t.ColorAt(1, 1)
}

// EdgeColor returns the border pixel lying in direction d from the centre.
func (t Tile) EdgeColor(d Direction) Color {
	if !d.valid() {
		panic(fmt.Sprintf("collapse: invalid direction %+v", d))
	}
	return t.ColorAt(1+d.DX, 1+d.DY)
}

// HasValidOverlap reports whether the tile may sit at offset (dx, dy) from a
// resolved cell whose output colour is neighbor. Only the single border pixel
// facing the resolved cell is compared. (dx, dy) must be one of Directions.
func (t Tile) HasValidOverlap(neighbor Color, dx, dy int) bool {
	if d := (Direction{dx, dy}); !d.valid() {
		panic(fmt.Sprintf("collapse: invalid direction %+v", d))
	}
	return t.ColorAt(1-dx, 1-dy) == neighbor
}

// ScanOrder controls the order tiles are extracted in, and so their IDs.
type ScanOrder int

const (
	// ColumnMajor walks anchors column by column.
	ColumnMajor ScanOrder = iota
	// RowMajor walks anchors row by row.
	RowMajor
)

// String returns the config name of the scan order.
func (o ScanOrder) String() string {
	switch o {
	case ColumnMajor:
		return "column"
	case RowMajor:
		return "row"
	default:
		return "unknown"
	}
}

// ParseScanOrder parses "column" or "row".
func ParseScanOrder(s string) (ScanOrder, error) {
	switch s {
	case "column", "":
		return ColumnMajor, nil
	case "row":
		return RowMajor, nil
	default:
		return ColumnMajor, fmt.Errorf("unknown scan order %q", s)
	}
}

// ExtractTiles slides a 3x3 window over the sample and returns one tile per
// window position. Duplicates are kept.
func ExtractTiles(ctx context.Context, s *Sample, order ScanOrder) ([]Tile, error) {
	tracer := telemetry.Tracer("collapse")
	_, span := tracer.Start(ctx, "tiles.extract")
	defer span.End()

	if s == nil {
		return nil, fmt.Errorf("%w: nil sample", ErrInvalidConfiguration)
	}
	if s.Width() < TileSize || s.Height() < TileSize {
		return nil, fmt.Errorf("%w: sample %dx%d is smaller than tile size %d",
			ErrInvalidConfiguration, s.Width(), s.Height(), TileSize)
	}

	xCount := s.Width() - TileSize + 1
	yCount := s.Height() - TileSize + 1
	tiles := make([]Tile, 0, xCount*yCount)

	add := func(i, j int) {
		var colors [TileSize * TileSize]Color
		for y := 0; y < TileSize; y++ {
			for x := 0; x < TileSize; x++ {
				colors[x+y*TileSize] = s.At(i+x, j+y)
			}
		}
		tiles = append(tiles, NewTile(len(tiles), colors))
	}

	if order == RowMajor {
		for j := 0; j < yCount; j++ {
			for i := 0; i < xCount; i++ {
				add(i, j)
			}
		}
	} else {
		for i := 0; i < xCount; i++ {
			for j := 0; j < yCount; j++ {
				add(i, j)
			}
		}
	}

	span.SetAttributes(
		attribute.Int("sample.width", s.Width()),
		attribute.Int("sample.height", s.Height()),
		attribute.String("tiles.order", order.String()),
		attribute.Int("tiles.count", len(tiles)),
	)
	return tiles, nil
}
