package imageio

import (
	"errors"
	"fmt"

	"github.com/samdwyer/wavecollapse/internal/collapse"
)

// SheetGutter is the colour between tiles on a tile sheet.
var SheetGutter = collapse.Color{}

// TileSheet lays tiles out left to right, columns per row, with a one pixel
// gutter between neighbours. Tile i sits at ((i%columns)*4, (i/columns)*4).
func TileSheet(tiles []collapse.Tile, columns int) (*collapse.Output, error) {
	if len(tiles) == 0 {
		return nil, errors.New("imageio: empty tile pool")
	}
	if columns < 1 {
		return nil, fmt.Errorf("imageio: invalid column count %d", columns)
	}
	columns = min(columns, len(tiles))
	rows := (len(tiles) + columns - 1) / columns

	const pitch = collapse.TileSize + 1
	sheet := &collapse.Output{
		Width:  columns*pitch - 1,
		Height: rows*pitch - 1,
	}
	sheet.Colors = make([]collapse.Color, sheet.Width*sheet.Height)
	for i := range sheet.Colors {
		sheet.Colors[i] = SheetGutter
	}

	for i, t := range tiles {
		left, top := (i%columns)*pitch, (i/columns)*pitch
		for y := 0; y < collapse.TileSize; y++ {
			for x := 0; x < collapse.TileSize; x++ {
				sheet.Colors[left+x+(top+y)*sheet.Width] = t.ColorAt(x, y)
			}
		}
	}
	return sheet, nil
}

// WriteTileSheet saves the tile sheet of tiles as a scaled PNG file.
func WriteTileSheet(path string, tiles []collapse.Tile, columns, scale int) error {
	sheet, err := TileSheet(tiles, columns)
	if err != nil {
		return err
	}
	return WritePNG(path, sheet, scale)
}
