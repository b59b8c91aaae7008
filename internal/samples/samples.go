package samples

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/samdwyer/wavecollapse/internal/collapse"
)

// Def defines a sample loaded from JSON. Rows are strings of palette keys,
// one byte per pixel.
type Def struct {
	ID          string            `json:"id"`          // Unique identifier (e.g., "bordered")
	Name        string            `json:"name"`        // Display name
	Description string            `json:"description"` // One line shown by the CLI
	Palette     map[string]string `json:"palette"`     // Key -> hex colour (e.g., "#FF0000")
	Rows        []string          `json:"rows"`
}

// Size returns the width and height of the sample.
func (d *Def) Size() (int, int) {
	if len(d.Rows) == 0 {
		return 0, 0
	}
	return len(d.Rows[0]), len(d.Rows)
}

// Sample builds the collapse sample described by the definition.
func (d *Def) Sample() (*collapse.Sample, error) {
	colors := make(map[byte]collapse.Color, len(d.Palette))
	for key, hex := range d.Palette {
		if len(key) != 1 {
			return nil, fmt.Errorf("sample %s: palette key %q must be one character", d.ID, key)
		}
		c, err := ParseHexColor(hex)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", d.ID, err)
		}
		colors[key[0]] = c
	}

	rows := make([][]collapse.Color, len(d.Rows))
	for y, line := range d.Rows {
		rows[y] = make([]collapse.Color, len(line))
		for x := 0; x < len(line); x++ {
			c, ok := colors[line[x]]
			if !ok {
				return nil, fmt.Errorf("sample %s: unknown palette key %q at (%d,%d)", d.ID, line[x], x, y)
			}
			rows[y][x] = c
		}
	}

	s, err := collapse.SampleFromRows(rows)
	if err != nil {
		return nil, fmt.Errorf("sample %s: %w", d.ID, err)
	}
	return s, nil
}

// ParseHexColor converts a hex colour string ("#FF0000") to an opaque collapse.Color.
func ParseHexColor(hex string) (collapse.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return collapse.Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return collapse.Color{R: r, G: g, B: b, A: 255}, nil
}

// File represents the structure of samples.json.
type File struct {
	Samples []Def `json:"samples"`
}

// LoadDefs loads sample definitions from the embedded samples.json file.
func LoadDefs() ([]Def, error) {
	file, err := Load[File]("samples.json")
	if err != nil {
		return nil, err
	}
	return file.Samples, nil
}
