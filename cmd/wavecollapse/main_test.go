package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samdwyer/wavecollapse/internal/config"
	"github.com/samdwyer/wavecollapse/internal/imageio"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	flagCfg = config.Default()
	configPath = ""
	sheetPath = ""

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSamplesCommand(t *testing.T) {
	out, err := execute(t, "samples")
	if err != nil {
		t.Fatalf("samples error = %v", err)
	}
	for _, id := range []string{"bordered", "ringed", "flat", "stripes", "checker"} {
		if !strings.Contains(out, id) {
			t.Errorf("samples output missing %q:\n%s", id, out)
		}
	}
}

func TestTilesCommand(t *testing.T) {
	out, err := execute(t, "tiles", "--sample", "bordered")
	if err != nil {
		t.Fatalf("tiles error = %v", err)
	}
	if !strings.Contains(out, "9 tiles") {
		t.Errorf("tiles output = %q, want 9 tiles", out)
	}
}

func TestTilesCommandWritesSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.png")
	out, err := execute(t, "tiles", "--sample", "bordered", "--sheet", path, "--scale", "1")
	if err != nil {
		t.Fatalf("tiles error = %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("tiles output = %q, want sheet path", out)
	}

	sheet, err := imageio.LoadSample(path)
	if err != nil {
		t.Fatalf("LoadSample() error = %v", err)
	}
	// 9 tiles, 3 per row, 3x3 pixels each with a one pixel gutter
	if sheet.Width() != 11 || sheet.Height() != 11 {
		t.Errorf("sheet size = %dx%d, want 11x11", sheet.Width(), sheet.Height())
	}
	if got := sheet.At(3, 0); got != imageio.SheetGutter {
		t.Errorf("gutter pixel = %v, want %v", got, imageio.SheetGutter)
	}
}

func TestRunCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	out, err := execute(t, "run", "-W", "6", "-H", "5", "--seed", "7", "-o", path, "--scale", "1", "--log-level", "error")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(out, "steps=30") {
		t.Errorf("run output = %q, want steps=30", out)
	}
	if !strings.Contains(out, path) {
		t.Errorf("run output = %q, want output path", out)
	}
}

func TestRunCommandInvalidConfig(t *testing.T) {
	_, err := execute(t, "run", "-W", "0")
	if err == nil {
		t.Error("run with zero width should fail")
	}
}
