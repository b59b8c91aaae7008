package app

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/wavecollapse/internal/collapse"
	"github.com/samdwyer/wavecollapse/internal/config"
	"github.com/samdwyer/wavecollapse/internal/samples"
	"github.com/samdwyer/wavecollapse/internal/ui"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Width = 8
	cfg.Height = 8
	cfg.Seed = 12345
	cfg.Scale = 2
	cfg.Output = filepath.Join(t.TempDir(), "out.png")
	return cfg
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateRunning, "running"},
		{StatePaused, "paused"},
		{StateDone, "done"},
		{StateFailed, "failed"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}

func TestRunnerRunWritesPNG(t *testing.T) {
	cfg := testConfig(t)
	r := NewRunner(cfg, samples.MustLoadRegistry(), nil)

	result, err := r.Run(context.Background(), true)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Stats.Resolved != 64 {
		t.Errorf("Resolved = %d, want 64", result.Stats.Resolved)
	}
	if result.Tiles != 9 {
		t.Errorf("Tiles = %d, want 9", result.Tiles)
	}
	if result.RunID == "" {
		t.Error("RunID is empty")
	}

	f, err := os.Open(result.Output)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("output bounds = %v, want 16x16", b)
	}
}

func TestRunnerReproducible(t *testing.T) {
	cfg := testConfig(t)
	registry := samples.MustLoadRegistry()
	ctx := context.Background()

	e1, err := NewRunner(cfg, registry, nil).NewEngine(ctx, cfg.Seed)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e2, err := NewRunner(cfg, registry, nil).NewEngine(ctx, cfg.Seed)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := e1.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := e2.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	o1, o2 := e1.Output(), e2.Output()
	for i := range o1.Colors {
		if o1.Colors[i] != o2.Colors[i] {
			t.Fatalf("cell %d mismatch: %v != %v", i, o1.Colors[i], o2.Colors[i])
		}
	}
}

func TestRunnerUnknownSample(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sample = "missing"
	r := NewRunner(cfg, samples.MustLoadRegistry(), nil)

	if _, err := r.Run(context.Background(), false); err == nil {
		t.Error("Run() with unknown sample should fail")
	}
}

func newTestWatcher(t *testing.T, cfg config.Config) *Watcher {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	screen, err := ui.Wrap(sim)
	if err != nil {
		t.Fatalf("Wrap() error = %v", err)
	}
	sim.SetSize(80, 40)
	t.Cleanup(screen.Close)

	w, err := NewWatcher(context.Background(), NewRunner(cfg, samples.MustLoadRegistry(), nil), screen)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	return w
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestWatcherAdvance(t *testing.T) {
	cfg := testConfig(t)
	cfg.StepsPerTick = 5
	w := newTestWatcher(t, cfg)
	ctx := context.Background()

	w.advance(ctx, cfg.StepsPerTick)
	if got := w.Engine().Stats().Steps; got != 5 {
		t.Errorf("Steps after one tick = %d, want 5", got)
	}

	w.advance(ctx, 1000)
	if w.State() != StateDone {
		t.Errorf("State() = %v, want done", w.State())
	}
	if got := w.Engine().Stats().Steps; got != 64 {
		t.Errorf("Steps at done = %d, want 64", got)
	}
}

func TestWatcherKeys(t *testing.T) {
	w := newTestWatcher(t, testConfig(t))
	ctx := context.Background()

	w.handleKey(ctx, key(' '))
	if w.State() != StatePaused {
		t.Fatalf("State() after space = %v, want paused", w.State())
	}

	w.handleKey(ctx, key('n'))
	if got := w.Engine().Stats().Steps; got != 1 {
		t.Errorf("Steps after single step = %d, want 1", got)
	}
	if w.State() != StatePaused {
		t.Errorf("State() after single step = %v, want paused", w.State())
	}

	w.handleKey(ctx, key(' '))
	if w.State() != StateRunning {
		t.Errorf("State() after second space = %v, want running", w.State())
	}

	before := w.seed
	w.handleKey(ctx, key('r'))
	if w.seed != before+1 {
		t.Errorf("seed after reset = %d, want %d", w.seed, before+1)
	}
	if got := w.Engine().Stats().Steps; got != 0 {
		t.Errorf("Steps after reset = %d, want 0", got)
	}

	w.handleKey(ctx, key('q'))
	if w.running {
		t.Error("watcher still running after q")
	}
}

func TestWatcherRunStopsOnCancel(t *testing.T) {
	w := newTestWatcher(t, testConfig(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := w.Run(ctx); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if w.running {
		t.Error("watcher still running after cancel")
	}
	if w.State() == StateFailed {
		t.Errorf("State() = %v after cancel", w.State())
	}
	if w.Engine().Status() == collapse.StatusDone {
		t.Error("a cancelled 8x8 run should not have finished")
	}
}

func TestWatcherDrawsSampleBesideOutput(t *testing.T) {
	cfg := testConfig(t)
	w := newTestWatcher(t, cfg)
	w.render()

	left := ui.SampleOffset(cfg.Width)
	tests := []struct {
		x, y int
		want tcell.Color
	}{
		{0, 0, tcell.NewRGBColor(255, 255, 255)},
		{1, 1, tcell.NewRGBColor(0, 0, 0)},
		{2, 2, tcell.NewRGBColor(255, 0, 0)},
	}
	for _, tt := range tests {
		_, style := w.screen.Content(left+tt.x*ui.CellWidth, tt.y)
		if _, bg, _ := style.Decompose(); bg != tt.want {
			t.Errorf("sample pixel (%d,%d) background = %v, want %v", tt.x, tt.y, bg, tt.want)
		}
	}
}
