package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/wavecollapse/internal/collapse"
	"github.com/samdwyer/wavecollapse/internal/telemetry"
	"github.com/samdwyer/wavecollapse/internal/ui"
)

// Watcher animates a collapse in the terminal, a few steps per frame.
type Watcher struct {
	runner   *Runner
	screen   *ui.Screen
	renderer *ui.Renderer
	sample   *collapse.Sample
	engine   *collapse.Engine

	state   State
	seed    int64
	running bool
	err     error
	starved int
}

// NewWatcher creates a watcher drawing to screen.
func NewWatcher(ctx context.Context, runner *Runner, screen *ui.Screen) (*Watcher, error) {
	w := &Watcher{
		runner:   runner,
		screen:   screen,
		renderer: ui.NewRenderer(screen),
		running:  true,
	}
	sample, err := runner.LoadSample()
	if err != nil {
		return nil, fmt.Errorf("failed to load sample: %w", err)
	}
	w.sample = sample
	if err := w.restart(ctx, runner.cfg.ResolvedSeed()); err != nil {
		return nil, err
	}
	return w, nil
}

// State returns the current watch state.
func (w *Watcher) State() State { return w.state }

// Engine returns the engine currently being animated.
func (w *Watcher) Engine() *collapse.Engine { return w.engine }

// Run executes the render loop until the user quits or ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("app")
	ctx, span := tracer.Start(ctx, "app.watch")
	defer span.End()

	ticker := time.NewTicker(w.runner.cfg.TickRate)
	defer ticker.Stop()
	events := w.screen.Events()

	w.render()
	for w.running {
		select {
		case <-ctx.Done():
			w.running = false
		case ev, ok := <-events:
			if !ok {
				w.running = false
				break
			}
			w.handleEvent(ctx, ev)
			w.render()
		case <-ticker.C:
			if w.state == StateRunning {
				w.advance(ctx, w.runner.cfg.StepsPerTick)
				w.render()
			}
		}
	}

	span.SetAttributes(
		attribute.Int64("watch.seed", w.seed),
		attribute.String("watch.state", w.state.String()),
		attribute.Int("watch.steps", w.engine.Stats().Steps),
	)
	return w.err
}

// advance runs up to n steps and updates the state.
func (w *Watcher) advance(ctx context.Context, n int) {
	for i := 0; i < n && w.state != StateDone && w.state != StateFailed; i++ {
		status, err := w.engine.Step(ctx)
		if err != nil {
			w.err = err
			w.state = StateFailed
			return
		}
		if status == collapse.StatusDone {
			w.state = StateDone
		}
	}
}

func (w *Watcher) restart(ctx context.Context, seed int64) error {
	w.starved = 0
	engine, err := w.runner.EngineFor(ctx, w.sample, seed,
		collapse.WithObserver(func(collapse.StarvedStack) { w.starved++ }))
	if err != nil {
		return err
	}
	w.engine = engine
	w.seed = seed
	w.state = StateRunning
	w.err = nil
	return nil
}

func (w *Watcher) handleEvent(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		w.handleKey(ctx, ev)
	case *tcell.EventResize:
		w.screen.Sync()
	}
}

func (w *Watcher) handleKey(ctx context.Context, ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		w.running = false
		return
	case tcell.KeyRune:
	default:
		return
	}

	switch ev.Rune() {
	case 'q', 'Q':
		w.running = false
	case ' ':
		switch w.state {
		case StateRunning:
			w.state = StatePaused
		case StatePaused:
			w.state = StateRunning
		}
	case 'n', 'N':
		if w.state == StatePaused {
			w.advance(ctx, 1)
		}
	case 'r', 'R':
		if err := w.restart(ctx, w.seed+1); err != nil {
			w.err = err
			w.state = StateFailed
		}
	}
}

func (w *Watcher) render() {
	stats := w.engine.Stats()
	total := w.engine.Width() * w.engine.Height()
	status := fmt.Sprintf("SPACE=pause  N=step  R=reset  Q=quit   seed=%d  %d/%d  starved=%d  [%s]",
		w.seed, stats.Resolved, total, w.starved, w.state)
	if w.err != nil {
		status += "  " + w.err.Error()
	}
	w.renderer.Render(w.engine.Snapshot(), w.sample, len(w.engine.Tiles()), status)
}
