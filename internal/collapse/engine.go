package collapse

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/samdwyer/wavecollapse/internal/telemetry"
)

// Status is the state of a run.
type Status int

const (
	// StatusRunning means at least one cell is unresolved.
	StatusRunning Status = iota
	// StatusDone means every cell is resolved.
	StatusDone
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Stats counts what happened during a run.
type Stats struct {
	Steps    int // resolve + propagate cycles
	Resolved int // cells in the resolved set
	Starved  int // starved stack events
}

// Snapshot is a copy of the engine state between steps.
type Snapshot struct {
	Output   *Output
	Entropy  []int  // candidate count per cell, indexed x + y*Width
	Resolved []bool // resolved flag per cell
	Stats    Stats
	Status   Status
}

// Engine owns one candidate stack per output cell and drives the
// select, resolve, propagate loop. It is not safe for concurrent use.
type Engine struct {
	width  int
	height int
	tiles  []Tile

	stacks   []Stack
	resolved []bool
	output   []Color
	stats    Stats
	status   Status

	rng      *rand.Rand
	logger   *slog.Logger
	observer func(StarvedStack)

	resolutions metric.Int64Counter
	starved     metric.Int64Counter
}

// New creates an engine for a width x height output whose cells all start
// with every tile as a candidate. Tile IDs must match their index in tiles.
func New(tiles []Tile, width, height int, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: output size %dx%d", ErrInvalidConfiguration, width, height)
	}
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: empty tile pool", ErrInvalidConfiguration)
	}
	for i, t := range tiles {
		if t.ID != i {
			return nil, fmt.Errorf("%w: tile at index %d has id %d", ErrInvalidConfiguration, i, t.ID)
		}
	}
	if o.rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfiguration)
	}

	e := &Engine{
		width:    width,
		height:   height,
		tiles:    tiles,
		rng:      o.rng,
		logger:   o.logger,
		observer: o.observer,
	}
	e.initMetrics()
	e.Reset()
	return e, nil
}

func (e *Engine) initMetrics() {
	meter := telemetry.Meter("collapse")

	var err error
	e.resolutions, err = meter.Int64Counter("collapse.resolutions",
		metric.WithDescription("Cells resolved by the collapse engine"))
	if err != nil {
		e.resolutions = noop.Int64Counter{}
	}
	e.starved, err = meter.Int64Counter("collapse.starved_stacks",
		metric.WithDescription("Propagation steps that would have emptied a stack"))
	if err != nil {
		e.starved = noop.Int64Counter{}
	}
}

// Reset starts a new run with full stacks and an empty output. The tile
// pool and random source are kept.
func (e *Engine) Reset() {
	n := e.width * e.height
	e.stacks = make([]Stack, n)
	e.resolved = make([]bool, n)
	e.output = make([]Color, n)
	for i := range e.stacks {
		e.stacks[i] = newFullStack(len(e.tiles))
		e.output[i] = Placeholder
	}
	e.stats = Stats{}
	e.status = StatusRunning
}

// Width returns the output width in cells.
func (e *Engine) Width() int { return e.width }

// Height returns the output height in cells.
func (e *Engine) Height() int { return e.height }

// Tiles returns the tile pool.
func (e *Engine) Tiles() []Tile { return e.tiles }

// Status returns the current run status.
func (e *Engine) Status() Status { return e.status }

// Stats returns the counters of the current run.
func (e *Engine) Stats() Stats { return e.stats }

// Entropy returns the candidate count of cell (x, y).
func (e *Engine) Entropy(x, y int) int {
	return e.stacks[e.index(x, y)].Entropy()
}

// Candidates returns the candidate tile IDs of cell (x, y).
func (e *Engine) Candidates(x, y int) []int {
	return e.stacks[e.index(x, y)].Members()
}

// IsResolved reports whether cell (x, y) is in the resolved set.
func (e *Engine) IsResolved(x, y int) bool {
	return e.resolved[e.index(x, y)]
}

// Output returns a copy of the output buffer.
func (e *Engine) Output() *Output {
	colors := make([]Color, len(e.output))
	copy(colors, e.output)
	return &Output{Width: e.width, Height: e.height, Colors: colors}
}

// Snapshot copies the state a host needs to draw progress.
func (e *Engine) Snapshot() Snapshot {
	entropy := make([]int, len(e.stacks))
	for i := range e.stacks {
		entropy[i] = e.stacks[i].Entropy()
	}
	resolved := make([]bool, len(e.resolved))
	copy(resolved, e.resolved)

	return Snapshot{
		Output:   e.Output(),
		Entropy:  entropy,
		Resolved: resolved,
		Stats:    e.stats,
		Status:   e.status,
	}
}

// Step resolves one cell and propagates its colour to the neighbours.
// Calling Step after the run is done does nothing.
func (e *Engine) Step(ctx context.Context) (Status, error) {
	if e.status == StatusDone {
		return StatusDone, nil
	}

	idx, err := e.selectCell()
	if err != nil {
		return e.status, fmt.Errorf("step %d: %w", e.stats.Steps+1, err)
	}
	e.resolve(ctx, idx)
	return e.status, nil
}

// Collapse resolves cell (x, y) next instead of the lowest entropy cell.
func (e *Engine) Collapse(ctx context.Context, x, y int) error {
	if x < 0 || x >= e.width || y < 0 || y >= e.height {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, x, y)
	}
	idx := e.index(x, y)
	if e.resolved[idx] {
		return fmt.Errorf("%w: (%d,%d)", ErrAlreadyResolved, x, y)
	}
	e.resolve(ctx, idx)
	return nil
}

// Run steps until every cell is resolved or ctx is cancelled. A cancelled
// run keeps its partial state.
func (e *Engine) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("collapse")
	ctx, span := tracer.Start(ctx, "collapse.run")
	defer span.End()

	startTime := time.Now()
	e.logger.Info("collapse started",
		"width", e.width, "height", e.height, "tiles", len(e.tiles))

	var runErr error
	for e.status != StatusDone {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		if _, err := e.Step(ctx); err != nil {
			runErr = err
			break
		}
	}

	span.SetAttributes(
		attribute.Int("collapse.width", e.width),
		attribute.Int("collapse.height", e.height),
		attribute.Int("collapse.tiles", len(e.tiles)),
		attribute.Int("collapse.steps", e.stats.Steps),
		attribute.Int("collapse.starved", e.stats.Starved),
		attribute.String("collapse.status", e.status.String()),
		attribute.Int64("collapse.duration_ms", time.Since(startTime).Milliseconds()),
	)
	if runErr != nil {
		span.RecordError(runErr)
		return runErr
	}

	e.logger.Info("collapse finished",
		"steps", e.stats.Steps, "starved", e.stats.Starved, "elapsed", time.Since(startTime))
	return nil
}

// selectCell returns the index of an unresolved cell with the lowest
// entropy, breaking ties uniformly at random.
func (e *Engine) selectCell() (int, error) {
	// Every stack is still full on the first step
	if e.stats.Resolved == 0 {
		return e.rng.Intn(len(e.stacks)), nil
	}

	var ties []int
	lowest := int(^uint(0) >> 1)
	for i := range e.stacks {
		if e.resolved[i] {
			continue
		}
		entropy := e.stacks[i].Entropy()
		if entropy > lowest {
			continue
		}
		if entropy < lowest {
			lowest = entropy
			ties = ties[:0]
		}
		ties = append(ties, i)
	}

	if len(ties) == 0 {
		return -1, ErrEmptySelection
	}
	return ties[e.rng.Intn(len(ties))], nil
}

// resolve collapses the stack at idx to one random candidate, records its
// centre colour and propagates to the neighbours.
func (e *Engine) resolve(ctx context.Context, idx int) {
	e.stats.Steps++

	stack := &e.stacks[idx]
	entropy := stack.Entropy()
	id := stack.nth(e.rng.Intn(entropy))
	stack.keepOnly(id)

	tile := e.tiles[id]
	e.output[idx] = tile.Center()
	e.resolved[idx] = true
	e.stats.Resolved++
	e.resolutions.Add(ctx, 1)

	x, y := idx%e.width, idx/e.width
	e.logger.Debug("cell resolved",
		"step", e.stats.Steps, "x", x, "y", y, "entropy", entropy, "tile", id)

	e.propagate(ctx, x, y, e.output[idx])

	if e.stats.Resolved == len(e.stacks) {
		e.status = StatusDone
	}
}

// propagate removes the candidates of the eight neighbours of (x, y) that
// do not overlap color. The last candidate of a stack is never removed.
func (e *Engine) propagate(ctx context.Context, x, y int, color Color) {
	for nx := x - 1; nx <= x+1; nx++ {
		for ny := y - 1; ny <= y+1; ny++ {
			if nx < 0 || ny < 0 || nx >= e.width || ny >= e.height || (nx == x && ny == y) {
				continue
			}

			nIdx := e.index(nx, ny)
			stack := &e.stacks[nIdx]
			dx, dy := nx-x, ny-y
			stack.eachDescending(func(id int) {
				if e.tiles[id].HasValidOverlap(color, dx, dy) {
					return
				}
				if stack.Entropy() > 1 {
					stack.remove(id)
					return
				}
				e.reportStarved(ctx, StarvedStack{
					Step:     e.stats.Steps,
					X:        nx,
					Y:        ny,
					Offset:   Direction{dx, dy},
					TileID:   id,
					Resolved: e.resolved[nIdx],
				})
			})
		}
	}
}

func (e *Engine) reportStarved(ctx context.Context, ev StarvedStack) {
	e.stats.Starved++
	e.starved.Add(ctx, 1, metric.WithAttributes(attribute.Bool("resolved", ev.Resolved)))
	e.logger.Warn("ran out of valid tiles",
		"step", ev.Step, "x", ev.X, "y", ev.Y, "tile", ev.TileID, "resolved", ev.Resolved)
	if e.observer != nil {
		e.observer(ev)
	}
}

func (e *Engine) index(x, y int) int {
	return x + y*e.width
}
