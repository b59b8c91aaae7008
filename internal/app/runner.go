package app

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/wavecollapse/internal/collapse"
	"github.com/samdwyer/wavecollapse/internal/config"
	"github.com/samdwyer/wavecollapse/internal/imageio"
	"github.com/samdwyer/wavecollapse/internal/samples"
	"github.com/samdwyer/wavecollapse/internal/telemetry"
)

// Result summarises a finished headless run.
type Result struct {
	RunID   string
	Seed    int64
	Tiles   int
	Stats   collapse.Stats
	Elapsed time.Duration
	Output  string // PNG path, empty when nothing was written
}

// Runner builds engines from a configuration.
type Runner struct {
	cfg      config.Config
	registry *samples.Registry
	logger   *slog.Logger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(cfg config.Config, registry *samples.Registry, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{cfg: cfg, registry: registry, logger: logger}
}

// LoadSample returns the sample image at SamplePath, or the catalogue sample.
func (r *Runner) LoadSample() (*collapse.Sample, error) {
	if r.cfg.SamplePath != "" {
		return imageio.LoadSample(r.cfg.SamplePath)
	}
	def, err := r.registry.Lookup(r.cfg.Sample)
	if err != nil {
		return nil, err
	}
	return def.Sample()
}

// NewEngine loads the sample, extracts its tiles and creates an engine
// seeded with seed.
func (r *Runner) NewEngine(ctx context.Context, seed int64, opts ...collapse.Option) (*collapse.Engine, error) {
	sample, err := r.LoadSample()
	if err != nil {
		return nil, fmt.Errorf("failed to load sample: %w", err)
	}
	return r.EngineFor(ctx, sample, seed, opts...)
}

// EngineFor extracts the tiles of an already loaded sample and creates an
// engine seeded with seed.
func (r *Runner) EngineFor(ctx context.Context, sample *collapse.Sample, seed int64, opts ...collapse.Option) (*collapse.Engine, error) {
	tiles, err := collapse.ExtractTiles(ctx, sample, r.cfg.Order())
	if err != nil {
		return nil, fmt.Errorf("failed to extract tiles: %w", err)
	}

	opts = append([]collapse.Option{
		collapse.WithRand(rand.New(rand.NewSource(seed))),
		collapse.WithLogger(r.logger),
	}, opts...)
	return collapse.New(tiles, r.cfg.Width, r.cfg.Height, opts...)
}

// Run collapses a full output headlessly and writes it to cfg.Output when
// writeOutput is set.
func (r *Runner) Run(ctx context.Context, writeOutput bool) (Result, error) {
	runID := uuid.New().String()
	seed := r.cfg.ResolvedSeed()
	logger := r.logger.With("run_id", runID)

	tracer := telemetry.Tracer("app")
	ctx, span := tracer.Start(ctx, "app.run")
	defer span.End()

	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.Int64("run.seed", seed),
		attribute.String("run.sample", r.sampleName()),
	)

	startTime := time.Now()
	engine, err := r.NewEngine(ctx, seed, collapse.WithLogger(logger))
	if err != nil {
		span.RecordError(err)
		return Result{}, err
	}

	result := Result{RunID: runID, Seed: seed, Tiles: len(engine.Tiles())}
	if err := engine.Run(ctx); err != nil {
		result.Stats = engine.Stats()
		span.RecordError(err)
		return result, fmt.Errorf("collapse failed: %w", err)
	}
	result.Stats = engine.Stats()
	result.Elapsed = time.Since(startTime)

	if writeOutput {
		if err := imageio.WritePNG(r.cfg.Output, engine.Output(), r.cfg.Scale); err != nil {
			span.RecordError(err)
			return result, err
		}
		result.Output = r.cfg.Output
	}

	span.SetAttributes(
		attribute.Int("run.steps", result.Stats.Steps),
		attribute.Int("run.starved", result.Stats.Starved),
	)
	logger.Info("run complete",
		"seed", seed, "steps", result.Stats.Steps, "starved", result.Stats.Starved, "output", result.Output)
	return result, nil
}

func (r *Runner) sampleName() string {
	if r.cfg.SamplePath != "" {
		return r.cfg.SamplePath
	}
	return r.cfg.Sample
}
