package collapse

import (
	"log/slog"
	"math/rand"
	"time"
)

// Option configures an Engine during creation.
type Option func(*options)

type options struct {
	rng      *rand.Rand
	logger   *slog.Logger
	observer func(StarvedStack)
}

func defaultOptions() options {
	return options{
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithRand sets the random source used to pick cells and candidates.
// Two engines built from the same tiles and equally seeded sources produce
// identical output.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// WithSeed is shorthand for WithRand(rand.New(rand.NewSource(seed))).
func WithSeed(seed int64) Option {
	return WithRand(rand.New(rand.NewSource(seed)))
}

// WithLogger sets the logger. Passing nil keeps logging disabled.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver registers a function that receives every starved stack.
func WithObserver(fn func(StarvedStack)) Option {
	return func(o *options) {
		o.observer = fn
	}
}
