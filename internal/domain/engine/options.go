package engine

import (
	"github.com/okian/surfelo/internal/domain/decay"
	"github.com/okian/surfelo/internal/domain/dedupe"
	"github.com/okian/surfelo/internal/domain/player"
	"github.com/okian/surfelo/internal/domain/rating"
	"github.com/okian/surfelo/pkg/logger"
)

// Option applies a configuration option to the Processor.
type Option func(*Processor)

// WithCalculator sets the rating math used for every match.
func WithCalculator(c *rating.Calculator) Option {
	return func(p *Processor) {
		if c != nil {
			p.calc = c
		}
	}
}

// BatchOption applies a configuration option to the Batch.
type BatchOption func(*Batch)

// WithRoster sets the roster the batch folds into. By default a new
// roster with default surfaces is used.
func WithRoster(r *player.Roster) BatchOption {
	return func(b *Batch) {
		b.roster = r
	}
}

// WithDecay sets the decay model and how many successful matches pass
// between sweeps. A frequency of 0 disables decay.
func WithDecay(m *decay.Model, frequency int) BatchOption {
	return func(b *Batch) {
		if m != nil {
			b.decay = m
		}
		if frequency >= 0 {
			b.decayFrequency = frequency
		}
	}
}

// WithDeduper enables duplicate detection on MatchID.
func WithDeduper(d dedupe.Deduper) BatchOption {
	return func(b *Batch) {
		b.deduper = d
	}
}

// WithProgressFrequency logs progress every n processed matches (0 disables).
func WithProgressFrequency(n int) BatchOption {
	return func(b *Batch) {
		if n >= 0 {
			b.progressFrequency = n
		}
	}
}

// WithMaxRatingChange flags updates larger than limit points (0 disables).
func WithMaxRatingChange(limit float64) BatchOption {
	return func(b *Batch) {
		b.maxRatingChange = limit
	}
}

// WithLogger sets a custom logger for the batch.
func WithLogger(l logger.Logger) BatchOption {
	return func(b *Batch) {
		if l != nil {
			b.logger = l
		}
	}
}
