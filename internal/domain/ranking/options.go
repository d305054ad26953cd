package ranking

import "github.com/okian/surfelo/internal/domain/model"

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithMinMatches sets the total-match minimums for the overall ranking and
// for surface leaderboards and the active list.
func WithMinMatches(ranking, active int) Option {
	return func(r *Ranker) {
		if ranking >= 0 {
			r.minMatchesRanking = ranking
		}
		if active >= 0 {
			r.minMatchesActive = active
		}
	}
}

// WithActiveMonths sets how recent a last match must be to count as active.
func WithActiveMonths(months int) Option {
	return func(r *Ranker) {
		if months > 0 {
			r.activeMonths = months
		}
	}
}

// WithSurfaceWeights replaces the overall-rating weights.
func WithSurfaceWeights(weights map[string]float64) Option {
	return func(r *Ranker) {
		if len(weights) == 0 {
			return
		}
		r.surfaceWeights = make(map[model.Surface]float64, len(weights))
		for s, w := range weights {
			r.surfaceWeights[model.Surface(s)] = w
		}
	}
}

// WithSpecialist sets the surface match minimum and the rating advantage
// that qualify a surface specialist.
func WithSpecialist(minMatches int, advantage float64) Option {
	return func(r *Ranker) {
		if minMatches >= 0 {
			r.specialistMinMatches = minMatches
		}
		r.specialistAdvantage = advantage
	}
}

// WithRising sets the recency window, match minimum and rating threshold for
// rising players.
func WithRising(months, minMatches int, threshold float64) Option {
	return func(r *Ranker) {
		if months > 0 {
			r.risingMonths = months
		}
		if minMatches >= 0 {
			r.risingMinMatches = minMatches
		}
		r.risingThreshold = threshold
	}
}
