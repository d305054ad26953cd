package player

import "github.com/okian/surfelo/internal/domain/model"

// Option applies a configuration option to the Roster.
type Option func(*Roster)

// WithSurfaces sets the tracked surfaces. Duplicates and empty names are
// dropped; an empty list keeps the defaults.
func WithSurfaces(surfaces ...model.Surface) Option {
	return func(r *Roster) {
		seen := make(map[model.Surface]struct{}, len(surfaces))
		out := make([]model.Surface, 0, len(surfaces))
		for _, s := range surfaces {
			if _, dup := seen[s]; dup || s == "" {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
		if len(out) > 0 {
			r.surfaces = out
		}
	}
}

// WithStartingRating sets the initial rating of every surface.
func WithStartingRating(rating float64) Option {
	return func(r *Roster) {
		r.start = rating
	}
}
