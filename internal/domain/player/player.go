// Package player holds the per-competitor rating state and the roster that
// owns it for the lifetime of a batch.
package player

import (
	"strings"
	"time"

	"github.com/okian/surfelo/internal/domain/model"
)

// State is one competitor's rating record. Every surface of the owning
// roster has an entry in each per-surface map.
type State struct {
	ID   string
	Name string

	Ratings        map[model.Surface]float64
	MatchesPlayed  map[model.Surface]int
	PeakRating     map[model.Surface]float64
	PeakRatingDate map[model.Surface]time.Time

	// TotalMatches equals the sum of MatchesPlayed.
	TotalMatches int

	// LastMatchDate is zero until the first match and only moves forward.
	LastMatchDate time.Time

	// anchor is the rating of each surface as of the last processed match.
	// Decay is computed from it so that repeating a sweep with the same date
	// does not compound.
	anchor map[model.Surface]float64
}

func newState(id string, surfaces []model.Surface, start float64) *State {
	s := &State{
		ID:             id,
		Name:           model.UnknownPlayerName,
		Ratings:        make(map[model.Surface]float64, len(surfaces)),
		MatchesPlayed:  make(map[model.Surface]int, len(surfaces)),
		PeakRating:     make(map[model.Surface]float64, len(surfaces)),
		PeakRatingDate: make(map[model.Surface]time.Time, len(surfaces)),
		anchor:         make(map[model.Surface]float64, len(surfaces)),
	}
	for _, surface := range surfaces {
		s.Ratings[surface] = start
		s.MatchesPlayed[surface] = 0
		s.PeakRating[surface] = start
		s.PeakRatingDate[surface] = time.Time{}
		s.anchor[surface] = start
	}
	return s
}

// Rename applies last-write-wins to the display name. A blank name becomes
// the Unknown placeholder.
func (s *State) Rename(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = model.UnknownPlayerName
	}
	s.Name = name
}

// HasPlayed reports whether the player has a recorded match.
func (s *State) HasPlayed() bool {
	return !s.LastMatchDate.IsZero()
}

// RecordMatch stores the post-match rating for surface, bumps the match
// counts, advances LastMatchDate and tracks the peak.
func (s *State) RecordMatch(surface model.Surface, rating float64, date time.Time) {
	s.Ratings[surface] = rating
	s.MatchesPlayed[surface]++
	s.TotalMatches++
	if date.After(s.LastMatchDate) {
		s.LastMatchDate = date
	}
	s.trackPeak(surface, date)
	for surf, r := range s.Ratings {
		s.anchor[surf] = r
	}
}

// DecayToward sets every surface rating to
// baseline + (anchor - baseline) * factor and reports whether any rating
// changed. date stamps a peak reached by pulling a low rating up.
func (s *State) DecayToward(baseline, factor float64, date time.Time) bool {
	changed := false
	for surface, a := range s.anchor {
		r := baseline + (a-baseline)*factor
		if r != s.Ratings[surface] {
			s.Ratings[surface] = r
			s.trackPeak(surface, date)
			changed = true
		}
	}
	return changed
}

func (s *State) trackPeak(surface model.Surface, date time.Time) {
	if r := s.Ratings[surface]; r > s.PeakRating[surface] {
		s.PeakRating[surface] = r
		s.PeakRatingDate[surface] = date
	}
}

// BestRating returns the highest current rating across surfaces.
func (s *State) BestRating() (model.Surface, float64) {
	var (
		best    model.Surface
		bestVal float64
		first   = true
	)
	for surface, r := range s.Ratings {
		if first || r > bestVal || (r == bestVal && surface < best) {
			best, bestVal, first = surface, r, false
		}
	}
	return best, bestVal
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.Ratings = cloneMap(s.Ratings)
	c.MatchesPlayed = cloneMap(s.MatchesPlayed)
	c.PeakRating = cloneMap(s.PeakRating)
	c.PeakRatingDate = cloneMap(s.PeakRatingDate)
	c.anchor = cloneMap(s.anchor)
	return &c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
