// Package decay pulls the ratings of inactive players toward a baseline.
package decay

import (
	"math"
	"time"

	"github.com/okian/surfelo/internal/domain/player"
)

// Defaults used by NewModel.
const (
	DefaultRate                = 0.92
	DefaultStrongRate          = 0.85
	DefaultThresholdDays       = 365
	DefaultStrongThresholdDays = 730
	DefaultBaseline            = 1300.0

	daysPerYear = 365.0
	hoursPerDay = 24
)

// Model decides how far each player decays for a given sweep date.
type Model struct {
	rate                float64
	strongRate          float64
	thresholdDays       int
	strongThresholdDays int
	baseline            float64
}

// NewModel builds a Model from defaults overridden by opts.
func NewModel(opts ...Option) *Model {
	m := &Model{
		rate:                DefaultRate,
		strongRate:          DefaultStrongRate,
		thresholdDays:       DefaultThresholdDays,
		strongThresholdDays: DefaultStrongThresholdDays,
		baseline:            DefaultBaseline,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Baseline is the rating decay converges to.
func (m *Model) Baseline() float64 {
	return m.baseline
}

// Factor returns the multiplier applied to a rating's distance from the
// baseline after daysInactive days. Negative inactivity counts as zero.
func (m *Model) Factor(daysInactive float64) float64 {
	if daysInactive < 0 {
		daysInactive = 0
	}
	var rate float64
	switch {
	case daysInactive > float64(m.strongThresholdDays):
		rate = m.strongRate
	case daysInactive > float64(m.thresholdDays):
		rate = m.rate
	default:
		return 1
	}
	return math.Pow(rate, daysInactive/daysPerYear)
}

// Apply decays every player that has played a match, measuring inactivity
// from the player's last match to currentDate. Ratings are recomputed from
// their value at the last match, so a second call with the same date changes
// nothing. It returns how many players changed.
func (m *Model) Apply(roster *player.Roster, currentDate time.Time) int {
	decayed := 0
	roster.Each(func(s *player.State) {
		if !s.HasPlayed() {
			return
		}
		f := m.Factor(DaysBetween(s.LastMatchDate, currentDate))
		if f == 1 {
			return
		}
		if s.DecayToward(m.baseline, f, currentDate) {
			decayed++
		}
	})
	return decayed
}

// DaysBetween returns the whole days from a to b, negative when b is before a.
func DaysBetween(a, b time.Time) float64 {
	return math.Floor(b.Sub(a).Hours() / hoursPerDay)
}
