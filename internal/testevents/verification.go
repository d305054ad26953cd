package testevents

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/okian/surfelo/internal/domain/player"
)

// ErrWeakCorrelation is returned when ratings disagree with hidden strengths.
var ErrWeakCorrelation = errors.New("ratings do not track hidden strength")

// verifyRatings compares each player's Hard rating with their hidden Hard
// strength by rank correlation.
func verifyRatings(cfg *Config, players []Player, roster *player.Roster) (float64, error) {
	var hidden, rated []float64
	for _, p := range players {
		st, ok := roster.Get(p.ID)
		if !ok || st.MatchesPlayed["Hard"] == 0 {
			continue
		}
		hidden = append(hidden, p.strength("Hard"))
		rated = append(rated, st.Ratings["Hard"])
	}
	if len(hidden) < 3 {
		return 0, fmt.Errorf("%w: only %d players rated on Hard", ErrWeakCorrelation, len(hidden))
	}

	rho := spearman(hidden, rated)
	if rho < cfg.MinCorrelation {
		return rho, fmt.Errorf("%w: correlation %.3f below %.3f", ErrWeakCorrelation, rho, cfg.MinCorrelation)
	}
	return rho, nil
}

// spearman returns the rank correlation of xs and ys. Ties get the mean
// of their ranks.
func spearman(xs, ys []float64) float64 {
	return pearson(ranks(xs), ranks(ys))
}

func ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })

	out := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		mean := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = mean
		}
		i = j + 1
	}
	return out
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0
	}
	return sxy / math.Sqrt(sxx*syy)
}
