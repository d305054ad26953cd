// Package ranking derives leaderboard views from a finished roster.
package ranking

import (
	"sort"
	"time"

	"github.com/okian/surfelo/internal/domain/model"
	"github.com/okian/surfelo/internal/domain/player"
	"github.com/okian/surfelo/internal/domain/types"
)

// ActiveSet is a set of player ids considered currently active. A nil set
// admits everyone.
type ActiveSet map[string]struct{}

// NewActiveSet builds an ActiveSet from ids.
func NewActiveSet(ids ...string) ActiveSet {
	s := make(ActiveSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is admitted.
func (a ActiveSet) Contains(id string) bool {
	if a == nil {
		return true
	}
	_, ok := a[id]
	return ok
}

// Ranker builds leaderboard views with fixed eligibility rules.
type Ranker struct {
	minMatchesRanking int
	minMatchesActive  int
	activeMonths      int

	surfaceWeights map[model.Surface]float64
	weightOrder    []model.Surface

	specialistMinMatches int
	specialistAdvantage  float64

	risingMonths     int
	risingMinMatches int
	risingThreshold  float64
}

// New creates a Ranker from defaults overridden by opts.
func New(opts ...Option) *Ranker {
	r := &Ranker{
		minMatchesRanking: 50,
		minMatchesActive:  20,
		activeMonths:      18,
		surfaceWeights: map[model.Surface]float64{
			"Hard":   0.5,
			"Clay":   0.3,
			"Grass":  0.1,
			"Carpet": 0.1,
		},
		specialistMinMatches: 30,
		specialistAdvantage:  100,
		risingMonths:         6,
		risingMinMatches:     10,
		risingThreshold:      1400,
	}

	for _, opt := range opts {
		opt(r)
	}

	for surface := range r.surfaceWeights {
		r.weightOrder = append(r.weightOrder, surface)
	}
	sort.Slice(r.weightOrder, func(i, j int) bool { return r.weightOrder[i] < r.weightOrder[j] })
	return r
}

// LatestMatch returns the most recent match date in the roster, used as the
// reference date for recency filters.
func LatestMatch(roster *player.Roster) time.Time {
	var latest time.Time
	roster.Each(func(s *player.State) {
		if s.LastMatchDate.After(latest) {
			latest = s.LastMatchDate
		}
	})
	return latest
}

// Eligible returns unranked entries for surface: players in active with at
// least the active-match minimum.
func (r *Ranker) Eligible(roster *player.Roster, surface model.Surface, active ActiveSet) []types.Entry {
	var out []types.Entry
	roster.Each(func(s *player.State) {
		if !active.Contains(s.ID) || s.TotalMatches < r.minMatchesActive {
			return
		}
		out = append(out, entryFor(s, s.Ratings[surface]))
	})
	return out
}

// TopBySurface returns the n best eligible players on surface.
func (r *Ranker) TopBySurface(roster *player.Roster, surface model.Surface, active ActiveSet, n int) []types.Entry {
	return top(r.Eligible(roster, surface, active), n)
}

// ActivePlayers returns the ids of players who played within the active
// window before asOf and have at least the active-match minimum.
func (r *Ranker) ActivePlayers(roster *player.Roster, asOf time.Time) ActiveSet {
	since := asOf.AddDate(0, -r.activeMonths, 0)
	out := make(ActiveSet)
	roster.Each(func(s *player.State) {
		if s.HasPlayed() && !s.LastMatchDate.Before(since) && s.TotalMatches >= r.minMatchesActive {
			out[s.ID] = struct{}{}
		}
	})
	return out
}

// Overall ranks players with at least the ranking minimum by their
// surface-weighted rating.
func (r *Ranker) Overall(roster *player.Roster, active ActiveSet, n int) []types.Entry {
	var out []types.Entry
	roster.Each(func(s *player.State) {
		if !active.Contains(s.ID) || s.TotalMatches < r.minMatchesRanking {
			return
		}
		out = append(out, entryFor(s, r.WeightedRating(s)))
	})
	return top(out, n)
}

// WeightedRating averages the player's surface ratings by the configured
// surface weights. Surfaces without a weight are ignored.
func (r *Ranker) WeightedRating(s *player.State) float64 {
	var sum, total float64
	for _, surface := range r.weightOrder {
		w := r.surfaceWeights[surface]
		rating, ok := s.Ratings[surface]
		if !ok || w <= 0 {
			continue
		}
		sum += w * rating
		total += w
	}
	if total == 0 {
		_, best := s.BestRating()
		return best
	}
	return sum / total
}

// Specialists lists players whose rating on a surface beats the mean of
// their other played surfaces by at least the specialist advantage. Only
// surfaces in surfaces are considered; results are ordered by advantage.
func (r *Ranker) Specialists(roster *player.Roster, surfaces []model.Surface, active ActiveSet, n int) []types.Specialist {
	var out []types.Specialist
	roster.Each(func(s *player.State) {
		if !active.Contains(s.ID) {
			return
		}
		for _, surface := range surfaces {
			if s.MatchesPlayed[surface] < r.specialistMinMatches {
				continue
			}
			var sum float64
			var others int
			for other, rating := range s.Ratings {
				if other == surface || s.MatchesPlayed[other] == 0 {
					continue
				}
				sum += rating
				others++
			}
			if others == 0 {
				continue
			}
			adv := s.Ratings[surface] - sum/float64(others)
			if adv >= r.specialistAdvantage {
				e := entryFor(s, s.Ratings[surface])
				e.Matches = s.MatchesPlayed[surface]
				out = append(out, types.Specialist{Entry: e, Surface: string(surface), Advantage: adv})
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Advantage != out[j].Advantage {
			return out[i].Advantage > out[j].Advantage
		}
		if out[i].PlayerID != out[j].PlayerID {
			return out[i].PlayerID < out[j].PlayerID
		}
		return out[i].Surface < out[j].Surface
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// RisingPlayers lists recently active players who have not yet reached the
// ranking minimum but already rate at or above the rising threshold on
// their best surface.
func (r *Ranker) RisingPlayers(roster *player.Roster, asOf time.Time, n int) []types.Entry {
	since := asOf.AddDate(0, -r.risingMonths, 0)
	var out []types.Entry
	roster.Each(func(s *player.State) {
		if !s.HasPlayed() || s.LastMatchDate.Before(since) {
			return
		}
		if s.TotalMatches < r.risingMinMatches || s.TotalMatches >= r.minMatchesRanking {
			return
		}
		if _, best := s.BestRating(); best >= r.risingThreshold {
			out = append(out, entryFor(s, best))
		}
	})
	return top(out, n)
}

func entryFor(s *player.State, rating float64) types.Entry {
	return types.Entry{
		PlayerID:      s.ID,
		Name:          s.Name,
		Rating:        rating,
		Matches:       s.TotalMatches,
		LastMatchDate: s.LastMatchDate,
	}
}

// Sort orders entries by rating desc then id asc.
func Sort(entries []types.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Rating != entries[j].Rating {
			return entries[i].Rating > entries[j].Rating
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
}

// AssignRanks numbers sorted entries with competition ranking: equal
// ratings share a rank and the next distinct rating skips ahead.
func AssignRanks(entries []types.Entry) {
	for i := range entries {
		if i > 0 && entries[i].Rating == entries[i-1].Rating {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

// top sorts entries, keeps the first n (all when n <= 0) and ranks them.
func top(entries []types.Entry, n int) []types.Entry {
	Sort(entries)
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	AssignRanks(entries)
	return entries
}
