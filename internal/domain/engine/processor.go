// Package engine folds match events into a player roster: Processor applies
// one match, Batch drives an ordered sequence of them and triggers decay.
package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/surfelo/internal/domain/model"
	"github.com/okian/surfelo/internal/domain/player"
	"github.com/okian/surfelo/internal/domain/rating"
)

// Outcome describes one applied match. Before values are pre-match ratings
// on the match surface.
type Outcome struct {
	WinnerID string
	LoserID  string
	Surface  model.Surface
	Date     time.Time

	Expected float64 // winner's expected score
	Weight   float64 // tournament weight
	// MOV is the margin-of-victory multiplier. It is reported only and does
	// not scale K.
	MOV float64

	WinnerK       float64
	LoserK        float64
	WinnerPenalty float64
	LoserPenalty  float64

	WinnerBefore float64
	WinnerAfter  float64
	LoserBefore  float64
	LoserAfter   float64
}

// WinnerDelta is the winner's rating change.
func (o Outcome) WinnerDelta() float64 { return o.WinnerAfter - o.WinnerBefore }

// LoserDelta is the loser's rating change (negative).
func (o Outcome) LoserDelta() float64 { return o.LoserAfter - o.LoserBefore }

// Suspicious reports whether either side moved by more than limit points.
// A non-positive limit disables the check.
func (o Outcome) Suspicious(limit float64) bool {
	if limit <= 0 {
		return false
	}
	return math.Abs(o.WinnerDelta()) > limit || math.Abs(o.LoserDelta()) > limit
}

// Processor applies single matches to a roster. It holds no player state.
type Processor struct {
	calc *rating.Calculator
}

// NewProcessor creates a Processor.
func NewProcessor(opts ...Option) *Processor {
	p := &Processor{
		calc: rating.NewCalculator(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Calculator returns the rating math in use.
func (p *Processor) Calculator() *rating.Calculator {
	return p.calc
}

// Process applies ev to roster and reports whether it was valid. An invalid
// event leaves roster untouched.
func (p *Processor) Process(roster *player.Roster, ev model.MatchEvent) bool {
	_, err := p.Apply(roster, ev)
	return err == nil
}

// Apply validates ev, updates both players and returns the details. On error
// (wrapping ErrMalformedEvent) roster is not modified.
func (p *Processor) Apply(roster *player.Roster, ev model.MatchEvent) (Outcome, error) {
	date, err := validate(roster, ev)
	if err != nil {
		return Outcome{}, err
	}
	winnerID, loserID := strings.TrimSpace(ev.WinnerID), strings.TrimSpace(ev.LoserID)

	winner := roster.GetOrCreate(winnerID)
	loser := roster.GetOrCreate(loserID)
	winner.Rename(ev.WinnerName)
	loser.Rename(ev.LoserName)

	// Both sides are computed from pre-match values.
	wr, lr := winner.Ratings[ev.Surface], loser.Ratings[ev.Surface]
	wm, lm := winner.MatchesPlayed[ev.Surface], loser.MatchesPlayed[ev.Surface]
	wt, lt := winner.TotalMatches, loser.TotalMatches

	o := Outcome{
		WinnerID:     winnerID,
		LoserID:      loserID,
		Surface:      ev.Surface,
		Date:         date,
		Expected:     rating.ExpectedScore(wr, lr),
		Weight:       p.calc.TournamentWeight(strings.TrimSpace(ev.TourneyLvl)),
		WinnerBefore: wr,
		LoserBefore:  lr,
	}
	wg, lg, ok := ev.Games()
	o.MOV = rating.MOVMultiplier(wg, lg, ok)

	o.WinnerK = p.calc.DynamicKFactor(wm) * o.Weight
	o.LoserK = p.calc.DynamicKFactor(lm) * o.Weight
	o.WinnerPenalty = p.calc.ExperiencePenalty(wt)
	o.LoserPenalty = p.calc.ExperiencePenalty(lt)

	// Veterans gain less on a win and lose more on a loss.
	o.WinnerAfter = wr + o.WinnerK*(1-o.Expected)/o.WinnerPenalty
	o.LoserAfter = lr + o.LoserK*(o.Expected-1)*o.LoserPenalty

	winner.RecordMatch(ev.Surface, o.WinnerAfter, date)
	loser.RecordMatch(ev.Surface, o.LoserAfter, date)

	return o, nil
}

func validate(roster *player.Roster, ev model.MatchEvent) (time.Time, error) {
	w, l := strings.TrimSpace(ev.WinnerID), strings.TrimSpace(ev.LoserID)
	if w == "" || l == "" {
		return time.Time{}, ErrMissingID
	}
	if w == l {
		return time.Time{}, fmt.Errorf("%w: %s", ErrSamePlayer, w)
	}
	if !roster.ValidSurface(ev.Surface) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSurface, ev.Surface)
	}
	date, ok := ev.Date()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, ev.TourneyDate)
	}
	return date, nil
}
