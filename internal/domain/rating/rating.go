// Package rating holds the stateless ELO arithmetic: expected score,
// tournament weighting, margin of victory, the experience-based K-factor and
// the experience penalty.
package rating

import (
	"math"
)

// Defaults for the dynamic K-factor and the experience penalty.
const (
	DefaultKBase   = 250.0
	DefaultKOffset = 5.0
	DefaultKShape  = 0.4

	DefaultPenaltyThreshold  = 150
	DefaultPenaltyScale      = 400.0
	DefaultPenaltyMaxExtra   = 0.15
	DefaultPenaltyCap        = 1.2
	DefaultPenaltyLinearRate = 0.0005

	eloScale = 400.0
)

// Margin-of-victory bands over the winner's share of games.
const (
	movDominant = 0.75
	movSolid    = 0.65
	movClose    = 0.55

	movDominantMult  = 1.2
	movSolidMult     = 1.1
	movCloseMult     = 1.0
	movVeryCloseMult = 0.9
)

// ExpectedScore is the logistic probability that a player rated a beats a
// player rated b. ExpectedScore(a, b) + ExpectedScore(b, a) == 1.
func ExpectedScore(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/eloScale))
}

// MOVMultiplier grades how lopsided a win was from the games each side won.
// ok=false (score unknown) or zero games played is neutral.
func MOVMultiplier(winnerGames, loserGames int, ok bool) float64 {
	total := winnerGames + loserGames
	if !ok || total <= 0 {
		return 1.0
	}
	r := float64(winnerGames) / float64(total)
	switch {
	case r >= movDominant:
		return movDominantMult
	case r >= movSolid:
		return movSolidMult
	case r >= movClose:
		return movCloseMult
	default:
		return movVeryCloseMult
	}
}

// Calculator evaluates the configurable parts of the rating math. It is
// immutable after construction and safe to share.
type Calculator struct {
	kBase   float64
	kOffset float64
	kShape  float64

	weights map[string]float64

	penalty   PenaltyParams
	penaltyFn func(excess float64) float64
}

// NewCalculator builds a Calculator from defaults overridden by opts.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		kBase:   DefaultKBase,
		kOffset: DefaultKOffset,
		kShape:  DefaultKShape,
		weights: map[string]float64{
			"G": 1.5,
			"M": 1.25,
			"A": 1.0,
			"D": 1.0,
		},
		penalty: DefaultPenaltyParams(),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.penaltyFn = c.penalty.curve()
	return c
}

// TournamentWeight returns the K multiplier for a tournament level code.
// Unknown codes weigh 1.0.
func (c *Calculator) TournamentWeight(level string) float64 {
	if w, ok := c.weights[level]; ok {
		return w
	}
	return 1.0
}

// DynamicKFactor returns KBase / (matches + KOffset)^KShape. It strictly
// decreases with experience for KShape > 0.
func (c *Calculator) DynamicKFactor(matches int) float64 {
	if matches < 0 {
		matches = 0
	}
	return c.kBase / math.Pow(float64(matches)+c.kOffset, c.kShape)
}

// ExperiencePenalty returns 1.0 below the threshold and a value in
// [1, cap] above it, non-decreasing in totalMatches.
func (c *Calculator) ExperiencePenalty(totalMatches int) float64 {
	if totalMatches < c.penalty.Threshold {
		return 1.0
	}
	p := c.penaltyFn(float64(totalMatches - c.penalty.Threshold))
	if p < 1 {
		return 1.0
	}
	if p > c.penalty.Cap {
		return c.penalty.Cap
	}
	return p
}

// PenaltyStrategy reports the configured penalty curve.
func (c *Calculator) PenaltyStrategy() PenaltyStrategy {
	return c.penalty.Strategy
}
