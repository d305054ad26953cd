package rating

import (
	"fmt"
	"math"
	"strings"
)

// PenaltyStrategy selects the experience penalty curve.
type PenaltyStrategy int

// Penalty curves. Each maps the matches played beyond the threshold to a
// factor >= 1 before the cap is applied.
const (
	// PenaltyPlateau is 1 + maxExtra * (1 - e^(-excess/scale)).
	PenaltyPlateau PenaltyStrategy = iota
	// PenaltyLinear is 1 + linearRate * excess.
	PenaltyLinear
	// PenaltyLogarithmic is 1 + maxExtra * ln(1 + excess/scale).
	PenaltyLogarithmic
	// PenaltyNone disables the penalty.
	PenaltyNone
)

var penaltyNames = map[PenaltyStrategy]string{
	PenaltyPlateau:     "plateau",
	PenaltyLinear:      "linear",
	PenaltyLogarithmic: "logarithmic",
	PenaltyNone:        "none",
}

func (s PenaltyStrategy) String() string {
	if n, ok := penaltyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("PenaltyStrategy(%d)", int(s))
}

// ParsePenaltyStrategy maps a configuration name to a strategy.
func ParsePenaltyStrategy(name string) (PenaltyStrategy, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for s, sn := range penaltyNames {
		if sn == n {
			return s, nil
		}
	}
	return PenaltyNone, fmt.Errorf("%w: %q", ErrUnknownPenaltyStrategy, name)
}

// PenaltyParams configures ExperiencePenalty.
type PenaltyParams struct {
	Strategy   PenaltyStrategy
	Threshold  int     // career matches before any penalty
	Scale      float64 // matches over which plateau/log curves develop
	MaxExtra   float64 // plateau height above 1 / log coefficient
	Cap        float64 // absolute upper bound on the factor
	LinearRate float64 // per-match increase for PenaltyLinear
}

// DefaultPenaltyParams is the plateau curve 1 + 0.15(1 - e^(-excess/400))
// starting at 150 matches and capped at 1.2.
func DefaultPenaltyParams() PenaltyParams {
	return PenaltyParams{
		Strategy:   PenaltyPlateau,
		Threshold:  DefaultPenaltyThreshold,
		Scale:      DefaultPenaltyScale,
		MaxExtra:   DefaultPenaltyMaxExtra,
		Cap:        DefaultPenaltyCap,
		LinearRate: DefaultPenaltyLinearRate,
	}
}

func (p PenaltyParams) curve() func(excess float64) float64 {
	scale := p.Scale
	if scale <= 0 {
		scale = DefaultPenaltyScale
	}
	switch p.Strategy {
	case PenaltyPlateau:
		return func(excess float64) float64 {
			return 1 + p.MaxExtra*(1-math.Exp(-excess/scale))
		}
	case PenaltyLinear:
		return func(excess float64) float64 {
			return 1 + p.LinearRate*excess
		}
	case PenaltyLogarithmic:
		return func(excess float64) float64 {
			return 1 + p.MaxExtra*math.Log1p(excess/scale)
		}
	default:
		return func(float64) float64 { return 1 }
	}
}
