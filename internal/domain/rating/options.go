package rating

// Option applies a configuration option to the Calculator.
type Option func(*Calculator)

// WithKFactor sets the dynamic K-factor shape. Non-positive base or offset
// and shape values are ignored.
func WithKFactor(base, offset, shape float64) Option {
	return func(c *Calculator) {
		if base > 0 {
			c.kBase = base
		}
		if offset > 0 {
			c.kOffset = offset
		}
		if shape > 0 {
			c.kShape = shape
		}
	}
}

// WithTournamentWeights replaces the tournament weight table. The map is
// copied so later changes by the caller have no effect.
func WithTournamentWeights(weights map[string]float64) Option {
	return func(c *Calculator) {
		if weights == nil {
			return
		}
		c.weights = make(map[string]float64, len(weights))
		for level, w := range weights {
			if w > 0 {
				c.weights[level] = w
			}
		}
	}
}

// WithPenalty sets the experience penalty curve. A cap below 1 is raised to 1.
func WithPenalty(p PenaltyParams) Option {
	return func(c *Calculator) {
		if p.Cap < 1 {
			p.Cap = 1
		}
		c.penalty = p
	}
}
