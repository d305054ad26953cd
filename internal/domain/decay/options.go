package decay

// Option applies a configuration option to the Model.
type Option func(*Model)

// WithRates sets the normal and strong yearly decay rates. Rates outside
// (0, 1] are ignored.
func WithRates(rate, strongRate float64) Option {
	return func(m *Model) {
		if rate > 0 && rate <= 1 {
			m.rate = rate
		}
		if strongRate > 0 && strongRate <= 1 {
			m.strongRate = strongRate
		}
	}
}

// WithThresholds sets the inactivity thresholds in days. Decay starts above
// days and switches to the strong rate above strongDays.
func WithThresholds(days, strongDays int) Option {
	return func(m *Model) {
		if days >= 0 {
			m.thresholdDays = days
		}
		if strongDays >= m.thresholdDays {
			m.strongThresholdDays = strongDays
		}
	}
}

// WithBaseline sets the rating decay pulls toward.
func WithBaseline(baseline float64) Option {
	return func(m *Model) {
		m.baseline = baseline
	}
}
