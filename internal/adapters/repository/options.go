package repository

// Option applies a configuration option to the TreapStore.
type Option func(*TreapStore)

// WithCapacity presizes the store for n players.
func WithCapacity(n int) Option {
	return func(s *TreapStore) {
		if n > 0 {
			s.byID = make(map[string]record, n)
		}
	}
}

// WithName labels the store in error metrics, e.g. with the surface name.
func WithName(name string) Option {
	return func(s *TreapStore) {
		if name != "" {
			s.name = name
		}
	}
}
