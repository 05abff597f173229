package repository

import "time"

// Option applies a configuration option to the HistoryStore.
type Option func(*HistoryStore)

// WithCapacity sets how many shots are kept. The oldest shot is dropped
// once the limit is reached.
func WithCapacity(n int) Option {
	return func(s *HistoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock sets the time source for StoredAt.
func WithClock(now func() time.Time) Option {
	return func(s *HistoryStore) {
		if now != nil {
			s.now = now
		}
	}
}
