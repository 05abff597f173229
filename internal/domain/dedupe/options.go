package dedupe

// Option applies a configuration option to the deduper.
type Option func(*ringDeduper)

// WithMaxSize sets how many keys are remembered.
// If maxSize > 0 the oldest key is forgotten once the limit is reached.
// If maxSize <= 0 keys are never forgotten.
func WithMaxSize(maxSize int) Option {
	return func(d *ringDeduper) {
		d.maxSize = maxSize
	}
}
