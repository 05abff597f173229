package benchmark

import "errors"

var (
	// ErrInvalidTable is returned when benchmark data cannot be parsed.
	ErrInvalidTable = errors.New("invalid benchmark table")
	// ErrMissingBenchmarks is returned when the document has no benchmarks object.
	ErrMissingBenchmarks = errors.New("benchmark document has no benchmarks object")
)
