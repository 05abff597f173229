package refdata

import "errors"

// Sentinel errors for reference data loading. All of them are fatal for the
// process: the engine cannot run without parseable tables.
var (
	ErrRead      = errors.New("read reference data")
	ErrMalformed = errors.New("malformed reference data")
)
