package repository

import "errors"

// Sentinel kinds for history errors.
var (
	ErrNotFound     = errors.New("shot not found")
	ErrInvalidLimit = errors.New("invalid limit")
	ErrInvalidID    = errors.New("invalid shot id")
)
