package config

import (
	"errors"
)

var (
	// ErrInvalidConfig marks a loaded configuration that fails Validate.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrLoadConfig marks a file or environment source that could not be read.
	ErrLoadConfig = errors.New("load config failed")
	// ErrShapeThresholds marks threshold settings the shape classifier cannot use.
	ErrShapeThresholds = errors.New("bad shape thresholds")
)
