package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrStart      = errors.New("service start failed")
	ErrNotStarted = errors.New("service not started")
)
