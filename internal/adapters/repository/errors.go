package repository

import "errors"

// Sentinel kinds for rating store errors.
var (
	ErrNotFound    = errors.New("record not found")
	ErrUnavailable = errors.New("rating store unavailable")
)
