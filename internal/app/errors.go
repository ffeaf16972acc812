package service

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrUnknownSession = errors.New("unknown session")
	ErrUnknownItem    = errors.New("unknown item")
	ErrSameItem       = errors.New("winner and loser must differ")
)
