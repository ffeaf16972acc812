package session

import (
	"errors"
)

// Sentinel kinds for session errors.
var (
	ErrNoMatchup    = errors.New("no outstanding matchup")
	ErrStaleMatchup = errors.New("vote does not match outstanding matchup")
)
