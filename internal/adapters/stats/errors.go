package stats

import "errors"

// Sentinel kinds for statistics lookups.
var (
	// ErrNoResult means the game has no final result yet. Benign absence,
	// not a failure.
	ErrNoResult = errors.New("no result for game")

	// ErrUnknownGame means the game id is not on any schedule.
	ErrUnknownGame = errors.New("unknown game")
)
