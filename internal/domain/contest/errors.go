package contest

import "errors"

// Sentinel kinds for contest operations. Callers match with errors.Is.
var (
	// ErrNotFound means no contest exists for the key.
	ErrNotFound = errors.New("contest not found")
	// ErrExists means a contest already exists for the key.
	ErrExists = errors.New("contest already exists")
	// ErrLocked signals a pick mutation against a locked contest.
	ErrLocked = errors.New("contest is locked")
	// ErrScored signals a mutation against a scored contest.
	ErrScored = errors.New("contest already scored")
	// ErrUnknownGame signals a pick for a game outside the contest.
	ErrUnknownGame = errors.New("game not part of contest")
	// ErrNoPicks signals an empty pick submission.
	ErrNoPicks = errors.New("no picks submitted")
)
