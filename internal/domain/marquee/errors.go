package marquee

import "errors"

// ErrNoGames indicates an empty week schedule was supplied.
var ErrNoGames = errors.New("no games to select from")
