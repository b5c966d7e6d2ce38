package contest

import (
	"context"
	"time"

	"github.com/mgrady/gridiron/internal/domain/types"
)

// Store persists contests and member season statistics. Implementations
// must make SetLock, MarkScored and AddSeasonDelta atomic: the manager's
// correctness guarantees (single scoring pass, lost-update-free pick
// merging) rest on them.
type Store interface {
	// GetContest loads a contest. Returns ErrNotFound if none exists.
	GetContest(ctx context.Context, key types.ContestKey) (*Contest, error)

	// CreateContest persists a new contest. Returns ErrExists if one is
	// already stored for the key.
	CreateContest(ctx context.Context, c *Contest) error

	// UpsertPick inserts or replaces a single member's pick for a single
	// game. The write must touch only that (member, game) row so concurrent
	// submitters never overwrite each other.
	UpsertPick(ctx context.Context, key types.ContestKey, p Pick) error

	// SetLock sets the lock marker if and only if it is unset, atomically.
	// Returns true when this call locked the contest; false leaves the
	// existing marker untouched.
	SetLock(ctx context.Context, key types.ContestKey, l Lock) (bool, error)

	// ClearLock removes the lock marker.
	ClearLock(ctx context.Context, key types.ContestKey) error

	// SaveResults attaches the authoritative game results.
	SaveResults(ctx context.Context, key types.ContestKey, results []types.GameResult) error

	// MarkScored sets the scored marker if and only if it is unset, in one
	// atomic operation. Returns true when this caller won the race.
	MarkScored(ctx context.Context, key types.ContestKey, at time.Time) (bool, error)

	// AddSeasonDelta atomically adds one week's contribution to a member's
	// cumulative season stats and records the per-week line. Increments,
	// never overwrites.
	AddSeasonDelta(ctx context.Context, key types.ContestKey, member types.MemberID, displayName string, line WeekLine) error

	// SeasonStats returns every member's cumulative stats for a season, in
	// no particular order.
	SeasonStats(ctx context.Context, guild types.GuildID, league types.LeagueID, season types.Season) ([]MemberSeasonStats, error)
}
