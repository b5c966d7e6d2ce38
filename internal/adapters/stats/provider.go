// Package stats defines the contract for the external statistics store that
// supplies standings, schedules, game logs and final results.
package stats

import (
	"context"

	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/types"
)

// Provider reads league statistics. Implementations talk to the remote
// statistics store; StaticProvider serves fixtures for tests and simulation.
type Provider interface {
	// Standings returns the season's standings rows.
	Standings(ctx context.Context, season types.Season) ([]types.TeamRecord, error)

	// WeekSchedule returns the games scheduled for one week.
	WeekSchedule(ctx context.Context, season types.Season, week types.Week) ([]types.Game, error)

	// GameResult returns the final result of a game.
	// Returns ErrNoResult while the game has no final result.
	GameResult(ctx context.Context, gameID types.GameID) (types.GameResult, error)

	// TeamSeasonRecords returns the per-team aggregated game logs used by
	// the power estimator.
	TeamSeasonRecords(ctx context.Context, season types.Season) ([]power.TeamSeasonRecord, error)
}
