// Package types contains identifier types and shared league primitives used
// across the analytics engine.
package types

import (
	"fmt"
	"strings"
)

// Identifier types. Keeping them distinct prevents a member id from being
// passed where a team id is expected.
type (
	// GuildID identifies a chat-platform guild (server).
	GuildID string
	// LeagueID identifies a fantasy league inside a guild.
	LeagueID string
	// MemberID identifies a guild member.
	MemberID string
	// TeamID identifies a league team.
	TeamID string
	// GameID identifies a scheduled game.
	GameID string
)

// Season is a league year, e.g. 2025.
type Season int

// Week is a 1-based week number within a season.
type Week int

// Week bounds cover a regular season plus playoffs.
const (
	MinWeek Week = 1
	MaxWeek Week = 23

	MinSeason Season = 1960
	MaxSeason Season = 2100
)

// ContestKey addresses one week's pick'em contest.
type ContestKey struct {
	Guild  GuildID
	League LeagueID
	Season Season
	Week   Week
}

// String renders the key as guild/league/season/week.
func (k ContestKey) String() string {
	return fmt.Sprintf("%s/%s/%d/%d", k.Guild, k.League, k.Season, k.Week)
}

// Validate checks every component of the key.
func (k ContestKey) Validate() error {
	if strings.TrimSpace(string(k.Guild)) == "" {
		return fmt.Errorf("%w: empty guild id", ErrInvalidID)
	}
	if strings.TrimSpace(string(k.League)) == "" {
		return fmt.Errorf("%w: empty league id", ErrInvalidID)
	}
	if err := k.Season.Validate(); err != nil {
		return err
	}
	return k.Week.Validate()
}

// Validate checks the season is in a plausible range.
func (s Season) Validate() error {
	if s < MinSeason || s > MaxSeason {
		return fmt.Errorf("%w: season %d out of range [%d, %d]", ErrOutOfRange, s, MinSeason, MaxSeason)
	}
	return nil
}

// Validate checks the week is in range.
func (w Week) Validate() error {
	if w < MinWeek || w > MaxWeek {
		return fmt.Errorf("%w: week %d out of range [%d, %d]", ErrOutOfRange, w, MinWeek, MaxWeek)
	}
	return nil
}

// ValidateMember checks a member id is non-empty.
func ValidateMember(m MemberID) error {
	if strings.TrimSpace(string(m)) == "" {
		return fmt.Errorf("%w: empty member id", ErrInvalidID)
	}
	return nil
}

// Game is one scheduled matchup.
type Game struct {
	ID     GameID `json:"id"`
	Season Season `json:"season"`
	Week   Week   `json:"week"`
	// Slot orders games within a week; earlier slots kick off first.
	Slot int    `json:"slot"`
	Home TeamID `json:"home"`
	Away TeamID `json:"away"`
	// Divisional marks a rivalry/divisional matchup.
	Divisional bool `json:"divisional"`
}

// TeamRecord is one team's standings row.
type TeamRecord struct {
	TeamID TeamID `json:"team_id"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Ties   int    `json:"ties"`
}

// WinPct returns the team's winning percentage in [0, 1], counting ties as
// half a win. Teams with no games return 0.
func (r TeamRecord) WinPct() float64 {
	games := r.Wins + r.Losses + r.Ties
	if games == 0 {
		return 0
	}
	return (float64(r.Wins) + 0.5*float64(r.Ties)) / float64(games)
}

// GameResult is the authoritative outcome of one game.
type GameResult struct {
	GameID    GameID `json:"game_id"`
	Winner    TeamID `json:"winner"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}
