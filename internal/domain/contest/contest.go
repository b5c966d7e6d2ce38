// Package contest implements the weekly pick'em contest state machine:
// OPEN for member picks, LOCKED against further mutation, SCORED exactly
// once against real results.
package contest

import (
	"math"
	"time"

	"github.com/mgrady/gridiron/internal/domain/types"
)

// State is the derived lifecycle state of a contest.
type State string

const (
	StateOpen   State = "OPEN"
	StateLocked State = "LOCKED"
	StateScored State = "SCORED"
)

// LockTrigger records what caused a lock transition.
type LockTrigger string

const (
	// LockTriggerManual is an explicit admin lock.
	LockTriggerManual LockTrigger = "manual"
	// LockTriggerBroadcast is the implicit lock on a live-broadcast start.
	LockTriggerBroadcast LockTrigger = "broadcast"
)

// BaselinePick is the persisted snapshot of one baseline prediction the
// contest was seeded with.
type BaselinePick struct {
	GameID      types.GameID `json:"game_id"`
	Winner      types.TeamID `json:"winner"`
	WinnerScore int          `json:"winner_score"`
	LoserScore  int          `json:"loser_score"`
	Confidence  int          `json:"confidence"`
	HomeRank    int          `json:"home_rank"`
	AwayRank    int          `json:"away_rank"`
	Reasoning   string       `json:"reasoning"`
}

// Pick is one member's predicted winner for one game.
type Pick struct {
	Member      types.MemberID `json:"member"`
	DisplayName string         `json:"display_name"`
	GameID      types.GameID   `json:"game_id"`
	Winner      types.TeamID   `json:"winner"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// Lock is the lock marker on a contest.
type Lock struct {
	At      time.Time   `json:"at"`
	Trigger LockTrigger `json:"trigger"`
	// Actor is the admin who locked manually; empty for broadcast locks.
	Actor string `json:"actor,omitempty"`
}

// Contest is one week's pick'em aggregate.
type Contest struct {
	Key       types.ContestKey   `json:"key"`
	Baseline  []BaselinePick     `json:"baseline"`
	Picks     []Pick             `json:"picks"`
	Results   []types.GameResult `json:"results,omitempty"`
	Lock      *Lock              `json:"lock,omitempty"`
	ScoredAt  *time.Time         `json:"scored_at,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// State derives the lifecycle state. A contest is LOCKED implicitly once
// results exist, even without an explicit lock marker.
func (c *Contest) State() State {
	switch {
	case c.ScoredAt != nil:
		return StateScored
	case c.Lock != nil || len(c.Results) > 0:
		return StateLocked
	default:
		return StateOpen
	}
}

// HasGame reports whether gameID is part of this contest.
func (c *Contest) HasGame(gameID types.GameID) bool {
	for _, b := range c.Baseline {
		if b.GameID == gameID {
			return true
		}
	}
	return false
}

// WeekLine is one week's scoring contribution for a member.
type WeekLine struct {
	Week         types.Week `json:"week"`
	TotalPicks   int        `json:"total_picks"`
	CorrectPicks int        `json:"correct_picks"`
}

// MemberSeasonStats is a member's cumulative season record in the contest.
type MemberSeasonStats struct {
	Guild       types.GuildID  `json:"guild"`
	League      types.LeagueID `json:"league"`
	Season      types.Season   `json:"season"`
	Member      types.MemberID `json:"member"`
	DisplayName string         `json:"display_name"`

	TotalPicks   int `json:"total_picks"`
	CorrectPicks int `json:"correct_picks"`
	// Accuracy is the correct-pick percentage, derived from the totals.
	Accuracy float64    `json:"accuracy"`
	Weeks    []WeekLine `json:"weeks"`
}

// ComputeAccuracy fills Accuracy from the totals, rounded to one decimal.
func (s *MemberSeasonStats) ComputeAccuracy() {
	if s.TotalPicks == 0 {
		s.Accuracy = 0
		return
	}
	pct := 100 * float64(s.CorrectPicks) / float64(s.TotalPicks)
	s.Accuracy = math.Round(pct*10) / 10
}
