// Package power computes a single comparable power score per team from its
// season-to-date game log.
package power

import (
	"context"
	"sort"

	"github.com/mgrady/gridiron/internal/domain/types"
)

// Default composite weights. Scoring margin dominates, yardage differential
// is secondary, turnovers tertiary. Tunable via options and configuration.
const (
	defaultMarginWeight   = 1.0
	defaultYardsWeight    = 0.6
	defaultTurnoverWeight = 0.35

	// Yardage differential is normalized per ten yards so its magnitude is
	// comparable with per-game point margins.
	yardsNormalizer = 10.0
)

// TeamSeasonRecord is one team's aggregated game log for a season.
type TeamSeasonRecord struct {
	TeamID types.TeamID

	GamesPlayed int
	Wins        int
	Losses      int
	Ties        int

	PointsFor     int
	PointsAgainst int

	OffensiveYards int
	OffensivePlays int
	DefensiveYards int
	DefensivePlays int

	Takeaways int
	Giveaways int

	Opponents []types.TeamID
}

// Score is a team's computed power score and rank. Higher is better; only
// relative ordering matters within one computation.
type Score struct {
	TeamID types.TeamID `json:"team_id"`
	Score  float64      `json:"score"`
	Rank   int          `json:"rank"`
}

// Estimator converts season records into ranked power scores.
type Estimator struct {
	marginWeight   float64
	yardsWeight    float64
	turnoverWeight float64
}

// Option applies a configuration option to the Estimator.
type Option func(*Estimator)

// WithWeights sets the composite weights. Non-positive values keep defaults.
func WithWeights(margin, yards, turnover float64) Option {
	return func(e *Estimator) {
		if margin > 0 {
			e.marginWeight = margin
		}
		if yards > 0 {
			e.yardsWeight = yards
		}
		if turnover > 0 {
			e.turnoverWeight = turnover
		}
	}
}

// NewEstimator creates an Estimator with configuration options.
func NewEstimator(opts ...Option) *Estimator {
	e := &Estimator{
		marginWeight:   defaultMarginWeight,
		yardsWeight:    defaultYardsWeight,
		turnoverWeight: defaultTurnoverWeight,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rankings computes one Score per input record, ordered best first.
// Deterministic: identical input yields identical scores and ordering.
// Empty input yields an empty slice.
func (e *Estimator) Rankings(_ context.Context, records []TeamSeasonRecord) []Score {
	scores := make([]Score, 0, len(records))
	for _, rec := range records {
		scores = append(scores, Score{TeamID: rec.TeamID, Score: e.score(rec)})
	}

	// Order by score desc, team id asc. The id tie-break keeps ranks stable
	// across repeated computations.
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].TeamID < scores[j].TeamID
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
	return scores
}

// score computes the weighted composite for one team. Teams with zero games
// played score zero, never NaN.
func (e *Estimator) score(rec TeamSeasonRecord) float64 {
	if rec.GamesPlayed <= 0 {
		return 0
	}
	games := float64(rec.GamesPlayed)

	margin := float64(rec.PointsFor-rec.PointsAgainst) / games
	yardDiff := float64(rec.OffensiveYards-rec.DefensiveYards) / games / yardsNormalizer
	turnovers := float64(rec.Takeaways-rec.Giveaways) / games

	return e.marginWeight*margin + e.yardsWeight*yardDiff + e.turnoverWeight*turnovers
}

// LeagueAverage returns the mean of the given scores, used as the neutral
// substitute for teams with no history. Empty input returns 0.
func LeagueAverage(scores []Score) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s.Score
	}
	return sum / float64(len(scores))
}
