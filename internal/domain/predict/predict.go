// Package predict forecasts game outcomes from power scores and standings.
package predict

import (
	"context"
	"fmt"
	"math"

	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/types"
)

// Default prediction tuning. These read as product-tuning choices, so they
// are configurable rather than load-bearing invariants.
const (
	defaultHomeFieldBonus  = 2.5
	defaultMarginDivisor   = 2.25
	defaultBaseLoserScore  = 17
	defaultMaxMargin       = 28
	defaultConfidenceSlope = 1.5

	minConfidence = 50
	maxConfidence = 95
)

// Prediction is the forecast for one game.
type Prediction struct {
	GameID            types.GameID `json:"game_id"`
	Winner            types.TeamID `json:"winner"`
	WinnerScore       int          `json:"winner_score"`
	LoserScore        int          `json:"loser_score"`
	Confidence        int          `json:"confidence"`
	HomeTeamPowerRank int          `json:"home_team_power_rank"`
	AwayTeamPowerRank int          `json:"away_team_power_rank"`
	Reasoning         string       `json:"reasoning"`
}

// Predictor forecasts winners, plausible scores and confidence.
type Predictor struct {
	homeFieldBonus  float64
	marginDivisor   float64
	baseLoserScore  int
	maxMargin       int
	confidenceSlope float64
}

// Option applies a configuration option to the Predictor.
type Option func(*Predictor)

// WithHomeFieldBonus sets the home-field power adjustment.
func WithHomeFieldBonus(bonus float64) Option {
	return func(p *Predictor) {
		if bonus >= 0 {
			p.homeFieldBonus = bonus
		}
	}
}

// WithScoreCurve sets the gap-to-margin divisor, base loser score and the
// margin cap. Non-positive values keep defaults.
func WithScoreCurve(divisor float64, baseLoser, maxMargin int) Option {
	return func(p *Predictor) {
		if divisor > 0 {
			p.marginDivisor = divisor
		}
		if baseLoser > 0 {
			p.baseLoserScore = baseLoser
		}
		if maxMargin > 0 {
			p.maxMargin = maxMargin
		}
	}
}

// WithConfidenceSlope sets the gap-to-confidence slope.
func WithConfidenceSlope(slope float64) Option {
	return func(p *Predictor) {
		if slope > 0 {
			p.confidenceSlope = slope
		}
	}
}

// New creates a Predictor with configuration options.
func New(opts ...Option) *Predictor {
	p := &Predictor{
		homeFieldBonus:  defaultHomeFieldBonus,
		marginDivisor:   defaultMarginDivisor,
		baseLoserScore:  defaultBaseLoserScore,
		maxMargin:       defaultMaxMargin,
		confidenceSlope: defaultConfidenceSlope,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PredictWeek forecasts every scheduled game. Teams absent from the power
// list get the league-average score substituted rather than failing.
// Deterministic given identical inputs.
func (p *Predictor) PredictWeek(_ context.Context, games []types.Game, scores []power.Score, standings []types.TeamRecord) []Prediction {
	byTeam := make(map[types.TeamID]power.Score, len(scores))
	for _, s := range scores {
		byTeam[s.TeamID] = s
	}
	neutral := power.LeagueAverage(scores)
	records := make(map[types.TeamID]types.TeamRecord, len(standings))
	for _, r := range standings {
		records[r.TeamID] = r
	}

	preds := make([]Prediction, 0, len(games))
	for _, g := range games {
		preds = append(preds, p.predict(g, byTeam, neutral, records))
	}
	return preds
}

func (p *Predictor) predict(g types.Game, byTeam map[types.TeamID]power.Score, neutral float64, records map[types.TeamID]types.TeamRecord) Prediction {
	homeScore, homeRank := lookup(byTeam, g.Home, neutral)
	awayScore, awayRank := lookup(byTeam, g.Away, neutral)

	// Positive gap favors the home team. Ties go to the home side via the
	// home-field bonus.
	gap := homeScore - awayScore + p.homeFieldBonus

	winner, loser := g.Home, g.Away
	if gap < 0 {
		winner, loser = g.Away, g.Home
	}
	magnitude := math.Abs(gap)

	margin := int(math.Round(magnitude / p.marginDivisor))
	if margin < 1 {
		margin = 1
	}
	if margin > p.maxMargin {
		margin = p.maxMargin
	}

	confidence := int(math.Round(minConfidence + p.confidenceSlope*magnitude))
	if confidence < minConfidence {
		confidence = minConfidence
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}

	reasoning := fmt.Sprintf("%s favored by %d over %s (power gap %.1f incl. home field", winner, margin, loser, gap)
	if wr, ok := records[winner]; ok {
		reasoning += fmt.Sprintf("; %d-%d record", wr.Wins, wr.Losses)
	}
	reasoning += ")"

	return Prediction{
		GameID:            g.ID,
		Winner:            winner,
		WinnerScore:       p.baseLoserScore + margin,
		LoserScore:        p.baseLoserScore,
		Confidence:        confidence,
		HomeTeamPowerRank: homeRank,
		AwayTeamPowerRank: awayRank,
		Reasoning:         reasoning,
	}
}

// lookup returns a team's power score, substituting the league average (rank
// 0) for teams with no history.
func lookup(byTeam map[types.TeamID]power.Score, team types.TeamID, neutral float64) (float64, int) {
	if s, ok := byTeam[team]; ok {
		return s.Score, s.Rank
	}
	return neutral, 0
}
