// Package marquee ranks a week's games by watchability and selects the
// single Game of the Week.
package marquee

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/predict"
	"github.com/mgrady/gridiron/internal/domain/types"
)

// Default composite weights. Competitiveness dominates: a coin-flip game
// beats a star-powered blowout.
const (
	defaultCompetitivenessWeight = 0.40
	defaultQualityWeight         = 0.30
	defaultStakesWeight          = 0.20
	defaultRivalryWeight         = 0.10

	// Confidence spans [50, 95]; the span maps onto competitiveness.
	confidenceFloor = 50.0
	confidenceSpan  = 45.0
)

// Selection is the chosen marquee game.
type Selection struct {
	GameID         types.GameID `json:"game_id"`
	CompositeScore float64      `json:"composite_score"`
	// ReasoningPoints are ordered, human-readable selection reasons.
	ReasoningPoints []string `json:"reasoning_points"`
}

// Selector picks the most watchable game of a week.
type Selector struct {
	competitivenessWeight float64
	qualityWeight         float64
	stakesWeight          float64
	rivalryWeight         float64
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithWeights sets the composite weights. Non-positive values keep defaults.
func WithWeights(competitiveness, quality, stakes, rivalry float64) Option {
	return func(s *Selector) {
		if competitiveness > 0 {
			s.competitivenessWeight = competitiveness
		}
		if quality > 0 {
			s.qualityWeight = quality
		}
		if stakes > 0 {
			s.stakesWeight = stakes
		}
		if rivalry > 0 {
			s.rivalryWeight = rivalry
		}
	}
}

// New creates a Selector with configuration options.
func New(opts ...Option) *Selector {
	s := &Selector{
		competitivenessWeight: defaultCompetitivenessWeight,
		qualityWeight:         defaultQualityWeight,
		stakesWeight:          defaultStakesWeight,
		rivalryWeight:         defaultRivalryWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// candidate pairs a game with its composite score.
type candidate struct {
	game    types.Game
	score   float64
	reasons []string
}

// Select returns the highest-scoring game of the week. Ties break to the
// earlier schedule slot. Returns ErrNoGames for an empty week. When power
// scores are unavailable the quality term degrades to standings records.
func (s *Selector) Select(_ context.Context, games []types.Game, predictions []predict.Prediction, scores []power.Score, standings []types.TeamRecord) (Selection, error) {
	if len(games) == 0 {
		return Selection{}, ErrNoGames
	}

	predByGame := make(map[types.GameID]predict.Prediction, len(predictions))
	for _, p := range predictions {
		predByGame[p.GameID] = p
	}
	powerByTeam := make(map[types.TeamID]power.Score, len(scores))
	var maxPower float64
	for _, sc := range scores {
		powerByTeam[sc.TeamID] = sc
		if sc.Score > maxPower {
			maxPower = sc.Score
		}
	}
	recordByTeam := make(map[types.TeamID]types.TeamRecord, len(standings))
	for _, r := range standings {
		recordByTeam[r.TeamID] = r
	}

	cands := make([]candidate, 0, len(games))
	for _, g := range games {
		cands = append(cands, s.evaluate(g, predByGame, powerByTeam, maxPower, recordByTeam))
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].game.Slot < cands[j].game.Slot
	})

	best := cands[0]
	return Selection{
		GameID:          best.game.ID,
		CompositeScore:  math.Round(best.score*10) / 10,
		ReasoningPoints: best.reasons,
	}, nil
}

func (s *Selector) evaluate(g types.Game, preds map[types.GameID]predict.Prediction, powers map[types.TeamID]power.Score, maxPower float64, records map[types.TeamID]types.TeamRecord) candidate {
	reasons := make([]string, 0, 4)

	// Competitiveness: near-50% confidence scores higher than a blowout.
	competitiveness := 50.0
	if p, ok := preds[g.ID]; ok {
		competitiveness = 100 * (1 - (float64(p.Confidence)-confidenceFloor)/confidenceSpan)
		if competitiveness < 0 {
			competitiveness = 0
		}
		reasons = append(reasons, fmt.Sprintf("projected margin of %d (%d%% confidence)", p.WinnerScore-p.LoserScore, p.Confidence))
	}

	// Quality: normalized combined power, degrading to standings records
	// when no power scores are available.
	var quality float64
	homePower, homeOK := powers[g.Home]
	awayPower, awayOK := powers[g.Away]
	switch {
	case homeOK && awayOK && maxPower > 0:
		quality = 100 * (homePower.Score + awayPower.Score) / (2 * maxPower)
		reasons = append(reasons, fmt.Sprintf("power ranks #%d vs #%d", homePower.Rank, awayPower.Rank))
	default:
		quality = 100 * (records[g.Home].WinPct() + records[g.Away].WinPct()) / 2
		reasons = append(reasons, "quality judged on records")
	}
	quality = clamp(quality, 0, 100)

	// Stakes: both teams in the playoff hunt raise the stakes.
	stakes := 100 * (records[g.Home].WinPct() + records[g.Away].WinPct()) / 2
	if stakes > 60 {
		reasons = append(reasons, "both teams in the playoff hunt")
	}

	var rivalry float64
	if g.Divisional {
		rivalry = 100
		reasons = append(reasons, "divisional rivalry")
	}

	score := s.competitivenessWeight*competitiveness +
		s.qualityWeight*quality +
		s.stakesWeight*stakes +
		s.rivalryWeight*rivalry
	return candidate{game: g, score: clamp(score, 0, 100), reasons: reasons}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
