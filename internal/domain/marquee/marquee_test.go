package marquee_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mgrady/gridiron/internal/domain/marquee"
	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/predict"
	"github.com/mgrady/gridiron/internal/domain/types"
)

func TestSelect(t *testing.T) {
	Convey("Given a default selector", t, func() {
		sel := marquee.New()
		ctx := context.Background()

		scores := []power.Score{
			{TeamID: "a", Score: 80, Rank: 1},
			{TeamID: "b", Score: 78, Rank: 2},
			{TeamID: "c", Score: 40, Rank: 3},
			{TeamID: "d", Score: 10, Rank: 4},
		}
		standings := []types.TeamRecord{
			{TeamID: "a", Wins: 6, Losses: 1},
			{TeamID: "b", Wins: 5, Losses: 2},
			{TeamID: "c", Wins: 3, Losses: 4},
			{TeamID: "d", Wins: 0, Losses: 7},
		}
		games := []types.Game{
			{ID: "g1", Slot: 1, Home: "a", Away: "d"},
			{ID: "g2", Slot: 2, Home: "b", Away: "a", Divisional: true},
			{ID: "g3", Slot: 3, Home: "c", Away: "d"},
		}
		predictions := []predict.Prediction{
			{GameID: "g1", Winner: "a", WinnerScore: 38, LoserScore: 17, Confidence: 95},
			{GameID: "g2", Winner: "b", WinnerScore: 24, LoserScore: 21, Confidence: 55},
			{GameID: "g3", Winner: "c", WinnerScore: 27, LoserScore: 17, Confidence: 80},
		}

		Convey("the tight top-team rivalry beats the blowouts", func() {
			got, err := sel.Select(ctx, games, predictions, scores, standings)
			So(err, ShouldBeNil)
			So(got.GameID, ShouldEqual, types.GameID("g2"))
			So(got.CompositeScore, ShouldBeBetweenOrEqual, 0, 100)
			So(got.ReasoningPoints, ShouldNotBeEmpty)
		})

		Convey("a single-game week selects trivially", func() {
			got, err := sel.Select(ctx, games[:1], predictions[:1], scores, standings)
			So(err, ShouldBeNil)
			So(got.GameID, ShouldEqual, types.GameID("g1"))
		})

		Convey("an empty week returns ErrNoGames", func() {
			_, err := sel.Select(ctx, nil, nil, scores, standings)
			So(errors.Is(err, marquee.ErrNoGames), ShouldBeTrue)
		})

		Convey("identical games tie-break to the earlier slot", func() {
			twins := []types.Game{
				{ID: "late", Slot: 9, Home: "a", Away: "b"},
				{ID: "early", Slot: 2, Home: "a", Away: "b"},
			}
			preds := []predict.Prediction{
				{GameID: "late", Winner: "a", Confidence: 60},
				{GameID: "early", Winner: "a", Confidence: 60},
			}
			got, err := sel.Select(ctx, twins, preds, scores, standings)
			So(err, ShouldBeNil)
			So(got.GameID, ShouldEqual, types.GameID("early"))
		})

		Convey("without power scores selection degrades to records", func() {
			got, err := sel.Select(ctx, games, predictions, nil, standings)
			So(err, ShouldBeNil)
			// g2 still wins: closest matchup between winning teams.
			So(got.GameID, ShouldEqual, types.GameID("g2"))
			So(got.ReasoningPoints, ShouldContain, "quality judged on records")
		})
	})
}
