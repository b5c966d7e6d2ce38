package stats_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mgrady/gridiron/internal/adapters/stats"
	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/types"
)

func TestStaticProvider(t *testing.T) {
	Convey("Given a fixture-backed provider", t, func() {
		games := []types.Game{
			{ID: "g1", Season: 2025, Week: 1, Home: "a", Away: "b"},
		}
		p := stats.NewStaticProvider(
			stats.WithStandings(2025, []types.TeamRecord{{TeamID: "a", Wins: 3}}),
			stats.WithSchedule(2025, 1, games),
			stats.WithTeamRecords(2025, []power.TeamSeasonRecord{{TeamID: "a", GamesPlayed: 3}}),
		)
		ctx := context.Background()

		Convey("standings, schedule and records round-trip", func() {
			rows, err := p.Standings(ctx, 2025)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)

			sched, err := p.WeekSchedule(ctx, 2025, 1)
			So(err, ShouldBeNil)
			So(sched, ShouldResemble, games)

			recs, err := p.TeamSeasonRecords(ctx, 2025)
			So(err, ShouldBeNil)
			So(recs[0].TeamID, ShouldEqual, types.TeamID("a"))
		})

		Convey("a scheduled game without a result reports benign absence", func() {
			_, err := p.GameResult(ctx, "g1")
			So(errors.Is(err, stats.ErrNoResult), ShouldBeTrue)
		})

		Convey("an unknown game id is distinguished from a pending one", func() {
			_, err := p.GameResult(ctx, "ghost")
			So(errors.Is(err, stats.ErrUnknownGame), ShouldBeTrue)
		})

		Convey("a saved result becomes readable", func() {
			p.SetResult(types.GameResult{GameID: "g1", Winner: "a", HomeScore: 24, AwayScore: 10})
			res, err := p.GameResult(ctx, "g1")
			So(err, ShouldBeNil)
			So(res.Winner, ShouldEqual, types.TeamID("a"))
		})

		Convey("an unseeded season reads as empty, not an error", func() {
			rows, err := p.Standings(ctx, 1999)
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
		})
	})
}
