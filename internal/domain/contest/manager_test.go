package contest_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mgrady/gridiron/internal/adapters/repository"
	"github.com/mgrady/gridiron/internal/domain/contest"
	"github.com/mgrady/gridiron/internal/domain/types"
)

// staticBaseline serves a fixed baseline and counts invocations.
type staticBaseline struct {
	mu    sync.Mutex
	calls int
	picks []contest.BaselinePick
	err   error
}

func (b *staticBaseline) Baseline(context.Context, types.ContestKey) ([]contest.BaselinePick, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return append([]contest.BaselinePick(nil), b.picks...), nil
}

var key = types.ContestKey{Guild: "guild-1", League: "league-1", Season: 2025, Week: 7}

func newManager() (*contest.Manager, *repository.MemStore, *staticBaseline) {
	store := repository.NewMemStore()
	baseline := &staticBaseline{picks: []contest.BaselinePick{
		{GameID: "g1", Winner: "home1", WinnerScore: 27, LoserScore: 17, Confidence: 84},
		{GameID: "g2", Winner: "home2", WinnerScore: 24, LoserScore: 17, Confidence: 72},
		{GameID: "g3", Winner: "away3", WinnerScore: 21, LoserScore: 17, Confidence: 61},
	}}
	mgr := contest.NewManager(store, baseline)
	return mgr, store, baseline
}

func TestSeed(t *testing.T) {
	Convey("Given a contest manager", t, func() {
		mgr, _, baseline := newManager()
		ctx := context.Background()

		Convey("the first seed creates the contest with baseline picks", func() {
			c, created, err := mgr.Seed(ctx, key)
			So(err, ShouldBeNil)
			So(created, ShouldBeTrue)
			So(c.Baseline, ShouldHaveLength, 3)
			So(c.State(), ShouldEqual, contest.StateOpen)
		})

		Convey("seeding again returns the existing contest unchanged", func() {
			first, _, err := mgr.Seed(ctx, key)
			So(err, ShouldBeNil)
			second, created, err := mgr.Seed(ctx, key)
			So(err, ShouldBeNil)
			So(created, ShouldBeFalse)
			So(second, ShouldResemble, first)
			So(baseline.calls, ShouldEqual, 1)
		})

		Convey("a malformed key is rejected before any persistence access", func() {
			bad := key
			bad.Guild = ""
			_, _, err := mgr.Seed(ctx, bad)
			So(errors.Is(err, types.ErrInvalidID), ShouldBeTrue)
			So(baseline.calls, ShouldEqual, 0)
		})

		Convey("a failing baseline source surfaces a recoverable error", func() {
			baseline.err = errors.New("stats store down")
			_, _, err := mgr.Seed(ctx, key)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestSubmitPicks(t *testing.T) {
	Convey("Given a contest manager", t, func() {
		mgr, _, _ := newManager()
		ctx := context.Background()

		Convey("picks submitted before any seed create the contest", func() {
			res, err := mgr.SubmitPicks(ctx, key, "alice", "Alice", map[types.GameID]types.TeamID{"g1": "home1"})
			So(err, ShouldBeNil)
			So(res.Accepted, ShouldEqual, 1)
			So(res.State, ShouldEqual, contest.StateOpen)
		})

		Convey("a resubmission merges with the member's other picks", func() {
			_, err := mgr.SubmitPicks(ctx, key, "alice", "Alice", map[types.GameID]types.TeamID{"g1": "home1", "g2": "home2"})
			So(err, ShouldBeNil)
			_, err = mgr.SubmitPicks(ctx, key, "alice", "Alice", map[types.GameID]types.TeamID{"g1": "away1"})
			So(err, ShouldBeNil)

			c, _, err := mgr.Seed(ctx, key)
			So(err, ShouldBeNil)
			So(c.Picks, ShouldHaveLength, 2)
			byGame := map[types.GameID]types.TeamID{}
			for _, p := range c.Picks {
				byGame[p.GameID] = p.Winner
			}
			So(byGame["g1"], ShouldEqual, types.TeamID("away1"))
			So(byGame["g2"], ShouldEqual, types.TeamID("home2"))
		})

		Convey("two members submitting concurrently both keep their picks", func() {
			_, _, err := mgr.Seed(ctx, key)
			So(err, ShouldBeNil)

			var wg sync.WaitGroup
			errs := make([]error, 2)
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, errs[0] = mgr.SubmitPicks(ctx, key, "alice", "Alice", map[types.GameID]types.TeamID{"g1": "home1"})
			}()
			go func() {
				defer wg.Done()
				_, errs[1] = mgr.SubmitPicks(ctx, key, "bob", "Bob", map[types.GameID]types.TeamID{"g2": "away2"})
			}()
			wg.Wait()
			So(errs[0], ShouldBeNil)
			So(errs[1], ShouldBeNil)

			c, _, err := mgr.Seed(ctx, key)
			So(err, ShouldBeNil)
			So(c.Picks, ShouldHaveLength, 2)
		})

		Convey("picks for games outside the contest are rejected", func() {
			_, err := mgr.SubmitPicks(ctx, key, "alice", "Alice", map[types.GameID]types.TeamID{"ghost": "x"})
			So(errors.Is(err, contest.ErrUnknownGame), ShouldBeTrue)
		})

		Convey("empty submissions are rejected", func() {
			_, err := mgr.SubmitPicks(ctx, key, "alice", "Alice", nil)
			So(errors.Is(err, contest.ErrNoPicks), ShouldBeTrue)
		})

		Convey("a locked contest rejects picks with the locked signal", func() {
			_, _, err := mgr.Seed(ctx, key)
			So(err, ShouldBeNil)
			_, err = mgr.LockManual(ctx, key, "admin")
			So(err, ShouldBeNil)

			res, err := mgr.SubmitPicks(ctx, key, "alice", "Alice", map[types.GameID]types.TeamID{"g1": "home1"})
			So(errors.Is(err, contest.ErrLocked), ShouldBeTrue)
			So(res.State, ShouldEqual, contest.StateLocked)
		})

		Convey("saved results imply a lock even without a marker", func() {
			_, _, err := mgr.Seed(ctx, key)
			So(err, ShouldBeNil)
			So(mgr.SaveResults(ctx, key, []types.GameResult{{GameID: "g1", Winner: "home1"}}), ShouldBeNil)

			_, err = mgr.SubmitPicks(ctx, key, "alice", "Alice", map[types.GameID]types.TeamID{"g2": "home2"})
			So(errors.Is(err, contest.ErrLocked), ShouldBeTrue)
		})
	})
}

func TestLocking(t *testing.T) {
	Convey("Given a seeded contest", t, func() {
		mgr, _, _ := newManager()
		ctx := context.Background()
		_, _, err := mgr.Seed(ctx, key)
		So(err, ShouldBeNil)

		Convey("a manual lock records trigger and actor", func() {
			res, err := mgr.LockManual(ctx, key, "commissioner")
			So(err, ShouldBeNil)
			So(res.AlreadyLocked, ShouldBeFalse)
			So(res.Lock.Trigger, ShouldEqual, contest.LockTriggerManual)
			So(res.Lock.Actor, ShouldEqual, "commissioner")

			locked, err := mgr.IsLocked(ctx, key)
			So(err, ShouldBeNil)
			So(locked, ShouldBeTrue)
		})

		Convey("locking twice keeps the original marker", func() {
			first, err := mgr.LockManual(ctx, key, "commissioner")
			So(err, ShouldBeNil)

			second, err := mgr.LockBroadcast(ctx, key)
			So(err, ShouldBeNil)
			So(second.AlreadyLocked, ShouldBeTrue)
			So(second.Lock.Trigger, ShouldEqual, contest.LockTriggerManual)
			So(second.Lock.At, ShouldResemble, first.Lock.At)
		})

		Convey("duplicate broadcast deliveries are a no-op", func() {
			first, err := mgr.LockBroadcast(ctx, key)
			So(err, ShouldBeNil)
			So(first.AlreadyLocked, ShouldBeFalse)

			second, err := mgr.LockBroadcast(ctx, key)
			So(err, ShouldBeNil)
			So(second.AlreadyLocked, ShouldBeTrue)
			So(second.Lock.At, ShouldResemble, first.Lock.At)
		})

		Convey("unlock reopens the contest for picks", func() {
			_, err := mgr.LockManual(ctx, key, "admin")
			So(err, ShouldBeNil)
			So(mgr.Unlock(ctx, key), ShouldBeNil)

			locked, err := mgr.IsLocked(ctx, key)
			So(err, ShouldBeNil)
			So(locked, ShouldBeFalse)

			_, err = mgr.SubmitPicks(ctx, key, "alice", "Alice", map[types.GameID]types.TeamID{"g1": "home1"})
			So(err, ShouldBeNil)
		})

		Convey("a missing contest reads as unlocked", func() {
			other := key
			other.Week = 9
			locked, err := mgr.IsLocked(ctx, other)
			So(err, ShouldBeNil)
			So(locked, ShouldBeFalse)
		})
	})
}

func allResults() []types.GameResult {
	return []types.GameResult{
		{GameID: "g1", Winner: "home1", HomeScore: 28, AwayScore: 14},
		{GameID: "g2", Winner: "away2", HomeScore: 13, AwayScore: 20},
		{GameID: "g3", Winner: "home3", HomeScore: 31, AwayScore: 27},
	}
}

func TestScoring(t *testing.T) {
	Convey("Given a contest with two members' picks and results", t, func() {
		mgr, _, _ := newManager()
		ctx := context.Background()
		_, _, err := mgr.Seed(ctx, key)
		So(err, ShouldBeNil)

		// Member A is right on g1 and g2 (2/3), member B on g3 only (1/3).
		_, err = mgr.SubmitPicks(ctx, key, "a", "Member A", map[types.GameID]types.TeamID{
			"g1": "home1", "g2": "away2", "g3": "away3",
		})
		So(err, ShouldBeNil)
		_, err = mgr.SubmitPicks(ctx, key, "b", "Member B", map[types.GameID]types.TeamID{
			"g1": "away1", "g2": "home2", "g3": "home3",
		})
		So(err, ShouldBeNil)
		So(mgr.SaveResults(ctx, key, allResults()), ShouldBeNil)

		Convey("scoring applies each member's week exactly once", func() {
			res, err := mgr.Score(ctx, key)
			So(err, ShouldBeNil)
			So(res.Outcome, ShouldEqual, contest.OutcomeScored)
			So(res.MembersScored, ShouldEqual, 2)

			board, err := mgr.Leaderboard(ctx, key.Guild, key.League, key.Season)
			So(err, ShouldBeNil)
			So(board, ShouldHaveLength, 2)
			So(board[0].Member, ShouldEqual, types.MemberID("a"))
			So(board[0].CorrectPicks, ShouldEqual, 2)
			So(board[0].TotalPicks, ShouldEqual, 3)
			So(board[0].Accuracy, ShouldAlmostEqual, 66.7)
			So(board[1].Member, ShouldEqual, types.MemberID("b"))
			So(board[1].CorrectPicks, ShouldEqual, 1)

			Convey("and a second scoring call changes nothing", func() {
				res, err := mgr.Score(ctx, key)
				So(err, ShouldBeNil)
				So(res.Outcome, ShouldEqual, contest.OutcomeAlreadyScored)

				again, err := mgr.Leaderboard(ctx, key.Guild, key.League, key.Season)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, board)
			})
		})

		Convey("racing scoring invocations apply deltas once", func() {
			const racers = 8
			var wg sync.WaitGroup
			outcomes := make([]contest.ScoreOutcome, racers)
			for i := 0; i < racers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					res, err := mgr.Score(ctx, key)
					if err == nil {
						outcomes[i] = res.Outcome
					}
				}(i)
			}
			wg.Wait()

			scored := 0
			for _, o := range outcomes {
				if o == contest.OutcomeScored {
					scored++
				}
			}
			So(scored, ShouldEqual, 1)

			board, err := mgr.Leaderboard(ctx, key.Guild, key.League, key.Season)
			So(err, ShouldBeNil)
			So(board[0].TotalPicks, ShouldEqual, 3)
			So(board[1].TotalPicks, ShouldEqual, 3)
		})

		Convey("scoring marks the contest SCORED and freezes it", func() {
			_, err := mgr.Score(ctx, key)
			So(err, ShouldBeNil)

			c, _, err := mgr.Seed(ctx, key)
			So(err, ShouldBeNil)
			So(c.State(), ShouldEqual, contest.StateScored)

			So(errors.Is(mgr.SaveResults(ctx, key, allResults()), contest.ErrScored), ShouldBeTrue)
			So(errors.Is(mgr.Unlock(ctx, key), contest.ErrScored), ShouldBeTrue)
		})
	})

	Convey("Scoring degenerate cases are benign no-ops", t, func() {
		mgr, _, _ := newManager()
		ctx := context.Background()

		Convey("no contest", func() {
			res, err := mgr.Score(ctx, key)
			So(err, ShouldBeNil)
			So(res.Outcome, ShouldEqual, contest.OutcomeNoContest)
		})

		Convey("no results", func() {
			_, _, err := mgr.Seed(ctx, key)
			So(err, ShouldBeNil)
			res, err := mgr.Score(ctx, key)
			So(err, ShouldBeNil)
			So(res.Outcome, ShouldEqual, contest.OutcomeNoResults)
		})
	})
}

func TestLeaderboardOrdering(t *testing.T) {
	Convey("Given members with mixed accuracy and volume", t, func() {
		store := repository.NewMemStore()
		mgr := contest.NewManager(store, &staticBaseline{})
		ctx := context.Background()

		// 80% on 10 picks, 80% on 5 picks, 60% on 20 picks.
		add := func(member string, week types.Week, total, correct int) {
			k := key
			k.Week = week
			err := store.AddSeasonDelta(ctx, k, types.MemberID(member), member, contest.WeekLine{
				Week: week, TotalPicks: total, CorrectPicks: correct,
			})
			So(err, ShouldBeNil)
		}
		add("steady", 1, 10, 8)
		add("small", 1, 5, 4)
		add("grinder", 1, 20, 12)

		Convey("accuracy ranks first, volume breaks ties", func() {
			board, err := mgr.Leaderboard(ctx, key.Guild, key.League, key.Season)
			So(err, ShouldBeNil)
			So(board, ShouldHaveLength, 3)
			So(board[0].Member, ShouldEqual, types.MemberID("steady"))
			So(board[1].Member, ShouldEqual, types.MemberID("small"))
			So(board[2].Member, ShouldEqual, types.MemberID("grinder"))
			So(board[0].Accuracy, ShouldAlmostEqual, 80)
			So(board[2].Accuracy, ShouldAlmostEqual, 60)
		})
	})
}

func TestClockOption(t *testing.T) {
	Convey("A configured clock stamps contest transitions", t, func() {
		store := repository.NewMemStore()
		fixed := time.Date(2025, 11, 2, 18, 0, 0, 0, time.UTC)
		mgr := contest.NewManager(store, &staticBaseline{
			picks: []contest.BaselinePick{{GameID: "g1", Winner: "h"}},
		}, contest.WithClock(func() time.Time { return fixed }))
		ctx := context.Background()

		_, _, err := mgr.Seed(ctx, key)
		So(err, ShouldBeNil)
		res, err := mgr.LockManual(ctx, key, "admin")
		So(err, ShouldBeNil)
		So(res.Lock.At, ShouldResemble, fixed)
	})
}
