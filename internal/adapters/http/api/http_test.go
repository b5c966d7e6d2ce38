package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mgrady/gridiron/internal/adapters/http/api"
	"github.com/mgrady/gridiron/internal/adapters/repository"
	"github.com/mgrady/gridiron/internal/domain/contest"
	"github.com/mgrady/gridiron/internal/domain/marquee"
	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/predict"
	"github.com/mgrady/gridiron/internal/domain/types"
)

// testBaseline returns fixed baseline picks for every contest.
type testBaseline struct{}

func (testBaseline) Baseline(_ context.Context, _ types.ContestKey) ([]contest.BaselinePick, error) {
	return []contest.BaselinePick{
		{GameID: "g1", Winner: "BUF", WinnerScore: 27, LoserScore: 17, Confidence: 84},
		{GameID: "g2", Winner: "KC", WinnerScore: 24, LoserScore: 20, Confidence: 61},
	}, nil
}

// testDeps satisfies api.Dependencies: contest operations ride on a real
// manager over the in-memory store, analytics reads return canned data.
type testDeps struct {
	*contest.Manager

	scores []power.Score
	preds  []predict.Prediction
	sel    marquee.Selection
	selErr error
}

func (d *testDeps) PowerRankings(_ context.Context, _ types.Season) ([]power.Score, error) {
	return d.scores, nil
}

func (d *testDeps) PredictWeek(_ context.Context, _ types.Season, _ types.Week) ([]predict.Prediction, error) {
	return d.preds, nil
}

func (d *testDeps) MarqueeGame(_ context.Context, _ types.Season, _ types.Week) (marquee.Selection, error) {
	if d.selErr != nil {
		return marquee.Selection{}, d.selErr
	}
	return d.sel, nil
}

func newTestServer(deps *testDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, 100).Register(context.Background(), mux)
	return mux
}

func newTestDeps() *testDeps {
	return &testDeps{
		Manager: contest.NewManager(repository.NewMemStore(), testBaseline{}),
		scores: []power.Score{
			{TeamID: "BUF", Score: 12.4, Rank: 1},
			{TeamID: "KC", Score: 9.1, Rank: 2},
		},
		preds: []predict.Prediction{
			{GameID: "g1", Winner: "BUF", WinnerScore: 27, LoserScore: 17, Confidence: 84},
		},
		sel: marquee.Selection{GameID: "g1", CompositeScore: 71.5},
	}
}

func postJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

const keyJSON = `"guild":"g1","league":"l1","season":2025,"week":7`

func TestAnalyticsEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newTestDeps()
		mux := newTestServer(deps)

		Convey("GET /healthz serves the metrics registry", func() {
			w := get(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("GET /rankings returns power scores", func() {
			w := get(mux, "/rankings?season=2025")
			So(w.Code, ShouldEqual, http.StatusOK)

			var scores []power.Score
			So(json.Unmarshal(w.Body.Bytes(), &scores), ShouldBeNil)
			So(scores, ShouldHaveLength, 2)
			So(scores[0].TeamID, ShouldEqual, types.TeamID("BUF"))
		})

		Convey("GET /rankings rejects a missing season", func() {
			w := get(mux, "/rankings")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /predictions returns the week's predictions", func() {
			w := get(mux, "/predictions?season=2025&week=7")
			So(w.Code, ShouldEqual, http.StatusOK)

			var preds []predict.Prediction
			So(json.Unmarshal(w.Body.Bytes(), &preds), ShouldBeNil)
			So(preds, ShouldHaveLength, 1)
			So(preds[0].Winner, ShouldEqual, types.TeamID("BUF"))
		})

		Convey("GET /predictions rejects an out-of-range week", func() {
			w := get(mux, "/predictions?season=2025&week=99")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /gotw returns the marquee selection", func() {
			w := get(mux, "/gotw?season=2025&week=7")
			So(w.Code, ShouldEqual, http.StatusOK)

			var sel marquee.Selection
			So(json.Unmarshal(w.Body.Bytes(), &sel), ShouldBeNil)
			So(sel.GameID, ShouldEqual, types.GameID("g1"))
		})

		Convey("GET /gotw maps an empty week to 404", func() {
			deps.selErr = marquee.ErrNoGames
			w := get(mux, "/gotw?season=2025&week=7")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("POST to a read endpoint is rejected", func() {
			w := postJSON(mux, "/rankings", `{}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestContestEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newTestDeps()
		mux := newTestServer(deps)

		Convey("POST /contests/seed creates a contest", func() {
			w := postJSON(mux, "/contests/seed", `{`+keyJSON+`}`)
			So(w.Code, ShouldEqual, http.StatusCreated)

			var resp struct {
				Contest *contest.Contest `json:"contest"`
				Created bool             `json:"created"`
			}
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.Created, ShouldBeTrue)
			So(resp.Contest.Baseline, ShouldHaveLength, 2)

			Convey("And seeding again returns the existing contest", func() {
				w2 := postJSON(mux, "/contests/seed", `{`+keyJSON+`}`)
				So(w2.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("POST /contests/seed rejects a malformed key", func() {
			w := postJSON(mux, "/contests/seed", `{"guild":"","league":"l1","season":2025,"week":7}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("POST /picks records picks and reports the contest state", func() {
			body := `{` + keyJSON + `,"member":"m1","display_name":"Pat","picks":[{"game_id":"g1","winner":"BUF"},{"game_id":"g2","winner":"DEN"}]}`
			w := postJSON(mux, "/picks", body)
			So(w.Code, ShouldEqual, http.StatusOK)

			var res contest.SubmitResult
			So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
			So(res.Accepted, ShouldEqual, 2)
			So(res.State, ShouldEqual, contest.StateOpen)
		})

		Convey("POST /picks rejects a pick for an unknown game", func() {
			body := `{` + keyJSON + `,"member":"m1","picks":[{"game_id":"nope","winner":"BUF"}]}`
			w := postJSON(mux, "/picks", body)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("POST /contests/lock locks and POST /picks then conflicts", func() {
			So(postJSON(mux, "/contests/seed", `{`+keyJSON+`}`).Code, ShouldEqual, http.StatusCreated)

			w := postJSON(mux, "/contests/lock", `{`+keyJSON+`,"actor":"admin"}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var res contest.LockResult
			So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
			So(res.AlreadyLocked, ShouldBeFalse)
			So(res.Lock.Trigger, ShouldEqual, contest.LockTriggerManual)
			So(res.Lock.Actor, ShouldEqual, "admin")

			body := `{` + keyJSON + `,"member":"m1","picks":[{"game_id":"g1","winner":"BUF"}]}`
			w2 := postJSON(mux, "/picks", body)
			So(w2.Code, ShouldEqual, http.StatusConflict)

			Convey("And GET /contests/locked reflects the lock", func() {
				w3 := get(mux, "/contests/locked?guild=g1&league=l1&season=2025&week=7")
				So(w3.Code, ShouldEqual, http.StatusOK)
				So(w3.Body.String(), ShouldContainSubstring, `"locked":true`)
			})

			Convey("And POST /contests/unlock reopens the contest", func() {
				w3 := postJSON(mux, "/contests/unlock", `{`+keyJSON+`}`)
				So(w3.Code, ShouldEqual, http.StatusOK)

				w4 := postJSON(mux, "/picks", body)
				So(w4.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("Results and scoring round-trip through the API", func() {
			pickBody := `{` + keyJSON + `,"member":"m1","display_name":"Pat","picks":[{"game_id":"g1","winner":"BUF"},{"game_id":"g2","winner":"DEN"}]}`
			So(postJSON(mux, "/picks", pickBody).Code, ShouldEqual, http.StatusOK)

			resBody := `{` + keyJSON + `,"results":[{"game_id":"g1","winner":"BUF","home_score":27,"away_score":17},{"game_id":"g2","winner":"KC","home_score":24,"away_score":20}]}`
			So(postJSON(mux, "/results", resBody).Code, ShouldEqual, http.StatusOK)

			w := postJSON(mux, "/contests/score", `{`+keyJSON+`}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var res contest.ScoreResult
			So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
			So(res.Outcome, ShouldEqual, contest.OutcomeScored)
			So(res.MembersScored, ShouldEqual, 1)

			Convey("Then the leaderboard shows the member's line", func() {
				w2 := get(mux, "/contests/leaderboard?guild=g1&league=l1&season=2025")
				So(w2.Code, ShouldEqual, http.StatusOK)

				var rows []contest.MemberSeasonStats
				So(json.Unmarshal(w2.Body.Bytes(), &rows), ShouldBeNil)
				So(rows, ShouldHaveLength, 1)
				So(rows[0].Member, ShouldEqual, types.MemberID("m1"))
				So(rows[0].TotalPicks, ShouldEqual, 2)
				So(rows[0].CorrectPicks, ShouldEqual, 1)
			})

			Convey("Then scoring again is a benign duplicate", func() {
				w2 := postJSON(mux, "/contests/score", `{`+keyJSON+`}`)
				So(w2.Code, ShouldEqual, http.StatusOK)

				var again contest.ScoreResult
				So(json.Unmarshal(w2.Body.Bytes(), &again), ShouldBeNil)
				So(again.Outcome, ShouldEqual, contest.OutcomeAlreadyScored)
			})

			Convey("Then saving results after scoring conflicts", func() {
				w2 := postJSON(mux, "/results", resBody)
				So(w2.Code, ShouldEqual, http.StatusConflict)
			})
		})

		Convey("Scoring a contest that was never seeded is a benign no-op", func() {
			w := postJSON(mux, "/contests/score", `{"guild":"g9","league":"l9","season":2025,"week":2}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var res contest.ScoreResult
			So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
			So(res.Outcome, ShouldEqual, contest.OutcomeNoContest)
		})

		Convey("GET /contests/leaderboard validates the limit parameter", func() {
			So(get(mux, "/contests/leaderboard?guild=g1&league=l1&season=2025&limit=0").Code, ShouldEqual, http.StatusBadRequest)
			So(get(mux, "/contests/leaderboard?guild=g1&league=l1&season=2025&limit=9999").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Malformed JSON bodies are rejected", func() {
			So(postJSON(mux, "/picks", `{not json`).Code, ShouldEqual, http.StatusBadRequest)
			So(postJSON(mux, "/results", `{not json`).Code, ShouldEqual, http.StatusBadRequest)
			So(postJSON(mux, "/contests/lock", `{not json`).Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}
