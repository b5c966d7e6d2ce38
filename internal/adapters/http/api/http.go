// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mgrady/gridiron/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	AnalyticsDependencies
	ContestDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	rankingsHandler    *RankingsHandler
	predictionsHandler *PredictionsHandler
	marqueeHandler     *MarqueeHandler
	contestsHandler    *ContestsHandler
	picksHandler       *PicksHandler
	resultsHandler     *ResultsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		rankingsHandler:    NewRankingsHandler(deps),
		predictionsHandler: NewPredictionsHandler(deps),
		marqueeHandler:     NewMarqueeHandler(deps),
		contestsHandler:    NewContestsHandler(deps, maxLeaderboardLimit),
		picksHandler:       NewPicksHandler(deps),
		resultsHandler:     NewResultsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "rankings"))
	mux.HandleFunc("/predictions", MetricsMiddleware(s.predictionsHandler.HandleGetPredictions, "predictions"))
	mux.HandleFunc("/gotw", MetricsMiddleware(s.marqueeHandler.HandleGetMarquee, "gotw"))
	mux.HandleFunc("/contests/seed", MetricsMiddleware(s.contestsHandler.HandleSeed, "contests_seed"))
	mux.HandleFunc("/contests/lock", MetricsMiddleware(s.contestsHandler.HandleLock, "contests_lock"))
	mux.HandleFunc("/contests/unlock", MetricsMiddleware(s.contestsHandler.HandleUnlock, "contests_unlock"))
	mux.HandleFunc("/contests/score", MetricsMiddleware(s.contestsHandler.HandleScore, "contests_score"))
	mux.HandleFunc("/contests/locked", MetricsMiddleware(s.contestsHandler.HandleGetLocked, "contests_locked"))
	mux.HandleFunc("/contests/leaderboard", MetricsMiddleware(s.contestsHandler.HandleGetLeaderboard, "contests_leaderboard"))
	mux.HandleFunc("/picks", MetricsMiddleware(s.picksHandler.HandlePostPicks, "picks"))
	mux.HandleFunc("/results", MetricsMiddleware(s.resultsHandler.HandlePostResults, "results"))
}

// contestKeyRequest mirrors the JSON shape identifying one week's contest.
type contestKeyRequest struct {
	Guild  string `json:"guild"`
	League string `json:"league"`
	Season int    `json:"season"`
	Week   int    `json:"week"`
}

func (c contestKeyRequest) key() (types.ContestKey, error) {
	key := types.ContestKey{
		Guild:  types.GuildID(c.Guild),
		League: types.LeagueID(c.League),
		Season: types.Season(c.Season),
		Week:   types.Week(c.Week),
	}
	if err := key.Validate(); err != nil {
		return types.ContestKey{}, err
	}
	return key, nil
}

// keyFromQuery parses guild, league, season, and week query parameters.
func keyFromQuery(r *http.Request) (types.ContestKey, error) {
	q := r.URL.Query()
	season, err := strconv.Atoi(q.Get("season"))
	if err != nil {
		return types.ContestKey{}, ErrBadRequest
	}
	week, err := strconv.Atoi(q.Get("week"))
	if err != nil {
		return types.ContestKey{}, ErrBadRequest
	}
	req := contestKeyRequest{
		Guild:  q.Get("guild"),
		League: q.Get("league"),
		Season: season,
		Week:   week,
	}
	return req.key()
}

// seasonFromQuery parses and validates the season query parameter.
func seasonFromQuery(r *http.Request) (types.Season, error) {
	n, err := strconv.Atoi(r.URL.Query().Get("season"))
	if err != nil {
		return 0, ErrBadRequest
	}
	season := types.Season(n)
	if err := season.Validate(); err != nil {
		return 0, err
	}
	return season, nil
}

// weekFromQuery parses and validates the week query parameter.
func weekFromQuery(r *http.Request) (types.Week, error) {
	n, err := strconv.Atoi(r.URL.Query().Get("week"))
	if err != nil {
		return 0, ErrBadRequest
	}
	week := types.Week(n)
	if err := week.Validate(); err != nil {
		return 0, err
	}
	return week, nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates domain sentinel errors to HTTP responses.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, Wrap(op, err))
}
