// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/mgrady/gridiron/internal/domain/marquee"
	"github.com/mgrady/gridiron/internal/domain/power"
	"github.com/mgrady/gridiron/internal/domain/predict"
	"github.com/mgrady/gridiron/internal/domain/types"
)

// AnalyticsDependencies defines the interface for season analytics reads.
type AnalyticsDependencies interface {
	PowerRankings(ctx context.Context, season types.Season) ([]power.Score, error)
	PredictWeek(ctx context.Context, season types.Season, week types.Week) ([]predict.Prediction, error)
	MarqueeGame(ctx context.Context, season types.Season, week types.Week) (marquee.Selection, error)
}

// RankingsHandler handles power ranking requests.
type RankingsHandler struct {
	deps AnalyticsDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps AnalyticsDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleGetRankings handles GET /rankings?season=YYYY requests.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	season, err := seasonFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	scores, err := h.deps.PowerRankings(r.Context(), season)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, scores)
}

// PredictionsHandler handles weekly prediction requests.
type PredictionsHandler struct {
	deps AnalyticsDependencies
}

// NewPredictionsHandler creates a new predictions handler.
func NewPredictionsHandler(deps AnalyticsDependencies) *PredictionsHandler {
	return &PredictionsHandler{deps: deps}
}

// HandleGetPredictions handles GET /predictions?season=YYYY&week=N requests.
func (h *PredictionsHandler) HandleGetPredictions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_predictions"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	season, err := seasonFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	week, err := weekFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	preds, err := h.deps.PredictWeek(r.Context(), season, week)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, preds)
}

// MarqueeHandler handles game-of-the-week requests.
type MarqueeHandler struct {
	deps AnalyticsDependencies
}

// NewMarqueeHandler creates a new marquee handler.
func NewMarqueeHandler(deps AnalyticsDependencies) *MarqueeHandler {
	return &MarqueeHandler{deps: deps}
}

// HandleGetMarquee handles GET /gotw?season=YYYY&week=N requests.
func (h *MarqueeHandler) HandleGetMarquee(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_marquee"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	season, err := seasonFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	week, err := weekFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	sel, err := h.deps.MarqueeGame(r.Context(), season, week)
	if err != nil {
		if errors.Is(err, marquee.ErrNoGames) {
			writeError(w, http.StatusNotFound, "no_games", Wrap(op, err))
			return
		}
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}
