// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mgrady/gridiron/internal/domain/types"
)

// ResultsHandler handles game result submission requests.
type ResultsHandler struct {
	deps ContestDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ContestDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// resultsRequest mirrors the JSON shape for POST /results.
type resultsRequest struct {
	contestKeyRequest
	Results []resultPayload `json:"results"`
}

type resultPayload struct {
	GameID    string `json:"game_id"`
	Winner    string `json:"winner"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

// HandlePostResults handles POST /results requests.
func (h *ResultsHandler) HandlePostResults(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_results"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	key, err := req.key()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if len(req.Results) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	results := make([]types.GameResult, 0, len(req.Results))
	for _, res := range req.Results {
		if strings.TrimSpace(res.GameID) == "" || strings.TrimSpace(res.Winner) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		results = append(results, types.GameResult{
			GameID:    types.GameID(res.GameID),
			Winner:    types.TeamID(res.Winner),
			HomeScore: res.HomeScore,
			AwayScore: res.AwayScore,
		})
	}

	if err := h.deps.SaveResults(r.Context(), key, results); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"saved": len(results)})
}
