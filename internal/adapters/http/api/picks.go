// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mgrady/gridiron/internal/domain/types"
)

// PicksHandler handles pick submission requests.
type PicksHandler struct {
	deps ContestDependencies
}

// NewPicksHandler creates a new picks handler.
func NewPicksHandler(deps ContestDependencies) *PicksHandler {
	return &PicksHandler{deps: deps}
}

// picksRequest mirrors the JSON shape for POST /picks.
type picksRequest struct {
	contestKeyRequest
	Member      string        `json:"member"`
	DisplayName string        `json:"display_name"`
	Picks       []pickPayload `json:"picks"`
}

type pickPayload struct {
	GameID string `json:"game_id"`
	Winner string `json:"winner"`
}

// HandlePostPicks handles POST /picks requests. Submitting again replaces
// only the games named in the request; other picks are left alone.
func (h *PicksHandler) HandlePostPicks(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_picks"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req picksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	key, err := req.key()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	picks := make(map[types.GameID]types.TeamID, len(req.Picks))
	for _, p := range req.Picks {
		if strings.TrimSpace(p.GameID) == "" || strings.TrimSpace(p.Winner) == "" {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		picks[types.GameID(p.GameID)] = types.TeamID(p.Winner)
	}

	res, err := h.deps.SubmitPicks(r.Context(), key, types.MemberID(req.Member), req.DisplayName, picks)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
