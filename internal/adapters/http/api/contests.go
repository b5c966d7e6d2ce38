// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mgrady/gridiron/internal/domain/contest"
	"github.com/mgrady/gridiron/internal/domain/types"
)

// ContestDependencies defines the interface for contest lifecycle operations.
type ContestDependencies interface {
	Seed(ctx context.Context, key types.ContestKey) (*contest.Contest, bool, error)
	SubmitPicks(ctx context.Context, key types.ContestKey, member types.MemberID, displayName string, picks map[types.GameID]types.TeamID) (contest.SubmitResult, error)
	LockManual(ctx context.Context, key types.ContestKey, actor string) (contest.LockResult, error)
	Unlock(ctx context.Context, key types.ContestKey) error
	SaveResults(ctx context.Context, key types.ContestKey, results []types.GameResult) error
	Score(ctx context.Context, key types.ContestKey) (contest.ScoreResult, error)
	Leaderboard(ctx context.Context, guild types.GuildID, league types.LeagueID, season types.Season) ([]contest.MemberSeasonStats, error)
	IsLocked(ctx context.Context, key types.ContestKey) (bool, error)
}

// ContestsHandler handles contest lifecycle requests.
type ContestsHandler struct {
	deps     ContestDependencies
	maxLimit int
}

// NewContestsHandler creates a new contests handler.
func NewContestsHandler(deps ContestDependencies, maxLimit int) *ContestsHandler {
	return &ContestsHandler{deps: deps, maxLimit: maxLimit}
}

type seedResponse struct {
	Contest *contest.Contest `json:"contest"`
	Created bool             `json:"created"`
}

// HandleSeed handles POST /contests/seed requests.
func (h *ContestsHandler) HandleSeed(w http.ResponseWriter, r *http.Request) {
	const op = "api.seed_contest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req contestKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	key, err := req.key()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	c, created, err := h.deps.Seed(r.Context(), key)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, seedResponse{Contest: c, Created: created})
}

type lockRequest struct {
	contestKeyRequest
	Actor string `json:"actor"`
}

// HandleLock handles POST /contests/lock requests.
func (h *ContestsHandler) HandleLock(w http.ResponseWriter, r *http.Request) {
	const op = "api.lock_contest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	key, err := req.key()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.LockManual(r.Context(), key, req.Actor)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleUnlock handles POST /contests/unlock requests.
func (h *ContestsHandler) HandleUnlock(w http.ResponseWriter, r *http.Request) {
	const op = "api.unlock_contest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req contestKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	key, err := req.key()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Unlock(r.Context(), key); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "unlocked"})
}

// HandleScore handles POST /contests/score requests.
func (h *ContestsHandler) HandleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_contest"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req contestKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	key, err := req.key()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Score(r.Context(), key)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type lockedResponse struct {
	Locked bool `json:"locked"`
}

// HandleGetLocked handles GET /contests/locked requests.
func (h *ContestsHandler) HandleGetLocked(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_locked"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	key, err := keyFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	locked, err := h.deps.IsLocked(r.Context(), key)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, lockedResponse{Locked: locked})
}

// HandleGetLeaderboard handles GET /contests/leaderboard?guild=&league=&season=&limit=N.
func (h *ContestsHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	season, err := seasonFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	limit := h.maxLimit
	if limitStr := q.Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	rows, err := h.deps.Leaderboard(r.Context(), types.GuildID(q.Get("guild")), types.LeagueID(q.Get("league")), season)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	writeJSON(w, http.StatusOK, rows)
}
