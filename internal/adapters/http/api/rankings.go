package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	service "github.com/versuslab/versus/internal/app"
	"github.com/versuslab/versus/internal/domain/rating"
)

// RankingDependencies defines the interface for ranking reads.
type RankingDependencies interface {
	GlobalRankings(ctx context.Context, limit int) ([]rating.RankedItem, int64, error)
	PersonalRankings(ctx context.Context, sessionID string) ([]rating.RankedItem, error)
}

// RankingsHandler handles ranking requests.
type RankingsHandler struct {
	deps RankingDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

type globalRankingResponse struct {
	TotalVotes int64               `json:"total_votes"`
	Rankings   []rating.RankedItem `json:"rankings"`
}

type personalRankingResponse struct {
	SessionID string              `json:"session_id"`
	Rankings  []rating.RankedItem `json:"rankings"`
}

// HandleGetGlobal handles GET /rankings/global?limit=N requests.
func (h *RankingsHandler) HandleGetGlobal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	ranked, total, err := h.deps.GlobalRankings(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, globalRankingResponse{TotalVotes: total, Rankings: ranked})
}

// HandleGetPersonal handles GET /rankings/personal?session=ID requests.
func (h *RankingsHandler) HandleGetPersonal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing session"))
		return
	}

	ranked, err := h.deps.PersonalRankings(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownSession) {
			writeError(w, http.StatusNotFound, "unknown_session", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, personalRankingResponse{SessionID: sessionID, Rankings: ranked})
}
