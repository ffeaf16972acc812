package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/versuslab/versus/internal/app"
	"github.com/versuslab/versus/internal/domain/catalog"
	"github.com/versuslab/versus/internal/domain/matchup"
)

// MatchupDependencies defines the interface for matchup generation.
type MatchupDependencies interface {
	NextMatchup(ctx context.Context, sessionID string) (matchup.Matchup, error)
}

// MatchupHandler handles matchup requests.
type MatchupHandler struct {
	deps MatchupDependencies
}

// NewMatchupHandler creates a new matchup handler.
func NewMatchupHandler(deps MatchupDependencies) *MatchupHandler {
	return &MatchupHandler{deps: deps}
}

type matchupResponse struct {
	SessionID string       `json:"session_id"`
	Left      catalog.Item `json:"left"`
	Right     catalog.Item `json:"right"`
}

// HandleGetMatchup handles GET /matchup?session=ID requests.
func (h *MatchupHandler) HandleGetMatchup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("missing session"))
		return
	}

	m, err := h.deps.NextMatchup(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownSession) {
			writeError(w, http.StatusNotFound, "unknown_session", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, matchupResponse{
		SessionID: sessionID,
		Left:      m.Left,
		Right:     m.Right,
	})
}
