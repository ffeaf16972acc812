package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/versuslab/versus/internal/app"
)

// SessionDependencies defines the interface for session creation.
type SessionDependencies interface {
	CreateSession(ctx context.Context, subjectID string) (service.SessionInfo, error)
}

// SessionsHandler handles session requests.
type SessionsHandler struct {
	deps SessionDependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps SessionDependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// sessionRequest mirrors the POST /sessions body. An empty body opens a
// plain session; a subject_id opens a share-link view of that identity.
type sessionRequest struct {
	SubjectID string `json:"subject_id"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
	ActorID   string `json:"actor_id"`
	SubjectID string `json:"subject_id"`
	ReadOnly  bool   `json:"read_only"`
}

// HandlePostSession handles POST /sessions requests.
func (h *SessionsHandler) HandlePostSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	info, err := h.deps.CreateSession(r.Context(), req.SubjectID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: info.ID,
		ActorID:   info.ActorID,
		SubjectID: info.SubjectID,
		ReadOnly:  info.ReadOnly,
	})
}
