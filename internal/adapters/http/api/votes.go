package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/versuslab/versus/internal/app"
	"github.com/versuslab/versus/internal/domain/session"
)

// VoteDependencies defines the interface for vote processing.
type VoteDependencies interface {
	CastVote(ctx context.Context, sessionID, winnerID, loserID string) (service.VoteOutcome, error)
}

// VotesHandler handles vote requests.
type VotesHandler struct {
	deps VoteDependencies
}

// NewVotesHandler creates a new votes handler.
func NewVotesHandler(deps VoteDependencies) *VotesHandler {
	return &VotesHandler{deps: deps}
}

// voteRequest mirrors the POST /votes body.
type voteRequest struct {
	SessionID string `json:"session_id"`
	WinnerID  string `json:"winner_id"`
	LoserID   string `json:"loser_id"`
}

func (v voteRequest) validate() error {
	switch {
	case strings.TrimSpace(v.SessionID) == "":
		return errors.New("missing session_id")
	case strings.TrimSpace(v.WinnerID) == "":
		return errors.New("missing winner_id")
	case strings.TrimSpace(v.LoserID) == "":
		return errors.New("missing loser_id")
	}
	return nil
}

type voteResponse struct {
	WinnerID           string `json:"winner_id"`
	LoserID            string `json:"loser_id"`
	WinnerRating       int    `json:"winner_rating"`
	LoserRating        int    `json:"loser_rating"`
	WinnerRank         int    `json:"winner_rank"`
	LoserRank          int    `json:"loser_rank"`
	AgreesWithMajority bool   `json:"agrees_with_majority"`
	TotalVotes         int64  `json:"total_votes"`
}

// HandlePostVote handles POST /votes requests.
func (h *VotesHandler) HandlePostVote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	out, err := h.deps.CastVote(r.Context(), req.SessionID, req.WinnerID, req.LoserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownSession):
			writeError(w, http.StatusNotFound, "unknown_session", err)
		case errors.Is(err, service.ErrUnknownItem):
			writeError(w, http.StatusNotFound, "unknown_item", err)
		case errors.Is(err, service.ErrSameItem):
			writeError(w, http.StatusBadRequest, "bad_request", err)
		case errors.Is(err, session.ErrNoMatchup), errors.Is(err, session.ErrStaleMatchup):
			writeError(w, http.StatusConflict, "stale_matchup", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{
		WinnerID:           req.WinnerID,
		LoserID:            req.LoserID,
		WinnerRating:       out.WinnerRating,
		LoserRating:        out.LoserRating,
		WinnerRank:         out.WinnerRank,
		LoserRank:          out.LoserRank,
		AgreesWithMajority: out.AgreesWithMajority,
		TotalVotes:         out.TotalVotes,
	})
}
