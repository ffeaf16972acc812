// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	service "github.com/versuslab/versus/internal/app"
	"github.com/versuslab/versus/internal/domain/catalog"
	"github.com/versuslab/versus/internal/domain/matchup"
	"github.com/versuslab/versus/internal/domain/rating"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	CreateSession(ctx context.Context, subjectID string) (service.SessionInfo, error)
	NextMatchup(ctx context.Context, sessionID string) (matchup.Matchup, error)
	CastVote(ctx context.Context, sessionID, winnerID, loserID string) (service.VoteOutcome, error)
	PersonalRankings(ctx context.Context, sessionID string) ([]rating.RankedItem, error)
	GlobalRankings(ctx context.Context, limit int) ([]rating.RankedItem, int64, error)
	Catalog(ctx context.Context) []catalog.Item
	GetStats(ctx context.Context) map[string]interface{}
}

// Server wires HTTP routes for the ranking API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
	matchupHandler  *MatchupHandler
	votesHandler    *VotesHandler
	rankingsHandler *RankingsHandler
	catalogHandler  *CatalogHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(deps),
		sessionsHandler: NewSessionsHandler(deps),
		matchupHandler:  NewMatchupHandler(deps),
		votesHandler:    NewVotesHandler(deps),
		rankingsHandler: NewRankingsHandler(deps),
		catalogHandler:  NewCatalogHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/sessions", MetricsMiddleware(s.sessionsHandler.HandlePostSession, "sessions"))
	mux.HandleFunc("/matchup", MetricsMiddleware(s.matchupHandler.HandleGetMatchup, "matchup"))
	mux.HandleFunc("/votes", MetricsMiddleware(s.votesHandler.HandlePostVote, "votes"))
	mux.HandleFunc("/rankings/global", MetricsMiddleware(s.rankingsHandler.HandleGetGlobal, "rankings_global"))
	mux.HandleFunc("/rankings/personal", MetricsMiddleware(s.rankingsHandler.HandleGetPersonal, "rankings_personal"))
	mux.HandleFunc("/catalog", MetricsMiddleware(s.catalogHandler.HandleGetCatalog, "catalog"))
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
