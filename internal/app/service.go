// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	auditqueue "github.com/versuslab/versus/internal/adapters/mq/queue"
	workerpool "github.com/versuslab/versus/internal/adapters/mq/worker"
	"github.com/versuslab/versus/internal/adapters/repository"
	"github.com/versuslab/versus/internal/domain/catalog"
	"github.com/versuslab/versus/internal/domain/matchup"
	"github.com/versuslab/versus/internal/domain/model"
	"github.com/versuslab/versus/internal/domain/rating"
	"github.com/versuslab/versus/internal/domain/session"
	"github.com/versuslab/versus/pkg/logger"
	"github.com/versuslab/versus/pkg/metrics"
)

const janitorInterval = time.Minute

// Service owns the session table, the rating store, and the audit
// pipeline, and implements every API operation.
type Service struct {
	mu sync.RWMutex

	// Core components
	store      repository.Store
	cat        *catalog.Catalog
	auditQueue auditqueue.Queue
	auditPool  *workerpool.Pool
	sessions   map[string]*session.Session

	// Configuration
	catalogPath     string
	storePath       string
	kFactor         float64
	initialRating   int
	queueSize       int
	workerCount     int
	sessionTTL      time.Duration
	maxRankingLimit int

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		sessions:        make(map[string]*session.Session),
		kFactor:         rating.DefaultKFactor,
		initialRating:   rating.InitialRating,
		queueSize:       4096,
		workerCount:     runtime.NumCPU() * 2,
		sessionTTL:      time.Hour,
		maxRankingLimit: 100,
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting ranking service...")

	if s.cat == nil {
		cat, err := s.openCatalog(ctx)
		if err != nil {
			return err
		}
		s.cat = cat
	}
	if s.store == nil {
		s.store = s.openStore(ctx)
	}

	s.auditQueue = auditqueue.NewInMemoryQueue(
		auditqueue.WithCapacity(s.queueSize),
	)
	s.auditPool = workerpool.NewPool(s.workerCount, s.auditQueue, s.store)
	s.auditPool.Start(ctx)

	go s.runJanitor(ctx)

	s.started = true
	s.logger.Info(ctx, "ranking service started",
		logger.Int("catalog_size", s.cat.Len()),
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
	)
	return nil
}

// openCatalog loads the configured catalog file or the embedded default.
func (s *Service) openCatalog(ctx context.Context) (*catalog.Catalog, error) {
	if s.catalogPath == "" {
		s.logger.Info(ctx, "using embedded catalog")
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(s.catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	s.logger.Info(ctx, "loaded catalog", logger.String("path", s.catalogPath))
	return cat, nil
}

// openStore opens the SQLite store when a path is configured. A failed
// open falls back to the in-memory store so the service still serves
// votes, at the cost of durability.
func (s *Service) openStore(ctx context.Context) repository.Store {
	if s.storePath == "" {
		s.logger.Info(ctx, "using in-memory store")
		return repository.NewMemStore()
	}
	store, err := repository.NewSQLStore(s.storePath)
	if err != nil {
		metrics.RecordStoreFallback()
		s.logger.Error(ctx, "sqlite store unavailable, falling back to memory",
			logger.String("path", s.storePath),
			logger.Error(err),
		)
		return repository.NewMemStore()
	}
	s.logger.Info(ctx, "using sqlite store", logger.String("path", s.storePath))
	return store
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping ranking service...")

	if s.auditPool != nil {
		_ = s.auditPool.Shutdown(ctx)
	}
	if s.store != nil {
		_ = s.store.Close()
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(ctx, "ranking service stopped")
}

// runJanitor expires idle sessions until the service stops.
func (s *Service) runJanitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			s.ExpireIdleSessions(ctx, now)
		}
	}
}

// ExpireIdleSessions drops sessions idle longer than the TTL. The
// janitor calls this on a timer; it is exported so operators and tests
// can force a sweep.
func (s *Service) ExpireIdleSessions(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sess := range s.sessions {
		if sess.IdleSince(now, s.sessionTTL) {
			delete(s.sessions, id)
			metrics.RecordSessionExpired()
			s.logger.Debug(ctx, "session expired",
				logger.String("session_id", id),
				logger.Int("votes", sess.Votes()),
			)
		}
	}
	metrics.UpdateActiveSessions(len(s.sessions))
}

// SessionInfo describes a created session to the API.
type SessionInfo struct {
	ID        string
	ActorID   string
	SubjectID string
	ReadOnly  bool
}

// CreateSession opens a new voting session. A non-empty subjectID makes
// the session view that identity's rankings while votes still accrue to
// the fresh actor.
func (s *Service) CreateSession(ctx context.Context, subjectID string) (SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return SessionInfo{}, ErrNotStarted
	}

	sess, err := session.New(s.cat,
		session.WithKFactor(s.kFactor),
		session.WithSubjectID(subjectID),
		session.WithSamplerOptions(matchup.WithResetHook(metrics.RecordEpochReset)),
	)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("create session: %w", err)
	}
	s.sessions[sess.ID()] = sess

	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(len(s.sessions))
	s.logger.Debug(ctx, "session created",
		logger.String("session_id", sess.ID()),
		logger.String("subject_id", sess.SubjectID()),
	)
	return SessionInfo{
		ID:        sess.ID(),
		ActorID:   sess.ActorID(),
		SubjectID: sess.SubjectID(),
		ReadOnly:  sess.ReadOnly(),
	}, nil
}

// lookupSession returns the live session for id.
func (s *Service) lookupSession(id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	return sess, nil
}

// NextMatchup draws the next pair for the session.
func (s *Service) NextMatchup(ctx context.Context, sessionID string) (matchup.Matchup, error) {
	sess, err := s.lookupSession(sessionID)
	if err != nil {
		return matchup.Matchup{}, err
	}
	m := sess.NextMatchup()
	metrics.RecordMatchupServed()
	return m, nil
}

// VoteOutcome is the API-facing result of one accepted vote.
type VoteOutcome struct {
	session.Result
	TotalVotes int64
}

// CastVote validates and applies one vote against the session's
// outstanding matchup, persists both rating maps, and hands the audit
// record to the background pipeline.
func (s *Service) CastVote(ctx context.Context, sessionID, winnerID, loserID string) (VoteOutcome, error) {
	start := time.Now()

	sess, err := s.lookupSession(sessionID)
	if err != nil {
		metrics.RecordVoteRejected("unknown_session")
		return VoteOutcome{}, err
	}
	if winnerID == loserID {
		metrics.RecordVoteRejected("same_item")
		return VoteOutcome{}, ErrSameItem
	}
	if !s.cat.Contains(winnerID) || !s.cat.Contains(loserID) {
		metrics.RecordVoteRejected("unknown_item")
		return VoteOutcome{}, fmt.Errorf("%w: %s vs %s", ErrUnknownItem, winnerID, loserID)
	}
	if err := sess.TakeMatchup(winnerID, loserID); err != nil {
		metrics.RecordVoteRejected("stale_matchup")
		return VoteOutcome{}, err
	}

	actor := s.loadActorRatings(ctx, sess.ActorID())
	global := s.loadGlobalRatings(ctx)

	result := sess.RecordVote(actor, global, winnerID, loserID)

	// Persistence failures degrade to in-session state rather than
	// rejecting the vote: the matchup was already consumed.
	if err := s.store.PutUserRatings(ctx, sess.ActorID(), result.ActorRatings); err != nil {
		metrics.RecordStoreError("put_user_ratings")
		s.logger.Error(ctx, "persist actor ratings failed",
			logger.String("actor_id", sess.ActorID()),
			logger.Error(err),
		)
	}
	if err := s.store.MergeGlobalAggregate(ctx, winnerID, result.WinnerRating, loserID, result.LoserRating); err != nil {
		metrics.RecordStoreError("merge_global_aggregate")
		s.logger.Error(ctx, "merge global aggregate failed", logger.Error(err))
	}

	s.auditQueue.Enqueue(ctx, model.VoteEvent{
		ActorID:  sess.ActorID(),
		WinnerID: winnerID,
		LoserID:  loserID,
		TS:       time.Now().UTC(),
	})

	total, err := s.store.TotalVotes(ctx)
	if err != nil {
		metrics.RecordStoreError("total_votes")
		s.logger.Error(ctx, "read vote counter failed", logger.Error(err))
	}

	metrics.RecordVoteCast()
	metrics.UpdateTotalVotes(total)
	metrics.RecordVoteLatency(float64(time.Since(start).Milliseconds()))
	return VoteOutcome{Result: result, TotalVotes: total}, nil
}

// loadActorRatings returns the actor's saved ratings, or a fresh seeded
// map when none exist or the store is failing.
func (s *Service) loadActorRatings(ctx context.Context, actorID string) rating.Ratings {
	r, err := s.store.GetUserRatings(ctx, actorID)
	if err == nil {
		return r
	}
	if !errors.Is(err, repository.ErrNotFound) {
		metrics.RecordStoreError("get_user_ratings")
		s.logger.Error(ctx, "load actor ratings failed",
			logger.String("actor_id", actorID),
			logger.Error(err),
		)
	}
	return s.seededRatings()
}

// loadGlobalRatings returns the shared ratings, or a fresh seeded map
// before the first vote or when the store is failing.
func (s *Service) loadGlobalRatings(ctx context.Context) rating.Ratings {
	agg, err := s.store.GetGlobalAggregate(ctx)
	if err == nil {
		out := make(rating.Ratings, len(agg.Ratings))
		for id, v := range agg.Ratings {
			out[id] = v
		}
		return out
	}
	if !errors.Is(err, repository.ErrNotFound) {
		metrics.RecordStoreError("get_global_aggregate")
		s.logger.Error(ctx, "load global aggregate failed", logger.Error(err))
	}
	return s.seededRatings()
}

// seededRatings assigns every catalog item the configured initial rating.
func (s *Service) seededRatings() rating.Ratings {
	r := make(rating.Ratings, s.cat.Len())
	for _, it := range s.cat.Items() {
		r[it.ID] = s.initialRating
	}
	return r
}

// PersonalRankings projects the session subject's private ratings into
// a ranking. For a share-link session this is the shared identity's
// view, never the viewer's.
func (s *Service) PersonalRankings(ctx context.Context, sessionID string) ([]rating.RankedItem, error) {
	sess, err := s.lookupSession(sessionID)
	if err != nil {
		return nil, err
	}
	r := s.loadActorRatings(ctx, sess.SubjectID())
	return rating.Rank(r, s.cat), nil
}

// GlobalRankings projects the shared aggregate into a ranking, trimmed
// to limit. A non-positive or oversized limit falls back to the cap.
func (s *Service) GlobalRankings(ctx context.Context, limit int) ([]rating.RankedItem, int64, error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return nil, 0, ErrNotStarted
	}
	s.mu.RUnlock()

	if limit <= 0 || limit > s.maxRankingLimit {
		limit = s.maxRankingLimit
	}

	r := s.loadGlobalRatings(ctx)
	total, err := s.store.TotalVotes(ctx)
	if err != nil {
		metrics.RecordStoreError("total_votes")
		s.logger.Error(ctx, "read vote counter failed", logger.Error(err))
	}

	ranked := rating.Rank(r, s.cat)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, total, nil
}

// Catalog returns the items being ranked, in catalog order.
func (s *Service) Catalog(ctx context.Context) []catalog.Item {
	return s.cat.Items()
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
	}
	if s.started {
		stats["catalog_size"] = s.cat.Len()
		stats["active_sessions"] = len(s.sessions)
		stats["audit_queue_length"] = s.auditQueue.Len(ctx)
		if total, err := s.store.TotalVotes(ctx); err == nil {
			stats["total_votes"] = total
		}
	}
	return stats
}
