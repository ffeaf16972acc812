package repository

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/versuslab/versus/internal/domain/model"
	"github.com/versuslab/versus/internal/domain/rating"
)

// MemStore is the in-memory Store used when no durable backend is
// configured, and as the degraded fallback when opening one fails.
// State does not survive a restart.
type MemStore struct {
	mu     sync.RWMutex
	closed bool

	userRatings map[string]rating.Ratings
	global      rating.Ratings
	totalVotes  int64
	lastUpdated time.Time
	votes       []model.VoteEvent
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		userRatings: make(map[string]rating.Ratings),
		global:      make(rating.Ratings),
	}
}

// GetUserRatings returns a copy of the actor's private rating map.
func (s *MemStore) GetUserRatings(_ context.Context, actorID string) (rating.Ratings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrUnavailable
	}
	r, ok := s.userRatings[actorID]
	if !ok {
		return nil, ErrNotFound
	}
	return r.Clone(), nil
}

// PutUserRatings stores a copy of the actor's private rating map.
func (s *MemStore) PutUserRatings(_ context.Context, actorID string, r rating.Ratings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}
	s.userRatings[actorID] = r.Clone()
	return nil
}

// GetGlobalAggregate returns a copy of the shared rating record.
func (s *MemStore) GetGlobalAggregate(_ context.Context) (model.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Aggregate{}, ErrUnavailable
	}
	if s.totalVotes == 0 && len(s.global) == 0 {
		return model.Aggregate{}, ErrNotFound
	}
	agg := model.Aggregate{
		Ratings:     s.global.Clone(),
		TotalVotes:  s.totalVotes,
		LastUpdated: s.lastUpdated,
	}
	return agg, nil
}

// MergeGlobalAggregate writes the two touched ratings and increments
// the vote counter in one critical section.
func (s *MemStore) MergeGlobalAggregate(_ context.Context, winnerID string, winnerRating int, loserID string, loserRating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}
	s.global[winnerID] = winnerRating
	s.global[loserID] = loserRating
	s.totalVotes++
	s.lastUpdated = time.Now()
	return nil
}

// AppendVoteEvent records one immutable audit entry.
func (s *MemStore) AppendVoteEvent(_ context.Context, ev model.VoteEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrUnavailable
	}
	ev.ID = ulid.Make().String()
	s.votes = append(s.votes, ev)
	return ev.ID, nil
}

// TotalVotes returns the aggregate vote counter.
func (s *MemStore) TotalVotes(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrUnavailable
	}
	return s.totalVotes, nil
}

// VoteEvents returns a copy of the audit log, oldest first.
func (s *MemStore) VoteEvents(_ context.Context) ([]model.VoteEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrUnavailable
	}
	out := make([]model.VoteEvent, len(s.votes))
	copy(out, s.votes)
	return out, nil
}

// Close marks the store unavailable.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
