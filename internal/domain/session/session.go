// Package session tracks one voter's matchup/vote cycle.
//
// A session owns its pair-history sampler (scoped to the session, never
// persisted or shared) and the identity pair behind every request: the
// actor who casts votes and the subject whose rankings are displayed.
// When a share link is opened those differ, and votes must only ever
// touch the actor's ratings.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/versuslab/versus/internal/domain/catalog"
	"github.com/versuslab/versus/internal/domain/matchup"
	"github.com/versuslab/versus/internal/domain/rating"
)

// Session is the per-voter state machine: generate a matchup, accept
// exactly one vote against it, repeat.
type Session struct {
	mu         sync.Mutex
	id         string
	actorID    string
	subjectID  string
	cat        *catalog.Catalog
	sampler    *matchup.Sampler
	kFactor    float64
	current    *matchup.Matchup
	votes      int
	lastActive time.Time
}

// New creates a session over cat. When no actor id is supplied a fresh
// opaque id is issued; the subject defaults to the actor.
func New(cat *catalog.Catalog, opts ...Option) (*Session, error) {
	s := &Session{
		id:         uuid.NewString(),
		cat:        cat,
		kFactor:    rating.DefaultKFactor,
		lastActive: time.Now(),
	}
	var samplerOpts []matchup.Option
	for _, opt := range opts {
		opt(s, &samplerOpts)
	}
	if s.actorID == "" {
		s.actorID = uuid.NewString()
	}
	if s.subjectID == "" {
		s.subjectID = s.actorID
	}
	sampler, err := matchup.New(cat, samplerOpts...)
	if err != nil {
		return nil, fmt.Errorf("create session sampler: %w", err)
	}
	s.sampler = sampler
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// ActorID returns the id votes are recorded for.
func (s *Session) ActorID() string { return s.actorID }

// SubjectID returns the id whose rankings are displayed.
func (s *Session) SubjectID() string { return s.subjectID }

// ReadOnly reports whether the session views someone else's rankings.
func (s *Session) ReadOnly() bool { return s.subjectID != s.actorID }

// Votes returns how many votes the session has recorded.
func (s *Session) Votes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.votes
}

// LastActive returns the time of the last matchup or vote.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// IdleSince reports whether the session has been idle longer than ttl.
func (s *Session) IdleSince(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActive) > ttl
}

// NextMatchup draws the next pair and marks it as the outstanding
// matchup. Drawing again before voting simply replaces it, matching a
// voter skipping a pair by reloading.
func (s *Session) NextMatchup() matchup.Matchup {
	m := s.sampler.Next()
	s.mu.Lock()
	s.current = &m
	s.lastActive = time.Now()
	s.mu.Unlock()
	return m
}

// Current returns the outstanding matchup, if any.
func (s *Session) Current() (matchup.Matchup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return matchup.Matchup{}, false
	}
	return *s.current, true
}

// TakeMatchup consumes the outstanding matchup for a vote naming
// winner and loser. The pair must be exactly the outstanding one; a
// second submission against the same matchup, or a vote against a pair
// that was never offered, fails with ErrStaleMatchup. This is the gate
// that keeps one vote per generated matchup.
func (s *Session) TakeMatchup(winnerID, loserID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNoMatchup
	}
	if !s.current.Contains(winnerID, loserID) {
		return ErrStaleMatchup
	}
	s.current = nil
	s.votes++
	s.lastActive = time.Now()
	return nil
}

// Result is the outcome of recording one vote.
type Result struct {
	ActorRatings  rating.Ratings
	GlobalRatings rating.Ratings
	WinnerRank    int
	LoserRank     int
	WinnerRating  int
	LoserRating   int
	// AgreesWithMajority is true when the voter's pick also ranks above
	// the passed-over item globally after the vote.
	AgreesWithMajority bool
}

// RecordVote applies one vote to the actor's and the global rating maps
// and locates both items in the new global ranking. It is pure compute:
// persistence of the returned maps is the caller's concern, which keeps
// the update law testable against any store.
func (s *Session) RecordVote(actor, global rating.Ratings, winnerID, loserID string) Result {
	newActor := rating.ApplyVote(actor, winnerID, loserID, s.kFactor)
	newGlobal := rating.ApplyVote(global, winnerID, loserID, s.kFactor)

	ranked := rating.Rank(newGlobal, s.cat)
	winnerRank := rating.PositionOf(ranked, winnerID)
	loserRank := rating.PositionOf(ranked, loserID)

	return Result{
		ActorRatings:       newActor,
		GlobalRatings:      newGlobal,
		WinnerRank:         winnerRank,
		LoserRank:          loserRank,
		WinnerRating:       newGlobal.Get(winnerID),
		LoserRating:        newGlobal.Get(loserID),
		AgreesWithMajority: winnerRank < loserRank,
	}
}
