// Package matchup selects which two items a voter compares next.
//
// The sampler draws uniformly random pairs but never repeats a pair
// within an epoch; once all C(n,2) unordered pairs have been shown the
// history clears and a new epoch begins. Over many epochs every pair is
// presented an equal number of times.
package matchup

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/versuslab/versus/internal/domain/catalog"
)

// Matchup is a pair of distinct catalog items. Left/Right is display
// order only; the pair is unordered for history purposes.
type Matchup struct {
	Left  catalog.Item `json:"left"`
	Right catalog.Item `json:"right"`
}

// Key returns the canonical unordered pair key.
func (m Matchup) Key() string {
	return pairKey(m.Left.ID, m.Right.ID)
}

// Contains reports whether the matchup is exactly the pair {a, b}.
func (m Matchup) Contains(a, b string) bool {
	return (m.Left.ID == a && m.Right.ID == b) || (m.Left.ID == b && m.Right.ID == a)
}

// Sampler produces matchups for one session. Safe for concurrent use,
// though a sampler is owned by a single session in practice.
type Sampler struct {
	mu        sync.Mutex
	cat       *catalog.Catalog
	rng       *rand.Rand
	seen      map[string]struct{}
	epochs    int
	onReset   func()
	epochSize int
}

// New creates a sampler over cat. The catalog must hold at least two
// items; anything smaller cannot produce a pair of distinct items.
func New(cat *catalog.Catalog, opts ...Option) (*Sampler, error) {
	if cat == nil || cat.Len() < catalog.MinItems {
		return nil, fmt.Errorf("%w: sampler needs at least %d items", catalog.ErrInvalidCatalog, catalog.MinItems)
	}
	s := &Sampler{
		cat:       cat,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // sampling fairness, not crypto
		seen:      make(map[string]struct{}),
		epochSize: cat.Pairs(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next returns a matchup whose pair has not been presented this epoch.
// When the epoch is exhausted the history resets first, so Next never
// blocks or fails. The first drawn item becomes the display-left side.
func (s *Sampler) Next() Matchup {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.seen) >= s.epochSize {
		s.seen = make(map[string]struct{})
		s.epochs++
		if s.onReset != nil {
			s.onReset()
		}
	}

	n := s.cat.Len()
	for {
		i := s.rng.Intn(n)
		j := s.rng.Intn(n)
		for j == i {
			j = s.rng.Intn(n)
		}

		left, right := s.cat.At(i), s.cat.At(j)
		key := pairKey(left.ID, right.ID)
		if _, dup := s.seen[key]; dup {
			// Rejection loop: expected retries stay small while unseen
			// pairs remain, and the epoch reset bounds the worst case.
			continue
		}
		s.seen[key] = struct{}{}
		return Matchup{Left: left, Right: right}
	}
}

// Remaining returns how many pairs are left in the current epoch.
func (s *Sampler) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epochSize - len(s.seen)
}

// EpochSize returns the number of distinct unordered pairs, C(n,2).
func (s *Sampler) EpochSize() int {
	return s.epochSize
}

// Epochs returns how many epoch resets have occurred.
func (s *Sampler) Epochs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epochs
}

// pairKey canonicalizes an unordered pair. The separator cannot appear
// in item ids produced by the catalogs we load, and ordering the ids
// makes {a,b} and {b,a} collide as intended.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
