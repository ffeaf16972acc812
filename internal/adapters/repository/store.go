// Package repository defines the rating store contract and its
// implementations.
//
// The store keeps two logical tables: one private rating map per actor
// and a single shared global aggregate with a vote counter. The global
// merge is field-level: a vote writes only the two ratings it changed
// and atomically increments the counter, so concurrent votes on
// disjoint items never lose updates. Two votes touching the same item
// race last-write-wins on that one field, which the design accepts.
package repository

import (
	"context"

	"github.com/versuslab/versus/internal/domain/model"
	"github.com/versuslab/versus/internal/domain/rating"
)

// Store provides durable access to rating state and the vote audit log.
type Store interface {
	// GetUserRatings returns an actor's private rating map.
	// Returns ErrNotFound when the actor has no saved ratings.
	GetUserRatings(ctx context.Context, actorID string) (rating.Ratings, error)

	// PutUserRatings replaces an actor's private rating map.
	PutUserRatings(ctx context.Context, actorID string, r rating.Ratings) error

	// GetGlobalAggregate returns the shared rating record.
	// Returns ErrNotFound before the first vote is ever merged.
	GetGlobalAggregate(ctx context.Context) (model.Aggregate, error)

	// MergeGlobalAggregate writes the two touched ratings into the
	// shared record and atomically increments the vote counter.
	// Entries for items it does not name are never modified.
	MergeGlobalAggregate(ctx context.Context, winnerID string, winnerRating int, loserID string, loserRating int) error

	// AppendVoteEvent appends one immutable audit record and returns
	// its assigned id.
	AppendVoteEvent(ctx context.Context, ev model.VoteEvent) (string, error)

	// TotalVotes returns the shared aggregate's vote counter.
	TotalVotes(ctx context.Context) (int64, error)

	// Close releases the store. Subsequent calls fail with ErrUnavailable.
	Close() error
}
