// Package model contains domain records passed between layers.
package model

import "time"

// VoteEvent is the append-only audit record produced once per vote.
// Events are never mutated or deleted.
type VoteEvent struct {
	ID       string    // store-assigned id (ULID), empty until appended
	ActorID  string    // voter who cast the vote
	WinnerID string    // item chosen
	LoserID  string    // item passed over
	TS       time.Time // when the vote was recorded
}

// Aggregate is the shared, cross-actor global rating record.
// It is mutated by every vote with last-write-wins semantics per item;
// TotalVotes only ever increases.
type Aggregate struct {
	Ratings     map[string]int // item id -> rounded rating
	TotalVotes  int64
	LastUpdated time.Time
}
