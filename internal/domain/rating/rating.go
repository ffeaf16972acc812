// Package rating implements the pairwise-comparison rating model.
//
// Ratings follow the classic logistic (Elo) update: the expected score
// is a function of the rating difference, and each vote moves both
// participants toward their observed outcome by at most the K-factor.
// Arithmetic is float64 internally; only stored ratings are rounded, so
// identical vote sequences always yield identical stored ratings.
package rating

import (
	"math"
	"sort"

	"github.com/versuslab/versus/internal/domain/catalog"
)

// Rating model constants.
const (
	// InitialRating is assigned to any item without vote history.
	InitialRating = 1500

	// DefaultKFactor bounds how far a single vote moves a rating.
	DefaultKFactor = 32

	// ratingSpread is the logistic curve width: an item rated this many
	// points above another is expected to win ten times as often.
	ratingSpread = 400
)

// Ratings maps item ids to stored (rounded) ratings.
type Ratings map[string]int

// Clone returns an independent copy of r.
func (r Ratings) Clone() Ratings {
	out := make(Ratings, len(r))
	for id, v := range r {
		out[id] = v
	}
	return out
}

// Get returns the rating for id, defaulting to InitialRating when absent.
func (r Ratings) Get(id string) int {
	if v, ok := r[id]; ok {
		return v
	}
	return InitialRating
}

// ExpectedScore returns the probability in (0,1) that an item rated
// self beats an item rated opponent.
func ExpectedScore(self, opponent float64) float64 {
	return 1 / (1 + math.Pow(10, (opponent-self)/ratingSpread))
}

// UpdateAfterMatch returns the post-match rating for an item rated self
// against an opponent, given the actual score (1 win, 0 loss).
func UpdateAfterMatch(self, opponent, actual, kFactor float64) float64 {
	return self + kFactor*(actual-ExpectedScore(self, opponent))
}

// ApplyVote returns a new rating map with the winner and loser updated.
// Both new ratings are computed from the pre-vote values (simultaneous
// update); updating sequentially would change the numbers. Entries
// other than the two touched are copied through unchanged.
func ApplyVote(r Ratings, winnerID, loserID string, kFactor float64) Ratings {
	winner := float64(r.Get(winnerID))
	loser := float64(r.Get(loserID))

	newWinner := UpdateAfterMatch(winner, loser, 1, kFactor)
	newLoser := UpdateAfterMatch(loser, winner, 0, kFactor)

	out := r.Clone()
	out[winnerID] = int(math.Round(newWinner))
	out[loserID] = int(math.Round(newLoser))
	return out
}

// RankedItem is one row of a ranking projection.
type RankedItem struct {
	Rank   int          `json:"rank"`
	Item   catalog.Item `json:"item"`
	Rating int          `json:"rating"`
}

// Rank projects every catalog item to its rating and orders the result
// by rating descending. Items with equal ratings keep catalog order, so
// the projection is a deterministic permutation of the catalog.
func Rank(r Ratings, cat *catalog.Catalog) []RankedItem {
	ranked := make([]RankedItem, cat.Len())
	for i := 0; i < cat.Len(); i++ {
		it := cat.At(i)
		ranked[i] = RankedItem{Item: it, Rating: r.Get(it.ID)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Rating > ranked[j].Rating
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// PositionOf returns the 1-based rank of id within ranked, or 0 when
// the id is not present.
func PositionOf(ranked []RankedItem, id string) int {
	for _, row := range ranked {
		if row.Item.ID == id {
			return row.Rank
		}
	}
	return 0
}
