package testvotes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/versuslab/versus/pkg/logger"
)

// verifyResults checks the two invariants the API promises under load:
// the vote counter grew by exactly the number of accepted votes, and
// the global ranking stayed a densely-ranked permutation of the catalog.
func verifyResults(ctx context.Context, client *HTTPClient, config *Config, baselineVotes int64, stats *Stats) error {
	logger.Get().Info(ctx, "verifying results")

	var cat catalogResponse
	status, err := client.getJSON(ctx, config.BaseURL+"/catalog", &cat)
	if err != nil || status != http.StatusOK {
		return fmt.Errorf("fetch catalog: status %d: %w", status, err)
	}

	ranking, err := fetchGlobalRanking(ctx, client, config)
	if err != nil {
		return err
	}

	expected := baselineVotes + int64(stats.VotesAccepted)
	if ranking.TotalVotes != expected {
		return fmt.Errorf("vote counter mismatch: got %d, want %d (baseline %d + accepted %d)",
			ranking.TotalVotes, expected, baselineVotes, stats.VotesAccepted)
	}

	if len(ranking.Rankings) != len(cat.Items) {
		return fmt.Errorf("ranking size mismatch: got %d rows, catalog has %d items",
			len(ranking.Rankings), len(cat.Items))
	}

	inCatalog := make(map[string]bool, len(cat.Items))
	for _, it := range cat.Items {
		inCatalog[it.ID] = true
	}
	seen := make(map[string]bool, len(ranking.Rankings))
	for i, row := range ranking.Rankings {
		if row.Rank != i+1 {
			return fmt.Errorf("rank not dense at position %d: got %d", i, row.Rank)
		}
		if !inCatalog[row.Item.ID] {
			return fmt.Errorf("ranking contains unknown item %q", row.Item.ID)
		}
		if seen[row.Item.ID] {
			return fmt.Errorf("ranking repeats item %q", row.Item.ID)
		}
		seen[row.Item.ID] = true
		if i > 0 && row.Rating > ranking.Rankings[i-1].Rating {
			return fmt.Errorf("ranking not sorted at position %d: %d above %d",
				i, row.Rating, ranking.Rankings[i-1].Rating)
		}
	}

	logger.Get().Info(ctx, "verification passed",
		logger.Int64("total_votes", ranking.TotalVotes),
		logger.Int("ranking_rows", len(ranking.Rankings)),
	)
	return nil
}
