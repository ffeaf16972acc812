package testvotes

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/versuslab/versus/pkg/logger"
)

// Run executes the complete vote load test: open concurrent voter
// sessions, drive matchup/vote cycles through the real HTTP API, then
// verify the global ranking against the accepted vote count.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting vote load test",
		logger.String("base_url", config.BaseURL),
		logger.Int("votes", config.Votes),
		logger.Int("voters", config.Voters),
		logger.String("timeout", config.Timeout.String()),
	)

	client := newHTTPClient(config.Timeout)

	if err := checkServiceHealth(ctx, client, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	baseline, err := fetchGlobalRanking(ctx, client, config)
	if err != nil {
		return fmt.Errorf("baseline ranking failed: %w", err)
	}

	if err := runVoters(ctx, client, config, stats); err != nil {
		return fmt.Errorf("voting failed: %w", err)
	}

	if err := verifyResults(ctx, client, config, baseline.TotalVotes, stats); err != nil {
		return fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	status, err := client.getJSON(ctx, config.BaseURL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", status)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// fetchGlobalRanking reads the current global ranking.
func fetchGlobalRanking(ctx context.Context, client *HTTPClient, config *Config) (*globalRankingResponse, error) {
	var out globalRankingResponse
	status, err := client.getJSON(ctx, config.BaseURL+"/rankings/global", &out)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("global ranking returned status %d", status)
	}
	return &out, nil
}

// runVoters opens config.Voters sessions and splits config.Votes across
// them, each voter looping matchup -> random vote.
func runVoters(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) error {
	var (
		attempted int64
		accepted  int64
		rejected  int64
		sessions  int64
	)

	votesPerVoter := config.Votes / config.Voters
	extra := config.Votes % config.Voters

	var wg sync.WaitGroup
	for i := 0; i < config.Voters; i++ {
		quota := votesPerVoter
		if i < extra {
			quota++
		}
		if quota == 0 {
			continue
		}

		wg.Add(1)
		go func(voterID, quota int) {
			defer wg.Done()

			var session sessionResponse
			status, err := client.postJSON(ctx, config.BaseURL+"/sessions", struct{}{}, &session)
			if err != nil || status != http.StatusCreated {
				logger.Get().Error(ctx, "open session failed",
					logger.Int("voter", voterID),
					logger.Int("status", status),
					logger.Error(err),
				)
				return
			}
			atomic.AddInt64(&sessions, 1)

			rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(voterID)))
			for v := 0; v < quota; v++ {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if castOneVote(ctx, client, config, session.SessionID, rng, &attempted, &accepted, &rejected) != nil {
					return
				}
			}
		}(i, quota)
	}
	wg.Wait()

	stats.SessionsOpened = int(atomic.LoadInt64(&sessions))
	stats.VotesAttempted = int(atomic.LoadInt64(&attempted))
	stats.VotesAccepted = int(atomic.LoadInt64(&accepted))
	stats.VotesRejected = int(atomic.LoadInt64(&rejected))

	logger.Get().Info(ctx, "voting completed",
		logger.Int("sessions", stats.SessionsOpened),
		logger.Int("attempted", stats.VotesAttempted),
		logger.Int("accepted", stats.VotesAccepted),
		logger.Int("rejected", stats.VotesRejected),
	)
	return nil
}

// castOneVote draws a matchup and votes for a random side.
func castOneVote(ctx context.Context, client *HTTPClient, config *Config, sessionID string, rng *rand.Rand, attempted, accepted, rejected *int64) error {
	var m matchupResponse
	status, err := client.getJSON(ctx, config.BaseURL+"/matchup?session="+sessionID, &m)
	if err != nil || status != http.StatusOK {
		logger.Get().Error(ctx, "draw matchup failed",
			logger.Int("status", status),
			logger.Error(err),
		)
		return fmt.Errorf("draw matchup: status %d: %w", status, err)
	}

	winner, loser := m.Left.ID, m.Right.ID
	if rng.Intn(2) == 0 {
		winner, loser = loser, winner
	}

	atomic.AddInt64(attempted, 1)
	var out voteResponse
	status, err = client.postJSON(ctx, config.BaseURL+"/votes", voteRequest{
		SessionID: sessionID,
		WinnerID:  winner,
		LoserID:   loser,
	}, &out)
	if err != nil {
		atomic.AddInt64(rejected, 1)
		return err
	}
	if status != http.StatusOK {
		atomic.AddInt64(rejected, 1)
		if config.Verbose {
			logger.Get().Warn(ctx, "vote rejected", logger.Int("status", status))
		}
		return nil
	}
	atomic.AddInt64(accepted, 1)
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var votesPerSecond float64
	if stats.Duration > 0 {
		votesPerSecond = float64(stats.VotesAccepted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("sessions_opened", stats.SessionsOpened),
		logger.Int("votes_attempted", stats.VotesAttempted),
		logger.Int("votes_accepted", stats.VotesAccepted),
		logger.Int("votes_rejected", stats.VotesRejected),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("votes_per_second", votesPerSecond),
	)
}
