package testvotes

import "time"

// Config holds configuration for the vote load test.
type Config struct {
	BaseURL string        // Base URL of the service
	Votes   int           // Total number of votes to cast
	Voters  int           // Number of concurrent voter sessions
	Timeout time.Duration // HTTP request timeout
	LogFile string        // Log file for test output
	Verbose bool          // Enable verbose logging
}

// Stats holds test statistics.
type Stats struct {
	SessionsOpened int
	VotesAttempted int
	VotesAccepted  int
	VotesRejected  int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}

// sessionResponse mirrors POST /sessions.
type sessionResponse struct {
	SessionID string `json:"session_id"`
	ActorID   string `json:"actor_id"`
}

// matchupResponse mirrors GET /matchup.
type matchupResponse struct {
	SessionID string `json:"session_id"`
	Left      item   `json:"left"`
	Right     item   `json:"right"`
}

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// voteRequest mirrors POST /votes.
type voteRequest struct {
	SessionID string `json:"session_id"`
	WinnerID  string `json:"winner_id"`
	LoserID   string `json:"loser_id"`
}

// voteResponse mirrors the accepted-vote reply.
type voteResponse struct {
	WinnerRating int   `json:"winner_rating"`
	LoserRating  int   `json:"loser_rating"`
	TotalVotes   int64 `json:"total_votes"`
}

// rankedRow mirrors one row of a ranking response.
type rankedRow struct {
	Rank   int  `json:"rank"`
	Item   item `json:"item"`
	Rating int  `json:"rating"`
}

// globalRankingResponse mirrors GET /rankings/global.
type globalRankingResponse struct {
	TotalVotes int64       `json:"total_votes"`
	Rankings   []rankedRow `json:"rankings"`
}

// catalogResponse mirrors GET /catalog.
type catalogResponse struct {
	Items []item `json:"items"`
}
