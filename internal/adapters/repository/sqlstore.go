package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/versuslab/versus/internal/adapters/repository/migrations"
	"github.com/versuslab/versus/internal/domain/model"
	"github.com/versuslab/versus/internal/domain/rating"
)

// SQLStore is the durable Store backed by a local SQLite database.
type SQLStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewSQLStore opens or creates the database at path and migrates the
// schema. WAL mode is enabled for concurrent readers.
func NewSQLStore(path string) (*SQLStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &SQLStore{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}
	return nil
}

// GetUserRatings loads an actor's private rating map. Rows that fail to
// scan are treated as absent rather than failing the whole read.
func (s *SQLStore) GetUserRatings(ctx context.Context, actorID string) (rating.Ratings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrUnavailable
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, rating FROM user_ratings WHERE actor_id = ?`, actorID)
	if err != nil {
		return nil, fmt.Errorf("store: query user ratings: %w", err)
	}
	defer rows.Close()

	r := make(rating.Ratings)
	for rows.Next() {
		var itemID string
		var value int
		if err := rows.Scan(&itemID, &value); err != nil {
			continue // malformed row, re-initialized on next write
		}
		r[itemID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate user ratings: %w", err)
	}
	if len(r) == 0 {
		return nil, ErrNotFound
	}
	return r, nil
}

// PutUserRatings upserts an actor's full private rating map in one
// transaction.
func (s *SQLStore) PutUserRatings(ctx context.Context, actorID string, r rating.Ratings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	for itemID, value := range r {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO user_ratings (actor_id, item_id, rating) VALUES (?, ?, ?)
			ON CONFLICT (actor_id, item_id) DO UPDATE SET rating = excluded.rating
		`, actorID, itemID, value); err != nil {
			return fmt.Errorf("store: upsert user rating: %w", err)
		}
	}
	return tx.Commit()
}

// GetGlobalAggregate loads the shared rating record.
func (s *SQLStore) GetGlobalAggregate(ctx context.Context) (model.Aggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Aggregate{}, ErrUnavailable
	}

	agg := model.Aggregate{Ratings: make(map[string]int)}

	var lastUpdated string
	err := s.db.QueryRowContext(ctx,
		`SELECT total_votes, last_updated FROM aggregate WHERE id = 1`).
		Scan(&agg.TotalVotes, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Aggregate{}, ErrNotFound
	}
	if err != nil {
		return model.Aggregate{}, fmt.Errorf("store: query aggregate: %w", err)
	}
	if ts, parseErr := time.Parse(time.RFC3339, lastUpdated); parseErr == nil {
		agg.LastUpdated = ts
	}

	rows, err := s.db.QueryContext(ctx, `SELECT item_id, rating FROM global_ratings`)
	if err != nil {
		return model.Aggregate{}, fmt.Errorf("store: query global ratings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var itemID string
		var value int
		if err := rows.Scan(&itemID, &value); err != nil {
			continue
		}
		agg.Ratings[itemID] = value
	}
	if err := rows.Err(); err != nil {
		return model.Aggregate{}, fmt.Errorf("store: iterate global ratings: %w", err)
	}

	if agg.TotalVotes == 0 && len(agg.Ratings) == 0 {
		return model.Aggregate{}, ErrNotFound
	}
	return agg, nil
}

// MergeGlobalAggregate upserts exactly the two touched ratings and
// increments the vote counter, all in one transaction. Untouched items
// are never written, so concurrent votes on disjoint pairs compose.
func (s *SQLStore) MergeGlobalAggregate(ctx context.Context, winnerID string, winnerRating int, loserID string, loserRating int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrUnavailable
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback()

	upsert := `
		INSERT INTO global_ratings (item_id, rating) VALUES (?, ?)
		ON CONFLICT (item_id) DO UPDATE SET rating = excluded.rating
	`
	if _, err := tx.ExecContext(ctx, upsert, winnerID, winnerRating); err != nil {
		return fmt.Errorf("store: merge winner rating: %w", err)
	}
	if _, err := tx.ExecContext(ctx, upsert, loserID, loserRating); err != nil {
		return fmt.Errorf("store: merge loser rating: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE aggregate SET total_votes = total_votes + 1, last_updated = ? WHERE id = 1
	`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("store: increment vote counter: %w", err)
	}
	return tx.Commit()
}

// AppendVoteEvent inserts one immutable audit row and returns its ULID.
func (s *SQLStore) AppendVoteEvent(ctx context.Context, ev model.VoteEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", ErrUnavailable
	}

	id := ulid.Make().String()
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO votes (id, actor_id, winner_id, loser_id, ts) VALUES (?, ?, ?, ?, ?)
	`, id, ev.ActorID, ev.WinnerID, ev.LoserID, ev.TS.UTC().Format(time.RFC3339)); err != nil {
		return "", fmt.Errorf("store: append vote event: %w", err)
	}
	return id, nil
}

// TotalVotes returns the aggregate vote counter.
func (s *SQLStore) TotalVotes(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrUnavailable
	}

	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT total_votes FROM aggregate WHERE id = 1`).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("store: query vote counter: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
