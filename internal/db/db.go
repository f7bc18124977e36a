// Package db provides PostgreSQL storage for the comparison history.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/role-recommender/internal/types"
)

// Default and maximum number of history entries returned by ListHistory.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 200
)

//go:embed schema.sql
var schemaSQL string

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the history table if it does not exist
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordComparison stores a comparison and returns the new entry's ID
func (db *DB) RecordComparison(ctx context.Context, cmp *types.Comparison, overrides map[string]string) (uuid.UUID, error) {
	if overrides == nil {
		overrides = map[string]string{}
	}
	jsonBytes, err := json.Marshal(overrides)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal overrides: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO comparison_history (id, label_set, class, overrides, benchmark_percent, user_percent)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id, string(cmp.LabelSet), cmp.Class, jsonBytes, cmp.Benchmark.Percent, cmp.User.Percent,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to record comparison: %w", err)
	}
	return id, nil
}

// GetHistoryEntry retrieves a single entry, or nil when it does not exist
func (db *DB) GetHistoryEntry(ctx context.Context, id uuid.UUID) (*types.HistoryEntry, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, label_set, class, overrides, benchmark_percent, user_percent, created_at
		 FROM comparison_history WHERE id = $1`,
		id,
	)
	entry, err := scanHistoryEntry(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}
	return entry, nil
}

// ListHistory returns the most recent entries first
func (db *DB) ListHistory(ctx context.Context, limit int) ([]types.HistoryEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, label_set, class, overrides, benchmark_percent, user_percent, created_at
		 FROM comparison_history ORDER BY created_at DESC LIMIT $1`,
		NormalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	entries := []types.HistoryEntry{}
	for rows.Next() {
		entry, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return entries, nil
}

// DeleteHistoryEntry removes an entry and reports whether it existed
func (db *DB) DeleteHistoryEntry(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM comparison_history WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete history entry: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanHistoryEntry(row pgx.Row) (*types.HistoryEntry, error) {
	var entry types.HistoryEntry
	var labelSet string
	var overrides []byte
	if err := row.Scan(&entry.ID, &labelSet, &entry.Class, &overrides,
		&entry.BenchmarkPercent, &entry.UserPercent, &entry.CreatedAt); err != nil {
		return nil, err
	}
	entry.LabelSet = types.LabelSet(labelSet)
	if err := json.Unmarshal(overrides, &entry.Overrides); err != nil {
		return nil, fmt.Errorf("failed to unmarshal overrides: %w", err)
	}
	return &entry, nil
}

// NormalizeLimit clamps a requested history size to [1, MaxHistoryLimit], using
// DefaultHistoryLimit for non-positive values.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
