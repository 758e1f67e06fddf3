package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karlmoz79/busqueda-laptop/internal/config"
	"github.com/karlmoz79/busqueda-laptop/internal/models"
)

// Snapshot is one observed product price at a point in time.
type Snapshot struct {
	ID              string    `json:"id"`
	Query           string    `json:"query"`
	Title           string    `json:"title"`
	PriceUSD        *float64  `json:"price_usd"`
	URL             string    `json:"url"`
	ShipsToColombia bool      `json:"ships_to_colombia"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// Store persists price snapshots in postgres so price movement can be
// inspected across runs.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func New(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool:   pool,
		logger: logger.With("component", "history"),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

// EnsureSchema creates the snapshot table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS price_snapshots (
			id UUID PRIMARY KEY,
			query TEXT NOT NULL,
			title TEXT NOT NULL,
			price_usd DOUBLE PRECISION,
			url TEXT NOT NULL,
			ships_to_colombia BOOLEAN NOT NULL DEFAULT FALSE,
			scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_price_snapshots_query_time
			ON price_snapshots (query, scraped_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// RecordSnapshots stores one snapshot per record for this run. Individual
// insert failures are logged and do not abort the batch.
func (s *Store) RecordSnapshots(ctx context.Context, query string, records []models.ProductRecord) error {
	now := time.Now().UTC()
	var failed int

	for _, rec := range records {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO price_snapshots (id, query, title, price_usd, url, ships_to_colombia, scraped_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, uuid.NewString(), query, rec.Title, rec.PriceUSD, rec.URL, rec.ShipsToColombia, now)
		if err != nil {
			failed++
			s.logger.Warn("failed to insert snapshot", "url", rec.URL, "error", err)
		}
	}

	if failed == len(records) && failed > 0 {
		return fmt.Errorf("failed to insert all %d snapshots", failed)
	}
	return nil
}

// RecentByQuery returns up to limit snapshots for query, newest first.
func (s *Store) RecentByQuery(ctx context.Context, query string, limit int) ([]Snapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, query, title, price_usd, url, ships_to_colombia, scraped_at
		FROM price_snapshots
		WHERE query = $1
		ORDER BY scraped_at DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Query, &snap.Title, &snap.PriceUSD,
			&snap.URL, &snap.ShipsToColombia, &snap.ScrapedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

// LowestPrice returns the lowest priced snapshot ever seen for query, or nil
// when no priced snapshot exists.
func (s *Store) LowestPrice(ctx context.Context, query string) (*Snapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, query, title, price_usd, url, ships_to_colombia, scraped_at
		FROM price_snapshots
		WHERE query = $1 AND price_usd IS NOT NULL
		ORDER BY price_usd ASC, scraped_at DESC
		LIMIT 1
	`, query)

	var snap Snapshot
	err := row.Scan(&snap.ID, &snap.Query, &snap.Title, &snap.PriceUSD,
		&snap.URL, &snap.ShipsToColombia, &snap.ScrapedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query lowest price: %w", err)
	}

	return &snap, nil
}
