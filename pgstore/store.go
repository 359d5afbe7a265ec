// Package pgstore loads pipeline reports into PostgreSQL.
package pgstore

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pharmetrics/claims"
)

//go:embed sql/schema.sql
var schema string

// Store writes pipeline reports into the three output tables.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens a bounded pool against connStr and pings it.
func Connect(ctx context.Context, connStr string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewStore wraps an existing pool. The caller keeps ownership of the pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// InitSchema creates the output tables if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// ReplaceReport truncates the three output tables and bulk-loads the report
// in a single transaction, so readers see either the previous run or the
// new one, never a mix.
func (s *Store) ReplaceReport(ctx context.Context, r *claims.Report) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{"pharmacy_metrics", "chain_ranks", "quantity_frequencies"} {
		if _, err := tx.Exec(ctx, "TRUNCATE "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}

	if err := copyMetrics(ctx, tx, r.Metrics); err != nil {
		return err
	}
	if err := copyChains(ctx, tx, r.TopChains); err != nil {
		return err
	}
	if err := copyQuantities(ctx, tx, r.TopQuantities); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func copyMetrics(ctx context.Context, tx pgx.Tx, rows []claims.MetricRow) error {
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"pharmacy_metrics"},
		[]string{"npi", "ndc", "fills", "reverted", "avg_price", "total_price"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.NPI, r.NDC, r.Fills, r.Reverted, r.AvgPrice, r.TotalPrice}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy pharmacy_metrics: %w", err)
	}
	return nil
}

func copyChains(ctx context.Context, tx pgx.Tx, rows []claims.ChainRank) error {
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"chain_ranks"},
		[]string{"ndc", "rank", "chain", "avg_price"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.NDC, r.Rank, r.Chain, r.AvgPrice}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy chain_ranks: %w", err)
	}
	return nil
}

func copyQuantities(ctx context.Context, tx pgx.Tx, rows []claims.QuantityFrequency) error {
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"quantity_frequencies"},
		[]string{"ndc", "rank", "quantity", "count"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			r := rows[i]
			return []any{r.NDC, r.Rank, r.Quantity, r.Count}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy quantity_frequencies: %w", err)
	}
	return nil
}
