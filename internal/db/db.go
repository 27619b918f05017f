package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Migrate applies the schema. The unique indexes back the ledger's
// atomicity requirements: one user per handle, one portfolio per
// (owner, name).
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id         uuid PRIMARY KEY,
			handle     text NOT NULL UNIQUE,
			portfolios jsonb NOT NULL DEFAULT '{}'::jsonb
		)`,
		`CREATE TABLE IF NOT EXISTS portfolios (
			id         uuid PRIMARY KEY,
			owner_id   uuid NOT NULL REFERENCES users(id),
			name       text NOT NULL,
			cash       numeric NOT NULL CHECK (cash >= 0),
			holdings   jsonb NOT NULL DEFAULT '[]'::jsonb,
			version    bigint NOT NULL DEFAULT 1,
			created_at timestamptz NOT NULL DEFAULT now(),
			UNIQUE (owner_id, name)
		)`,
	}
	for _, s := range stmts {
		if _, err := pool.Exec(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
