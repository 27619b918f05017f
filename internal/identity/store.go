// Package identity maps external chat handles to internal user records
// with get-or-create semantics.
package identity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/renatodellosso/Stockbot/internal/domain"
)

// Store resolves a handle to its user record, creating the record on first
// sight. Implementations must not create duplicates under concurrent
// first-time access for the same handle.
type Store interface {
	Resolve(ctx context.Context, handle string) (*domain.User, error)
}

type Postgres struct{ DB *pgxpool.Pool }

func NewPostgres(db *pgxpool.Pool) *Postgres { return &Postgres{DB: db} }

// Resolve upserts in a single statement so two racing first-time requests
// for one handle can never both insert.
func (s *Postgres) Resolve(ctx context.Context, handle string) (*domain.User, error) {
	row := s.DB.QueryRow(ctx, `
		INSERT INTO users (id, handle, portfolios)
		VALUES ($1, $2, '{}'::jsonb)
		ON CONFLICT (handle) DO UPDATE SET handle = EXCLUDED.handle
		RETURNING id, handle, portfolios
	`, uuid.New(), handle)

	var (
		u   domain.User
		raw []byte
	)
	if err := row.Scan(&u.ID, &u.Handle, &raw); err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %v", domain.ErrUnavailable, handle, err)
	}
	u.Portfolios = map[string]uuid.UUID{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &u.Portfolios); err != nil {
			return nil, fmt.Errorf("%w: decode user %q: %v", domain.ErrUnavailable, handle, err)
		}
	}
	return &u, nil
}
