// Package portfolio persists portfolio documents. Updates are full-document
// replaces guarded by a version check so racing writers cannot silently
// overwrite each other.
package portfolio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/renatodellosso/Stockbot/internal/domain"
	"github.com/renatodellosso/Stockbot/internal/identity"
)

type Store interface {
	// Create inserts the portfolio and adds the owner's name->id entry in
	// one atomic write. Fails with domain.ErrDuplicateName if the owner
	// already has a portfolio by that name.
	Create(ctx context.Context, name string, ownerID uuid.UUID, startingCash decimal.Decimal) (*domain.Portfolio, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error)
	// GetByOwnerAndName resolves the owner via the identity store, then
	// loads by the mapped id, falling back to an (owner, name) query when
	// the map entry is missing.
	GetByOwnerAndName(ctx context.Context, ownerHandle, name string) (*domain.Portfolio, error)
	// Update replaces the stored document if its version still matches the
	// snapshot the caller read, bumping the version. Fails with
	// domain.ErrConflict on a version mismatch.
	Update(ctx context.Context, p *domain.Portfolio) error
}

const uniqueViolation = "23505"

type Postgres struct {
	DB    *pgxpool.Pool
	Users identity.Store
}

func NewPostgres(db *pgxpool.Pool, users identity.Store) *Postgres {
	return &Postgres{DB: db, Users: users}
}

func (s *Postgres) Create(ctx context.Context, name string, ownerID uuid.UUID, startingCash decimal.Decimal) (*domain.Portfolio, error) {
	p := &domain.Portfolio{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		Cash:      startingCash,
		Holdings:  []domain.Holding{},
		CreatedAt: time.Now().UTC(),
		Version:   1,
	}

	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin create: %v", domain.ErrUnavailable, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO portfolios (id, owner_id, name, cash, holdings, version, created_at)
		VALUES ($1, $2, $3, $4, '[]'::jsonb, $5, $6)
	`, p.ID, p.OwnerID, p.Name, p.Cash.String(), p.Version, p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrDuplicateName
		}
		return nil, fmt.Errorf("%w: insert portfolio: %v", domain.ErrUnavailable, err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET portfolios = portfolios || jsonb_build_object($2::text, to_jsonb($3::text))
		WHERE id = $1
	`, p.OwnerID, p.Name, p.ID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: index portfolio name: %v", domain.ErrUnavailable, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit create: %v", domain.ErrUnavailable, err)
	}
	return p, nil
}

func (s *Postgres) GetByID(ctx context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	row := s.DB.QueryRow(ctx, `
		SELECT id, owner_id, name, cash::text, holdings, version, created_at
		FROM portfolios WHERE id = $1
	`, id)
	return scanPortfolio(row)
}

func (s *Postgres) GetByOwnerAndName(ctx context.Context, ownerHandle, name string) (*domain.Portfolio, error) {
	user, err := s.Users.Resolve(ctx, ownerHandle)
	if err != nil {
		return nil, err
	}
	if id, ok := user.Portfolios[name]; ok {
		return s.GetByID(ctx, id)
	}
	// The name->id map and the portfolio row are written together, but an
	// older record may predate that; query the collection directly.
	row := s.DB.QueryRow(ctx, `
		SELECT id, owner_id, name, cash::text, holdings, version, created_at
		FROM portfolios WHERE owner_id = $1 AND name = $2
	`, user.ID, name)
	return scanPortfolio(row)
}

func (s *Postgres) Update(ctx context.Context, p *domain.Portfolio) error {
	holdings, err := json.Marshal(p.Holdings)
	if err != nil {
		return fmt.Errorf("%w: encode holdings: %v", domain.ErrUnavailable, err)
	}
	tag, err := s.DB.Exec(ctx, `
		UPDATE portfolios
		SET cash = $2, holdings = $3, version = version + 1
		WHERE id = $1 AND version = $4
	`, p.ID, p.Cash.String(), holdings, p.Version)
	if err != nil {
		return fmt.Errorf("%w: update portfolio: %v", domain.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	p.Version++
	return nil
}

func scanPortfolio(row pgx.Row) (*domain.Portfolio, error) {
	var (
		p        domain.Portfolio
		cash     string
		holdings []byte
	)
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &cash, &holdings, &p.Version, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load portfolio: %v", domain.ErrUnavailable, err)
	}
	if p.Cash, err = decimal.NewFromString(cash); err != nil {
		return nil, fmt.Errorf("%w: decode cash: %v", domain.ErrUnavailable, err)
	}
	p.Holdings = []domain.Holding{}
	if len(holdings) > 0 {
		if err := json.Unmarshal(holdings, &p.Holdings); err != nil {
			return nil, fmt.Errorf("%w: decode holdings: %v", domain.ErrUnavailable, err)
		}
	}
	return &p, nil
}
