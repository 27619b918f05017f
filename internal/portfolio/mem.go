package portfolio

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/renatodellosso/Stockbot/internal/domain"
	"github.com/renatodellosso/Stockbot/internal/identity"
)

// Mem is the in-process Store counterpart to identity.Mem. The creation
// lock covers both the portfolio insert and the owner's map entry, and
// Update enforces the same version check as the Postgres store.
type Mem struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*domain.Portfolio
	users *identity.Mem
}

func NewMem(users *identity.Mem) *Mem {
	return &Mem{byID: map[uuid.UUID]*domain.Portfolio{}, users: users}
}

func (m *Mem) Create(_ context.Context, name string, ownerID uuid.UUID, startingCash decimal.Decimal) (*domain.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.OwnerID == ownerID && p.Name == name {
			return nil, domain.ErrDuplicateName
		}
	}
	p := &domain.Portfolio{
		ID:        uuid.New(),
		Name:      name,
		OwnerID:   ownerID,
		Cash:      startingCash,
		Holdings:  []domain.Holding{},
		CreatedAt: time.Now().UTC(),
		Version:   1,
	}
	m.byID[p.ID] = p
	m.users.Attach(ownerID, name, p.ID)
	return p.Clone(), nil
}

func (m *Mem) GetByID(_ context.Context, id uuid.UUID) (*domain.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p.Clone(), nil
}

func (m *Mem) GetByOwnerAndName(ctx context.Context, ownerHandle, name string) (*domain.Portfolio, error) {
	user, err := m.users.Resolve(ctx, ownerHandle)
	if err != nil {
		return nil, err
	}
	if id, ok := user.Portfolios[name]; ok {
		return m.GetByID(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byID {
		if p.OwnerID == user.ID && p.Name == name {
			return p.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *Mem) Update(_ context.Context, p *domain.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byID[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if stored.Version != p.Version {
		return domain.ErrConflict
	}
	next := p.Clone()
	next.Version++
	m.byID[p.ID] = next
	p.Version++
	return nil
}
