package identity

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/renatodellosso/Stockbot/internal/domain"
)

// Mem is an in-process Store used by tests and by setups without Postgres.
// A single mutex covers the whole map, which also makes get-or-create
// atomic per handle.
type Mem struct {
	mu       sync.Mutex
	byHandle map[string]*domain.User
}

func NewMem() *Mem { return &Mem{byHandle: map[string]*domain.User{}} }

func (m *Mem) Resolve(_ context.Context, handle string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byHandle[handle]
	if !ok {
		u = &domain.User{ID: uuid.New(), Handle: handle, Portfolios: map[string]uuid.UUID{}}
		m.byHandle[handle] = u
	}
	return cloneUser(u), nil
}

// Attach records a name->id entry on the owner's portfolio map. The
// in-memory portfolio store calls this inside its own creation lock so the
// two writes stay paired.
func (m *Mem) Attach(ownerID uuid.UUID, name string, portfolioID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byHandle {
		if u.ID == ownerID {
			u.Portfolios[name] = portfolioID
			return
		}
	}
}

func cloneUser(u *domain.User) *domain.User {
	cp := *u
	cp.Portfolios = make(map[string]uuid.UUID, len(u.Portfolios))
	for k, v := range u.Portfolios {
		cp.Portfolios[k] = v
	}
	return &cp
}
