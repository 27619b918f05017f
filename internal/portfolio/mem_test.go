package portfolio_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/renatodellosso/Stockbot/internal/domain"
	"github.com/renatodellosso/Stockbot/internal/identity"
	"github.com/renatodellosso/Stockbot/internal/portfolio"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) (*identity.Mem, *portfolio.Mem, *domain.User) {
	t.Helper()
	users := identity.NewMem()
	store := portfolio.NewMem(users)
	u, err := users.Resolve(context.Background(), "alice")
	require.NoError(t, err)
	return users, store, u
}

func TestCreate_IndexesNameOnOwner(t *testing.T) {
	t.Parallel()

	users, store, u := setup(t)
	ctx := context.Background()

	p, err := store.Create(ctx, "Default", u.ID, dec("1000"))
	require.NoError(t, err)
	require.EqualValues(t, 1, p.Version)

	// The owner's map and the document are written together.
	fresh, err := users.Resolve(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, p.ID, fresh.Portfolios["Default"])

	got, err := store.GetByOwnerAndName(ctx, "alice", "Default")
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)
}

func TestCreate_DuplicateNamePerOwner(t *testing.T) {
	t.Parallel()

	_, store, u := setup(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "Default", u.ID, dec("1000"))
	require.NoError(t, err)
	_, err = store.Create(ctx, "Default", u.ID, dec("500"))
	require.ErrorIs(t, err, domain.ErrDuplicateName)
}

func TestGetByOwnerAndName_NotFound(t *testing.T) {
	t.Parallel()

	_, store, _ := setup(t)
	_, err := store.GetByOwnerAndName(context.Background(), "alice", "Nope")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_VersionConflict(t *testing.T) {
	t.Parallel()

	_, store, u := setup(t)
	ctx := context.Background()

	p, err := store.Create(ctx, "Default", u.ID, dec("1000"))
	require.NoError(t, err)

	// Two readers take the same snapshot version.
	a, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	b, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)

	a.Cash = dec("900")
	require.NoError(t, store.Update(ctx, a))
	require.EqualValues(t, 2, a.Version)

	b.Cash = dec("800")
	require.ErrorIs(t, store.Update(ctx, b), domain.ErrConflict)

	// The first write survives.
	got, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, dec("900").Equal(got.Cash))

	// A fresh read then succeeds.
	fresh, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	fresh.Cash = dec("800")
	require.NoError(t, store.Update(ctx, fresh))
}

func TestUpdate_ReplacesHoldings(t *testing.T) {
	t.Parallel()

	_, store, u := setup(t)
	ctx := context.Background()

	p, err := store.Create(ctx, "Default", u.ID, dec("1000"))
	require.NoError(t, err)

	p.Holdings = append(p.Holdings, domain.Holding{
		Symbol: "AAPL", Quantity: dec("2"), CostBasis: dec("100"), DateAcquired: time.Now().UTC(),
	})
	p.Cash = dec("900")
	require.NoError(t, store.Update(ctx, p))

	got, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Holdings, 1)
	require.Equal(t, "AAPL", got.Holdings[0].Symbol)
	require.True(t, dec("2").Equal(got.Holdings[0].Quantity))
}

func TestGetByID_ReturnsSnapshot(t *testing.T) {
	t.Parallel()

	_, store, u := setup(t)
	ctx := context.Background()

	p, err := store.Create(ctx, "Default", u.ID, dec("1000"))
	require.NoError(t, err)

	a, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	a.Cash = dec("0")

	b, err := store.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, dec("1000").Equal(b.Cash))
}
