package command_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/renatodellosso/Stockbot/internal/command"
	"github.com/renatodellosso/Stockbot/internal/domain"
	"github.com/renatodellosso/Stockbot/internal/identity"
	"github.com/renatodellosso/Stockbot/internal/portfolio"
	"github.com/renatodellosso/Stockbot/internal/quote"
	"github.com/renatodellosso/Stockbot/internal/trading"
)

type staticQuotes struct {
	prices map[string]decimal.Decimal
}

func (s staticQuotes) Quote(_ context.Context, symbol string) (quote.Quote, error) {
	p, ok := s.prices[symbol]
	return quote.Quote{Symbol: symbol, Price: p, Found: ok}, nil
}

func newRegistry(t *testing.T) *command.Registry {
	t.Helper()
	users := identity.NewMem()
	quotes := staticQuotes{prices: map[string]decimal.Decimal{
		"AAPL": decimal.NewFromInt(50),
	}}
	svc := trading.New(users, portfolio.NewMem(users), quotes, zap.NewNop())
	return command.NewRegistry(svc, zap.NewNop())
}

func TestDispatch_CreateThenBuy(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	ctx := context.Background()

	resp := reg.Dispatch(ctx, command.CreatePortfolio{Handle: "alice"})
	require.NoError(t, resp.Err)
	require.Equal(t, "Portfolio created", resp.Content)

	resp = reg.Dispatch(ctx, command.Buy{
		Handle: "alice", Symbol: "aapl", Value: decimal.NewFromInt(100),
	})
	require.NoError(t, resp.Err)
	require.Equal(t,
		"Bought 2 shares of AAPL at $50.00 each for $100.00. You have $900.00 left in cash.",
		resp.Content)
}

func TestDispatch_DuplicatePortfolio(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	ctx := context.Background()

	resp := reg.Dispatch(ctx, command.CreatePortfolio{Handle: "alice"})
	require.NoError(t, resp.Err)

	resp = reg.Dispatch(ctx, command.CreatePortfolio{Handle: "alice"})
	require.ErrorIs(t, resp.Err, domain.ErrDuplicateName)
	require.Equal(t, "Portfolio already exists", resp.Content)
}

func TestDispatch_BuyRejections(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	ctx := context.Background()

	// No portfolio yet.
	resp := reg.Dispatch(ctx, command.Buy{
		Handle: "alice", Symbol: "AAPL", Value: decimal.NewFromInt(100),
	})
	require.Equal(t, "Portfolio not found", resp.Content)

	require.NoError(t, reg.Dispatch(ctx, command.CreatePortfolio{Handle: "alice"}).Err)

	resp = reg.Dispatch(ctx, command.Buy{
		Handle: "alice", Symbol: "NOPE", Value: decimal.NewFromInt(100),
	})
	require.Equal(t, "Stock not found", resp.Content)

	resp = reg.Dispatch(ctx, command.Buy{
		Handle: "alice", Symbol: "AAPL", Value: decimal.NewFromInt(100000),
	})
	require.Equal(t, "Insufficient funds", resp.Content)
}

func TestDispatch_Profile(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Dispatch(ctx, command.CreatePortfolio{Handle: "alice", Name: "Growth"}).Err)
	require.NoError(t, reg.Dispatch(ctx, command.CreatePortfolio{Handle: "alice", Name: "Dividends"}).Err)

	resp := reg.Dispatch(ctx, command.Profile{Handle: "alice"})
	require.NoError(t, resp.Err)
	require.Equal(t, "**Portfolios:**\nDividends\nGrowth", resp.Content)
}

func TestDispatch_ViewPortfolio(t *testing.T) {
	t.Parallel()

	reg := newRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.Dispatch(ctx, command.CreatePortfolio{Handle: "alice"}).Err)
	require.NoError(t, reg.Dispatch(ctx, command.Buy{
		Handle: "alice", Symbol: "AAPL", Value: decimal.NewFromInt(100),
	}).Err)

	resp := reg.Dispatch(ctx, command.ViewPortfolio{Handle: "alice"})
	require.NoError(t, resp.Err)
	require.Contains(t, resp.Content, "**Cash:** $900.00")
	require.Contains(t, resp.Content, "AAPL: 2 shares")
	require.Contains(t, resp.Content, "**Total Value:** $1,000.00")

	resp = reg.Dispatch(ctx, command.ViewPortfolio{Handle: "alice", Name: "Nope"})
	require.Equal(t, "Portfolio not found", resp.Content)
	require.ErrorIs(t, resp.Err, domain.ErrNotFound)
}
