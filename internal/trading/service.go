// Package trading wires the identity store, portfolio store, quote source,
// and ledger engine into the four user-facing operations. Each operation
// reads a fresh snapshot, computes, and writes back; there is no shared
// in-process mutable state.
package trading

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/renatodellosso/Stockbot/internal/domain"
	"github.com/renatodellosso/Stockbot/internal/events"
	"github.com/renatodellosso/Stockbot/internal/identity"
	"github.com/renatodellosso/Stockbot/internal/ledger"
	"github.com/renatodellosso/Stockbot/internal/portfolio"
	"github.com/renatodellosso/Stockbot/internal/quote"
)

// EventSink receives committed buys. May be backed by Kafka or absent.
type EventSink interface {
	PublishBuy(ctx context.Context, t events.Trade) error
}

type Service struct {
	Users        identity.Store
	Portfolios   portfolio.Store
	Quotes       quote.Source
	Events       EventSink // optional
	Logger       *zap.Logger
	QuoteTimeout time.Duration

	now func() time.Time
}

func New(users identity.Store, portfolios portfolio.Store, quotes quote.Source, logger *zap.Logger) *Service {
	return &Service{
		Users:        users,
		Portfolios:   portfolios,
		Quotes:       quotes,
		Logger:       logger,
		QuoteTimeout: 5 * time.Second,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// CreatePortfolio opens a portfolio for the handle's user, applying the
// "Default"/1000 defaults when name or cash are omitted.
func (s *Service) CreatePortfolio(ctx context.Context, handle, name string, startingCash *decimal.Decimal) (*domain.Portfolio, error) {
	if name == "" {
		name = domain.DefaultPortfolioName
	}
	cash := domain.DefaultStartingCash
	if startingCash != nil {
		cash = *startingCash
	}
	if cash.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	user, err := s.Users.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	return s.Portfolios.Create(ctx, name, user.ID, cash)
}

// Profile returns the portfolio names owned by the handle's user. The
// handle may belong to someone other than the requester; resolution is
// get-or-create either way.
func (s *Service) Profile(ctx context.Context, handle string) ([]string, error) {
	user, err := s.Users.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	return user.PortfolioNames(), nil
}

// HoldingView pairs a holding with its current market value. Value is nil
// when the quote lookup failed or the symbol is unknown.
type HoldingView struct {
	domain.Holding
	Value *decimal.Decimal
}

// PortfolioView is the read model for rendering a portfolio.
type PortfolioView struct {
	Portfolio  *domain.Portfolio
	Holdings   []HoldingView
	TotalValue decimal.Decimal // cash plus every priced holding
}

// ViewPortfolio loads the named portfolio and prices each holding with a
// fresh quote. One symbol's quote failing does not abort the rest; that
// holding just renders without a value.
func (s *Service) ViewPortfolio(ctx context.Context, handle, name string) (*PortfolioView, error) {
	if name == "" {
		name = domain.DefaultPortfolioName
	}
	p, err := s.Portfolios.GetByOwnerAndName(ctx, handle, name)
	if err != nil {
		return nil, err
	}

	view := &PortfolioView{Portfolio: p, Holdings: make([]HoldingView, 0, len(p.Holdings)), TotalValue: p.Cash}
	for _, h := range p.Holdings {
		hv := HoldingView{Holding: h}
		q, err := s.lookupQuote(ctx, h.Symbol)
		if err != nil {
			s.Logger.Warn("valuation quote failed", zap.String("symbol", h.Symbol), zap.Error(err))
		} else {
			value := h.Quantity.Mul(q)
			hv.Value = &value
			view.TotalValue = view.TotalValue.Add(value)
		}
		view.Holdings = append(view.Holdings, hv)
	}
	return view, nil
}

// BuyStock executes a buy against the named portfolio. The read-compute-
// write cycle retries once on a version conflict with a fresh snapshot;
// a second conflict is surfaced to the caller.
func (s *Service) BuyStock(ctx context.Context, handle, symbol string, value decimal.Decimal, portfolioName string) (ledger.Purchase, error) {
	if portfolioName == "" {
		portfolioName = domain.DefaultPortfolioName
	}
	symbol = domain.NormalizeSymbol(symbol)

	if !value.IsPositive() {
		return ledger.Purchase{}, domain.ErrInvalidAmount
	}

	price, err := s.lookupQuote(ctx, symbol)
	if err != nil {
		return ledger.Purchase{}, err
	}

	purchase, err := s.executeBuy(ctx, handle, symbol, price, value, portfolioName)
	if domain.IsConflict(err) {
		s.Logger.Info("buy conflicted, retrying with fresh read",
			zap.String("handle", handle), zap.String("symbol", symbol))
		purchase, err = s.executeBuy(ctx, handle, symbol, price, value, portfolioName)
	}
	if err != nil {
		return ledger.Purchase{}, err
	}

	if s.Events != nil {
		_ = s.Events.PublishBuy(ctx, events.Trade{
			TradeID:   uuid.NewString(),
			Handle:    handle,
			Portfolio: portfolioName,
			Symbol:    purchase.Symbol,
			Quantity:  purchase.Quantity,
			Price:     purchase.Price,
			Spent:     purchase.Spent,
			TS:        s.now(),
		})
	}
	return purchase, nil
}

func (s *Service) executeBuy(ctx context.Context, handle, symbol string, price, value decimal.Decimal, portfolioName string) (ledger.Purchase, error) {
	p, err := s.Portfolios.GetByOwnerAndName(ctx, handle, portfolioName)
	if err != nil {
		return ledger.Purchase{}, err
	}
	next, purchase, err := ledger.Buy(p, symbol, price, value, s.now())
	if err != nil {
		return ledger.Purchase{}, err
	}
	if err := s.Portfolios.Update(ctx, next); err != nil {
		return ledger.Purchase{}, err
	}
	return purchase, nil
}

// lookupQuote bounds the provider call with the configured timeout. An
// unknown symbol maps to ErrSymbolNotFound; provider faults and timeouts
// surface as ErrUnavailable.
func (s *Service) lookupQuote(ctx context.Context, symbol string) (decimal.Decimal, error) {
	qctx, cancel := context.WithTimeout(ctx, s.QuoteTimeout)
	defer cancel()
	q, err := s.Quotes.Quote(qctx, symbol)
	if err != nil {
		return decimal.Zero, err
	}
	if !q.Found || !q.Price.IsPositive() {
		return decimal.Zero, domain.ErrSymbolNotFound
	}
	return q.Price, nil
}
