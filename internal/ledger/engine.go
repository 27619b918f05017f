// Package ledger holds the pure decision logic for executing a buy against
// a portfolio snapshot. It performs no I/O; all outcomes, including the
// business rejections, are returned as values.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/renatodellosso/Stockbot/internal/domain"
)

// Purchase describes a committed buy for confirmation rendering and event
// publishing.
type Purchase struct {
	Symbol        string
	Quantity      decimal.Decimal
	Price         decimal.Decimal
	Spent         decimal.Decimal
	RemainingCash decimal.Decimal
}

// Buy computes the portfolio state after spending `spend` dollars on
// `symbol` at `price`. The input snapshot is never mutated; on rejection
// it is returned untouched alongside the sentinel error.
//
// Accounting model: cost basis is tracked as total dollars invested, so
// merging a buy into an existing holding just adds `spend` to the stored
// basis. The acquisition date becomes the quantity-weighted average of the
// old date and `now` — a deliberate simplification standing in for full
// lot-based history.
func Buy(p *domain.Portfolio, symbol string, price, spend decimal.Decimal, now time.Time) (*domain.Portfolio, Purchase, error) {
	if !spend.IsPositive() {
		return p, Purchase{}, domain.ErrInvalidAmount
	}
	if !price.IsPositive() {
		return p, Purchase{}, domain.ErrSymbolNotFound
	}
	if p.Cash.LessThan(spend) {
		return p, Purchase{}, domain.ErrInsufficientFunds
	}

	qty := spend.Div(price)
	next := p.Clone()
	next.Cash = p.Cash.Sub(spend)

	if i, h, ok := next.Holding(symbol); ok {
		h.DateAcquired = weightedDate(h.DateAcquired, h.Quantity, now, qty)
		h.Quantity = h.Quantity.Add(qty)
		h.CostBasis = h.CostBasis.Add(spend)
		next.Holdings[i] = h
	} else {
		next.Holdings = append(next.Holdings, domain.Holding{
			Symbol:       symbol,
			Quantity:     qty,
			CostBasis:    spend,
			DateAcquired: now,
		})
	}
	next.Holdings = dropEmpty(next.Holdings)

	return next, Purchase{
		Symbol:        symbol,
		Quantity:      qty,
		Price:         price,
		Spent:         spend,
		RemainingCash: next.Cash,
	}, nil
}

// weightedDate averages two acquisition times weighted by share count.
func weightedDate(oldDate time.Time, oldQty decimal.Decimal, now time.Time, newQty decimal.Decimal) time.Time {
	total := oldQty.Add(newQty)
	if !total.IsPositive() {
		return now
	}
	oldPart := decimal.NewFromInt(oldDate.Unix()).Mul(oldQty)
	newPart := decimal.NewFromInt(now.Unix()).Mul(newQty)
	epoch := oldPart.Add(newPart).Div(total)
	return time.Unix(epoch.IntPart(), 0).UTC()
}

// dropEmpty removes holdings whose quantity has reached zero. No sell path
// exists yet, so this enforces a forward invariant only.
func dropEmpty(hs []domain.Holding) []domain.Holding {
	out := hs[:0]
	for _, h := range hs {
		if h.Quantity.IsPositive() {
			out = append(out, h)
		}
	}
	return out
}
