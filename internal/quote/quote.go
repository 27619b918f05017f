// Package quote looks up current market prices. The ledger treats this as
// a fallible synchronous dependency: lookups are bounded by the caller's
// context and a missing symbol is an expected outcome, not an error.
package quote

import (
	"context"

	"github.com/shopspring/decimal"
)

// Quote is a point-in-time market price. Found is false when the provider
// does not know the symbol.
type Quote struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
	Found  bool            `json:"found"`
}

type Source interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}
