package domain

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultPortfolioName is used whenever a command omits the portfolio name.
const DefaultPortfolioName = "Default"

// DefaultStartingCash is the cash balance a new portfolio opens with.
var DefaultStartingCash = decimal.NewFromInt(1000)

// User maps an external chat handle to internal state. Portfolios is the
// owner's name->id index; it is only ever appended to.
type User struct {
	ID         uuid.UUID            `json:"id"`
	Handle     string               `json:"handle"`
	Portfolios map[string]uuid.UUID `json:"portfolios"`
}

// PortfolioNames returns the user's portfolio names in sorted order.
func (u *User) PortfolioNames() []string {
	names := make([]string, 0, len(u.Portfolios))
	for name := range u.Portfolios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Holding is a single position. CostBasis is the cumulative dollar amount
// invested (total, not per-share); the average price per share is derived
// at display time.
type Holding struct {
	Symbol       string          `json:"symbol"`
	Quantity     decimal.Decimal `json:"quantity"`
	CostBasis    decimal.Decimal `json:"cost_basis"`
	DateAcquired time.Time       `json:"date_acquired"`
}

// AvgPrice is CostBasis / Quantity, zero for an empty position.
func (h Holding) AvgPrice() decimal.Decimal {
	if h.Quantity.IsZero() {
		return decimal.Zero
	}
	return h.CostBasis.Div(h.Quantity)
}

// Portfolio is the stored document. Version is checked and incremented on
// every update to detect lost updates.
type Portfolio struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Cash      decimal.Decimal `json:"cash"`
	Holdings  []Holding       `json:"holdings"`
	CreatedAt time.Time       `json:"created_at"`
	Version   int64           `json:"version"`
}

// Holding returns the position for symbol and its index, or (-1, zero, false).
func (p *Portfolio) Holding(symbol string) (int, Holding, bool) {
	for i, h := range p.Holdings {
		if h.Symbol == symbol {
			return i, h, true
		}
	}
	return -1, Holding{}, false
}

// Clone deep-copies the portfolio so callers can mutate a snapshot without
// touching the original.
func (p *Portfolio) Clone() *Portfolio {
	cp := *p
	cp.Holdings = make([]Holding, len(p.Holdings))
	copy(cp.Holdings, p.Holdings)
	return &cp
}

// NormalizeSymbol upper-cases and trims an exchange ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

