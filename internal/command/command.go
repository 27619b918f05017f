// Package command translates user-facing requests into trading-service
// calls and renders the replies. Handlers are registered once at startup
// in a registry keyed by command kind; each request is a tagged variant
// handled exhaustively by its own handler.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/renatodellosso/Stockbot/internal/domain"
	"github.com/renatodellosso/Stockbot/internal/trading"
)

type Kind string

const (
	KindCreatePortfolio Kind = "create-portfolio"
	KindProfile         Kind = "profile"
	KindViewPortfolio   Kind = "view-portfolio"
	KindBuy             Kind = "buy"
)

// Request is one tagged command variant.
type Request interface {
	Kind() Kind
}

type CreatePortfolio struct {
	Handle       string
	Name         string           // empty means "Default"
	StartingCash *decimal.Decimal // nil means 1000
}

type Profile struct {
	Handle string
}

type ViewPortfolio struct {
	Handle string
	Name   string
}

type Buy struct {
	Handle    string
	Symbol    string
	Value     decimal.Decimal
	Portfolio string
}

func (CreatePortfolio) Kind() Kind { return KindCreatePortfolio }
func (Profile) Kind() Kind         { return KindProfile }
func (ViewPortfolio) Kind() Kind   { return KindViewPortfolio }
func (Buy) Kind() Kind             { return KindBuy }

// Response carries the user-visible reply. Err is set for every non-success
// outcome so transports can map it to their own status codes; Content is
// still the short human-readable message in that case.
type Response struct {
	Content string
	Err     error
}

type Handler interface {
	Execute(ctx context.Context, req Request) Response
}

// Registry maps command kinds to handlers. Built once at startup.
type Registry struct {
	handlers map[Kind]Handler
	logger   *zap.Logger
}

func NewRegistry(svc *trading.Service, logger *zap.Logger) *Registry {
	return &Registry{
		handlers: map[Kind]Handler{
			KindCreatePortfolio: createPortfolioHandler{svc},
			KindProfile:         profileHandler{svc},
			KindViewPortfolio:   viewPortfolioHandler{svc},
			KindBuy:             buyHandler{svc},
		},
		logger: logger,
	}
}

// Dispatch runs the request to completion and returns the rendered reply.
func (r *Registry) Dispatch(ctx context.Context, req Request) Response {
	h, ok := r.handlers[req.Kind()]
	if !ok {
		return Response{Content: "Command not found", Err: domain.ErrNotFound}
	}
	resp := h.Execute(ctx, req)
	if resp.Err != nil && !domain.IsRejection(resp.Err) && !domain.IsNotFound(resp.Err) {
		r.logger.Error("command failed",
			zap.String("command", string(req.Kind())), zap.Error(resp.Err))
	}
	return resp
}

type createPortfolioHandler struct{ svc *trading.Service }

func (h createPortfolioHandler) Execute(ctx context.Context, req Request) Response {
	c := req.(CreatePortfolio)
	_, err := h.svc.CreatePortfolio(ctx, c.Handle, c.Name, c.StartingCash)
	switch {
	case err == nil:
		return Response{Content: "Portfolio created"}
	case errors.Is(err, domain.ErrDuplicateName):
		return Response{Content: "Portfolio already exists", Err: err}
	case errors.Is(err, domain.ErrInvalidAmount):
		return Response{Content: "Starting cash must not be negative", Err: err}
	default:
		return failure(err)
	}
}

type profileHandler struct{ svc *trading.Service }

func (h profileHandler) Execute(ctx context.Context, req Request) Response {
	p := req.(Profile)
	names, err := h.svc.Profile(ctx, p.Handle)
	if err != nil {
		return failure(err)
	}
	return Response{Content: fmt.Sprintf("**Portfolios:**\n%s", strings.Join(names, "\n"))}
}

type viewPortfolioHandler struct{ svc *trading.Service }

func (h viewPortfolioHandler) Execute(ctx context.Context, req Request) Response {
	v := req.(ViewPortfolio)
	view, err := h.svc.ViewPortfolio(ctx, v.Handle, v.Name)
	switch {
	case domain.IsNotFound(err):
		return Response{Content: "Portfolio not found", Err: err}
	case err != nil:
		return failure(err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Date Created: %s\n", view.Portfolio.CreatedAt.Format("Jan 2, 2006"))
	fmt.Fprintf(&b, "**Cash:** %s\n", domain.FormatMoney(view.Portfolio.Cash))
	b.WriteString("**Holdings:**\n")
	for _, hv := range view.Holdings {
		b.WriteString(hv.Summary(hv.Value))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "**Total Value:** %s", domain.FormatMoney(view.TotalValue))
	return Response{Content: b.String()}
}

type buyHandler struct{ svc *trading.Service }

func (h buyHandler) Execute(ctx context.Context, req Request) Response {
	b := req.(Buy)
	purchase, err := h.svc.BuyStock(ctx, b.Handle, b.Symbol, b.Value, b.Portfolio)
	switch {
	case err == nil:
		return Response{Content: fmt.Sprintf(
			"Bought %s shares of %s at %s each for %s. You have %s left in cash.",
			domain.FormatQuantity(purchase.Quantity), purchase.Symbol,
			domain.FormatMoney(purchase.Price), domain.FormatMoney(purchase.Spent),
			domain.FormatMoney(purchase.RemainingCash))}
	case domain.IsNotFound(err):
		return Response{Content: "Portfolio not found", Err: err}
	case errors.Is(err, domain.ErrSymbolNotFound):
		return Response{Content: "Stock not found", Err: err}
	case errors.Is(err, domain.ErrInsufficientFunds):
		return Response{Content: "Insufficient funds", Err: err}
	case errors.Is(err, domain.ErrInvalidAmount):
		return Response{Content: "Value must be positive", Err: err}
	case domain.IsConflict(err):
		return Response{Content: "Portfolio was modified concurrently, please retry", Err: err}
	default:
		return failure(err)
	}
}

func failure(err error) Response {
	return Response{Content: "An error occurred while executing the command", Err: err}
}
