package domain

import "errors"

// Business outcomes are sentinel errors matched with errors.Is. The ledger
// engine returns them as values; nothing in this package panics.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateName     = errors.New("portfolio name already exists")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrSymbolNotFound    = errors.New("symbol not found")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrUnavailable       = errors.New("service unavailable")
)

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

func IsRejection(err error) bool {
	return errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrSymbolNotFound)
}
