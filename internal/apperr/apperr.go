// Package apperr defines the error kinds shared by the ledger, kitchen and
// reports packages. Handlers translate these into HTTP statuses; the core
// packages only ever return them.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrUnknownItem        = errors.New("unknown item")
	ErrConflict           = errors.New("conflict")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Retryable reports whether the caller may safely retry the failed operation.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrStorageUnavailable)
}

// Shortfall describes how much of one (item, unit) pair a consumption was
// missing.
type Shortfall struct {
	Item      string          `json:"item"`
	Unit      string          `json:"unit"`
	Required  decimal.Decimal `json:"required"`
	Available decimal.Decimal `json:"available"`
	Missing   decimal.Decimal `json:"missing"`
}

// InsufficientStockError carries the per-item shortfalls of a rejected
// consumption. The transaction that produced it left no state behind.
type InsufficientStockError struct {
	Shortfalls []Shortfall
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf("%s: need %s %s more", s.Item, s.Missing, s.Unit))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
