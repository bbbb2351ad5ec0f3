package transfer

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("transfer not found")
	ErrDuplicateTransferID = errors.New("transfer_id already exists")
	ErrUnknownProduct      = errors.New("product not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInsufficientStock   = errors.New("insufficient stock")
)

// ValidationError reports malformed input before storage is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError carries the per-product breakdown of a stock failure.
// It matches ErrInsufficientStock with errors.Is.
type InsufficientStockError struct {
	Shortfalls []StockShortfall
}

func (e *InsufficientStockError) Error() string {
	if len(e.Shortfalls) == 0 {
		return ErrInsufficientStock.Error()
	}

	s := e.Shortfalls[0]

	msg := fmt.Sprintf("%s for product %d (requested %d, available %d)",
		ErrInsufficientStock, s.ProductID, s.Requested, s.Available)
	if n := len(e.Shortfalls) - 1; n > 0 {
		msg += fmt.Sprintf(" and %d more", n)
	}

	return msg
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
