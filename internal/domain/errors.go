package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
	// ErrEmptyCart indicates checkout was attempted without a non-empty cart.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidState indicates a forbidden order state transition.
	ErrInvalidState = errors.New("invalid state transition")
	// ErrInvalidQuantity indicates a non-positive quantity argument.
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// OutOfStockError is the expected business outcome of a failed reservation
// or of the final stock check at checkout. Available carries the quantity
// the client could still request.
type OutOfStockError struct {
	ProductID string
	Requested int
	Available int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: requested %d, available %d", e.ProductID, e.Requested, e.Available)
}
