package order

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order placement and lookup.
var (
	ErrNotFound       = errors.New("order not found")
	ErrEmptyItems     = errors.New("order has no line items")
	ErrPhoneRequired  = errors.New("phone number is required")
	ErrStatusConflict = errors.New("order status changed concurrently")
)

// ValidationError reports a missing or malformed order field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
	Quantity  int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d for product %s must be at least 1", e.Quantity, e.ProductID)
}

// TotalMismatchError indicates the submitted total disagrees with the line items.
type TotalMismatchError struct {
	Submitted decimal.Decimal
	Computed  decimal.Decimal
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("submitted total %s does not match computed total %s", e.Submitted, e.Computed)
}

// TransitionError is returned for a status change the state machine forbids.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot change order status from %s to %s", e.From, e.To)
}
