// Package order models storefront orders and their status lifecycle.
package order

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCancelled Status = "cancelled"
	StatusDelivered Status = "delivered"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCancelled, StatusDelivered:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible from s.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusDelivered
}

// CanTransition reports whether an order in status s may move to next.
// Only pending orders move, either to cancelled or to delivered.
func (s Status) CanTransition(next Status) bool {
	return s == StatusPending && (next == StatusCancelled || next == StatusDelivered)
}

// ShippingZone selects the flat shipping fee tier.
type ShippingZone string

const (
	ZoneInside  ShippingZone = "inside"
	ZoneOutside ShippingZone = "outside"
)

// ErrUnknownZone is returned for shipping zones outside the fee table.
var ErrUnknownZone = errors.New("unknown shipping zone")

// ParseShippingZone accepts "inside" and "outside", case-insensitively. The
// legacy storefront values "insideDhaka" and "outsideDhaka" are accepted too.
func ParseShippingZone(s string) (ShippingZone, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "inside", "insidedhaka":
		return ZoneInside, nil
	case "outside", "outsidedhaka":
		return ZoneOutside, nil
	}
	return "", errors.Wrapf(ErrUnknownZone, "%q", s)
}

// ShippingFees is the static two-tier shipping fee table.
type ShippingFees struct {
	Inside  decimal.Decimal
	Outside decimal.Decimal
}

// DefaultShippingFees returns 80 inside the city and 120 outside.
func DefaultShippingFees() ShippingFees {
	return ShippingFees{
		Inside:  decimal.NewFromInt(80),
		Outside: decimal.NewFromInt(120),
	}
}

// ParseShippingFees parses a fee table from its decimal text form. Negative
// fees are rejected.
func ParseShippingFees(inside, outside string) (ShippingFees, error) {
	in, err := decimal.NewFromString(inside)
	if err != nil {
		return ShippingFees{}, errors.Wrap(err, "inside fee")
	}
	out, err := decimal.NewFromString(outside)
	if err != nil {
		return ShippingFees{}, errors.Wrap(err, "outside fee")
	}
	if in.IsNegative() || out.IsNegative() {
		return ShippingFees{}, errors.New("shipping fees must not be negative")
	}
	if !in.Equal(in.Round(2)) || !out.Equal(out.Round(2)) {
		return ShippingFees{}, errors.New("shipping fees take at most 2 decimal places")
	}
	return ShippingFees{Inside: in, Outside: out}, nil
}

// For returns the fee charged for zone.
func (f ShippingFees) For(zone ShippingZone) (decimal.Decimal, error) {
	switch zone {
	case ZoneInside:
		return f.Inside, nil
	case ZoneOutside:
		return f.Outside, nil
	}
	return decimal.Zero, errors.Wrapf(ErrUnknownZone, "%q", zone)
}

// LineItem is a by-value snapshot of a cart line at checkout time.
type LineItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	ImageRef  string          `json:"imageRef"`
}

// Total returns UnitPrice × Quantity.
func (li LineItem) Total() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Subtotal returns Σ unitPrice × quantity.
func Subtotal(items []LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.Total())
	}
	return sum
}

// Draft is an order as submitted by a storefront, before it is accepted.
type Draft struct {
	CustomerName string
	Phone        string
	Address      string
	ShippingZone ShippingZone
	LineItems    []LineItem
	// TotalPrice is the client-computed total. Zero means "not provided".
	TotalPrice decimal.Decimal
}

// Order is an accepted order. Only Status changes after creation.
type Order struct {
	ID           string
	CustomerName string
	Phone        string
	Address      string
	ShippingZone ShippingZone
	ShippingFee  decimal.Decimal
	TotalPrice   decimal.Decimal
	LineItems    []LineItem
	Status       Status
	CreatedAt    time.Time
}

// Repository is the order collection.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	// ListByPhone returns orders placed with exactly phone, newest first.
	ListByPhone(ctx context.Context, phone string) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	// UpdateStatus moves the order from status from to status to and returns
	// the updated order. It fails with ErrStatusConflict when the stored
	// status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Order, error)
}
