package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service encapsulates order placement, lookup and status transitions.
type Service struct {
	orders Repository
	fees   ShippingFees
	now    func() time.Time
}

// NewService creates an order Service charging shipping according to fees.
func NewService(orders Repository, fees ShippingFees) *Service {
	return &Service{
		orders: orders,
		fees:   fees,
		now:    time.Now,
	}
}

// Fees returns the shipping fee table used for totals.
func (s *Service) Fees() ShippingFees {
	return s.fees
}

// Place validates the draft, recomputes its total and persists a pending order.
// A non-zero submitted total must match the recomputed one.
func (s *Service) Place(ctx context.Context, d Draft) (*Order, error) {
	d.CustomerName = strings.TrimSpace(d.CustomerName)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = strings.TrimSpace(d.Address)

	switch {
	case d.CustomerName == "":
		return nil, &ValidationError{Field: "customerName", Reason: "required"}
	case d.Phone == "":
		return nil, &ValidationError{Field: "phone", Reason: "required"}
	case d.Address == "":
		return nil, &ValidationError{Field: "address", Reason: "required"}
	}
	if len(d.LineItems) == 0 {
		return nil, ErrEmptyItems
	}

	items := make([]LineItem, len(d.LineItems))
	for i, it := range d.LineItems {
		if it.ProductID == "" {
			return nil, &ValidationError{Field: fmt.Sprintf("lineItems[%d].productId", i), Reason: "required"}
		}
		if it.Quantity < 1 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID, Quantity: it.Quantity}
		}
		if it.UnitPrice.IsNegative() {
			return nil, &ValidationError{Field: fmt.Sprintf("lineItems[%d].unitPrice", i), Reason: "must not be negative"}
		}
		if !it.UnitPrice.Equal(it.UnitPrice.Round(2)) {
			return nil, &ValidationError{Field: fmt.Sprintf("lineItems[%d].unitPrice", i), Reason: "at most 2 decimal places"}
		}
		items[i] = it
	}

	zone, err := ParseShippingZone(string(d.ShippingZone))
	if err != nil {
		return nil, &ValidationError{Field: "shippingZone", Reason: err.Error()}
	}
	fee, err := s.fees.For(zone)
	if err != nil {
		return nil, &ValidationError{Field: "shippingZone", Reason: err.Error()}
	}
	total := Subtotal(items).Add(fee)
	if !d.TotalPrice.IsZero() && !d.TotalPrice.Equal(total) {
		return nil, &TotalMismatchError{Submitted: d.TotalPrice, Computed: total}
	}

	o := &Order{
		ID:           uuid.New().String(),
		CustomerName: d.CustomerName,
		Phone:        d.Phone,
		Address:      d.Address,
		ShippingZone: zone,
		ShippingFee:  fee,
		TotalPrice:   total,
		LineItems:    items,
		Status:       StatusPending,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return o, nil
}

// SubmitOrder places d. It lets the service act as an in-process order
// collection for checkout.
func (s *Service) SubmitOrder(ctx context.Context, d Draft) (*Order, error) {
	return s.Place(ctx, d)
}

// ListByPhone returns every order placed with phone, newest first.
func (s *Service) ListByPhone(ctx context.Context, phone string) ([]Order, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}
	orders, err := s.orders.ListByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// UpdateStatus applies a status transition. Requesting the current status is
// a no-op that returns the stored order; any other move out of a terminal
// status fails with *TransitionError.
func (s *Service) UpdateStatus(ctx context.Context, id string, to Status) (*Order, error) {
	if !to.Valid() {
		return nil, &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", to)}
	}

	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == to {
		return current, nil
	}
	if !current.Status.CanTransition(to) {
		return nil, &TransitionError{From: current.Status, To: to}
	}

	updated, err := s.orders.UpdateStatus(ctx, id, current.Status, to)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	return updated, nil
}

// Cancel moves a pending order to cancelled.
func (s *Service) Cancel(ctx context.Context, id string) (*Order, error) {
	return s.UpdateStatus(ctx, id, StatusCancelled)
}
