// Package myorders implements the customer-facing order lookup and cancel flow.
package myorders

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-faster/errors"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
)

var (
	ErrNotConfirmed     = errors.New("cancellation not confirmed")
	ErrAlreadyCancelled = errors.New("order is already cancelled")
)

// API is the remote order collection as seen by a storefront.
type API interface {
	ListOrdersByPhone(ctx context.Context, phone string) ([]order.Order, error)
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	CancelOrder(ctx context.Context, id string) (*order.Order, error)
}

// Confirmer asks the customer to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// AlwaysConfirm approves every prompt.
var AlwaysConfirm = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// Desk performs order lookups and cancellations against an API.
type Desk struct {
	api API
}

// NewDesk creates a Desk.
func NewDesk(api API) *Desk {
	return &Desk{api: api}
}

// Lookup returns every order placed with phone, newest first. An empty phone
// is rejected without a request.
func (d *Desk) Lookup(ctx context.Context, phone string) ([]order.Order, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, order.ErrPhoneRequired
	}
	orders, err := d.api.ListOrdersByPhone(ctx, phone)
	if err != nil {
		return nil, errors.Wrap(err, "lookup orders")
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// Cancel cancels a pending order after confirm approves it. Orders that are
// already cancelled are rejected locally; delivered orders are rejected with
// *order.TransitionError. Nothing is sent unless the customer confirms.
func (d *Desk) Cancel(ctx context.Context, id string, confirm Confirmer) (*order.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, &order.ValidationError{Field: "id", Reason: "required"}
	}

	current, err := d.api.GetOrder(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	switch {
	case current.Status == order.StatusCancelled:
		return nil, ErrAlreadyCancelled
	case !current.Status.CanTransition(order.StatusCancelled):
		return nil, &order.TransitionError{From: current.Status, To: order.StatusCancelled}
	}

	ok, err := confirm.Confirm(ctx, fmt.Sprintf("Cancel order %s placed by %s (total %s)?",
		current.ID, current.CustomerName, current.TotalPrice.StringFixed(2)))
	if err != nil {
		return nil, errors.Wrap(err, "confirm")
	}
	if !ok {
		return nil, ErrNotConfirmed
	}

	cancelled, err := d.api.CancelOrder(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "cancel order")
	}
	return cancelled, nil
}
