// Package checkout turns the contents of a cart into a submitted order.
package checkout

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrSubmitInProgress = errors.New("checkout already in progress")
)

// DefaultTimeout bounds a single order submission.
const DefaultTimeout = 15 * time.Second

// Form holds the customer details entered at checkout.
type Form struct {
	CustomerName string             `validate:"required"`
	Phone        string             `validate:"required"`
	Address      string             `validate:"required"`
	ShippingZone order.ShippingZone `validate:"required,oneof=inside outside"`
}

// reset clears the customer fields and keeps the chosen shipping zone.
func (f *Form) reset() {
	f.CustomerName = ""
	f.Phone = ""
	f.Address = ""
}

// Submitter delivers an order draft to the order collection.
type Submitter interface {
	SubmitOrder(ctx context.Context, d order.Draft) (*order.Order, error)
}

// Quote is the price breakdown shown before submission.
type Quote struct {
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Total       decimal.Decimal
}

// Options configures a Checkout.
type Options struct {
	Fees    order.ShippingFees
	Timeout time.Duration
	Logger  *zap.Logger
}

func (o *Options) setDefaults() {
	if o.Fees.Inside.IsZero() && o.Fees.Outside.IsZero() {
		o.Fees = order.DefaultShippingFees()
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Checkout submits the cart it was created for. At most one submission runs
// at a time.
type Checkout struct {
	cart     *cart.Cart
	orders   Submitter
	fees     order.ShippingFees
	timeout  time.Duration
	lg       *zap.Logger
	validate *validator.Validate

	inFlight atomic.Bool
}

// New creates a Checkout for c.
func New(c *cart.Cart, orders Submitter, opts Options) *Checkout {
	opts.setDefaults()
	return &Checkout{
		cart:     c,
		orders:   orders,
		fees:     opts.Fees,
		timeout:  opts.Timeout,
		lg:       opts.Logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Quote prices the current cart for zone.
func (c *Checkout) Quote(zone order.ShippingZone) (Quote, error) {
	fee, err := c.fees.For(zone)
	if err != nil {
		return Quote{}, err
	}
	subtotal := c.cart.Subtotal()
	return Quote{
		Subtotal:    subtotal,
		ShippingFee: fee,
		Total:       subtotal.Add(fee),
	}, nil
}

// Submit places one order for the current cart contents. On success the cart
// is cleared and the customer fields of form are reset. On failure nothing
// changes and nothing is retried.
func (c *Checkout) Submit(ctx context.Context, form *Form) (*order.Order, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmitInProgress
	}
	defer c.inFlight.Store(false)

	lines := c.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	if err := c.validateForm(form); err != nil {
		return nil, err
	}

	draft, err := c.draft(form, lines)
	if err != nil {
		return nil, err
	}

	submitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	created, err := c.orders.SubmitOrder(submitCtx, draft)
	if err != nil {
		return nil, errors.Wrap(err, "submit order")
	}

	// The order is accepted at this point; a failed clear must not turn it
	// into a reported failure that invites a resubmit.
	if err := c.cart.Clear(ctx); err != nil {
		c.lg.Error("Order placed but cart not cleared",
			zap.String("order_id", created.ID),
			zap.Error(err),
		)
	}
	form.reset()
	return created, nil
}

// validateForm checks a trimmed copy of form and writes the trimmed fields
// back only when it passes.
func (c *Checkout) validateForm(form *Form) error {
	trimmed := *form
	trimmed.CustomerName = strings.TrimSpace(trimmed.CustomerName)
	trimmed.Phone = strings.TrimSpace(trimmed.Phone)
	trimmed.Address = strings.TrimSpace(trimmed.Address)

	err := c.validate.Struct(&trimmed)
	if err == nil {
		*form = trimmed
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &order.ValidationError{Field: fieldName(fe.Field()), Reason: fe.Tag()}
	}
	return errors.Wrap(err, "validate checkout form")
}

func (c *Checkout) draft(form *Form, lines []cart.Line) (order.Draft, error) {
	fee, err := c.fees.For(form.ShippingZone)
	if err != nil {
		return order.Draft{}, &order.ValidationError{Field: "shippingZone", Reason: err.Error()}
	}

	items := make([]order.LineItem, len(lines))
	for i, l := range lines {
		items[i] = order.LineItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			ImageRef:  l.ImageRef,
		}
	}
	return order.Draft{
		CustomerName: form.CustomerName,
		Phone:        form.Phone,
		Address:      form.Address,
		ShippingZone: form.ShippingZone,
		LineItems:    items,
		TotalPrice:   cart.Subtotal(lines).Add(fee),
	}, nil
}

func fieldName(s string) string {
	switch s {
	case "CustomerName":
		return "customerName"
	case "Phone":
		return "phone"
	case "Address":
		return "address"
	case "ShippingZone":
		return "shippingZone"
	}
	return s
}
