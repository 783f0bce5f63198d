// Package cart holds the shopping cart state of a single storefront session.
//
// A Cart is an ordered set of lines keyed by product ID. It is hydrated once
// from a Store and every line mutation writes the complete resulting line
// sequence back to that Store before it becomes visible in memory.
package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Item is the product snapshot captured when a product is added to the cart.
type Item struct {
	ProductID string
	Name      string
	UnitPrice decimal.Decimal
	ImageRef  string
}

// Line is a single cart entry. Quantity is never below 1.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	ImageRef  string          `json:"imageRef"`
	Quantity  int             `json:"quantity"`
}

// Total returns UnitPrice × Quantity.
func (l Line) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is safe for concurrent use.
type Cart struct {
	store Store
	lg    *zap.Logger

	mu    sync.Mutex
	lines []Line
	open  bool
}

// Load hydrates a cart from store. A missing or unreadable saved cart yields an
// empty cart; only a failing store read is returned as an error.
func Load(ctx context.Context, store Store, lg *zap.Logger) (*Cart, error) {
	c := &Cart{store: store, lg: lg}

	data, err := store.Load(ctx)
	if errors.Is(err, ErrNoCart) {
		return c, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}

	lines, err := Decode(data)
	if err != nil {
		lg.Warn("Discarding unreadable saved cart", zap.Error(err))
		return c, nil
	}
	c.lines = lines
	return c, nil
}

// Add increments the quantity of an existing line or appends a new line with
// quantity 1, then opens the cart.
func (c *Cart) Add(ctx context.Context, item Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.copyLines()
	if i := indexOf(next, item.ProductID); i >= 0 {
		next[i].Quantity++
	} else {
		next = append(next, Line{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			ImageRef:  item.ImageRef,
			Quantity:  1,
		})
	}
	if err := c.commit(ctx, next); err != nil {
		return err
	}
	c.open = true
	return nil
}

// UpdateQuantity sets the quantity of an existing line, clamping values below 1
// to 1. Unknown product IDs are ignored.
func (c *Cart) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.lines, productID)
	if i < 0 {
		return nil
	}
	next := c.copyLines()
	next[i].Quantity = max(1, quantity)
	return c.commit(ctx, next)
}

// Remove deletes the line for productID if present.
func (c *Cart) Remove(ctx context.Context, productID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := indexOf(c.lines, productID)
	if i < 0 {
		return nil
	}
	next := make([]Line, 0, len(c.lines)-1)
	next = append(next, c.lines[:i]...)
	next = append(next, c.lines[i+1:]...)
	return c.commit(ctx, next)
}

// Clear empties the cart. It is called once an order has been accepted.
func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.commit(ctx, []Line{})
}

// Toggle flips the visibility flag.
func (c *Cart) Toggle() {
	c.mu.Lock()
	c.open = !c.open
	c.mu.Unlock()
}

// Close hides the cart.
func (c *Cart) Close() {
	c.mu.Lock()
	c.open = false
	c.mu.Unlock()
}

// IsOpen reports the visibility flag.
func (c *Cart) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyLines()
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// ItemCount returns the sum of all line quantities.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Subtotal returns Σ unitPrice × quantity.
func (c *Cart) Subtotal() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Subtotal(c.lines)
}

// Subtotal returns Σ unitPrice × quantity over lines.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// commit persists next and only then swaps it in. Callers hold c.mu.
func (c *Cart) commit(ctx context.Context, next []Line) error {
	data, err := Encode(next)
	if err != nil {
		return err
	}
	if err := c.store.Save(ctx, data); err != nil {
		return errors.Wrap(err, "save cart")
	}
	c.lines = next
	return nil
}

func (c *Cart) copyLines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func indexOf(lines []Line, productID string) int {
	for i, l := range lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}

// Encode serializes lines as a JSON array.
func Encode(lines []Line) ([]byte, error) {
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, errors.Wrap(err, "encode cart")
	}
	return data, nil
}

// Decode parses a JSON line array. Lines without a product ID are dropped,
// quantities below 1 are raised to 1 and repeated product IDs are merged into
// the first occurrence.
func Decode(data []byte) ([]Line, error) {
	var raw []Line
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}

	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		if l.ProductID == "" {
			continue
		}
		l.Quantity = max(1, l.Quantity)
		if i := indexOf(lines, l.ProductID); i >= 0 {
			lines[i].Quantity += l.Quantity
			continue
		}
		lines = append(lines, l)
	}
	return lines, nil
}
