package myorders

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
)

// --- Mock implementations ---

type mockAPI struct {
	orders      map[string]order.Order
	listCalls   int
	getCalls    int
	cancelCalls int
}

func (m *mockAPI) ListOrdersByPhone(_ context.Context, phone string) ([]order.Order, error) {
	m.listCalls++
	var out []order.Order
	for _, o := range m.orders {
		if o.Phone == phone {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockAPI) GetOrder(_ context.Context, id string) (*order.Order, error) {
	m.getCalls++
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return &o, nil
}

func (m *mockAPI) CancelOrder(_ context.Context, id string) (*order.Order, error) {
	m.cancelCalls++
	o := m.orders[id]
	o.Status = order.StatusCancelled
	m.orders[id] = o
	return &o, nil
}

// --- Helpers ---

func newAPI(orders ...order.Order) *mockAPI {
	m := &mockAPI{orders: make(map[string]order.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func newOrder(id string, status order.Status, createdAt time.Time) order.Order {
	return order.Order{
		ID:           id,
		CustomerName: "Rahim",
		Phone:        "01700000000",
		TotalPrice:   decimal.NewFromInt(1230),
		Status:       status,
		CreatedAt:    createdAt,
	}
}

func decline() Confirmer {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
}

// --- Tests ---

func TestLookup_EmptyPhoneMakesNoRequest(t *testing.T) {
	api := newAPI()
	desk := NewDesk(api)

	_, err := desk.Lookup(context.Background(), "  ")
	require.ErrorIs(t, err, order.ErrPhoneRequired)
	assert.Zero(t, api.listCalls)
}

func TestLookup_NewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	api := newAPI(
		newOrder("old", order.StatusPending, base),
		newOrder("new", order.StatusPending, base.Add(48*time.Hour)),
		newOrder("mid", order.StatusCancelled, base.Add(24*time.Hour)),
	)
	desk := NewDesk(api)

	orders, err := desk.Lookup(context.Background(), "01700000000")
	require.NoError(t, err)

	var ids []string
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old"}, ids)
}

func TestCancel_Confirmed(t *testing.T) {
	api := newAPI(newOrder("o1", order.StatusPending, time.Now()))
	desk := NewDesk(api)

	var prompt string
	o, err := desk.Cancel(context.Background(), "o1", ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		prompt = p
		return true, nil
	}))
	require.NoError(t, err)

	assert.Equal(t, order.StatusCancelled, o.Status)
	assert.Equal(t, 1, api.cancelCalls)
	assert.Contains(t, prompt, "o1")
	assert.Contains(t, prompt, "1230.00")
}

func TestCancel_DeclinedSendsNothing(t *testing.T) {
	api := newAPI(newOrder("o1", order.StatusPending, time.Now()))
	desk := NewDesk(api)

	_, err := desk.Cancel(context.Background(), "o1", decline())
	require.ErrorIs(t, err, ErrNotConfirmed)
	assert.Zero(t, api.cancelCalls)
	assert.Equal(t, order.StatusPending, api.orders["o1"].Status)
}

func TestCancel_AlreadyCancelledRejectedLocally(t *testing.T) {
	api := newAPI(newOrder("o1", order.StatusCancelled, time.Now()))
	desk := NewDesk(api)

	_, err := desk.Cancel(context.Background(), "o1", AlwaysConfirm)
	require.ErrorIs(t, err, ErrAlreadyCancelled)
	assert.Zero(t, api.cancelCalls)
}

func TestCancel_DeliveredRejected(t *testing.T) {
	api := newAPI(newOrder("o1", order.StatusDelivered, time.Now()))
	desk := NewDesk(api)

	_, err := desk.Cancel(context.Background(), "o1", AlwaysConfirm)

	var trErr *order.TransitionError
	require.ErrorAs(t, err, &trErr)
	assert.Zero(t, api.cancelCalls)
}

func TestCancel_NotFound(t *testing.T) {
	desk := NewDesk(newAPI())

	_, err := desk.Cancel(context.Background(), "missing", AlwaysConfirm)
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestCancel_EmptyID(t *testing.T) {
	api := newAPI()
	desk := NewDesk(api)

	_, err := desk.Cancel(context.Background(), "", AlwaysConfirm)

	var vErr *order.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, api.getCalls)
}
