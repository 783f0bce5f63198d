package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/IhossainpHero/Arboom-bd/internal/client"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/checkout"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/myorders"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
	"github.com/IhossainpHero/Arboom-bd/internal/wire"
)

// --- Mock implementations ---

type mockAPI struct {
	products  []product.Product
	orders    map[string]*order.Order
	listErr   error
	submitErr error
	loginErr  error
	deleteRes *wire.DeleteResult

	drafts    []order.Draft
	created   []product.Input
	cancelled []string
	logins    []string
}

func (m *mockAPI) ListProducts(context.Context) ([]product.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.products, nil
}

func (m *mockAPI) GetProduct(_ context.Context, id string) (*product.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, product.ErrNotFound
}

func (m *mockAPI) CreateProduct(_ context.Context, in product.Input) (*product.Product, error) {
	m.created = append(m.created, in)
	return &product.Product{ID: "p-new", Name: in.Name, ImageURL: "https://img/" + in.ImageName}, nil
}

func (m *mockAPI) DeleteProduct(_ context.Context, id string) (*wire.DeleteResult, error) {
	if m.deleteRes != nil {
		return m.deleteRes, nil
	}
	return &wire.DeleteResult{ID: id, ImageDeleted: true}, nil
}

func (m *mockAPI) Login(_ context.Context, email, _ string) error {
	m.logins = append(m.logins, email)
	return m.loginErr
}

func (m *mockAPI) SubmitOrder(_ context.Context, d order.Draft) (*order.Order, error) {
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	m.drafts = append(m.drafts, d)
	return &order.Order{
		ID:           "o-1",
		CustomerName: d.CustomerName,
		Phone:        d.Phone,
		Address:      d.Address,
		ShippingZone: d.ShippingZone,
		TotalPrice:   d.TotalPrice,
		LineItems:    d.LineItems,
		Status:       order.StatusPending,
		CreatedAt:    time.Now(),
	}, nil
}

func (m *mockAPI) ListOrdersByPhone(_ context.Context, phone string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range m.orders {
		if o.Phone == phone {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockAPI) GetOrder(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockAPI) CancelOrder(_ context.Context, id string) (*order.Order, error) {
	m.cancelled = append(m.cancelled, id)
	o := m.orders[id]
	o.Status = order.StatusCancelled
	cp := *o
	return &cp, nil
}

// --- Helpers ---

func newMockAPI() *mockAPI {
	return &mockAPI{
		products: []product.Product{
			{ID: "p1", Name: "Mango tree", OfferPrice: decimal.NewFromInt(500), RegularPrice: decimal.NewFromInt(700)},
			{ID: "p2", Name: "Lemon tree", OfferPrice: decimal.NewFromInt(250), RegularPrice: decimal.NewFromInt(300)},
		},
		orders: map[string]*order.Order{
			"o-old": {ID: "o-old", Phone: "017", CustomerName: "Rahim", Status: order.StatusPending,
				TotalPrice: decimal.NewFromInt(580), CreatedAt: time.Now().Add(-2 * time.Hour)},
			"o-new": {ID: "o-new", Phone: "017", CustomerName: "Rahim", Status: order.StatusCancelled,
				TotalPrice: decimal.NewFromInt(330), CreatedAt: time.Now().Add(-time.Hour)},
			"o-done": {ID: "o-done", Phone: "018", CustomerName: "Karim", Status: order.StatusDelivered,
				TotalPrice: decimal.NewFromInt(100), CreatedAt: time.Now()},
		},
	}
}

type testApp struct {
	*App
	api *mockAPI
	out *bytes.Buffer
}

func newTestApp(t *testing.T, input string) *testApp {
	t.Helper()
	c, err := cart.Load(context.Background(), cart.NewMemoryStore(), zap.NewNop())
	require.NoError(t, err)
	api := newMockAPI()
	out := &bytes.Buffer{}
	return &testApp{
		App: NewApp(api, c, order.DefaultShippingFees(), time.Second, zap.NewNop(), strings.NewReader(input), out),
		api: api,
		out: out,
	}
}

func (ta *testApp) run(args ...string) error {
	cmd := NewCommand(ta.App)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

// --- Tests ---

func TestProducts(t *testing.T) {
	ta := newTestApp(t, "")
	require.NoError(t, ta.run("products"))
	assert.Contains(t, ta.out.String(), "Mango tree")
	assert.Contains(t, ta.out.String(), "৳500.00")
	assert.Contains(t, ta.out.String(), "Lemon tree")
}

func TestProducts_TransientError(t *testing.T) {
	ta := newTestApp(t, "")
	ta.api.listErr = &client.TransientError{Op: "list products", Err: errors.New("connection refused")}

	err := ta.run("products")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "please retry")

	var transient *client.TransientError
	assert.ErrorAs(t, err, &transient)
}

func TestCart_Commands(t *testing.T) {
	ta := newTestApp(t, "")

	require.NoError(t, ta.run("cart", "add", "p1"))
	require.NoError(t, ta.run("cart", "add", "p1"))
	require.NoError(t, ta.run("cart", "add", "p2"))
	assert.True(t, ta.Cart.IsOpen())
	require.Equal(t, 2, ta.Cart.Len())
	assert.Equal(t, 3, ta.Cart.ItemCount())

	require.NoError(t, ta.run("cart", "set", "p2", "4"))
	assert.True(t, ta.Cart.Subtotal().Equal(decimal.NewFromInt(2000)))

	require.NoError(t, ta.run("cart", "rm", "p1"))
	require.Equal(t, 1, ta.Cart.Len())

	ta.out.Reset()
	require.NoError(t, ta.run("cart"))
	assert.Contains(t, ta.out.String(), "Lemon tree")
	assert.Contains(t, ta.out.String(), "৳1000.00")

	require.NoError(t, ta.run("cart", "clear"))
	assert.Equal(t, 0, ta.Cart.Len())
}

func TestCart_AddUnknownProduct(t *testing.T) {
	ta := newTestApp(t, "")
	err := ta.run("cart", "add", "missing")
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Equal(t, 0, ta.Cart.Len())
}

func TestCart_SetRejectsNonNumber(t *testing.T) {
	ta := newTestApp(t, "")
	require.NoError(t, ta.run("cart", "add", "p1"))
	require.Error(t, ta.run("cart", "set", "p1", "many"))
	assert.Equal(t, 1, ta.Cart.ItemCount())
}

func TestCheckout_WithFlags(t *testing.T) {
	ta := newTestApp(t, "")
	require.NoError(t, ta.run("cart", "add", "p1"))
	require.NoError(t, ta.run("cart", "add", "p1"))

	require.NoError(t, ta.run("checkout", "--name", "Rahim", "--phone", "017",
		"--address", "Sylhet", "--zone", "outsideDhaka", "--yes"))

	require.Len(t, ta.api.drafts, 1)
	d := ta.api.drafts[0]
	assert.Equal(t, order.ZoneOutside, d.ShippingZone)
	assert.True(t, d.TotalPrice.Equal(decimal.NewFromInt(1120)), d.TotalPrice.String())
	require.Len(t, d.LineItems, 1)
	assert.Equal(t, 2, d.LineItems[0].Quantity)

	assert.Equal(t, 0, ta.Cart.Len())
	assert.Contains(t, ta.out.String(), "Order placed successfully.")
	assert.Contains(t, ta.out.String(), "o-1")
}

func TestCheckout_PromptsForMissingFields(t *testing.T) {
	ta := newTestApp(t, "Rahim\n017\nDhaka\ny\n")
	require.NoError(t, ta.run("cart", "add", "p2"))

	require.NoError(t, ta.run("checkout"))
	require.Len(t, ta.api.drafts, 1)
	d := ta.api.drafts[0]
	assert.Equal(t, "Rahim", d.CustomerName)
	assert.Equal(t, "017", d.Phone)
	assert.Equal(t, "Dhaka", d.Address)
	assert.True(t, d.TotalPrice.Equal(decimal.NewFromInt(330)))
	assert.Contains(t, ta.out.String(), "Total: ৳330.00")
}

func TestCheckout_Declined(t *testing.T) {
	ta := newTestApp(t, "n\n")
	require.NoError(t, ta.run("cart", "add", "p2"))

	require.NoError(t, ta.run("checkout", "--name", "Rahim", "--phone", "017", "--address", "Dhaka"))
	assert.Empty(t, ta.api.drafts)
	assert.Equal(t, 1, ta.Cart.Len())
	assert.Contains(t, ta.out.String(), "Checkout aborted.")
}

func TestCheckout_Errors(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(ta *testApp)
		args    []string
		wantErr error
	}{
		{
			name:    "empty cart",
			args:    []string{"checkout", "--yes"},
			wantErr: checkout.ErrEmptyCart,
		},
		{
			name:    "unknown zone",
			prepare: func(ta *testApp) { require.NoError(t, ta.run("cart", "add", "p1")) },
			args:    []string{"checkout", "--zone", "abroad", "--yes"},
			wantErr: order.ErrUnknownZone,
		},
		{
			name: "submit failure keeps cart",
			prepare: func(ta *testApp) {
				require.NoError(t, ta.run("cart", "add", "p1"))
				ta.api.submitErr = &client.TransientError{Op: "submit order", Err: context.DeadlineExceeded}
			},
			args:    []string{"checkout", "--name", "R", "--phone", "1", "--address", "A", "--yes"},
			wantErr: context.DeadlineExceeded,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, "")
			if tt.prepare != nil {
				tt.prepare(ta)
			}
			lines := ta.Cart.Len()
			err := ta.run(tt.args...)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, lines, ta.Cart.Len())
		})
	}
}

func TestOrders_NewestFirst(t *testing.T) {
	ta := newTestApp(t, "")
	require.NoError(t, ta.run("orders", "017"))

	out := ta.out.String()
	require.Contains(t, out, "o-new")
	require.Contains(t, out, "o-old")
	assert.Less(t, strings.Index(out, "o-new"), strings.Index(out, "o-old"))
	assert.NotContains(t, out, "o-done")
}

func TestOrders_NoMatches(t *testing.T) {
	ta := newTestApp(t, "")
	require.NoError(t, ta.run("orders", "--phone", "999"))
	assert.Contains(t, ta.out.String(), "No orders found")
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		args          []string
		wantErr       error
		wantCancelled bool
		wantOutput    string
	}{
		{name: "confirmed", input: "y\n", args: []string{"cancel", "o-old"}, wantCancelled: true, wantOutput: "Order cancelled."},
		{name: "declined", input: "n\n", args: []string{"cancel", "o-old"}, wantOutput: "Order left unchanged."},
		{name: "yes flag", args: []string{"cancel", "--yes", "o-old"}, wantCancelled: true},
		{name: "already cancelled", args: []string{"cancel", "-y", "o-new"}, wantErr: myorders.ErrAlreadyCancelled},
		{name: "not found", args: []string{"cancel", "-y", "o-ghost"}, wantErr: order.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, tt.input)
			err := ta.run(tt.args...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, ta.api.cancelled)
				return
			}
			require.NoError(t, err)
			if tt.wantCancelled {
				assert.Equal(t, []string{"o-old"}, ta.api.cancelled)
			} else {
				assert.Empty(t, ta.api.cancelled)
			}
			assert.Contains(t, ta.out.String(), tt.wantOutput)
		})
	}
}

func TestCancel_DeliveredOrder(t *testing.T) {
	ta := newTestApp(t, "")
	err := ta.run("cancel", "-y", "o-done")

	var te *order.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Empty(t, ta.api.cancelled)
}

func TestAdminAdd(t *testing.T) {
	img := filepath.Join(t.TempDir(), "mango.jpg")
	require.NoError(t, os.WriteFile(img, []byte{0xFF, 0xD8, 0xFF}, 0o600))

	ta := newTestApp(t, "")
	require.NoError(t, ta.run("admin", "add", "--name", "Mango tree", "--details", "Grafted",
		"--regular-price", "700", "--offer-price", "500.50", "--image", img))

	require.Len(t, ta.api.created, 1)
	in := ta.api.created[0]
	assert.Equal(t, "Mango tree", in.Name)
	assert.True(t, in.OfferPrice.Equal(decimal.RequireFromString("500.50")))
	assert.Equal(t, "mango.jpg", in.ImageName)
	assert.Equal(t, []byte{0xFF, 0xD8, 0xFF}, in.Image)
	assert.Contains(t, ta.out.String(), "p-new")
}

func TestAdminAdd_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing image flag", args: []string{"admin", "add", "--name", "X"}},
		{name: "bad price", args: []string{"admin", "add", "--name", "X", "--image", "x.jpg", "--offer-price", "cheap"}},
		{name: "unreadable image", args: []string{"admin", "add", "--name", "X", "--image", "/nonexistent/x.jpg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t, "")
			require.Error(t, ta.run(tt.args...))
			assert.Empty(t, ta.api.created)
		})
	}
}

func TestAdminDelete_Warning(t *testing.T) {
	ta := newTestApp(t, "")
	ta.api.deleteRes = &wire.DeleteResult{ID: "p1", Warning: "image could not be deleted"}

	require.NoError(t, ta.run("admin", "delete", "p1"))
	assert.Contains(t, ta.out.String(), "Product p1 deleted.")
	assert.Contains(t, ta.out.String(), "warning: image could not be deleted")
}

func TestAdminLogin(t *testing.T) {
	ta := newTestApp(t, "admin@arboom.test\nsecret\n")
	require.NoError(t, ta.run("admin", "login"))
	assert.Equal(t, []string{"admin@arboom.test"}, ta.api.logins)
	assert.Contains(t, ta.out.String(), "Login successful.")

	ta = newTestApp(t, "wrong\n")
	ta.api.loginErr = errors.New("api error 401: Invalid credentials")
	require.Error(t, ta.run("admin", "login", "--email", "admin@arboom.test"))
}
