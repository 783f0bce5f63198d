package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/media"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
	"github.com/IhossainpHero/Arboom-bd/internal/wire"
)

// --- Mock implementations ---

type mockProductRepo struct {
	mu      sync.Mutex
	byID    map[string]product.Product
	listErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]product.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[p.ID] = *p
	return nil
}

func (m *mockProductRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

type mockMediaStore struct {
	uploadErr error
	deleteErr error
}

func (m *mockMediaStore) Upload(_ context.Context, name string, _ []byte, opts media.Options) (*media.Asset, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	id := opts.Folder + "/" + name
	return &media.Asset{URL: "https://res.example.com/" + id, ID: id}, nil
}

func (m *mockMediaStore) Delete(_ context.Context, _ string) error {
	return m.deleteErr
}

type mockOrderRepo struct {
	mu        sync.Mutex
	byID      map[string]*order.Order
	createErr error
}

func (m *mockOrderRepo) Create(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *mockOrderRepo) ListByPhone(_ context.Context, phone string) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.Order
	for _, o := range m.byID {
		if o.Phone == phone {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, from, to order.Status) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if o.Status != from {
		return nil, order.ErrStatusConflict
	}
	o.Status = to
	cp := *o
	return &cp, nil
}

// --- Helpers ---

const testPassword = "s3cret-pass"

type testEnv struct {
	srv      *httptest.Server
	router   http.Handler
	products *mockProductRepo
	images   *mockMediaStore
	orders   *mockOrderRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	env := &testEnv{
		products: &mockProductRepo{byID: map[string]product.Product{
			"p1": {ID: "p1", Name: "Mango tree", RegularPrice: decimal.NewFromInt(700), OfferPrice: decimal.NewFromInt(500), ImageURL: "https://img/p1", ImageID: "arboom/p1", CreatedAt: time.Now()},
			"p2": {ID: "p2", Name: "Lemon tree", RegularPrice: decimal.NewFromInt(300), OfferPrice: decimal.RequireFromString("250.50"), CreatedAt: time.Now()},
		}},
		images: &mockMediaStore{},
		orders: &mockOrderRepo{byID: make(map[string]*order.Order)},
	}

	catalog := product.NewCatalog(env.products, env.images, media.DefaultOptions("arboom"), zap.NewNop())
	orders := order.NewService(env.orders, order.DefaultShippingFees())

	h, err := New(Config{
		AdminEmail:        "admin@arboom.test",
		AdminPasswordHash: string(hash),
	}, catalog, orders, cart.NewMemoryStores(), noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	r := chi.NewRouter()
	h.Register(r)
	env.router = r
	env.srv = httptest.NewServer(r)
	t.Cleanup(env.srv.Close)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, cartID string, body []byte) (*http.Response, *wire.Envelope) {
	t.Helper()

	req, err := http.NewRequest(method, e.srv.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cartID != "" {
		req.Header.Set(cartHeader, cartID)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	env, err := wire.DecodeEnvelope(buf.Bytes())
	require.NoError(t, err, "body: %s", buf.String())
	return resp, env
}

func encode(fn func(e *jx.Encoder)) []byte {
	var e jx.Encoder
	fn(&e)
	return e.Bytes()
}

func validDraft() *order.Draft {
	return &order.Draft{
		CustomerName: "Rahim",
		Phone:        "01700000000",
		Address:      "House 1, Road 2",
		ShippingZone: order.ZoneInside,
		LineItems: []order.LineItem{
			{ProductID: "p1", Name: "Mango tree", UnitPrice: decimal.NewFromInt(500), Quantity: 2},
		},
	}
}

func placeOrder(t *testing.T, env *testEnv) *order.Order {
	t.Helper()
	resp, envl := env.do(t, http.MethodPost, "/api/orders", "", encode(func(e *jx.Encoder) { wire.EncodeDraft(e, validDraft()) }))
	require.Equal(t, http.StatusCreated, resp.StatusCode, envl.Message)
	var o *order.Order
	require.NoError(t, envl.Into(func(d *jx.Decoder) error {
		var err error
		o, err = wire.DecodeOrder(d)
		return err
	}))
	return o
}

func decodeCart(t *testing.T, env *wire.Envelope) wire.CartView {
	t.Helper()
	var v wire.CartView
	require.NoError(t, env.Into(v.Decode))
	return v
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)

	resp, envl := env.do(t, http.MethodGet, "/api/products", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envl.Success)

	var products []product.Product
	require.NoError(t, envl.Into(func(d *jx.Decoder) error {
		var err error
		products, err = wire.DecodeProducts(d)
		return err
	}))
	assert.Len(t, products, 2)
}

func TestListProducts_RepositoryError(t *testing.T) {
	env := newTestEnv(t)
	env.products.listErr = errors.New("connection refused")

	resp, envl := env.do(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.False(t, envl.Success)
	assert.NotContains(t, envl.Message, "connection refused")
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		id     string
		status int
	}{
		{name: "found", id: "p2", status: http.StatusOK},
		{name: "missing", id: "nope", status: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, envl := env.do(t, http.MethodGet, "/api/products/"+tt.id, "", nil)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.status == http.StatusOK, envl.Success)
		})
	}
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)

	o := placeOrder(t, env)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.True(t, o.ShippingFee.Equal(decimal.NewFromInt(80)))
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(1080)))
	assert.Len(t, env.orders.byID, 1)
}

func TestCreateOrder_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *order.Draft)
		body   []byte
		status int
	}{
		{
			name:   "missing phone",
			mutate: func(d *order.Draft) { d.Phone = " " },
			status: http.StatusBadRequest,
		},
		{
			name:   "no items",
			mutate: func(d *order.Draft) { d.LineItems = nil },
			status: http.StatusBadRequest,
		},
		{
			name:   "zero quantity",
			mutate: func(d *order.Draft) { d.LineItems[0].Quantity = 0 },
			status: http.StatusBadRequest,
		},
		{
			name:   "total mismatch",
			mutate: func(d *order.Draft) { d.TotalPrice = decimal.NewFromInt(1) },
			status: http.StatusBadRequest,
		},
		{
			name:   "unknown zone",
			mutate: func(d *order.Draft) { d.ShippingZone = "mars" },
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed JSON",
			body:   []byte(`{"customerName":`),
			status: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			body := tt.body
			if body == nil {
				d := validDraft()
				tt.mutate(d)
				body = encode(func(e *jx.Encoder) { wire.EncodeDraft(e, d) })
			}
			resp, envl := env.do(t, http.MethodPost, "/api/orders", "", body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, envl.Success)
			assert.NotEmpty(t, envl.Message)
			assert.Empty(t, env.orders.byID)
		})
	}
}

func TestCreateOrder_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.orders.createErr = errors.New("disk full")

	resp, envl := env.do(t, http.MethodPost, "/api/orders", "", encode(func(e *jx.Encoder) { wire.EncodeDraft(e, validDraft()) }))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.False(t, envl.Success)
}

func TestMyOrders(t *testing.T) {
	env := newTestEnv(t)
	placeOrder(t, env)

	resp, envl := env.do(t, http.MethodGet, "/api/my-orders?phone=01700000000", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orders []order.Order
	require.NoError(t, envl.Into(func(d *jx.Decoder) error {
		var err error
		orders, err = wire.DecodeOrders(d)
		return err
	}))
	assert.Len(t, orders, 1)

	resp, _ = env.do(t, http.MethodGet, "/api/my-orders", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateOrder(t *testing.T) {
	env := newTestEnv(t)
	o := placeOrder(t, env)
	path := "/api/orders/" + o.ID

	cancel := encode(wire.StatusRequest{Status: order.StatusCancelled}.Encode)
	resp, envl := env.do(t, http.MethodPatch, path, "", cancel)
	require.Equal(t, http.StatusOK, resp.StatusCode, envl.Message)

	// Repeating the current status is a no-op.
	resp, _ = env.do(t, http.MethodPatch, path, "", cancel)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	deliver := encode(wire.StatusRequest{Status: order.StatusDelivered}.Encode)
	resp, envl = env.do(t, http.MethodPatch, path, "", deliver)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, envl.Success)
}

func TestUpdateOrder_Errors(t *testing.T) {
	env := newTestEnv(t)
	o := placeOrder(t, env)

	tests := []struct {
		name   string
		id     string
		body   []byte
		status int
	}{
		{name: "unknown order", id: "missing", body: encode(wire.StatusRequest{Status: order.StatusCancelled}.Encode), status: http.StatusNotFound},
		{name: "unknown status", id: o.ID, body: []byte(`{"status":"shipped"}`), status: http.StatusBadRequest},
		{name: "empty status", id: o.ID, body: []byte(`{"status":""}`), status: http.StatusBadRequest},
		{name: "empty body", id: o.ID, body: []byte{}, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, envl := env.do(t, http.MethodPatch, "/api/orders/"+tt.id, "", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, envl.Success)
		})
	}
}

func TestCart_Flow(t *testing.T) {
	env := newTestEnv(t)

	resp, envl := env.do(t, http.MethodGet, "/api/cart/", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := resp.Header.Get(cartHeader)
	require.NotEmpty(t, id)
	assert.Empty(t, decodeCart(t, envl).Lines)

	add := func(productID string) wire.CartView {
		resp, envl := env.do(t, http.MethodPost, "/api/cart/items", id, encode(wire.AddToCartRequest{ProductID: productID}.Encode))
		require.Equal(t, http.StatusOK, resp.StatusCode, envl.Message)
		assert.Equal(t, id, resp.Header.Get(cartHeader))
		return decodeCart(t, envl)
	}
	add("p1")
	add("p2")
	v := add("p1")
	require.Len(t, v.Lines, 2)
	assert.Equal(t, "p1", v.Lines[0].ProductID)
	assert.Equal(t, 2, v.Lines[0].Quantity)
	assert.Equal(t, 3, v.ItemCount)
	assert.True(t, v.Subtotal.Equal(decimal.RequireFromString("1250.50")))

	resp, envl = env.do(t, http.MethodPatch, "/api/cart/items/p2", id, encode(wire.QuantityRequest{Quantity: 4}.Encode))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, decodeCart(t, envl).Lines[1].Quantity)

	resp, envl = env.do(t, http.MethodDelete, "/api/cart/items/p1", id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	v = decodeCart(t, envl)
	require.Len(t, v.Lines, 1)
	assert.Equal(t, "p2", v.Lines[0].ProductID)
}

func TestCart_Errors(t *testing.T) {
	env := newTestEnv(t)
	id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"

	resp, _ := env.do(t, http.MethodPost, "/api/cart/items", id, encode(wire.AddToCartRequest{ProductID: "nope"}.Encode))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/cart/items", id, []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/cart/items", id, []byte(`{"productId":`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCart_QuantityClampedToOne(t *testing.T) {
	env := newTestEnv(t)
	id := "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	env.do(t, http.MethodPost, "/api/cart/items", id, encode(wire.AddToCartRequest{ProductID: "p1"}.Encode))

	resp, envl := env.do(t, http.MethodPatch, "/api/cart/items/p1", id, encode(wire.QuantityRequest{Quantity: 0}.Encode))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decodeCart(t, envl).Lines[0].Quantity)
}

func TestCart_MalformedIDReplaced(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodGet, "/api/cart/", "../../etc/passwd", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	id := resp.Header.Get(cartHeader)
	assert.NotEqual(t, "../../etc/passwd", id)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == cartCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, id, cookie.Value)
	assert.True(t, cookie.HttpOnly)
}

func TestCheckoutCart(t *testing.T) {
	env := newTestEnv(t)
	id := "0b3c3f0e-8a4b-4a53-9d8a-1d2a3c4b5e6f"
	form := []byte(`{"customerName":"Karim","phone":"01800000000","address":"Sylhet","shippingZone":"outsideDhaka"}`)

	resp, envl := env.do(t, http.MethodPost, "/api/cart/checkout", id, form)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "cart is empty", envl.Message)

	env.do(t, http.MethodPost, "/api/cart/items", id, encode(wire.AddToCartRequest{ProductID: "p2"}.Encode))
	env.do(t, http.MethodPatch, "/api/cart/items/p2", id, encode(wire.QuantityRequest{Quantity: 2}.Encode))

	resp, envl = env.do(t, http.MethodPost, "/api/cart/checkout", id, form)
	require.Equal(t, http.StatusCreated, resp.StatusCode, envl.Message)
	var o *order.Order
	require.NoError(t, envl.Into(func(d *jx.Decoder) error {
		var err error
		o, err = wire.DecodeOrder(d)
		return err
	}))
	assert.Equal(t, order.ZoneOutside, o.ShippingZone)
	assert.True(t, o.TotalPrice.Equal(decimal.NewFromInt(621)))
	require.Len(t, o.LineItems, 1)
	assert.Equal(t, 2, o.LineItems[0].Quantity)

	resp, envl = env.do(t, http.MethodGet, "/api/cart/", id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decodeCart(t, envl).Lines)
}

func TestCheckoutCart_InvalidForm(t *testing.T) {
	env := newTestEnv(t)
	id := "0b3c3f0e-8a4b-4a53-9d8a-1d2a3c4b5e6f"
	env.do(t, http.MethodPost, "/api/cart/items", id, encode(wire.AddToCartRequest{ProductID: "p1"}.Encode))

	resp, envl := env.do(t, http.MethodPost, "/api/cart/checkout", id,
		[]byte(`{"customerName":"Karim","phone":"","address":"Sylhet","shippingZone":"inside"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, envl.Success)

	// The cart survives a rejected checkout.
	resp, envl = env.do(t, http.MethodGet, "/api/cart/", id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decodeCart(t, envl).Lines, 1)
	assert.Empty(t, env.orders.byID)
}

func TestCheckoutCart_CallerGone(t *testing.T) {
	env := newTestEnv(t)
	id := "0b3c3f0e-8a4b-4a53-9d8a-1d2a3c4b5e6f"
	env.do(t, http.MethodPost, "/api/cart/items", id, encode(wire.AddToCartRequest{ProductID: "p1"}.Encode))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/cart/checkout",
		strings.NewReader(`{"customerName":"Karim","phone":"01800000000","address":"Sylhet","shippingZone":"inside"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(cartHeader, id)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	// The submission shared with other callers runs to completion.
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, env.orders.byID, 1)
}

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "tree.jpg")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestCreateProduct(t *testing.T) {
	tests := []struct {
		name      string
		fields    map[string]string
		image     []byte
		uploadErr error
		status    int
	}{
		{
			name:   "created",
			fields: map[string]string{"name": "Jackfruit", "details": "Local", "regularPrice": "900", "offerPrice": "850.5"},
			image:  []byte{0xFF, 0xD8, 0xFF},
			status: http.StatusCreated,
		},
		{
			name:   "empty prices default to zero",
			fields: map[string]string{"name": "Guava"},
			image:  []byte{0xFF, 0xD8, 0xFF},
			status: http.StatusCreated,
		},
		{
			name:   "missing image",
			fields: map[string]string{"name": "Jackfruit"},
			status: http.StatusBadRequest,
		},
		{
			name:   "bad price",
			fields: map[string]string{"name": "Jackfruit", "offerPrice": "cheap"},
			image:  []byte{0xFF},
			status: http.StatusBadRequest,
		},
		{
			name:   "missing name",
			fields: map[string]string{"offerPrice": "10"},
			image:  []byte{0xFF},
			status: http.StatusBadRequest,
		},
		{
			name:      "upload failure",
			fields:    map[string]string{"name": "Jackfruit"},
			image:     []byte{0xFF},
			uploadErr: errors.New("provider down"),
			status:    http.StatusBadGateway,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.images.uploadErr = tt.uploadErr

			body, ct := multipartBody(t, tt.fields, tt.image)
			req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/admin/products", body)
			require.NoError(t, err)
			req.Header.Set("Content-Type", ct)
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.status == http.StatusCreated {
				assert.Len(t, env.products.byID, 3)
			} else {
				assert.Len(t, env.products.byID, 2)
			}
		})
	}
}

func TestCreateProduct_StreamedParts(t *testing.T) {
	env := newTestEnv(t)
	post := func(body *bytes.Buffer, ct string) int {
		req, err := http.NewRequest(http.MethodPost, env.srv.URL+"/api/admin/products", body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", ct)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	// The image part may come before the text fields.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "jackfruit.jpg")
	require.NoError(t, err)
	_, err = fw.Write([]byte{0xFF, 0xD8, 0xFF})
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("name", "Jackfruit"))
	require.NoError(t, mw.WriteField("offerPrice", "850"))
	require.NoError(t, mw.Close())
	require.Equal(t, http.StatusCreated, post(&buf, mw.FormDataContentType()))

	var created *product.Product
	for _, p := range env.products.byID {
		if p.Name == "Jackfruit" {
			created = &p
		}
	}
	require.NotNil(t, created)
	assert.Contains(t, created.ImageURL, "jackfruit.jpg")
	assert.True(t, created.OfferPrice.Equal(decimal.NewFromInt(850)))

	assert.Equal(t, http.StatusBadRequest, post(bytes.NewBufferString(`{"name":"x"}`), "application/json"))

	big, ct := multipartBody(t, map[string]string{"name": strings.Repeat("a", maxFieldBytes+1)}, []byte{0xFF})
	assert.Equal(t, http.StatusBadRequest, post(big, ct))
	assert.Len(t, env.products.byID, 3)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)

	resp, envl := env.do(t, http.MethodDelete, "/api/admin/products/p1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res wire.DeleteResult
	require.NoError(t, envl.Into(res.Decode))
	assert.Equal(t, "p1", res.ID)
	assert.True(t, res.ImageDeleted)
	assert.Empty(t, res.Warning)

	resp, _ = env.do(t, http.MethodDelete, "/api/admin/products/p1", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/admin/products", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteProduct_ImageFailureStillDeletes(t *testing.T) {
	env := newTestEnv(t)
	env.images.deleteErr = errors.New("provider down")

	resp, envl := env.do(t, http.MethodDelete, "/api/admin/products?id=p1", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res wire.DeleteResult
	require.NoError(t, envl.Into(res.Decode))
	assert.False(t, res.ImageDeleted)
	assert.NotEmpty(t, res.Warning)
	assert.NotContains(t, env.products.byID, "p1")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name   string
		req    wire.LoginRequest
		status int
	}{
		{name: "valid", req: wire.LoginRequest{Email: "Admin@Arboom.test", Password: testPassword}, status: http.StatusOK},
		{name: "wrong password", req: wire.LoginRequest{Email: "admin@arboom.test", Password: "nope"}, status: http.StatusUnauthorized},
		{name: "wrong email", req: wire.LoginRequest{Email: "other@arboom.test", Password: testPassword}, status: http.StatusUnauthorized},
		{name: "malformed email", req: wire.LoginRequest{Email: "admin", Password: testPassword}, status: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, envl := env.do(t, http.MethodPost, "/api/admin/login", "", encode(tt.req.Encode))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.status == http.StatusOK, envl.Success)
		})
	}
}

func TestLogin_NotConfigured(t *testing.T) {
	catalog := product.NewCatalog(&mockProductRepo{byID: map[string]product.Product{}}, &mockMediaStore{}, media.DefaultOptions("x"), zap.NewNop())
	orders := order.NewService(&mockOrderRepo{byID: map[string]*order.Order{}}, order.DefaultShippingFees())
	h, err := New(Config{}, catalog, orders, cart.NewMemoryStores(), noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"email":"a@b.c","password":"x"}`))
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "deadline", err: errors.Wrap(context.DeadlineExceeded, "submit order"), status: http.StatusGatewayTimeout},
		{name: "status conflict", err: errors.Wrap(order.ErrStatusConflict, "update"), status: http.StatusConflict},
		{name: "transition", err: &order.TransitionError{From: order.StatusDelivered, To: order.StatusCancelled}, status: http.StatusConflict},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.NotEmpty(t, msg)
		})
	}
}
