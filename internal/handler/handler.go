// Package handler serves the storefront HTTP API.
package handler

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/checkout"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
)

// CartStores hands out the persisted slot of a session cart.
type CartStores interface {
	For(cartID string) cart.Store
}

// Config holds non-dependency settings.
type Config struct {
	// AdminEmail and AdminPasswordHash (bcrypt) enable admin login. Login
	// answers 503 while either is empty.
	AdminEmail        string
	AdminPasswordHash string
	// MaxUploadBytes bounds a product create request. Default 10 MiB.
	MaxUploadBytes int64
	// CheckoutTimeout bounds a session checkout. Default checkout.DefaultTimeout.
	CheckoutTimeout time.Duration
}

// Handler implements the API routes.
type Handler struct {
	cfg      Config
	catalog  *product.Catalog
	orders   *order.Service
	carts    CartStores
	validate *validator.Validate

	// checkouts collapses concurrent checkouts of the same cart.
	checkouts singleflight.Group

	ordersPlaced    metric.Int64Counter
	ordersCancelled metric.Int64Counter
}

// New creates a Handler. meter receives the order counters.
func New(cfg Config, catalog *product.Catalog, orders *order.Service, carts CartStores, meter metric.Meter) (*Handler, error) {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.CheckoutTimeout <= 0 {
		cfg.CheckoutTimeout = checkout.DefaultTimeout
	}

	placed, err := meter.Int64Counter("orders.placed",
		metric.WithDescription("Orders accepted"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders.placed counter")
	}
	cancelled, err := meter.Int64Counter("orders.cancelled",
		metric.WithDescription("Orders moved to cancelled"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "orders.cancelled counter")
	}

	return &Handler{
		cfg:             cfg,
		catalog:         catalog,
		orders:          orders,
		carts:           carts,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		ordersPlaced:    placed,
		ordersCancelled: cancelled,
	}, nil
}

// Register mounts the API under /api.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.listProducts)
		r.Get("/products/{id}", h.getProduct)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.login)
			r.Post("/products", h.createProduct)
			r.Delete("/products", h.deleteProduct)
			r.Delete("/products/{id}", h.deleteProduct)
		})

		r.Post("/orders", h.createOrder)
		r.Get("/orders/{id}", h.getOrder)
		r.Patch("/orders/{id}", h.updateOrder)
		r.Get("/my-orders", h.myOrders)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Post("/items", h.addCartItem)
			r.Patch("/items/{productId}", h.setCartQuantity)
			r.Delete("/items/{productId}", h.removeCartItem)
			r.Post("/checkout", h.checkoutCart)
		})
	})
}
