package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/checkout"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/wire"
)

const (
	cartHeader = "X-Cart-ID"
	cartCookie = "cart_id"
	cartMaxAge = 30 * 24 * time.Hour
)

// cartID returns the session cart id, issuing a new one when the request
// carries none or a malformed one.
func cartID(w http.ResponseWriter, r *http.Request) string {
	id := r.Header.Get(cartHeader)
	if id == "" {
		if c, err := r.Cookie(cartCookie); err == nil {
			id = c.Value
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     cartCookie,
			Value:    id,
			Path:     "/",
			MaxAge:   int(cartMaxAge.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	w.Header().Set(cartHeader, id)
	return id
}

func (h *Handler) loadCart(w http.ResponseWriter, r *http.Request) (string, *cart.Cart, error) {
	id := cartID(w, r)
	c, err := cart.Load(r.Context(), h.carts.For(id), zctx.From(r.Context()))
	return id, c, err
}

func writeCart(w http.ResponseWriter, status int, id string, c *cart.Cart) {
	view := wire.NewCartView(id, c.Lines())
	writeData(w, status, "", view.Encode)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	id, c, err := h.loadCart(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, id, c)
}

// addCartItem snapshots the catalog product into the cart.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req wire.AddToCartRequest
	if err := readJSON(w, r, req.Decode); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, c, err := h.loadCart(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	err = c.Add(r.Context(), cart.Item{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.OfferPrice,
		ImageRef:  p.ImageURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, id, c)
}

func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	var req wire.QuantityRequest
	if err := readJSON(w, r, req.Decode); err != nil {
		writeError(w, r, err)
		return
	}
	id, c, err := h.loadCart(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.UpdateQuantity(r.Context(), chi.URLParam(r, "productId"), req.Quantity); err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, id, c)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, c, err := h.loadCart(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := c.Remove(r.Context(), chi.URLParam(r, "productId")); err != nil {
		writeError(w, r, err)
		return
	}
	writeCart(w, http.StatusOK, id, c)
}

// checkoutCart places an order for the session cart. Concurrent checkouts
// of one cart share a single submission and its outcome.
func (h *Handler) checkoutCart(w http.ResponseWriter, r *http.Request) {
	var form *checkout.Form
	err := readJSON(w, r, func(d *jx.Decoder) error {
		var err error
		form, err = wire.DecodeForm(d)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := cartID(w, r)
	v, err, shared := h.checkouts.Do(id, func() (any, error) {
		// Callers joining this submission must not fail with whoever started it.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.cfg.CheckoutTimeout)
		defer cancel()

		lg := zctx.From(ctx)
		c, err := cart.Load(ctx, h.carts.For(id), lg)
		if err != nil {
			return nil, err
		}
		co := checkout.New(c, h.orders, checkout.Options{
			Fees:    h.orders.Fees(),
			Timeout: h.cfg.CheckoutTimeout,
			Logger:  lg,
		})
		return co.Submit(ctx, form)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	o := v.(*order.Order)
	if !shared {
		h.orderPlaced(r, o, "cart")
	}
	writeData(w, http.StatusCreated, "Order placed successfully", func(e *jx.Encoder) { wire.EncodeOrder(e, o) })
}
