package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/wire"
)

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var draft *order.Draft
	err := readJSON(w, r, func(d *jx.Decoder) error {
		var err error
		draft, err = wire.DecodeDraft(d)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	o, err := h.orders.Place(r.Context(), *draft)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.orderPlaced(r, o, "api")
	writeData(w, http.StatusCreated, "Order placed successfully", func(e *jx.Encoder) { wire.EncodeOrder(e, o) })
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", func(e *jx.Encoder) { wire.EncodeOrder(e, o) })
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req wire.StatusRequest
	if err := readJSON(w, r, req.Decode); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	before, err := h.orders.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if o.Status == order.StatusCancelled && before.Status != order.StatusCancelled {
		h.ordersCancelled.Add(r.Context(), 1)
	}
	zctx.From(r.Context()).Info("Order status updated",
		zap.String("order_id", o.ID),
		zap.String("from", string(before.Status)),
		zap.String("to", string(o.Status)),
	)
	writeData(w, http.StatusOK, "Order updated", func(e *jx.Encoder) { wire.EncodeOrder(e, o) })
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListByPhone(r.Context(), r.URL.Query().Get("phone"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, "", func(e *jx.Encoder) { wire.EncodeOrders(e, orders) })
}

func (h *Handler) orderPlaced(r *http.Request, o *order.Order, source string) {
	h.ordersPlaced.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("zone", string(o.ShippingZone)),
		attribute.String("source", source),
	))
	zctx.From(r.Context()).Info("Order placed",
		zap.String("order_id", o.ID),
		zap.String("total", o.TotalPrice.StringFixed(2)),
	)
}
