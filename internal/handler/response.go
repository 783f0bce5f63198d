package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/checkout"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
	"github.com/IhossainpHero/Arboom-bd/internal/wire"
)

const maxJSONBody = 1 << 20

// badRequest marks malformed input that never reached the domain.
type badRequest struct {
	msg string
	err error
}

func (e *badRequest) Error() string {
	if e.err == nil {
		return e.msg
	}
	return e.msg + ": " + e.err.Error()
}

func (e *badRequest) Unwrap() error { return e.err }

func newBadRequest(msg string, err error) error {
	return &badRequest{msg: msg, err: err}
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeData(w http.ResponseWriter, status int, msg string, data func(e *jx.Encoder)) {
	writeBody(w, status, wire.SuccessMessage(msg, data))
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeBody(w, status, wire.Failure(msg))
}

// writeError maps err to a status code and an envelope. Unexpected errors
// are logged and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed",
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeFailure(w, status, msg)
}

func classify(err error) (int, string) {
	var (
		bad         *badRequest
		orderVal    *order.ValidationError
		productVal  *product.ValidationError
		quantity    *order.InvalidQuantityError
		mismatch    *order.TotalMismatchError
		transition  *order.TransitionError
		fieldErrors validator.ValidationErrors
	)
	switch {
	case errors.As(err, &bad):
		return http.StatusBadRequest, bad.Error()
	case errors.As(err, &orderVal):
		return http.StatusBadRequest, orderVal.Error()
	case errors.As(err, &productVal):
		return http.StatusBadRequest, productVal.Error()
	case errors.As(err, &quantity):
		return http.StatusBadRequest, quantity.Error()
	case errors.As(err, &mismatch):
		return http.StatusBadRequest, mismatch.Error()
	case errors.As(err, &fieldErrors):
		fe := fieldErrors[0]
		return http.StatusBadRequest, "invalid " + fe.Field() + ": " + fe.Tag()
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, order.ErrPhoneRequired),
		errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, product.ErrImageRequired):
		return http.StatusBadRequest, rootMessage(err)
	case errors.Is(err, order.ErrNotFound):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, product.ErrNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.As(err, &transition):
		return http.StatusConflict, transition.Error()
	case errors.Is(err, order.ErrStatusConflict),
		errors.Is(err, checkout.ErrSubmitInProgress):
		return http.StatusConflict, rootMessage(err)
	case errors.Is(err, product.ErrUpload):
		return http.StatusBadGateway, "Image upload failed"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Request timed out, please retry"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// rootMessage returns the message of the sentinel at the bottom of err.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// readJSON reads a bounded JSON body and hands it to decode.
func readJSON(w http.ResponseWriter, r *http.Request, decode func(d *jx.Decoder) error) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		return newBadRequest("read body", err)
	}
	if len(body) == 0 {
		return newBadRequest("empty body", nil)
	}
	if err := decode(jx.DecodeBytes(body)); err != nil {
		return newBadRequest("malformed JSON", err)
	}
	return nil
}
