// Package client talks to the storefront HTTP API.
package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-resty/resty/v2"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
	"github.com/IhossainpHero/Arboom-bd/internal/wire"
)

// TransientError means the request may not have reached the server or the
// server was temporarily unable to answer. The caller decides whether to
// retry; the client never does.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: temporarily unavailable: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
	// kind is the domain sentinel the status maps to, if any.
	kind error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: %s", http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error { return e.kind }

// Client is a storefront API client. It is safe for concurrent use.
type Client struct {
	http *resty.Client
}

// New creates a Client for the server at baseURL. Every request is bounded
// by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// ListProducts returns the catalog, newest first.
func (c *Client) ListProducts(ctx context.Context) ([]product.Product, error) {
	env, err := c.do(ctx, "list products", product.ErrNotFound, c.http.R().SetContext(ctx), http.MethodGet, "/api/products")
	if err != nil {
		return nil, err
	}
	var out []product.Product
	err = env.Into(func(d *jx.Decoder) error {
		out, err = wire.DecodeProducts(d)
		return err
	})
	return out, errors.Wrap(err, "decode products")
}

// GetProduct returns one product.
func (c *Client) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	req := c.http.R().SetContext(ctx).SetPathParam("id", id)
	env, err := c.do(ctx, "get product", product.ErrNotFound, req, http.MethodGet, "/api/products/{id}")
	if err != nil {
		return nil, err
	}
	return decodeInto(env, wire.DecodeProduct, "decode product")
}

// CreateProduct uploads a product with its image as a multipart form.
func (c *Client) CreateProduct(ctx context.Context, in product.Input) (*product.Product, error) {
	if len(in.Image) == 0 {
		return nil, product.ErrImageRequired
	}
	name := in.ImageName
	if name == "" {
		name = "image"
	}
	req := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"name":         in.Name,
			"details":      in.Details,
			"regularPrice": in.RegularPrice.String(),
			"offerPrice":   in.OfferPrice.String(),
		}).
		SetFileReader("image", name, bytes.NewReader(in.Image))
	env, err := c.do(ctx, "create product", product.ErrNotFound, req, http.MethodPost, "/api/admin/products")
	if err != nil {
		return nil, err
	}
	return decodeInto(env, wire.DecodeProduct, "decode product")
}

// DeleteProduct deletes a product. The result reports whether the image was
// removed too.
func (c *Client) DeleteProduct(ctx context.Context, id string) (*wire.DeleteResult, error) {
	req := c.http.R().SetContext(ctx).SetPathParam("id", id)
	env, err := c.do(ctx, "delete product", product.ErrNotFound, req, http.MethodDelete, "/api/admin/products/{id}")
	if err != nil {
		return nil, err
	}
	var res wire.DeleteResult
	if err := env.Into(res.Decode); err != nil {
		return nil, errors.Wrap(err, "decode delete result")
	}
	return &res, nil
}

// Login checks admin credentials.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var e jx.Encoder
	wire.LoginRequest{Email: email, Password: password}.Encode(&e)
	req := c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json").SetBody(e.Bytes())
	_, err := c.do(ctx, "login", nil, req, http.MethodPost, "/api/admin/login")
	return err
}

// SubmitOrder posts an order draft. It satisfies checkout.Submitter.
func (c *Client) SubmitOrder(ctx context.Context, d order.Draft) (*order.Order, error) {
	var e jx.Encoder
	wire.EncodeDraft(&e, &d)
	req := c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json").SetBody(e.Bytes())
	env, err := c.do(ctx, "submit order", order.ErrNotFound, req, http.MethodPost, "/api/orders")
	if err != nil {
		return nil, err
	}
	return decodeInto(env, wire.DecodeOrder, "decode order")
}

// ListOrdersByPhone returns the orders placed with phone.
func (c *Client) ListOrdersByPhone(ctx context.Context, phone string) ([]order.Order, error) {
	req := c.http.R().SetContext(ctx).SetQueryParam("phone", phone)
	env, err := c.do(ctx, "list orders", order.ErrNotFound, req, http.MethodGet, "/api/my-orders")
	if err != nil {
		return nil, err
	}
	var out []order.Order
	err = env.Into(func(d *jx.Decoder) error {
		out, err = wire.DecodeOrders(d)
		return err
	})
	return out, errors.Wrap(err, "decode orders")
}

// GetOrder returns one order.
func (c *Client) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	req := c.http.R().SetContext(ctx).SetPathParam("id", id)
	env, err := c.do(ctx, "get order", order.ErrNotFound, req, http.MethodGet, "/api/orders/{id}")
	if err != nil {
		return nil, err
	}
	return decodeInto(env, wire.DecodeOrder, "decode order")
}

// CancelOrder requests the cancelled status for an order.
func (c *Client) CancelOrder(ctx context.Context, id string) (*order.Order, error) {
	return c.UpdateOrderStatus(ctx, id, order.StatusCancelled)
}

// UpdateOrderStatus requests a status transition.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, to order.Status) (*order.Order, error) {
	var e jx.Encoder
	wire.StatusRequest{Status: to}.Encode(&e)
	req := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetHeader("Content-Type", "application/json").
		SetBody(e.Bytes())
	env, err := c.do(ctx, "update order", order.ErrNotFound, req, http.MethodPatch, "/api/orders/{id}")
	if err != nil {
		return nil, err
	}
	return decodeInto(env, wire.DecodeOrder, "decode order")
}

// do executes req and unwraps the envelope. notFound is the sentinel a 404
// maps to.
func (c *Client) do(ctx context.Context, op string, notFound error, req *resty.Request, method, path string) (*wire.Envelope, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
			return nil, errors.Wrap(ctx.Err(), op)
		}
		return nil, &TransientError{Op: op, Err: err}
	}

	env, decErr := wire.DecodeEnvelope(resp.Body())
	if resp.IsSuccess() {
		if decErr != nil {
			return nil, errors.Wrap(decErr, op)
		}
		if !env.Success {
			return nil, &APIError{Status: resp.StatusCode(), Message: env.Message}
		}
		return env, nil
	}

	apiErr := &APIError{Status: resp.StatusCode()}
	if decErr == nil {
		apiErr.Message = env.Message
	}
	switch resp.StatusCode() {
	case http.StatusNotFound:
		apiErr.kind = notFound
	case http.StatusConflict:
		apiErr.kind = order.ErrStatusConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return nil, &TransientError{Op: op, Err: apiErr}
	}
	return nil, apiErr
}

func decodeInto[T any](env *wire.Envelope, fn func(d *jx.Decoder) (*T, error), what string) (*T, error) {
	var out *T
	err := env.Into(func(d *jx.Decoder) error {
		var err error
		out, err = fn(d)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, what)
	}
	return out, nil
}
