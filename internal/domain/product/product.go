// Package product holds the storefront catalog and its admin mutations.
package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Catalog errors.
var (
	ErrNotFound      = errors.New("product not found")
	ErrImageRequired = errors.New("product image is required")
	ErrUpload        = errors.New("image upload failed")
)

// Product represents a catalog item available for purchase.
type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	RegularPrice decimal.Decimal `json:"regularPrice"`
	OfferPrice   decimal.Decimal `json:"offerPrice"`
	Details      string          `json:"details"`
	ImageURL     string          `json:"imageURL"`
	// ImageID is the media store handle; empty for products without one.
	ImageID   string    `json:"imageID"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository is the product collection.
type Repository interface {
	// List returns all products, newest first.
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	// Delete removes the product, returning ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
}
