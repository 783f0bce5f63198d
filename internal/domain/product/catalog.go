package product

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/media"
)

// ValidationError reports a malformed product field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Input is an admin request to create a product.
type Input struct {
	Name         string `validate:"required,max=200"`
	Details      string `validate:"max=5000"`
	RegularPrice decimal.Decimal
	OfferPrice   decimal.Decimal
	Image        []byte
	ImageName    string
}

// DeleteResult describes a completed product deletion.
type DeleteResult struct {
	Product Product
	// ImageErr is set when the record was deleted but its image was not.
	ImageErr error
}

// Catalog serves the product list and performs admin mutations.
type Catalog struct {
	products Repository
	images   media.Store
	opts     media.Options
	lg       *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewCatalog creates a Catalog that stores images in images using opts.
func NewCatalog(products Repository, images media.Store, opts media.Options, lg *zap.Logger) *Catalog {
	return &Catalog{
		products: products,
		images:   images,
		opts:     opts,
		lg:       lg,
		validate: validator.New(),
		now:      time.Now,
	}
}

// List returns all products, newest first.
func (c *Catalog) List(ctx context.Context) ([]Product, error) {
	return c.products.List(ctx)
}

// Get returns a single product.
func (c *Catalog) Get(ctx context.Context, id string) (*Product, error) {
	return c.products.GetByID(ctx, id)
}

// Create uploads the image and then records the product. A failed upload
// creates nothing. If the record cannot be written the uploaded image is
// removed again.
func (c *Catalog) Create(ctx context.Context, in Input) (*Product, error) {
	if len(in.Image) == 0 {
		return nil, ErrImageRequired
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Details = strings.TrimSpace(in.Details)
	if err := c.validateInput(in); err != nil {
		return nil, err
	}

	name := in.ImageName
	if name == "" {
		name = "product"
	}
	asset, err := c.images.Upload(ctx, name, in.Image, c.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	p := &Product{
		ID:           uuid.New().String(),
		Name:         in.Name,
		RegularPrice: in.RegularPrice,
		OfferPrice:   in.OfferPrice,
		Details:      in.Details,
		ImageURL:     asset.URL,
		ImageID:      asset.ID,
		CreatedAt:    c.now().UTC(),
	}
	if err := c.products.Create(ctx, p); err != nil {
		if delErr := c.images.Delete(context.WithoutCancel(ctx), asset.ID); delErr != nil {
			c.lg.Warn("Orphaned product image",
				zap.String("image_id", asset.ID),
				zap.Error(delErr),
			)
		}
		return nil, errors.Wrap(err, "create product")
	}
	return p, nil
}

// Delete removes a product. The image is deleted first on a best-effort
// basis; the record is deleted regardless of the image outcome.
func (c *Catalog) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	p, err := c.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res := &DeleteResult{Product: *p}
	if p.ImageID != "" {
		if err := c.images.Delete(ctx, p.ImageID); err != nil {
			c.lg.Warn("Product image not deleted",
				zap.String("product_id", p.ID),
				zap.String("image_id", p.ImageID),
				zap.Error(err),
			)
			res.ImageErr = err
		}
	}

	if err := c.products.Delete(ctx, id); err != nil {
		return nil, errors.Wrap(err, "delete product")
	}
	return res, nil
}

func (c *Catalog) validateInput(in Input) error {
	if err := c.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ValidationError{Field: strings.ToLower(fe.Field()[:1]) + fe.Field()[1:], Reason: fe.Tag()}
		}
		return errors.Wrap(err, "validate product")
	}
	switch {
	case in.OfferPrice.IsNegative():
		return &ValidationError{Field: "offerPrice", Reason: "must not be negative"}
	case in.RegularPrice.IsNegative():
		return &ValidationError{Field: "regularPrice", Reason: "must not be negative"}
	case !in.OfferPrice.Equal(in.OfferPrice.Round(2)):
		return &ValidationError{Field: "offerPrice", Reason: "at most 2 decimal places"}
	case !in.RegularPrice.Equal(in.RegularPrice.Round(2)):
		return &ValidationError{Field: "regularPrice", Reason: "at most 2 decimal places"}
	}
	return nil
}
