// Package media defines the hosted image store used for product images.
package media

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrEmptyImage is returned when an upload carries no bytes.
var ErrEmptyImage = errors.New("image is empty")

// Crop selects how an image is fitted into the bounding box.
type Crop string

// CropLimit scales an image down to fit the box and never scales up.
const CropLimit Crop = "limit"

// Options requests a bounded, compressed derivative of the uploaded image.
type Options struct {
	Folder    string
	MaxWidth  int
	MaxHeight int
	Crop      Crop
	// Format is the requested output format, e.g. "webp" or "jpg".
	Format string
	// Quality is a provider quality hint such as "auto:good" or "80".
	Quality string
}

// DefaultOptions returns the product image derivative: at most 750×750,
// webp, automatic good quality.
func DefaultOptions(folder string) Options {
	return Options{
		Folder:    folder,
		MaxWidth:  750,
		MaxHeight: 750,
		Crop:      CropLimit,
		Format:    "webp",
		Quality:   "auto:good",
	}
}

// Asset is a stored image.
type Asset struct {
	URL string
	// ID is the provider handle used for deletion.
	ID string
}

// Store uploads and deletes images. Deleting an unknown ID is not an error.
type Store interface {
	Upload(ctx context.Context, name string, data []byte, opts Options) (*Asset, error)
	Delete(ctx context.Context, id string) error
}
