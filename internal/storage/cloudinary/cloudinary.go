// Package cloudinary stores product images on Cloudinary, which derives the
// bounded webp rendition server-side.
package cloudinary

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	cld "github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/go-faster/errors"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/media"
)

// Config holds account credentials.
type Config struct {
	CloudName string `usage:"Cloudinary cloud name"`
	APIKey    string `usage:"Cloudinary API key"`
	APISecret string `usage:"Cloudinary API secret"`
	// UploadPrefix overrides the API endpoint; empty means the public API.
	UploadPrefix string `usage:"Cloudinary API endpoint override"`
}

// Store implements media.Store.
type Store struct {
	client *cld.Cloudinary
}

var _ media.Store = (*Store)(nil)

// New creates a Store from cfg.
func New(cfg Config) (*Store, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errors.New("cloudinary credentials are incomplete")
	}
	client, err := cld.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, errors.Wrap(err, "create client")
	}
	client.Config.URL.Secure = true
	if cfg.UploadPrefix != "" {
		client.Upload.Config.API.UploadPrefix = cfg.UploadPrefix
	}
	return &Store{client: client}, nil
}

func (s *Store) Upload(ctx context.Context, name string, data []byte, opts media.Options) (*media.Asset, error) {
	if len(data) == 0 {
		return nil, media.ErrEmptyImage
	}
	params := uploader.UploadParams{
		Folder:         opts.Folder,
		ResourceType:   "image",
		Transformation: Transformation(opts),
	}
	res, err := s.client.Upload.Upload(ctx, bytes.NewReader(data), params)
	if err != nil {
		return nil, errors.Wrapf(err, "upload %q", name)
	}
	if res.Error.Message != "" {
		return nil, errors.Errorf("upload %q: %s", name, res.Error.Message)
	}
	if res.SecureURL == "" || res.PublicID == "" {
		return nil, errors.Errorf("upload %q: empty response", name)
	}
	return &media.Asset{URL: res.SecureURL, ID: res.PublicID}, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	if err != nil {
		return errors.Wrapf(err, "destroy %q", id)
	}
	if res.Error.Message != "" {
		return errors.Errorf("destroy %q: %s", id, res.Error.Message)
	}
	switch res.Result {
	case "ok", "not found":
		return nil
	default:
		return errors.Errorf("destroy %q: result %q", id, res.Result)
	}
}

// Transformation renders opts as an eager transformation string, e.g.
// "c_limit,h_750,w_750/f_webp,q_auto:good".
func Transformation(opts media.Options) string {
	var parts []string
	if opts.MaxWidth > 0 || opts.MaxHeight > 0 {
		var box []string
		if opts.Crop != "" {
			box = append(box, "c_"+string(opts.Crop))
		}
		if opts.MaxHeight > 0 {
			box = append(box, fmt.Sprintf("h_%d", opts.MaxHeight))
		}
		if opts.MaxWidth > 0 {
			box = append(box, fmt.Sprintf("w_%d", opts.MaxWidth))
		}
		parts = append(parts, strings.Join(box, ","))
	}

	var enc []string
	if opts.Format != "" {
		enc = append(enc, "f_"+opts.Format)
	}
	if opts.Quality != "" {
		enc = append(enc, "q_"+opts.Quality)
	}
	if len(enc) > 0 {
		parts = append(parts, strings.Join(enc, ","))
	}
	return strings.Join(parts, "/")
}
