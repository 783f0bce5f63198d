// Package gcs stores product images in a Google Cloud Storage bucket.
package gcs

import (
	"context"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/media"
)

// Config selects the bucket and credentials.
type Config struct {
	Bucket string `usage:"GCS bucket for product images"`
	// CredentialsFile is a service account key; empty uses application
	// default credentials.
	CredentialsFile string `usage:"GCS service account key file" flag:"gcs-credentials-file"`
	PublicBaseURL   string `default:"https://storage.googleapis.com" usage:"Public base URL for stored images" flag:"gcs-public-base-url"`
}

// Store implements media.Store.
type Store struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

var _ media.Store = (*Store)(nil)

// New creates a Store. Extra client options are appended after the
// credentials option.
func New(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	var clientOpts []option.ClientOption
	if cfg.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	clientOpts = append(clientOpts, opts...)

	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "create storage client")
	}
	base := strings.TrimSuffix(cfg.PublicBaseURL, "/")
	if base == "" {
		base = "https://storage.googleapis.com"
	}
	return &Store{client: client, bucket: cfg.Bucket, baseURL: base}, nil
}

// Close releases the client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) Upload(ctx context.Context, name string, data []byte, opts media.Options) (*media.Asset, error) {
	d, err := media.Derive(data, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "derive %q", name)
	}

	key := uuid.NewString() + d.Ext
	if opts.Folder != "" {
		key = strings.Trim(opts.Folder, "/") + "/" + key
	}

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = d.ContentType
	w.CacheControl = "public, max-age=31536000, immutable"
	if _, err := w.Write(d.Data); err != nil {
		_ = w.Close()
		return nil, errors.Wrapf(err, "write %q", key)
	}
	if err := w.Close(); err != nil {
		return nil, errors.Wrapf(err, "close %q", key)
	}
	return &media.Asset{URL: s.baseURL + "/" + s.bucket + "/" + key, ID: key}, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.client.Bucket(s.bucket).Object(id).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return errors.Wrapf(err, "delete %q", id)
	}
	return nil
}
