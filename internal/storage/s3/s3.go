// Package s3 stores product images in an S3-compatible bucket. Renditions
// are produced locally with media.Derive before upload.
package s3

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/media"
)

// Config selects the bucket.
type Config struct {
	Bucket string `usage:"S3 bucket for product images"`
	Region string `default:"ap-south-1" usage:"S3 region"`
	// Endpoint points at an S3-compatible service such as MinIO.
	Endpoint string `usage:"S3-compatible endpoint override"`
	// PublicBaseURL is prefixed to object keys to build image URLs.
	PublicBaseURL string `usage:"Public base URL for stored images" flag:"s3-public-base-url"`
}

// Store implements media.Store.
type Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

var _ media.Store = (*Store)(nil)

// New loads the default AWS credential chain and creates a Store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Store on an existing client.
func NewWithClient(client *s3.Client, cfg Config) *Store {
	return &Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
	}
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
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(d.Data),
		ContentType:  aws.String(d.ContentType),
		ACL:          types.ObjectCannedACLPublicRead,
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "put %q", key)
	}

	url := out.Location
	if s.baseURL != "" {
		url = s.baseURL + "/" + key
	}
	return &media.Asset{URL: url, ID: key}, nil
}

// Delete removes the object. S3 reports success for missing keys.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return errors.Wrapf(err, "delete %q", id)
	}
	return nil
}
