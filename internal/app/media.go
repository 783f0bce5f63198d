package app

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/media"
	"github.com/IhossainpHero/Arboom-bd/internal/storage/cloudinary"
	"github.com/IhossainpHero/Arboom-bd/internal/storage/gcs"
	"github.com/IhossainpHero/Arboom-bd/internal/storage/s3"
)

// OpenMedia creates the configured image store behind a circuit breaker.
// The returned close func releases provider clients.
func OpenMedia(ctx context.Context, cfg MediaConfig, lg *zap.Logger) (*media.BreakerStore, func() error, error) {
	var (
		store   media.Store
		closeFn = func() error { return nil }
	)
	switch cfg.Provider {
	case "cloudinary":
		s, err := cloudinary.New(cfg.Cloudinary)
		if err != nil {
			return nil, nil, errors.Wrap(err, "cloudinary")
		}
		store = s
	case "s3":
		s, err := s3.New(ctx, cfg.S3)
		if err != nil {
			return nil, nil, errors.Wrap(err, "s3")
		}
		store = s
	case "gcs":
		s, err := gcs.New(ctx, cfg.GCS)
		if err != nil {
			return nil, nil, errors.Wrap(err, "gcs")
		}
		store, closeFn = s, s.Close
	default:
		return nil, nil, errors.Errorf("unknown media provider %q", cfg.Provider)
	}

	lg.Info("Media store ready", zap.String("provider", cfg.Provider), zap.String("folder", cfg.Folder))
	breaker := media.WithBreaker(store, media.BreakerSettings{
		Name:        "media-" + cfg.Provider,
		MaxFailures: cfg.Breaker.MaxFailures,
		OpenTimeout: cfg.Breaker.OpenTimeout,
	}, lg)
	return breaker, closeFn, nil
}
