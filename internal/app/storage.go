package app

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
	"github.com/IhossainpHero/Arboom-bd/internal/storage/mongo"
	"github.com/IhossainpHero/Arboom-bd/internal/storage/postgres"
)

// Storage is the opened order and product store.
type Storage struct {
	Products product.Repository
	Orders   order.Repository
	Ping     func(ctx context.Context) error
	Close    func()
}

// OpenStorage connects to the configured driver and prepares its schema.
func OpenStorage(ctx context.Context, cfg StorageConfig, lg *zap.Logger) (*Storage, error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "run migrations")
		}
		lg.Info("Storage ready", zap.String("driver", cfg.Driver))
		return &Storage{
			Products: postgres.NewProductRepository(pool),
			Orders:   postgres.NewOrderRepository(pool),
			Ping:     pool.Ping,
			Close:    pool.Close,
		}, nil

	case "mongo":
		db, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, errors.Wrap(err, "connect mongo")
		}
		disconnect := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Client().Disconnect(ctx); err != nil {
				lg.Warn("Mongo disconnect", zap.Error(err))
			}
		}
		if err := mongo.CreateIndexes(ctx, db); err != nil {
			disconnect()
			return nil, errors.Wrap(err, "create indexes")
		}
		lg.Info("Storage ready", zap.String("driver", cfg.Driver), zap.String("database", cfg.MongoDatabase))
		return &Storage{
			Products: mongo.NewProductRepository(db),
			Orders:   mongo.NewOrderRepository(db),
			Ping: func(ctx context.Context) error {
				return db.Client().Ping(ctx, nil)
			},
			Close: disconnect,
		}, nil
	}
	return nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
}
