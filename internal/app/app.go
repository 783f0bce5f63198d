package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/media"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
	"github.com/IhossainpHero/Arboom-bd/internal/handler"
	"github.com/IhossainpHero/Arboom-bd/internal/storage/redis"
	"github.com/IhossainpHero/Arboom-bd/pkg/health"
	"github.com/IhossainpHero/Arboom-bd/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	fees, err := cfg.Shipping.Fees()
	if err != nil {
		return errors.Wrap(err, "shipping fees")
	}

	store, err := OpenStorage(ctx, cfg.Storage, lg)
	if err != nil {
		return err
	}
	defer store.Close()

	images, closeImages, err := OpenMedia(ctx, cfg.Media, lg)
	if err != nil {
		return errors.Wrap(err, "open media store")
	}
	defer func() {
		if err := closeImages(); err != nil {
			lg.Warn("Close media store", zap.Error(err))
		}
	}()

	healthSvc := health.New()
	healthSvc.AddReadinessCheck(cfg.Storage.Driver, store.Ping, health.WithTimeout(5*time.Second))
	healthSvc.AddReadinessCheck("media-breaker", health.StateCheck(images.State, "open"))
	healthSvc.AddLivenessCheck("goroutines", health.GoroutineCountCheck(10000))

	// Session carts and the catalog cache live in Redis when configured.
	products := store.Products
	var carts handler.CartStores
	if cfg.Redis.URL != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.URL)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		defer func() { _ = rdb.Close() }()

		healthSvc.AddReadinessCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		products = redis.NewCachedCatalog(products, rdb, cfg.Redis.CatalogTTL, lg)
		carts = redis.NewCartStore(rdb, cfg.Redis.CartTTL)
	} else {
		lg.Warn("Redis not configured, session carts are kept in memory")
		carts = cart.NewMemoryStores()
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	catalog := product.NewCatalog(products, images, media.DefaultOptions(cfg.Media.Folder), lg)
	orders := order.NewService(store.Orders, fees)

	r, err := newRouter(ctx, lg, cfg, routerDeps{
		catalog: catalog,
		orders:  orders,
		carts:   carts,
		health:  healthSvc,
		meter:   m.MeterProvider().Meter("arboom"),
	})
	if err != nil {
		return err
	}

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           httpmiddleware.Wrap(r, httpmiddleware.Instrument("arboom-api", m)),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

type routerDeps struct {
	catalog *product.Catalog
	orders  *order.Service
	carts   handler.CartStores
	health  *health.Health
	meter   metric.Meter
}

// newRouter mounts the middleware chain, health probes and API routes.
func newRouter(ctx context.Context, lg *zap.Logger, cfg *Config, d routerDeps) (chi.Router, error) {
	h, err := handler.New(handler.Config{
		AdminEmail:        cfg.Admin.Email,
		AdminPasswordHash: cfg.Admin.PasswordHash,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		CheckoutTimeout:   cfg.CheckoutTimeout,
	}, d.catalog, d.orders, d.carts, d.meter)
	if err != nil {
		return nil, errors.Wrap(err, "create handler")
	}

	r := chi.NewRouter()
	r.Use(
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type", "X-Cart-ID", httpmiddleware.RequestIDHeader},
			ExposeHeaders:    []string{"X-Cart-ID", httpmiddleware.RequestIDHeader},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.LogRequests(),
		httpmiddleware.Labeler(),
	)
	r.Get("/livez", d.health.LiveEndpoint)
	r.Get("/readyz", d.health.ReadyEndpoint)
	h.Register(r)
	return r, nil
}
