package app

import (
	"io/fs"
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/order"
	"github.com/IhossainpHero/Arboom-bd/internal/storage/cloudinary"
	"github.com/IhossainpHero/Arboom-bd/internal/storage/gcs"
	"github.com/IhossainpHero/Arboom-bd/internal/storage/s3"
)

const defaultAddr = "0.0.0.0:8080"

// Config holds the complete application configuration, loadable from
// environment variables (SHOP_ prefix), flags, or YAML config files.
type Config struct {
	Addr            string        `default:"0.0.0.0:8080" usage:"API server listen address"`
	CheckoutTimeout time.Duration `default:"15s" usage:"Upper bound for one order submission" flag:"checkout-timeout"`
	MaxUploadBytes  int64         `default:"10485760" usage:"Maximum product create request size" flag:"max-upload-bytes"`
	Storage         StorageConfig
	Redis           RedisConfig
	Media           MediaConfig
	Shipping        ShippingConfig
	Admin           AdminConfig
	RateLimit       RateLimitConfig
	CORS            CORSConfig
	Graceful        GracefulConfig
}

// StorageConfig selects the order and product store.
type StorageConfig struct {
	Driver        string `default:"postgres" usage:"Order and product store: postgres or mongo"`
	DatabaseURL   string `usage:"PostgreSQL connection URL (SHOP_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	MongoURI      string `usage:"MongoDB connection URI (SHOP_STORAGE_MONGO_URI or MONGO_URI)" flag:"mongo-uri"`
	MongoDatabase string `default:"arboom" usage:"MongoDB database name" flag:"mongo-database"`
}

// RedisConfig enables Redis-backed session carts and the catalog cache.
type RedisConfig struct {
	URL        string        `usage:"Redis URL (SHOP_REDIS_URL or REDIS_URL); empty keeps carts in memory" flag:"redis-url"`
	CartTTL    time.Duration `default:"720h" usage:"Idle lifetime of a session cart" flag:"cart-ttl"`
	CatalogTTL time.Duration `default:"1m" usage:"Product list cache lifetime" flag:"catalog-ttl"`
}

// MediaConfig selects where product images are stored.
type MediaConfig struct {
	Provider   string `default:"cloudinary" usage:"Image store: cloudinary, s3 or gcs"`
	Folder     string `default:"arboom_products" usage:"Folder or key prefix for product images"`
	Cloudinary cloudinary.Config
	S3         s3.Config
	GCS        gcs.Config
	Breaker    BreakerConfig
}

// BreakerConfig controls the circuit breaker in front of the image store.
type BreakerConfig struct {
	MaxFailures uint32        `default:"5" usage:"Consecutive failures that open the breaker"`
	OpenTimeout time.Duration `default:"30s" usage:"How long the breaker stays open"`
}

// ShippingConfig is the two-tier fee table.
type ShippingConfig struct {
	Inside  string `default:"80" usage:"Shipping fee inside the city"`
	Outside string `default:"120" usage:"Shipping fee outside the city"`
}

// Fees parses the fee table.
func (c ShippingConfig) Fees() (order.ShippingFees, error) {
	return order.ParseShippingFees(c.Inside, c.Outside)
}

// AdminConfig holds the single admin account. Login is disabled while
// either field is empty.
type AdminConfig struct {
	Email        string `usage:"Admin login email"`
	PasswordHash string `usage:"bcrypt hash of the admin password"`
}

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig reads .env when present, then environment variables, flags and
// YAML config files, and applies platform defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(false)
}

// LoadEnvConfig is LoadConfig without command line flags, for tools that
// parse their own.
func LoadEnvConfig() (*Config, error) {
	return loadConfig(true)
}

func loadConfig(skipFlags bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "SHOP",
		SkipFlags: skipFlags,
		Files:     []string{"config.yaml", "/etc/arboom/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults(os.Getenv)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the unprefixed variables set by hosting
// platforms (DATABASE_URL, MONGO_URI, REDIS_URL, PORT) onto the config.
func (c *Config) applyPlatformDefaults(getenv func(string) string) {
	if c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = getenv("DATABASE_URL")
	}
	if c.Storage.MongoURI == "" {
		c.Storage.MongoURI = getenv("MONGO_URI")
	}
	if c.Redis.URL == "" {
		c.Redis.URL = getenv("REDIS_URL")
	}
	if port := getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required: set SHOP_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	case "mongo":
		if c.Storage.MongoURI == "" {
			return errors.New("mongo URI is required: set SHOP_STORAGE_MONGO_URI or MONGO_URI")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Media.Provider {
	case "cloudinary", "s3", "gcs":
	default:
		return errors.Errorf("unknown media provider %q", c.Media.Provider)
	}
	if _, err := c.Shipping.Fees(); err != nil {
		return errors.Wrap(err, "shipping")
	}
	return nil
}
