package redis

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/product"
)

const (
	catalogKey    = "catalog:products"
	catalogGenKey = "catalog:gen"

	// fetchTimeout bounds a shared catalog fetch, which runs detached from
	// the caller that started it.
	fetchTimeout = 10 * time.Second
)

var errCatalogChanged = errors.New("catalog changed during fetch")

var _ product.Repository = (*CachedCatalog)(nil)

// CachedCatalog caches the product list in front of another repository.
// Writes go to the underlying repository, bump the catalog generation and
// drop the cached list. A fetched list is cached only if the generation did
// not move while it was read. Redis failures are logged and the underlying
// repository answers instead.
type CachedCatalog struct {
	next   product.Repository
	client *redis.Client
	ttl    time.Duration
	lg     *zap.Logger
	group  singleflight.Group
}

// NewCachedCatalog wraps next. Cached lists live for ttl plus up to a fifth
// of ttl of jitter.
func NewCachedCatalog(next product.Repository, client *redis.Client, ttl time.Duration, lg *zap.Logger) *CachedCatalog {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedCatalog{next: next, client: client, ttl: ttl, lg: lg}
}

func (c *CachedCatalog) List(ctx context.Context) ([]product.Product, error) {
	if data, err := c.client.Get(ctx, catalogKey).Bytes(); err == nil {
		var list []product.Product
		if err := json.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		c.lg.Warn("Dropping unreadable cached catalog")
	} else if !errors.Is(err, redis.Nil) {
		c.lg.Warn("Catalog cache read failed", zap.Error(err))
	}

	gen, ok := c.generation(ctx)
	v, err, _ := c.group.Do(catalogKey+":"+strconv.FormatInt(gen, 10), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		list, err := c.next.List(fetchCtx)
		if err != nil {
			return nil, err
		}
		if ok {
			c.store(fetchCtx, gen, list)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]product.Product), nil
}

func (c *CachedCatalog) GetByID(ctx context.Context, id string) (*product.Product, error) {
	return c.next.GetByID(ctx, id)
}

func (c *CachedCatalog) Create(ctx context.Context, p *product.Product) error {
	if err := c.next.Create(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedCatalog) Delete(ctx context.Context, id string) error {
	if err := c.next.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

// generation reports the current catalog generation. ok is false when Redis
// cannot tell, in which case nothing fetched may be cached.
func (c *CachedCatalog) generation(ctx context.Context) (gen int64, ok bool) {
	gen, err := c.client.Get(ctx, catalogGenKey).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		c.lg.Warn("Catalog generation read failed", zap.Error(err))
		return -1, false
	}
	return gen, true
}

// store caches list if the catalog is still at generation gen.
func (c *CachedCatalog) store(ctx context.Context, gen int64, list []product.Product) {
	data, err := json.Marshal(list)
	if err != nil {
		c.lg.Warn("Encode catalog for cache", zap.Error(err))
		return
	}
	jitter := time.Duration(rand.Int64N(int64(c.ttl/5) + 1))

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, catalogGenKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errCatalogChanged
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, catalogKey, data, c.ttl+jitter)
			return nil
		})
		return err
	}, catalogGenKey)
	switch {
	case err == nil:
	case errors.Is(err, errCatalogChanged), errors.Is(err, redis.TxFailedErr):
		c.lg.Debug("Catalog changed during fetch, not caching")
	default:
		c.lg.Warn("Catalog cache write failed", zap.Error(err))
	}
}

func (c *CachedCatalog) invalidate(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, catalogGenKey)
		pipe.Del(ctx, catalogKey)
		return nil
	})
	if err != nil {
		c.lg.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}
