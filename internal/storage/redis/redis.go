// Package redis keeps session carts and the cached product list in Redis.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"

	"github.com/IhossainpHero/Arboom-bd/internal/domain/cart"
)

// NewClient parses a redis:// URL and verifies the server responds.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return client, nil
}

// CartStore hands out one cart.Store per cart ID.
type CartStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartStore returns a CartStore whose entries expire ttl after the last
// write. A zero ttl keeps carts forever.
func NewCartStore(client *redis.Client, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

// For returns the store for the given cart ID.
func (s *CartStore) For(cartID string) cart.Store {
	return &cartSlot{client: s.client, key: cartKey(cartID), ttl: s.ttl}
}

type cartSlot struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func (s *cartSlot) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrNoCart
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get")
	}
	return data, nil
}

func (s *cartSlot) Save(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func cartKey(cartID string) string {
	return fmt.Sprintf("cart:%s", cartID)
}
