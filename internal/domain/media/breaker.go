package media

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// BreakerSettings configures WithBreaker.
type BreakerSettings struct {
	Name string
	// MaxFailures consecutive failures open the breaker.
	MaxFailures uint32
	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
}

// BreakerStore fails fast while the wrapped store keeps failing.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker[*Asset]
}

var _ Store = (*BreakerStore)(nil)

// WithBreaker wraps next with a circuit breaker shared by uploads and deletes.
// Cancelled requests do not count as failures.
func WithBreaker(next Store, s BreakerSettings, lg *zap.Logger) *BreakerStore {
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}
	if s.Name == "" {
		s.Name = "media"
	}
	cb := gobreaker.NewCircuitBreaker[*Asset](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			lg.Warn("Media breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerStore{next: next, cb: cb}
}

func (b *BreakerStore) Upload(ctx context.Context, name string, data []byte, opts Options) (*Asset, error) {
	return b.cb.Execute(func() (*Asset, error) {
		return b.next.Upload(ctx, name, data, opts)
	})
}

func (b *BreakerStore) Delete(ctx context.Context, id string) error {
	_, err := b.cb.Execute(func() (*Asset, error) {
		return nil, b.next.Delete(ctx, id)
	})
	return err
}

// State returns the breaker state name.
func (b *BreakerStore) State() string {
	return b.cb.State().String()
}
