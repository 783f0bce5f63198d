package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountCheck fails when the process runs more than threshold
// goroutines.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(_ context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}

// StateCheck fails while state() returns bad, e.g. an open circuit breaker.
func StateCheck(state func() string, bad string) CheckFunc {
	return func(_ context.Context) error {
		if s := state(); s == bad {
			return errors.Errorf("state is %s", s)
		}
		return nil
	}
}
