// Package health serves liveness and readiness probes backed by periodic
// background checks.
//
// A check flips to unhealthy only after failureThreshold consecutive
// failures and back after successThreshold consecutive successes, so a
// single slow ping does not pull the service out of rotation.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc reports nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

// Option tunes a single check.
type Option func(*check)

// WithTimeout bounds each run of the check. Default is one second.
func WithTimeout(d time.Duration) Option {
	return func(c *check) { c.timeout = d }
}

// WithFailureThreshold sets how many consecutive failures mark the check
// unhealthy. Default is 3.
func WithFailureThreshold(n int) Option {
	return func(c *check) { c.failureThreshold = max(n, 1) }
}

// WithSuccessThreshold sets how many consecutive successes mark the check
// healthy again. Default is 1.
func WithSuccessThreshold(n int) Option {
	return func(c *check) { c.successThreshold = max(n, 1) }
}

type check struct {
	name             string
	timeout          time.Duration
	fn               CheckFunc
	failureThreshold int
	successThreshold int

	healthy atomic.Bool
	lastErr atomic.Pointer[error]
	lastRun atomic.Int64

	// Only touched by the goroutine running the check.
	fails     int
	successes int
}

func newCheck(name string, fn CheckFunc, opts []Option) *check {
	c := &check{
		name:             name,
		timeout:          time.Second,
		fn:               fn,
		failureThreshold: 3,
		successThreshold: 1,
	}
	for _, o := range opts {
		o(c)
	}
	c.healthy.Store(true)
	return c
}

func (c *check) run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(ctx)
	c.lastErr.Store(&err)
	c.lastRun.Store(time.Now().UnixNano())

	if err != nil {
		c.successes = 0
		c.fails++
		if c.fails >= c.failureThreshold {
			c.healthy.Store(false)
		}
		return
	}
	c.fails = 0
	c.successes++
	if c.successes >= c.successThreshold {
		c.healthy.Store(true)
	}
}

func (c *check) status() CheckStatus {
	s := CheckStatus{Name: c.name, Healthy: c.healthy.Load()}
	if p := c.lastErr.Load(); p != nil && *p != nil {
		s.Error = (*p).Error()
	}
	if ns := c.lastRun.Load(); ns != 0 {
		s.LastRun = time.Unix(0, ns).UTC()
	}
	return s
}

// CheckStatus is the current state of one check.
type CheckStatus struct {
	Name    string
	Healthy bool
	// Error is the last error seen, even if the check is still healthy.
	Error   string
	LastRun time.Time
}

// Report is the outcome of a probe.
type Report struct {
	Healthy bool
	// Reason is set when the report is unhealthy for a reason other than a
	// failing check.
	Reason string
	Checks []CheckStatus
}

// Health owns the registered checks and the manual readiness switch.
type Health struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New returns a Health that is not ready until SetReady(true).
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check that decides whether the process should
// be restarted.
func (h *Health) AddLivenessCheck(name string, fn CheckFunc, opts ...Option) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newCheck(name, fn, opts))
}

// AddReadinessCheck registers a check that decides whether the process
// should receive traffic.
func (h *Health) AddReadinessCheck(name string, fn CheckFunc, opts ...Option) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newCheck(name, fn, opts))
}

// Start runs every registered check immediately and then every interval
// until Stop or ctx cancellation.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	if h.cancel != nil {
		h.cancel()
	}
	h.cancel = cancel
	checks := append(append([]*check(nil), h.liveness...), h.readiness...)
	h.mu.Unlock()

	for _, c := range checks {
		go loop(ctx, c, interval)
	}
}

func loop(ctx context.Context, c *check, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.run(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.run(ctx)
		}
	}
}

// Stop halts background checks. It is safe to call more than once.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// SetReady flips the manual readiness switch.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

// Liveness reports the liveness checks.
func (h *Health) Liveness() Report {
	h.mu.RLock()
	checks := h.liveness
	h.mu.RUnlock()
	return report(checks)
}

// Readiness reports the readiness checks and the manual switch.
func (h *Health) Readiness() Report {
	h.mu.RLock()
	checks := h.readiness
	h.mu.RUnlock()

	r := report(checks)
	if !h.ready.Load() {
		r.Healthy = false
		r.Reason = "service is not ready"
	}
	return r
}

// IsReady reports whether the service should receive traffic.
func (h *Health) IsReady() bool {
	return h.Readiness().Healthy
}

func report(checks []*check) Report {
	r := Report{Healthy: true, Checks: make([]CheckStatus, 0, len(checks))}
	for _, c := range checks {
		s := c.status()
		if !s.Healthy {
			r.Healthy = false
		}
		r.Checks = append(r.Checks, s)
	}
	return r
}

// LiveEndpoint serves /livez.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, h.Liveness())
}

// ReadyEndpoint serves /readyz.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	writeReport(w, h.Readiness())
}

func writeReport(w http.ResponseWriter, r Report) {
	status := http.StatusOK
	if !r.Healthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(r.Encode())
}

// Encode renders the report as JSON.
func (r Report) Encode() []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	if r.Healthy {
		e.Str("ok")
	} else {
		e.Str("unhealthy")
	}
	if r.Reason != "" {
		e.FieldStart("reason")
		e.Str(r.Reason)
	}
	e.FieldStart("checks")
	e.ArrStart()
	for _, c := range r.Checks {
		e.ObjStart()
		e.FieldStart("name")
		e.Str(c.Name)
		e.FieldStart("healthy")
		e.Bool(c.Healthy)
		if c.Error != "" {
			e.FieldStart("error")
			e.Str(c.Error)
		}
		if !c.LastRun.IsZero() {
			e.FieldStart("lastRun")
			e.Str(c.LastRun.Format(time.RFC3339))
		}
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
	return e.Bytes()
}
