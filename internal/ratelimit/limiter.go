// Package ratelimit implements the fixed-window per-client admission
// limiter guarding the analysis entry point. State is process-wide and
// intentionally lost on restart (fail-open).
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Defaults match the public deployment: 20 analyses per client per hour.
const (
	DefaultQuota         = 20
	DefaultWindow        = time.Hour
	DefaultSweepInterval = 10 * time.Minute
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// record tracks one client's window. Replaced wholesale once expired.
type record struct {
	count   int
	resetAt time.Time
}

// Limiter is a fixed-window counter keyed by client identity. The
// check-and-increment is atomic per call, so two concurrent requests can
// never both be admitted past the quota boundary.
type Limiter struct {
	mu      sync.Mutex
	records map[string]*record

	quota  int
	window time.Duration
	now    func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithQuota overrides the admitted-requests-per-window quota.
func WithQuota(quota int) Option {
	return func(l *Limiter) { l.quota = quota }
}

// WithWindow overrides the window length.
func WithWindow(window time.Duration) Option {
	return func(l *Limiter) { l.window = window }
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter with the given options.
func New(opts ...Option) *Limiter {
	l := &Limiter{
		records: make(map[string]*record),
		quota:   DefaultQuota,
		window:  DefaultWindow,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit decides whether the client identified by key may run one analysis.
// A fresh or expired window admits with count reset to 1; a full window
// rejects without incrementing.
func (l *Limiter) Admit(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	rec, ok := l.records[key]
	if !ok || now.After(rec.resetAt) {
		l.records[key] = &record{count: 1, resetAt: now.Add(l.window)}
		return Decision{Allowed: true, Remaining: l.quota - 1, ResetIn: l.window}
	}

	if rec.count >= l.quota {
		return Decision{Allowed: false, Remaining: 0, ResetIn: rec.resetAt.Sub(now)}
	}

	rec.count++
	return Decision{
		Allowed:   true,
		Remaining: l.quota - rec.count,
		ResetIn:   rec.resetAt.Sub(now),
	}
}

// Sweep removes expired records and returns how many were evicted. The
// window map otherwise only prunes a key lazily on that key's next
// request, which would grow without bound under rotating client keys.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	evicted := 0
	for key, rec := range l.records {
		if now.After(rec.resetAt) {
			delete(l.records, key)
			evicted++
		}
	}
	return evicted
}

// Run sweeps expired records at the given interval until ctx is done.
func (l *Limiter) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Size reports the current number of tracked client windows.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
