package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether one more request for key fits in the current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a per-key fixed window counter. A key's window starts at
// its first request and is reset lazily on the first request after it ends.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

func NewMemoryLimiter(limit int, period time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.allow(key), nil
}

func (l *MemoryLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, exists := l.windows[key]
	if !exists || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.period)}
		return true
	}

	if w.count >= l.limit {
		return false
	}

	w.count++
	return true
}

// Cleanup drops every window that has already ended.
func (l *MemoryLimiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, w := range l.windows {
		if now.After(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

// RunCleanup calls Cleanup once per period until ctx is done.
func (l *MemoryLimiter) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Cleanup()
		}
	}
}

func (l *MemoryLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// GlobalLimiter caps the whole service with a token bucket, independent of key.
type GlobalLimiter struct {
	limiter *rate.Limiter
}

func NewGlobalLimiter(rps float64, burst int) *GlobalLimiter {
	return &GlobalLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

func (g *GlobalLimiter) Allow(_ context.Context, _ string) (bool, error) {
	return g.limiter.Allow(), nil
}

// Chain allows a request only when every limiter allows it. Limiters are
// consulted in order and evaluation stops at the first refusal.
type Chain []Limiter

func (c Chain) Allow(ctx context.Context, key string) (bool, error) {
	for _, l := range c {
		ok, err := l.Allow(ctx, key)
		if err != nil || !ok {
			return ok, err
		}
	}
	return true, nil
}
