package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(limit int) (*MemoryLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter(limit, time.Minute)
	l.now = clock.now
	return l, clock
}

func TestMemoryLimiterWindow(t *testing.T) {
	l, clock := newTestLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
		t.Error("Expected fourth request in the window to be refused")
	}
	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Error("Expected a different key to have its own window")
	}

	clock.t = clock.t.Add(time.Minute + time.Millisecond)
	if ok, _ := l.Allow(ctx, "1.2.3.4"); !ok {
		t.Error("Expected the window to reset after it ends")
	}
}

func TestMemoryLimiterCleanup(t *testing.T) {
	l, clock := newTestLimiter(1)
	ctx := context.Background()

	l.Allow(ctx, "a")
	l.Allow(ctx, "b")
	clock.t = clock.t.Add(30 * time.Second)
	l.Allow(ctx, "c")

	clock.t = clock.t.Add(31 * time.Second)
	l.Cleanup()

	if got := l.size(); got != 1 {
		t.Errorf("Expected only the live window to remain, got %d", got)
	}
}

func TestGlobalLimiterBurst(t *testing.T) {
	g := NewGlobalLimiter(0.001, 2)
	ctx := context.Background()

	allowed := 0
	for i := 0; i < 5; i++ {
		if ok, _ := g.Allow(ctx, "any"); ok {
			allowed++
		}
	}
	if allowed != 2 {
		t.Errorf("Expected exactly the burst to pass, got %d", allowed)
	}
}

type staticLimiter struct {
	allow bool
	err   error
	calls int
}

func (s *staticLimiter) Allow(context.Context, string) (bool, error) {
	s.calls++
	return s.allow, s.err
}

func TestChain(t *testing.T) {
	boom := errors.New("boom")

	testCases := []struct {
		name      string
		first     *staticLimiter
		second    *staticLimiter
		expected  bool
		expectErr bool
		secondRun bool
	}{
		{"both allow", &staticLimiter{allow: true}, &staticLimiter{allow: true}, true, false, true},
		{"first refuses", &staticLimiter{allow: false}, &staticLimiter{allow: true}, false, false, false},
		{"second refuses", &staticLimiter{allow: true}, &staticLimiter{allow: false}, false, false, true},
		{"first errors", &staticLimiter{err: boom}, &staticLimiter{allow: true}, false, true, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := Chain{tc.first, tc.second}.Allow(context.Background(), "k")
			if ok != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, ok)
			}
			if (err != nil) != tc.expectErr {
				t.Errorf("Expected error %v, got %v", tc.expectErr, err)
			}
			if (tc.second.calls > 0) != tc.secondRun {
				t.Errorf("Expected second limiter consulted=%v, got %d calls", tc.secondRun, tc.second.calls)
			}
		})
	}
}

func TestRedisLimiterFallsBackWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	l := NewRedisLimiter(client, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		if err != nil || !ok {
			t.Fatalf("Expected fallback to allow request %d, got %v / %v", i+1, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "1.2.3.4"); ok {
		t.Error("Expected fallback counter to enforce the limit")
	}
}

func TestRedisWindowKey(t *testing.T) {
	l := NewRedisLimiter(nil, 10, time.Minute)
	l.now = func() time.Time { return time.Unix(120, 0) }

	if got := l.windowKey("1.2.3.4"); got != "ytmp3:ratelimit:1.2.3.4:2" {
		t.Errorf("Unexpected window key %q", got)
	}
}
