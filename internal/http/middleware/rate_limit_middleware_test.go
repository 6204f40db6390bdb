package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockLimiter struct {
	allow bool
	retry time.Duration
	err   error
}

func (m mockLimiter) Allow(context.Context, string, int, time.Duration) (bool, time.Duration, error) {
	return m.allow, m.retry, m.err
}

type recordingLimiter struct {
	lastKey string
	allow   bool
}

func (r *recordingLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, time.Duration, error) {
	r.lastKey = key
	return r.allow, 0, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestDistributedRateLimiterFailOpenOnBackendError(t *testing.T) {
	rl := NewDistributedRateLimiter(mockLimiter{err: errors.New("redis down")}, 10, time.Minute, FailOpen, "api")
	h := rl.Middleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected fail-open to allow request, got %d", rr.Code)
	}
}

func TestDistributedRateLimiterFailClosedOnBackendError(t *testing.T) {
	rl := NewDistributedRateLimiter(mockLimiter{err: errors.New("redis down")}, 10, time.Minute, FailClosed, "api")
	h := rl.Middleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected fail-closed to reject request, got %d", rr.Code)
	}
}

func TestDistributedRateLimiterDeniedSetsRetryAfter(t *testing.T) {
	rl := NewDistributedRateLimiter(mockLimiter{allow: false, retry: 5 * time.Second}, 1, time.Minute, FailClosed, "api")
	h := rl.Middleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "5" {
		t.Fatalf("expected Retry-After=5, got %q", got)
	}
}

func TestRateLimiterKeysByAuthenticatedUserThenIP(t *testing.T) {
	limiter := &recordingLimiter{allow: true}
	rl := NewDistributedRateLimiter(limiter, 10, time.Minute, FailClosed, "api")
	h := rl.Middleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.9:2222"
	req = req.WithContext(WithSession(req.Context(), 42, "sess"))
	h.ServeHTTP(httptest.NewRecorder(), req)
	if limiter.lastKey != "user:42" {
		t.Fatalf("expected user key, got %q", limiter.lastKey)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.9:2222"
	h.ServeHTTP(httptest.NewRecorder(), req)
	if limiter.lastKey != "10.0.0.9" {
		t.Fatalf("expected ip fallback key, got %q", limiter.lastKey)
	}
}

func TestRateLimiterIgnoresUnauthenticatedUserHeader(t *testing.T) {
	limiter := &recordingLimiter{allow: true}
	rl := NewDistributedRateLimiter(limiter, 10, time.Minute, FailClosed, "api")
	h := rl.Middleware()(okHandler())

	// Without a validated session, a client-chosen id must not pick the
	// bucket; rotating it would mint fresh budgets.
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.RemoteAddr = "10.0.0.9:2222"
	req.Header.Set("X-User-Id", "42")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if limiter.lastKey != "10.0.0.9" {
		t.Fatalf("expected ip key for unauthenticated request, got %q", limiter.lastKey)
	}
}

func TestRateLimiterHonorsBypass(t *testing.T) {
	limiter := &recordingLimiter{allow: false}
	rl := NewDistributedRateLimiter(limiter, 1, time.Minute, FailClosed, "api").
		WithBypass(func(r *http.Request) (bool, string) { return r.URL.Path == "/healthz", "probe" })
	h := rl.Middleware()(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("bypassed probe should pass, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/messages", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("non-bypassed path should be throttled, got %d", rr.Code)
	}
}

func TestLocalFixedWindowLimiter(t *testing.T) {
	limiter := NewLocalFixedWindowLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, _, err := limiter.Allow(ctx, "k", 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow() error = %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	allowed, retryAfter, err := limiter.Allow(ctx, "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("Allow() error = %v", err)
	}
	if allowed {
		t.Fatal("4th request in window should be denied")
	}
	if retryAfter <= 0 {
		t.Fatalf("expected positive retry-after, got %v", retryAfter)
	}

	// A different key has its own window.
	if allowed, _, _ := limiter.Allow(ctx, "other", 3, time.Minute); !allowed {
		t.Fatal("separate key must not share the window")
	}
}
