package guestbook

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type manualClock struct {
	at time.Time
}

func (c *manualClock) now() time.Time { return c.at }

func newLimiterAt(limit int, window time.Duration, clock *manualClock) *PostRateLimiter {
	limiter := NewPostRateLimiter(limit, window, false)
	limiter.now = clock.now
	return limiter
}

func TestPostRateLimiter_Allow(t *testing.T) {
	clock := &manualClock{at: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	start := clock.at
	limiter := newLimiterAt(2, time.Minute, clock)

	_, ok := limiter.allow("198.51.100.1")
	assert.True(t, ok)

	clock.at = start.Add(10 * time.Second)
	_, ok = limiter.allow("198.51.100.1")
	assert.True(t, ok)

	clock.at = start.Add(20 * time.Second)
	wait, ok := limiter.allow("198.51.100.1")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, wait)

	_, ok = limiter.allow("198.51.100.2")
	assert.True(t, ok, "other clients keep their own window")

	clock.at = start.Add(61 * time.Second)
	_, ok = limiter.allow("198.51.100.1")
	assert.True(t, ok, "oldest post left the window")

	_, ok = limiter.allow("198.51.100.1")
	assert.False(t, ok, "rejected posts are not counted, accepted ones are")
}

func TestPostRateLimiter_MinimumWait(t *testing.T) {
	clock := &manualClock{at: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	start := clock.at
	limiter := newLimiterAt(1, time.Minute, clock)

	_, ok := limiter.allow("c")
	assert.True(t, ok)

	clock.at = start.Add(time.Minute - 100*time.Millisecond)
	wait, ok := limiter.allow("c")
	assert.False(t, ok)
	assert.Equal(t, time.Second, wait)
}

func TestPostRateLimiter_ForgetsIdleClients(t *testing.T) {
	clock := &manualClock{at: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	limiter := newLimiterAt(1, time.Minute, clock)

	for i := 0; i < maxTrackedClients; i++ {
		limiter.allow(fmt.Sprintf("client-%d", i))
	}
	assert.Len(t, limiter.clients, maxTrackedClients)

	clock.at = clock.at.Add(2 * time.Minute)
	_, ok := limiter.allow("newcomer")
	assert.True(t, ok)
	assert.Len(t, limiter.clients, 1)
}

func TestPostRateLimiter_Middleware(t *testing.T) {
	limiter := NewPostRateLimiter(1, time.Minute, true)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.9")
		return req
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, newReq())
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, newReq())
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"too many messages, slow down"}`, rec.Body.String())
}

func TestPostRateLimiter_IgnoresForwardedForByDefault(t *testing.T) {
	limiter := NewPostRateLimiter(2, time.Minute, false)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	accepted := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/messages", nil)
		req.RemoteAddr = "192.0.2.10:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			accepted++
		}
	}

	assert.Equal(t, 2, accepted)
	assert.Len(t, limiter.clients, 1)
}

func TestNewPostRateLimiter_Defaults(t *testing.T) {
	limiter := NewPostRateLimiter(0, 0, false)
	assert.Equal(t, 30, limiter.limit)
	assert.Equal(t, time.Minute, limiter.window)
}
