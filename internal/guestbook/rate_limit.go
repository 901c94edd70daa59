package guestbook

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"guestbook/internal/observability"
)

const maxTrackedClients = 5000

// PostRateLimiter caps how many messages one client may post per window.
// State lives in process memory, so each instance counts on its own.
type PostRateLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	clients map[string]*clientWindow
	now     func() time.Time

	// trustProxy keys clients by X-Forwarded-For instead of the peer address.
	trustProxy bool
}

// clientWindow holds a client's accepted posts, oldest first.
type clientWindow struct {
	posts []time.Time
}

func (c *clientWindow) expire(cutoff time.Time) {
	n := 0
	for n < len(c.posts) && !c.posts[n].After(cutoff) {
		n++
	}
	c.posts = c.posts[n:]
}

func NewPostRateLimiter(limit int, window time.Duration, trustProxy bool) *PostRateLimiter {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}

	return &PostRateLimiter{
		limit:   limit,
		window:  window,
		clients: make(map[string]*clientWindow),
		now:     time.Now,

		trustProxy: trustProxy,
	}
}

func (l *PostRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wait, ok := l.allow(l.clientKey(r)); !ok {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			writeError(w, http.StatusTooManyRequests, "too many messages, slow down")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (l *PostRateLimiter) clientKey(r *http.Request) string {
	if l.trustProxy {
		return observability.ClientIP(r)
	}
	return observability.PeerIP(r)
}

// allow records a post for client when it fits in the window. Otherwise it
// reports how long until the oldest post in the window expires.
func (l *PostRateLimiter) allow(client string) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	cw, ok := l.clients[client]
	if !ok {
		if len(l.clients) >= maxTrackedClients {
			l.forgetIdle(cutoff)
		}
		cw = &clientWindow{}
		l.clients[client] = cw
	}

	cw.expire(cutoff)
	if len(cw.posts) >= l.limit {
		return max(cw.posts[0].Sub(cutoff), time.Second), false
	}

	cw.posts = append(cw.posts, now)
	return 0, true
}

func (l *PostRateLimiter) forgetIdle(cutoff time.Time) {
	for client, cw := range l.clients {
		cw.expire(cutoff)
		if len(cw.posts) == 0 {
			delete(l.clients, client)
		}
	}
}
