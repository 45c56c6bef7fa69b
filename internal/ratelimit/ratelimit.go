package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/orgball2608/fb-post-manager/internal/session"
	"github.com/orgball2608/fb-post-manager/pkg/config"
	"github.com/orgball2608/fb-post-manager/pkg/errors"
	"golang.org/x/time/rate"
)

// Limiter decides whether the holder of key may act now.
type Limiter interface {
	Allow(key string) bool
	// Forget drops the state kept for key, e.g. when its session ends.
	Forget(key string)
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// InMemoryLimiter keeps one token bucket per key.
// A bucket left alone long enough to refill completely is indistinguishable from a new one,
// so such buckets are swept.
type InMemoryLimiter struct {
	buckets   map[string]*bucket
	mu        sync.Mutex
	r         rate.Limit
	b         int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewInMemoryLimiter allows `requests` actions per `per`, with bursts up to `burst`.
// NewInMemoryLimiter(5, time.Minute, 3) -> one action every 12 seconds, three in a row.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	if requests <= 0 {
		requests = 1
	}
	if burst <= 0 {
		burst = 1
	}
	interval := per / time.Duration(requests)
	return &InMemoryLimiter{
		buckets:   make(map[string]*bucket),
		r:         rate.Every(interval),
		b:         burst,
		idle:      interval * time.Duration(burst),
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func New(cfg *config.Config) *InMemoryLimiter {
	return NewInMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Per, cfg.RateLimit.Burst)
}

func (l *InMemoryLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}

	b, exists := l.buckets[key]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(l.r, l.b)}
		l.buckets[key] = b
	}
	b.lastSeen = now

	return b.limiter.AllowN(now, 1)
}

func (l *InMemoryLimiter) Forget(key string) {
	l.mu.Lock()
	delete(l.buckets, key)
	l.mu.Unlock()
}

// Len reports how many keys currently hold a bucket.
func (l *InMemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// sweep drops buckets idle for at least a full refill. Callers hold mu.
func (l *InMemoryLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) >= l.idle {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}

// Middleware limits POST requests of sessions that have a page selected, the only ones able to publish.
// Other requests pass through without creating a bucket. It must run after the session middleware.
// Rejections go to fail with errors.ErrTooManyRequests.
func Middleware(l Limiter, fail func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			s, err := session.FromContext(r.Context())
			if err != nil || s.PageID == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !l.Allow(s.ID) {
				w.Header().Set("Retry-After", "60")
				fail(w, r, errors.Wrap(errors.ErrTooManyRequests, "Too many posts, please wait a minute."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
