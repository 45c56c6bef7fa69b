package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orgball2608/fb-post-manager/internal/domain"
	"github.com/orgball2608/fb-post-manager/internal/session"
	"github.com/orgball2608/fb-post-manager/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func failWithStatus(w http.ResponseWriter, _ *http.Request, err error) {
	http.Error(w, err.Error(), errors.HTTPStatus(err))
}

func TestInMemoryLimiterBurstPerKey(t *testing.T) {
	l := NewInMemoryLimiter(1, time.Hour, 2)

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys have separate buckets")
	assert.Equal(t, 2, l.Len())

	l.Forget("a")
	assert.Equal(t, 1, l.Len())
	assert.True(t, l.Allow("a"))
}

func TestInMemoryLimiterSweepsIdleBuckets(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	l := NewInMemoryLimiter(1, time.Minute, 1)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	assert.True(t, l.Allow("old"))
	assert.False(t, l.Allow("old"))

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("recent"))
	assert.Equal(t, 2, l.Len())

	now = now.Add(40 * time.Second)
	assert.True(t, l.Allow("new"))
	assert.Equal(t, 2, l.Len(), "bucket idle for a full refill is dropped")

	now = now.Add(time.Hour)
	assert.True(t, l.Allow("last"))
	assert.Equal(t, 1, l.Len())
}

func TestInMemoryLimiterStaysBoundedUnderChurn(t *testing.T) {
	now := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	l := NewInMemoryLimiter(5, time.Minute, 3)
	l.now = func() time.Time { return now }
	l.lastSweep = now

	for i := 0; i < 10000; i++ {
		now = now.Add(time.Second)
		l.Allow(time.Duration(i).String())
	}
	// Sweeps run every 36s idle window, so at most two windows of one-shot keys are held.
	assert.LessOrEqual(t, l.Len(), 80)
}

func withSession(req *http.Request, s *domain.Session) *http.Request {
	return req.WithContext(session.WithSession(req.Context(), s))
}

func TestMiddlewareLimitsPostsOnly(t *testing.T) {
	l := NewInMemoryLimiter(1, time.Hour, 1)
	h := Middleware(l, failWithStatus)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(method string) *httptest.ResponseRecorder {
		req := withSession(httptest.NewRequest(method, "/manage/create_status_post", nil), &domain.Session{ID: "sid", PageID: "123"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost).Code)
	limited := do(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "60", limited.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusNoContent, do(http.MethodGet).Code)
}

func TestMiddlewareSkipsSessionsWithoutPage(t *testing.T) {
	l := NewInMemoryLimiter(1, time.Hour, 1)
	h := Middleware(l, failWithStatus)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	for i := 0; i < 100; i++ {
		req := withSession(httptest.NewRequest(http.MethodPost, "/manage/create_status_post", nil),
			&domain.Session{ID: time.Duration(i).String()})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/manage/create_status_post", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Zero(t, l.Len())
}
