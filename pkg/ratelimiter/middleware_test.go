package ratelimiter_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*ratelimiter.Result, error) {
	return nil, errors.New("redis down")
}

func (failingLimiter) Reset(context.Context, string) error { return nil }

func TestMiddleware(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	byRemote := func(r *http.Request) string { return r.RemoteAddr }

	t.Run("limits per key", func(t *testing.T) {
		t.Parallel()

		b, _ := newBucket(t, ratelimiter.Config{Capacity: 2, RefillRate: 1, RefillInterval: time.Hour})
		h := ratelimiter.Middleware(b, byRemote)(ok)

		codes := make([]int, 0, 3)
		for range 3 {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.RemoteAddr = "10.0.0.1:1000"
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)
			codes = append(codes, w.Code)
			assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
		}
		assert.Equal(t, []int{200, 200, 429}, codes)

		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.RemoteAddr = "10.0.0.2:1000"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("custom limited handler and retry header", func(t *testing.T) {
		t.Parallel()

		b, _ := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Hour})
		limited := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		})
		h := ratelimiter.Middleware(b, byRemote, ratelimiter.WithLimitedHandler(limited))(ok)

		for range 2 {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			if w.Code == http.StatusTeapot {
				assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
			}
		}
	})

	t.Run("empty key skips limiting", func(t *testing.T) {
		t.Parallel()

		h := ratelimiter.Middleware(failingLimiter{}, func(*http.Request) string { return "" })(ok)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("limiter failure", func(t *testing.T) {
		t.Parallel()

		var got error
		h := ratelimiter.Middleware(failingLimiter{}, byRemote,
			ratelimiter.WithErrorHandler(func(w http.ResponseWriter, _ *http.Request, err error) {
				got = err
				w.WriteHeader(http.StatusServiceUnavailable)
			}),
		)(ok)

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		require.Error(t, got)
	})
}

func TestComposite(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-User-ID", "u1")
	r.RemoteAddr = "1.2.3.4:5"

	user := func(r *http.Request) string { return r.Header.Get("X-User-ID") }
	ip := func(r *http.Request) string { return r.RemoteAddr }
	empty := func(*http.Request) string { return "" }

	assert.Equal(t, "u1", ratelimiter.Composite(user, empty)(r))
	assert.Equal(t, "u1:1.2.3.4:5", ratelimiter.Composite(user, ip)(r))
	assert.Equal(t, "", ratelimiter.Composite(empty)(r))

	long := func(*http.Request) string { return string(make([]byte, 100)) }
	key := ratelimiter.Composite(long)(r)
	assert.NotEmpty(t, key)
	assert.LessOrEqual(t, len(key), 13)
}
