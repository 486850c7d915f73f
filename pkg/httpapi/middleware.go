package httpapi

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/clientip"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
)

type userIDContextKey struct{}

// userIDFrom returns the caller set by requireUser.
func userIDFrom(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(userIDContextKey{}).(uuid.UUID)
	return id
}

// requireUser reads the caller identity asserted by the front end. Requests
// without a valid user ID are rejected.
func (a *API) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(strings.TrimSpace(r.Header.Get(a.userHeader)))
		if err != nil || id == uuid.Nil {
			a.writeError(w, r, ErrUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDContextKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireToken checks the shared bearer token between the front end and this
// service. An empty token disables the check.
func (a *API) requireToken(next http.Handler) http.Handler {
	if a.apiToken == "" {
		return next
	}
	want := []byte(a.apiToken)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			a.writeError(w, r, ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// deviceMeta labels trusted sessions created during the request.
func deviceMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := trustedsession.WithMeta(r.Context(), trustedsession.Meta{
			UserAgent: r.UserAgent(),
			IP:        clientip.FromContext(r.Context()),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one line per request.
func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelWarn
		}
		a.log.Log(r.Context(), level, "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", ww.BytesWritten()),
			logger.ClientIP(clientip.FromContext(r.Context())),
			logger.Duration(time.Since(start)),
		)
	})
}

// clientIPKey buckets requests per client address.
func clientIPKey(r *http.Request) string {
	if ip := clientip.FromContext(r.Context()); ip != "" {
		return "ip:" + ip
	}
	return ""
}

func userKey(r *http.Request) string {
	if id := userIDFrom(r.Context()); id != uuid.Nil {
		return "user:" + id.String()
	}
	return ""
}

// codeAttemptKey buckets code submissions per client address and user, so one
// address cannot spread guesses across many accounts under a single budget
// and one account cannot be locked out from a single address.
var codeAttemptKey = ratelimiter.Composite(clientIPKey, userKey)
