package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/clientip"
	"github.com/dmitrymomot/twofactor/pkg/httpserver"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/requestid"
	"github.com/dmitrymomot/twofactor/pkg/totp"
	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// Config holds HTTP API settings.
type Config struct {
	// APIToken is the shared secret the front end presents as a bearer token.
	APIToken       string        `env:"TFA_API_TOKEN"`
	UserHeader     string        `env:"TFA_USER_HEADER" envDefault:"X-User-ID"`
	SessionHeader  string        `env:"TFA_SESSION_HEADER" envDefault:"X-Trusted-Session"`
	TrustedHeaders []string      `env:"TFA_TRUSTED_IP_HEADERS" envSeparator:","`
	MaxBodyBytes   int64         `env:"TFA_MAX_BODY_BYTES" envDefault:"65536"`
	ReadyTimeout   time.Duration `env:"TFA_READY_TIMEOUT" envDefault:"3s"`
}

// Service is the set of second-factor operations the API exposes.
// *twofactor.Coordinator implements it.
type Service interface {
	BeginSetup(ctx context.Context, userID uuid.UUID, accountLabel string) (*twofactor.Setup, error)
	ConfirmSetup(ctx context.Context, userID uuid.UUID, secret totp.Secret, code string) (bool, error)
	Challenge(ctx context.Context, userID uuid.UUID, ch twofactor.Challenge, trustDevice bool) (*twofactor.ChallengeResult, error)
	Disable(ctx context.Context, userID uuid.UUID) error
	RegenerateBackupCodes(ctx context.Context, userID uuid.UUID, count int) ([]string, error)
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int, error)
	ListSessions(ctx context.Context, userID uuid.UUID) ([]trustedsession.Session, error)
	VerifySession(ctx context.Context, token string) (*trustedsession.Verification, error)
	Status(ctx context.Context, userID uuid.UUID) (*twofactor.StatusInfo, error)
}

// API serves the second-factor operations as JSON over HTTP.
type API struct {
	svc          Service
	log          *slog.Logger
	transport    *trustedsession.HeaderTransport
	resolver     *clientip.Resolver
	ipLimiter    ratelimiter.RateLimiter
	codeLimiter  ratelimiter.RateLimiter
	metrics      http.Handler
	checks       map[string]httpserver.Check
	userHeader   string
	apiToken     string
	maxBodyBytes int64
	readyTimeout time.Duration
}

// Option configures the API.
type Option func(*API)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *API) {
		if l != nil {
			a.log = l
		}
	}
}

// WithIPLimiter throttles the 2FA routes per client IP.
func WithIPLimiter(l ratelimiter.RateLimiter) Option {
	return func(a *API) { a.ipLimiter = l }
}

// WithCodeLimiter throttles code submissions (setup confirmation and
// challenges) per client IP and user pair, on top of the coordinator's
// per-user budget.
func WithCodeLimiter(l ratelimiter.RateLimiter) Option {
	return func(a *API) { a.codeLimiter = l }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(a *API) { a.metrics = h }
}

// WithReadinessCheck adds a dependency probe to /health/ready.
func WithReadinessCheck(name string, check httpserver.Check) Option {
	return func(a *API) {
		if a.checks == nil {
			a.checks = make(map[string]httpserver.Check)
		}
		a.checks[name] = check
	}
}

// New creates the API.
func New(svc Service, cfg Config, opts ...Option) *API {
	a := &API{
		svc:          svc,
		log:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		transport:    trustedsession.NewHeaderTransport(cfg.SessionHeader),
		resolver:     clientip.New(cfg.TrustedHeaders...),
		userHeader:   cfg.UserHeader,
		apiToken:     cfg.APIToken,
		maxBodyBytes: cfg.MaxBodyBytes,
		readyTimeout: cfg.ReadyTimeout,
	}
	if a.userHeader == "" {
		a.userHeader = "X-User-ID"
	}
	if a.readyTimeout <= 0 {
		a.readyTimeout = 3 * time.Second
	}
	for _, opt := range opts {
		opt(a)
	}
	a.log = a.log.With(logger.Component("httpapi"))
	return a
}

// Handler builds the router.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		requestid.Middleware,
		a.resolver.Middleware,
		a.requestLogger,
		middleware.Recoverer,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, r, ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		a.writeError(w, r, ErrMethodNotAllowed)
	})

	r.Get("/health/live", httpserver.Liveness())
	r.Get("/health/ready", httpserver.Readiness(a.log, a.readyTimeout, a.checks))
	if a.metrics != nil {
		r.Handle("/metrics", a.metrics)
	}

	r.Route("/2fa", func(r chi.Router) {
		r.Use(a.requireToken)
		if a.ipLimiter != nil {
			r.Use(a.limit(a.ipLimiter, clientIPKey))
		}
		r.Use(deviceMeta)

		// Token checks come from the relying service and carry no user header.
		r.Post("/sessions/verify", wrap(a, a.verifySession, optionalBody()))

		r.Group(func(r chi.Router) {
			r.Use(a.requireUser)

			r.Post("/setup", wrap(a, a.beginSetup, optionalBody()))

			codes := r
			if a.codeLimiter != nil {
				codes = r.With(a.limit(a.codeLimiter, codeAttemptKey))
			}
			codes.Post("/setup/confirm", wrap(a, a.confirmSetup))
			codes.Post("/challenge", wrap(a, a.challenge))

			r.Post("/disable", wrap(a, a.disable, noBody()))
			r.Post("/backup-codes", wrap(a, a.regenerateBackupCodes, optionalBody()))
			r.Get("/sessions", wrap(a, a.listSessions, noBody()))
			r.Delete("/sessions", wrap(a, a.revokeSessions, noBody()))
			r.Get("/status", wrap(a, a.status, noBody()))
		})
	})

	return r
}

// limit answers throttled requests and limiter faults in the API envelope.
func (a *API) limit(l ratelimiter.RateLimiter, key ratelimiter.KeyFunc) func(http.Handler) http.Handler {
	return ratelimiter.Middleware(l, key,
		ratelimiter.WithLimitedHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.writeError(w, r, ErrTooManyRequests)
		})),
		ratelimiter.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			a.writeError(w, r, err)
		}),
	)
}
