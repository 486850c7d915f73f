package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/twofactor/pkg/backupcode"
	"github.com/dmitrymomot/twofactor/pkg/email"
	"github.com/dmitrymomot/twofactor/pkg/httpserver"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/pg"
	"github.com/dmitrymomot/twofactor/pkg/pgstore"
	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/redis"
	"github.com/dmitrymomot/twofactor/pkg/secrets"
	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// serviceConfig is everything needed to build a Coordinator.
type serviceConfig struct {
	Base baseConfig

	PG        pg.Config
	Redis     redis.Config
	Secrets   secrets.Config
	TwoFactor twofactor.Config
	Sessions  trustedsession.Config
	Email     email.Config

	// ContactQuery returns the notification address for the user ID in $1.
	ContactQuery string `env:"TFA_CONTACT_QUERY"`
}

// deps holds the wired service and the resources to release on shutdown.
type deps struct {
	coordinator *twofactor.Coordinator
	pool        *pgxpool.Pool
	redis       *goredis.Client
	checks      map[string]httpserver.Check
	closers     []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// newLimiterStore picks Redis when configured so that several replicas share
// one attempt budget.
func (d *deps) newLimiterStore(name string, redisPrefix string) ratelimiter.Store {
	if d.redis != nil {
		return ratelimiter.NewRedisStore(d.redis, redisPrefix+":"+name+":")
	}
	store := ratelimiter.NewMemoryStore()
	d.closers = append(d.closers, store.Close)
	return store
}

func buildDeps(ctx context.Context, cfg serviceConfig, log *slog.Logger, reg prometheus.Registerer) (_ *deps, err error) {
	d := &deps{checks: make(map[string]httpserver.Check)}
	defer func() {
		if err != nil {
			d.Close()
		}
	}()

	sealer, err := secrets.NewSealerFromConfig(cfg.Secrets)
	if err != nil {
		return nil, err
	}

	var (
		users        twofactor.UserStore
		codeStore    backupcode.Store
		sessionStore trustedsession.Store
	)

	if cfg.PG.Enabled() {
		d.pool, err = pg.Connect(ctx, cfg.PG)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, d.pool.Close)
		d.checks["postgres"] = pg.Healthcheck(d.pool)

		users = pgstore.NewUserStore(d.pool)
		codeStore = pgstore.NewBackupCodeStore(d.pool)
		sessionStore = pgstore.NewSessionStore(d.pool)
	} else {
		log.WarnContext(ctx, "PG_CONN_URL is not set, state is kept in memory and lost on restart",
			logger.Component("wire"),
		)
		users = twofactor.NewMemoryUserStore()
		codeStore = backupcode.NewMemoryStore()
		sessionStore = trustedsession.NewMemoryStore()
	}

	if cfg.Redis.Enabled() {
		d.redis, err = redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, func() { _ = d.redis.Close() })
		d.checks["redis"] = redis.Healthcheck(d.redis)

		sessionStore = trustedsession.NewRedisStore(d.redis,
			trustedsession.WithKeyPrefix(cfg.Redis.KeyPrefix+":trusted"),
			trustedsession.WithRedisLogger(log),
		)
	}

	attempts, err := ratelimiter.NewBucket(d.newLimiterStore("attempts", cfg.Redis.KeyPrefix), cfg.TwoFactor.UserLimit)
	if err != nil {
		return nil, err
	}

	codes := backupcode.NewManager(codeStore,
		backupcode.WithHasher(backupcode.KeyedHasher{Sealer: sealer}),
		backupcode.WithLogger(log),
	)
	sessions := trustedsession.NewFromConfig(cfg.Sessions,
		trustedsession.WithStore(sessionStore),
		trustedsession.WithLogger(log),
	)

	opts := []twofactor.Option{
		twofactor.WithLimiter(attempts),
		twofactor.WithMetrics(twofactor.NewMetrics(reg)),
		twofactor.WithLogger(log),
	}
	if notifier, err := buildNotifier(cfg, d.pool); err != nil {
		return nil, err
	} else if notifier != nil {
		opts = append(opts, twofactor.WithNotifier(notifier))
	} else {
		log.InfoContext(ctx, "security notifications disabled, no contact directory",
			logger.Component("wire"),
		)
	}

	d.coordinator, err = twofactor.NewFromConfig(cfg.TwoFactor, users, sealer, codes, sessions, opts...)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// buildNotifier returns nil when there is no database to look addresses up in.
func buildNotifier(cfg serviceConfig, pool *pgxpool.Pool) (twofactor.Notifier, error) {
	if pool == nil {
		return nil, nil
	}

	var sender email.EmailSender
	if cfg.Email.UsePostmark() {
		s, err := email.NewPostmarkClient(cfg.Email)
		if err != nil {
			return nil, errors.Join(email.ErrInvalidConfig, err)
		}
		sender = s
	} else {
		sender = email.NewDevSender(cfg.Email.DevDir)
	}

	directory := pgstore.NewContactDirectory(pool, cfg.ContactQuery)
	return email.NewNotifier(sender, directory, cfg.Email.ProductName), nil
}
