package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/twofactor/pkg/httpapi"
	"github.com/dmitrymomot/twofactor/pkg/httpserver"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/pg"
	"github.com/dmitrymomot/twofactor/pkg/pgstore"
	"github.com/dmitrymomot/twofactor/pkg/ratelimiter"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

type serveConfig struct {
	Service serviceConfig

	HTTP    httpserver.Config
	API     httpapi.Config
	IPLimit ratelimiter.Config `envPrefix:"TFA_IP_LIMIT_"`
	// CodeLimit applies per client IP and user to code submissions.
	CodeLimit ratelimiter.Config `envPrefix:"TFA_CODE_LIMIT_"`
	Janitor twofactor.JanitorConfig

	JanitorEnabled bool `env:"TFA_JANITOR_ENABLED" envDefault:"true"`
	AutoMigrate    bool `env:"PG_AUTO_MIGRATE" envDefault:"false"`
}

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API and, unless TFA_JANITOR_ENABLED=false, the background
janitor that sweeps expired trusted sessions and finishes interrupted
disables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig[serveConfig](root)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg serveConfig) error {
	log := newLogger(cfg.Service.Base)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	d, err := buildDeps(ctx, cfg.Service, log, reg)
	if err != nil {
		return err
	}
	defer d.Close()

	if cfg.AutoMigrate && d.pool != nil {
		if err := pg.Migrate(ctx, d.pool, pgstore.Migrations(), cfg.Service.PG.MigrationsTable, log); err != nil {
			return err
		}
	}

	ipLimiter, err := ratelimiter.NewBucket(d.newLimiterStore("ip", cfg.Service.Redis.KeyPrefix), cfg.IPLimit)
	if err != nil {
		return err
	}

	codeLimiter, err := ratelimiter.NewBucket(d.newLimiterStore("code", cfg.Service.Redis.KeyPrefix), cfg.CodeLimit)
	if err != nil {
		return err
	}

	apiOpts := []httpapi.Option{
		httpapi.WithLogger(log),
		httpapi.WithIPLimiter(ipLimiter),
		httpapi.WithCodeLimiter(codeLimiter),
		httpapi.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	}
	for name, check := range d.checks {
		apiOpts = append(apiOpts, httpapi.WithReadinessCheck(name, check))
	}
	api := httpapi.New(d.coordinator, cfg.API, apiOpts...)

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, api.Handler())
	})
	if cfg.JanitorEnabled {
		janitor := twofactor.NewJanitor(d.coordinator, cfg.Janitor, twofactor.WithJanitorLogger(log))
		g.Go(func() error {
			return janitor.Run(ctx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.ErrorContext(ctx, "service stopped with error", logger.Error(err))
		return err
	}
	log.InfoContext(ctx, "service stopped", slog.String("service", serviceName))
	return nil
}
