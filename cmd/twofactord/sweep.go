package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

type sweepConfig struct {
	Service serviceConfig
	Janitor twofactor.JanitorConfig
}

func newSweepCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one janitor pass and exit",
		Long: `Delete expired trusted sessions and finish disables whose session or
backup-code cleanup failed. Suitable for a cron job when the serve janitor
is turned off.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig[sweepConfig](root)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			log := newLogger(cfg.Service.Base)

			d, err := buildDeps(ctx, cfg.Service, log, prometheus.NewRegistry())
			if err != nil {
				return err
			}
			defer d.Close()

			janitor := twofactor.NewJanitor(d.coordinator, cfg.Janitor, twofactor.WithJanitorLogger(log))
			swept, reconciled, err := janitor.RunOnce(ctx)
			log.InfoContext(ctx, "sweep finished",
				slog.Int("swept", swept),
				slog.Int("reconciled", reconciled),
			)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "swept=%d reconciled=%d\n", swept, reconciled)
			return nil
		},
	}
}
