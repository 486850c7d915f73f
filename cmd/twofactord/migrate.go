package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/pg"
	"github.com/dmitrymomot/twofactor/pkg/pgstore"
)

type migrateConfig struct {
	Base baseConfig
	PG pg.Config
}

var errNoDatabase = errors.New("PG_CONN_URL is not set")

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var statusOnly bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig[migrateConfig](root)
			if err != nil {
				return err
			}
			if !cfg.PG.Enabled() {
				return errNoDatabase
			}

			ctx := cmd.Context()
			log := newLogger(cfg.Base)

			pool, err := pg.Connect(ctx, cfg.PG)
			if err != nil {
				return err
			}
			defer pool.Close()

			if !statusOnly {
				if err := pg.Migrate(ctx, pool, pgstore.Migrations(), cfg.PG.MigrationsTable, log); err != nil {
					return err
				}
			}

			version, err := pg.Version(ctx, pool, pgstore.Migrations(), cfg.PG.MigrationsTable, log)
			if err != nil {
				return err
			}
			log.InfoContext(ctx, "schema version", slog.Int64("version", version))
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}

	cmd.Flags().BoolVar(&statusOnly, "status", false, "print the current schema version without migrating")
	return cmd
}
