package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/twofactor/pkg/config"
	"github.com/dmitrymomot/twofactor/pkg/environment"
	"github.com/dmitrymomot/twofactor/pkg/logger"
	"github.com/dmitrymomot/twofactor/pkg/requestid"
)

const serviceName = "twofactord"

var version = "dev"

type rootOptions struct {
	envFiles []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   serviceName,
		Short: "Second-factor authentication service",
		Long: `twofactord enrolls users in TOTP two-factor authentication, verifies
challenges, manages backup codes and trusted devices.

Configuration is read from the environment and optional .env files.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "additional .env files to load")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSweepCmd(opts),
		newKeygenCmd(),
	)
	return cmd
}

// baseConfig is shared by every command that touches infrastructure.
// Config structs are nested through exported fields so the env parser can
// reach them.
type baseConfig struct {
	Env string `env:"APP_ENV" envDefault:"development"`
	Log logger.Config
}

func loadConfig[T any](opts *rootOptions) (T, error) {
	return config.Load[T](config.WithEnvFiles(opts.envFiles...))
}

func newLogger(cfg baseConfig) *slog.Logger {
	log := logger.New(
		logger.WithEnvironment(environment.Parse(cfg.Env), serviceName),
		logger.WithConfig(cfg.Log),
		logger.WithContextExtractors(requestid.LogExtractor()),
	)
	logger.SetAsDefault(log)
	return log
}
