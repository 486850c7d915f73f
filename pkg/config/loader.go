// Package config loads typed configuration from the process environment.
//
// Structs declare their variables with caarlos0/env tags:
//
//	type Config struct {
//		Addr string        `env:"HTTP_ADDR" envDefault:":8080"`
//		TTL  time.Duration `env:"TRUSTED_SESSION_TTL" envDefault:"24h"`
//	}
//
//	cfg, err := config.Load[Config]()
//
// A .env file in the working directory is applied once per process when
// present; variables already set in the environment win.
package config

import (
	"errors"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var defaultEnvLoaded sync.Once

type options struct {
	files   []string
	prefix  string
	environ map[string]string
}

// Option tunes a single Load call.
type Option func(*options)

// WithEnvFiles loads the given files instead of the default .env. Missing
// files are an error.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.files = append(o.files, files...) }
}

// WithPrefix prepends prefix to every variable name.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnviron parses from vars instead of the process environment. Env files
// are not read.
func WithEnviron(vars map[string]string) Option {
	return func(o *options) { o.environ = vars }
}

// Load parses a T from the environment.
func Load[T any](opts ...Option) (T, error) {
	var cfg T

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	parseOpts := env.Options{Prefix: o.prefix}
	switch {
	case o.environ != nil:
		parseOpts.Environment = o.environ
	case len(o.files) > 0:
		if err := godotenv.Load(o.files...); err != nil {
			return cfg, errors.Join(ErrLoadingEnvFile, err)
		}
	default:
		defaultEnvLoaded.Do(func() {
			if _, err := os.Stat(".env"); err == nil {
				_ = godotenv.Load()
			}
		})
	}

	if err := env.ParseWithOptions(&cfg, parseOpts); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on error. Use it for settings the process
// cannot start without.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(err)
	}
	return cfg
}
