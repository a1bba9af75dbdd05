// Package config defines process configuration and how it is loaded.
//
// Conventions:
// - New builds a Config with defaults; Load layers files and env on top.
// - Functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config contains process configuration shared by the server and the CLI.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFile receives log records when the terminal UI owns stdout.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// Store selects the rankings backend: memory or sqlite.
	Store string `koanf:"store" validate:"oneof=memory sqlite"`

	// SQLitePath is the database file of the sqlite store.
	SQLitePath string `koanf:"sqlite_path" validate:"required_if=Store sqlite"`

	// SeedDir holds standard_<mon><yy>frl.txt lists loaded at startup; empty disables seeding.
	SeedDir string `koanf:"seed_dir"`

	// MinRating is the rating a new player needs to be stored.
	MinRating int `koanf:"min_rating" validate:"gte=0,lte=3500"`

	// DefaultPageSize applies when a request omits page_size.
	DefaultPageSize int `koanf:"default_page_size" validate:"gte=1,lte=100"`

	// APIURL is the rankings service the CLI talks to.
	APIURL string `koanf:"api_url" validate:"required,url"`

	// ClientTimeoutMS bounds each CLI request.
	ClientTimeoutMS int `koanf:"client_timeout_ms" validate:"gte=100"`
}

// ClientTimeout returns ClientTimeoutMS as a duration.
func (c *Config) ClientTimeout() time.Duration {
	return time.Duration(c.ClientTimeoutMS) * time.Millisecond
}

// New creates a Config with defaults.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		Store:           "memory",
		SQLitePath:      "data/fideboard.db",
		MinRating:       2500,
		DefaultPageSize: 25,
		APIURL:          "http://localhost:9080",
		ClientTimeoutMS: 10_000,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field and reports all failures at once.
func (c *Config) Validate(_ context.Context) error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		if e.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", e.Field(), e.Tag(), e.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", e.Field(), e.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}
