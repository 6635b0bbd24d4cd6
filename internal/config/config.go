// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package config loads Driftline configuration from defaults, an optional
// YAML file, and command-line flags, in that order of precedence.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/driftline/driftline/internal/notify"
)

// Password digest schemes.
const (
	SchemeSHA256   = "sha256"
	SchemeArgon2id = "argon2id"
)

// Config is the full configuration of the identity core.
type Config struct {
	// TokenSecret signs session bearer tokens. Required to run the core.
	TokenSecret string `koanf:"token_secret"`

	// DatabaseURL selects the PostgreSQL directory store. Empty runs the
	// in-memory store.
	DatabaseURL string `koanf:"database_url"`

	// PasswordScheme selects the digest scheme: sha256 (legacy,
	// deterministic) or argon2id.
	PasswordScheme string `koanf:"password_scheme"`

	// MetricsAddr is the metrics/health HTTP listen address. Empty
	// disables the observability server.
	MetricsAddr string `koanf:"metrics_addr"`

	// LogFormat is "json" or "text".
	LogFormat string `koanf:"log_format"`

	// BaseURL is the public URL profile-image routes are built under.
	BaseURL string `koanf:"base_url"`

	SMTP   notify.SMTPConfig       `koanf:"smtp"`
	Notify notify.DispatcherConfig `koanf:"notify"`
}

// Default returns the configuration used when nothing is specified.
func Default() *Config {
	return &Config{
		PasswordScheme: SchemeSHA256,
		MetricsAddr:    "127.0.0.1:9100",
		LogFormat:      "json",
		BaseURL:        "http://localhost:8068",
	}
}

// Load merges defaults, the optional YAML file at path, and the given flag
// set. Flag names use dashes; they map to underscored config keys.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		// Only flags the user actually set override the file and defaults.
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "merge flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "unmarshal").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enum fields.
func (c *Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be 'json' or 'text', got %q", c.LogFormat)
	}
	if c.PasswordScheme != SchemeSHA256 && c.PasswordScheme != SchemeArgon2id {
		return oops.Code("CONFIG_INVALID").
			With("password_scheme", c.PasswordScheme).
			Errorf("password_scheme must be %q or %q, got %q", SchemeSHA256, SchemeArgon2id, c.PasswordScheme)
	}
	return nil
}
