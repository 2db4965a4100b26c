// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

// Package config loads service configuration from file, environment
// and command-line flags, in that order of precedence.
package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// envPrefix is stripped from environment variables; the remainder maps
// to config keys with "__" as the section delimiter, since key names
// themselves contain underscores (EMBERHOST_DATABASE__URL ->
// database.url, EMBERHOST_SERVER__BASE_URL -> server.base_url).
const envPrefix = "EMBERHOST_"

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	// Addr is the listen address for the web server.
	Addr string `koanf:"addr" json:"addr" yaml:"addr" jsonschema:"default=:8080"`

	// BaseURL is the public site origin used in email links.
	BaseURL string `koanf:"base_url" json:"base_url" yaml:"base_url" jsonschema:"required,minLength=1"`
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	URL string `koanf:"url" json:"url" yaml:"url" jsonschema:"required,minLength=1"`
}

// TurnstileConfig holds Cloudflare Turnstile settings.
type TurnstileConfig struct {
	SecretKey string `koanf:"secret_key" json:"secret_key" yaml:"secret_key" jsonschema:"required,minLength=1"`
	SiteKey   string `koanf:"site_key" json:"site_key" yaml:"site_key"`
}

// SMTPConfig holds outgoing mail settings. When DevMode is true, mail
// is logged instead of delivered and the other fields are ignored.
type SMTPConfig struct {
	Host     string `koanf:"host" json:"host" yaml:"host"`
	Port     int    `koanf:"port" json:"port" yaml:"port" jsonschema:"default=587,minimum=0,maximum=65535"`
	Username string `koanf:"username" json:"username" yaml:"username"`
	Password string `koanf:"password" json:"password" yaml:"password"`
	From     string `koanf:"from" json:"from" yaml:"from"`
	DevMode  bool   `koanf:"dev_mode" json:"dev_mode" yaml:"dev_mode"`
}

// ObservabilityConfig holds metrics and logging settings.
type ObservabilityConfig struct {
	// Addr is the listen address for the metrics and health endpoints.
	Addr string `koanf:"addr" json:"addr" yaml:"addr" jsonschema:"default=:9090"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `koanf:"log_level" json:"log_level" yaml:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`

	// LogFormat is one of text, json.
	LogFormat string `koanf:"log_format" json:"log_format" yaml:"log_format" jsonschema:"enum=text,enum=json,default=text"`
}

// Config is the root service configuration.
type Config struct {
	Server        ServerConfig        `koanf:"server" json:"server" yaml:"server"`
	Database      DatabaseConfig      `koanf:"database" json:"database" yaml:"database"`
	Turnstile     TurnstileConfig     `koanf:"turnstile" json:"turnstile" yaml:"turnstile"`
	SMTP          SMTPConfig          `koanf:"smtp" json:"smtp" yaml:"smtp"`
	Observability ObservabilityConfig `koanf:"observability" json:"observability" yaml:"observability"`
}

// Default returns the configuration defaults. Required fields
// (database URL, base URL, turnstile secret) have no defaults and must
// come from file, environment or flags.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		Observability: ObservabilityConfig{
			Addr:      ":9090",
			LogLevel:  "info",
			LogFormat: "text",
		},
	}
}

// Load reads configuration from the optional YAML file at path, then
// overlays EMBERHOST_* environment variables, then the given flag set
// (may be nil). The merged result is schema-validated.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !os.IsNotExist(err) {
				return Config{}, oops.Code("CONFIG_LOAD_FAILED").
					With("path", path).
					Wrap(err)
			}
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		key := strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(key), "__", ".")
	}), nil)
	if err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").
			With("source", "environment").
			Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").
				With("source", "flags").
				Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_PARSE_FAILED").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
