// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/emberhost/emberhost/internal/config"
)

const redacted = "<redacted>"

// NewConfigCmd creates the config subcommand.
func NewConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Load configuration from the file, environment and defaults, validate
it, and print the merged result as YAML. Secrets are redacted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, nil)
			if err != nil {
				return oops.With("operation", "load configuration").Wrap(err)
			}

			out, err := yaml.Marshal(redactConfig(cfg))
			if err != nil {
				return oops.With("operation", "render configuration").Wrap(err)
			}
			cmd.Print(string(out))
			return nil
		},
	}
}

// redactConfig blanks values that must never reach a terminal or log.
func redactConfig(cfg config.Config) config.Config {
	if cfg.Turnstile.SecretKey != "" {
		cfg.Turnstile.SecretKey = redacted
	}
	if cfg.SMTP.Password != "" {
		cfg.SMTP.Password = redacted
	}
	if cfg.Database.URL != "" {
		cfg.Database.URL = redacted
	}
	return cfg
}
