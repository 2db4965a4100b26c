// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Emberhost CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emberhost",
		Short: "Emberhost - account service for the public site",
		Long: `Emberhost runs the account layer behind the public site:
registration, login, email verification and password reset, backed by
PostgreSQL, Cloudflare Turnstile and transactional email.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewGenSchemaCmd())

	return cmd
}
