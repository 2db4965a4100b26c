// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package main

import (
	"fmt"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/emberhost/emberhost/internal/config"
	"github.com/emberhost/emberhost/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending schema migrations against the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				pending, err := m.PendingMigrations()
				if err != nil {
					return oops.With("operation", "check pending migrations").Wrap(err)
				}
				if len(pending) == 0 {
					cmd.Println("Database schema is up to date")
					return nil
				}

				cmd.Printf("Applying %d migration(s)...\n", len(pending))
				if err := m.Up(); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	}

	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateVersionCmd())
	cmd.AddCommand(newMigrateForceCmd())

	return cmd
}

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Steps(-1); err != nil {
					return oops.Code("MIGRATION_FAILED").With("operation", "roll back migration").Wrap(err)
				}
				cmd.Println("Rolled back one migration")
				return nil
			})
		},
	}
}

func newMigrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return oops.With("operation", "read schema version").Wrap(err)
				}
				if version == 0 && !dirty {
					cmd.Println("No migrations applied")
					return nil
				}
				state := "clean"
				if dirty {
					state = "dirty"
				}
				cmd.Printf("Schema version %d (%s)\n", version, state)
				return nil
			})
		},
	}
}

func newMigrateForceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force <version>",
		Short: "Force the schema version without running migrations",
		Long: `Set the recorded schema version without running any migrations.
Use this to recover from a dirty state after a failed migration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := parseForceVersion(args[0])
			if err != nil {
				return err
			}
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Force(version); err != nil {
					return oops.With("operation", "force schema version").Wrap(err)
				}
				cmd.Printf("Schema version forced to %d\n", version)
				return nil
			})
		},
	}
}

// parseForceVersion parses a migration version argument.
func parseForceVersion(s string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(s, "%d", &version); err != nil {
		return 0, oops.Code("INVALID_VERSION").
			With("input", s).
			Errorf("version must be an integer")
	}
	return version, nil
}

// withMigrator loads configuration, opens a migrator and guarantees it
// is closed after fn runs.
func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return oops.With("operation", "load configuration").Wrap(err)
	}

	migrator, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "open migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			cmd.PrintErrf("warning: closing migrator: %v\n", closeErr)
		}
	}()

	return fn(migrator)
}
