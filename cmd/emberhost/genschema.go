// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package main

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/emberhost/emberhost/internal/config"
)

// NewGenSchemaCmd creates the gen-schema subcommand.
func NewGenSchemaCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "gen-schema",
		Short: "Generate the configuration JSON Schema",
		Long: `Generate the JSON Schema for the configuration file. The schema is
written to stdout unless --out is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := config.GenerateSchema()
			if err != nil {
				return oops.With("operation", "generate schema").Wrap(err)
			}

			if outPath == "" {
				cmd.Println(string(schema))
				return nil
			}

			if dir := filepath.Dir(outPath); dir != "." {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return oops.With("operation", "create schema directory").Wrap(err)
				}
			}
			if err := os.WriteFile(outPath, schema, 0o600); err != nil {
				return oops.With("operation", "write schema file").Wrap(err)
			}
			cmd.Printf("Generated %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file path (default stdout)")

	return cmd
}
