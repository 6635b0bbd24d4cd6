// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/identity/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending directory schema migrations against the PostgreSQL database.`,
		RunE:  runMigrate,
	}

	cmd.Flags().String("database-url", "", "PostgreSQL URL (defaults to config file, then DATABASE_URL)")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	databaseURL := cfg.DatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database_url is required (flag, config file, or DATABASE_URL)")
	}

	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // close error after a successful run is not actionable

	cmd.Println("Running migrations...")
	if err := migrator.Up(); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
