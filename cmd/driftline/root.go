// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Driftline CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "driftline",
		Short: "Driftline - identity core for group messaging",
		Long: `Driftline is the identity and session core of a group-messaging
service: account registration, login, session bearer tokens, and the
password-reset flow.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	// Add subcommands
	cmd.AddCommand(NewCoreCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
