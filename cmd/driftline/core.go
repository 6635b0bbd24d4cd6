// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/driftline/driftline/internal/config"
	"github.com/driftline/driftline/internal/identity"
	"github.com/driftline/driftline/internal/identity/store"
	"github.com/driftline/driftline/internal/logging"
	"github.com/driftline/driftline/internal/notify"
	"github.com/driftline/driftline/internal/observability"
	"github.com/driftline/driftline/internal/profileimg"
)

// NewCoreCmd creates the core subcommand.
func NewCoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "core",
		Short: "Start the identity core",
		Long: `Start the identity core: the account directory, session token
issuing, and the password-reset flow, with metrics and health probes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCore(cmd.Context(), cmd)
		},
	}

	cmd.Flags().String("token-secret", "", "secret used to sign session tokens (required)")
	cmd.Flags().String("database-url", "", "PostgreSQL URL for the directory store (empty = in-memory)")
	cmd.Flags().String("password-scheme", "", "password digest scheme (sha256 or argon2id)")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", "", "log format (json or text)")
	cmd.Flags().String("base-url", "", "public base URL for profile image links")

	return cmd
}

// coreRuntime holds the wired services for the lifetime of the process.
type coreRuntime struct {
	directory  identity.Store
	auth       *identity.Service
	resets     *identity.PasswordResetService
	dispatcher *notify.Dispatcher
}

// ready reports whether the directory store answers. It backs the readiness
// probe.
func (r *coreRuntime) ready() bool {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := r.directory.Get(ctx)
	return err == nil
}

func runCore(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("driftline", version, cfg.LogFormat)

	slog.Info("starting identity core",
		"log_format", cfg.LogFormat,
		"password_scheme", cfg.PasswordScheme,
	)

	if cfg.TokenSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("token_secret is required")
	}

	// Directory store: PostgreSQL when a database URL is given, otherwise
	// in-process memory.
	var (
		directory  identity.Store
		closeStore func()
	)
	if cfg.DatabaseURL != "" {
		pg, connErr := store.Connect(ctx, cfg.DatabaseURL)
		if connErr != nil {
			return connErr
		}
		directory = pg
		closeStore = pg.Close
		slog.Info("connected to directory database")
	} else {
		directory = store.NewMemoryStore()
		slog.Info("using in-memory directory store")
	}
	defer func() {
		if closeStore != nil {
			closeStore()
		}
	}()

	var hasher identity.PasswordHasher
	switch cfg.PasswordScheme {
	case config.SchemeArgon2id:
		hasher = identity.NewArgon2idHasher()
	default:
		hasher = identity.NewSHA256Hasher()
	}

	tokens, err := identity.NewTokenCodec([]byte(cfg.TokenSecret))
	if err != nil {
		return err
	}

	images, err := profileimg.NewResolver(cfg.BaseURL)
	if err != nil {
		return err
	}

	// Reset codes go out over SMTP when a relay is configured; otherwise
	// they land in the log, which is enough for development.
	var notifier notify.Notifier
	if cfg.SMTP.Host != "" {
		notifier, err = notify.NewSMTPNotifier(cfg.SMTP)
	} else {
		notifier, err = notify.NewLogNotifier(slog.Default())
	}
	if err != nil {
		return err
	}

	dispatcher, err := notify.NewDispatcher(notifier, cfg.Notify, slog.Default())
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	auth, err := identity.NewServiceWithLogger(directory, hasher, tokens, images, slog.Default())
	if err != nil {
		return err
	}

	resets, err := identity.NewPasswordResetServiceWithLogger(directory, hasher, dispatcher, slog.Default())
	if err != nil {
		return err
	}

	runtime := &coreRuntime{directory: directory, auth: auth, resets: resets, dispatcher: dispatcher}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured
	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, runtime.ready)
		obsErrChan, startErr := obsServer.Start()
		if startErr != nil {
			return startErr
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("Identity core started")
	slog.Info("identity core ready")

	select {
	case sig := <-sigChan:
		slog.Info("received shutdown signal", "signal", sig)
	case <-ctx.Done():
		slog.Info("context cancelled, shutting down")
	}

	slog.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}

// monitorServerErrors monitors a server's error channel and cancels the
// context on error, so server failures trigger graceful shutdown of the
// whole process. It exits when an error arrives, the channel closes, or the
// context is cancelled.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			// Channel closed, server stopped gracefully
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
		// Context cancelled, exit monitoring
	}
}
