// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/emberhost/emberhost/internal/auth"
	authpg "github.com/emberhost/emberhost/internal/auth/postgres"
	"github.com/emberhost/emberhost/internal/captcha"
	"github.com/emberhost/emberhost/internal/config"
	"github.com/emberhost/emberhost/internal/logging"
	"github.com/emberhost/emberhost/internal/mail"
	"github.com/emberhost/emberhost/internal/observability"
	"github.com/emberhost/emberhost/internal/store"
	"github.com/emberhost/emberhost/internal/web"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the account HTTP server",
		Long: `Start the HTTP server for account registration, login, email
verification and password reset, plus the metrics and health endpoints.
Pending database migrations run before the server accepts traffic.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	cmd.Flags().String("server.addr", "", "HTTP listen address")
	cmd.Flags().String("observability.addr", "", "metrics/health listen address")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return oops.With("operation", "load configuration").Wrap(err)
	}

	logging.SetDefault("emberhost", version, cfg.Observability.LogFormat, cfg.Observability.LogLevel)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return oops.With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()

	if err := runMigrations(cfg.Database.URL, logger); err != nil {
		return err
	}

	flow, err := buildFlow(cfg, pool, logger)
	if err != nil {
		return err
	}

	var webOpts []web.Option
	webOpts = append(webOpts, web.WithLogger(logger))
	if strings.HasPrefix(cfg.Server.BaseURL, "http://") {
		webOpts = append(webOpts, web.WithInsecureCookies())
	}

	webServer, err := web.NewServer(cfg.Server.Addr, flow, webOpts...)
	if err != nil {
		return oops.With("operation", "create web server").Wrap(err)
	}

	webErrCh, err := webServer.Start()
	if err != nil {
		return oops.With("operation", "start web server").Wrap(err)
	}

	obsServer := observability.NewServer(cfg.Observability.Addr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrCh, err := obsServer.Start()
	if err != nil {
		stopWeb(webServer, logger)
		return oops.With("operation", "start observability server").Wrap(err)
	}

	go janitor(ctx, pool, logger)

	cmd.Println("Emberhost account service started")
	logger.Info("service ready",
		"addr", webServer.Addr(),
		"metrics_addr", obsServer.Addr(),
	)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case serveErr = <-webErrCh:
		logger.Error("web server failed", "error", serveErr)
	case serveErr = <-obsErrCh:
		logger.Error("observability server failed", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := webServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping web server", "error", err)
	}
	if err := obsServer.Stop(shutdownCtx); err != nil {
		logger.Warn("error stopping observability server", "error", err)
	}

	if serveErr != nil {
		return oops.With("operation", "serve").Wrap(serveErr)
	}
	return nil
}

func runMigrations(databaseURL string, logger *slog.Logger) error {
	migrator, err := store.NewMigrator(databaseURL)
	if err != nil {
		return oops.With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("error closing migrator", "error", closeErr)
		}
	}()

	pending, err := migrator.PendingMigrations()
	if err != nil {
		return oops.With("operation", "check pending migrations").Wrap(err)
	}
	if len(pending) == 0 {
		logger.Info("database schema up to date")
		return nil
	}

	logger.Info("running migrations", "pending", len(pending))
	if err := migrator.Up(); err != nil {
		return oops.With("operation", "run migrations").Wrap(err)
	}
	return nil
}

func buildFlow(cfg config.Config, pool authpg.Pool, logger *slog.Logger) (*auth.Flow, error) {
	verifier, err := captcha.NewTurnstileVerifier(cfg.Turnstile.SecretKey)
	if err != nil {
		return nil, oops.With("operation", "create captcha verifier").Wrap(err)
	}

	var sender mail.Sender
	if cfg.SMTP.DevMode {
		logger.Warn("SMTP dev mode enabled, mail is logged instead of delivered")
		sender = mail.NewLogSender(logger)
	} else {
		sender, err = mail.NewSMTPSender(mail.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
		if err != nil {
			return nil, oops.With("operation", "create SMTP sender").Wrap(err)
		}
	}

	mailer, err := mail.NewMailer(sender, cfg.Server.BaseURL)
	if err != nil {
		return nil, oops.With("operation", "create mailer").Wrap(err)
	}

	flow, err := auth.NewFlowWithLogger(
		authpg.NewAccountRepository(pool),
		authpg.NewCodeRepository(pool),
		authpg.NewSessionRepository(pool),
		authpg.NewExternalAccountRepository(pool),
		auth.NewArgon2idHasher(),
		verifier,
		mailer,
		logger,
	)
	if err != nil {
		return nil, oops.With("operation", "create auth flow").Wrap(err)
	}
	return flow, nil
}

// janitorInterval is how often expired codes and sessions are purged.
const janitorInterval = time.Hour

// janitor periodically removes expired one-time codes and sessions.
// Expired rows are already invisible to lookups; this just keeps the
// tables from growing without bound.
func janitor(ctx context.Context, pool authpg.Pool, logger *slog.Logger) {
	codes := authpg.NewCodeRepository(pool)
	sessions := authpg.NewSessionRepository(pool)

	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purposes := []auth.CodePurpose{auth.PurposeEmailVerification, auth.PurposePasswordReset}
			for _, purpose := range purposes {
				n, err := codes.DeleteExpired(ctx, purpose)
				if err != nil {
					logger.Warn("expired code cleanup failed",
						"purpose", purpose.String(), "error", err)
					continue
				}
				if n > 0 {
					logger.Debug("expired codes removed",
						"purpose", purpose.String(), "count", n)
				}
			}

			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.Warn("expired session cleanup failed", "error", err)
			} else if n > 0 {
				logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}

func stopWeb(srv *web.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Warn("error stopping web server", "error", err)
	}
}
