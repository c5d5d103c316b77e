package main

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/rolodex/internal/auth"
	"github.com/desertthunder/rolodex/internal/server"
	"github.com/desertthunder/rolodex/internal/shared"
	"github.com/desertthunder/rolodex/internal/tasks"
	"github.com/desertthunder/rolodex/internal/web"
	"github.com/urfave/cli/v3"
)

const sweepInterval = time.Hour

// Serve runs the web UI and JSON API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	srv := r.newServer(ctx, db)

	ln, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr(), err)
	}

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(r.config.Server.BaseURL); err != nil {
			r.logger.Warn("failed to open browser", "url", r.config.Server.BaseURL, "error", err)
		}
	}

	return srv.Serve(ctx, ln)
}

// newServer assembles the API, browser UI and optional OAuth handlers over db and starts session
// housekeeping, which stops with ctx.
func (r *Runner) newServer(ctx context.Context, db *sql.DB) *server.Server {
	conf := r.config
	svc := auth.NewService(db, conf.Auth.SessionTTL(), r.logger)

	cookies := server.Cookies{Name: conf.Auth.CookieName, Secure: conf.Auth.CookieSecure}
	limiter := server.NewRateLimiter(conf.Auth.SignInRatePerMinute)
	metrics := server.NewMetrics()

	handlers := []server.Handler{
		server.NewAPIHandler(db, svc, server.APIOptions{
			Cookies: cookies,
			Limiter: limiter,
			Metrics: metrics,
			Logger:  r.logger,
		}),
		web.New(db, svc, web.Options{
			Cookies:      cookies,
			Limiter:      limiter,
			Metrics:      metrics,
			Locale:       conf.UI.Locale,
			OAuthEnabled: conf.Auth.OAuth.Enabled(),
			Logger:       r.logger,
		}),
	}
	if conf.Auth.OAuth.Enabled() {
		handlers = append(handlers, server.NewOAuthHandler(conf.Auth.OAuth, conf.Server.BaseURL, svc, cookies, metrics, r.logger))
		r.logger.Info("oauth sign-in enabled", "provider", conf.Auth.OAuth.Provider)
	}

	go tasks.NewHousekeeper(svc, sweepInterval, r.logger).Run(ctx, nil)

	return server.New(server.Options{
		Addr:     conf.Server.Addr(),
		Handlers: handlers,
		Metrics:  metrics,
		DB:       db,
		Logger:   r.logger,
	})
}
