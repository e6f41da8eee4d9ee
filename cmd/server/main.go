package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	shared "github.com/fitsync/server/pkg"
	"github.com/fitsync/server/pkg/bootstrap"
	"github.com/fitsync/server/pkg/infrastructure/oauth"
	"github.com/fitsync/server/pkg/infrastructure/sentry"
	"github.com/fitsync/server/pkg/integrations/googlefit"
	"github.com/fitsync/server/pkg/server"
	"github.com/fitsync/server/pkg/syncer"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
	scheduledTimeout  = 5 * time.Minute
)

func main() {
	bootstrap.InitLogger()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := sentry.Init(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		ServerName:  "fitsync",
	}, slog.Default()); err != nil {
		slog.Error("Sentry init failed", "error", err)
		os.Exit(1)
	}
	defer sentry.Flush(2 * time.Second)

	svc, err := bootstrap.NewService(ctx, cfg)
	if err != nil {
		slog.Error("Service init failed", "error", err)
		os.Exit(1)
	}
	defer svc.Firestore.Close()

	tokens := oauth.NewFileTokenStore(cfg.TokenPath)
	authManager := oauth.NewManager(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.OAuthRedirectURL, tokens)
	if authManager.Authenticated() {
		slog.Info("Loaded saved credentials", "path", cfg.TokenPath)
	} else {
		slog.Warn("No saved credentials; visit /auth to connect Google Fit")
	}

	source := googlefit.NewClient(authManager, slog.Default())
	orchestrator := syncer.NewOrchestrator(source, cfg.SyncWindowStart, slog.Default())
	for _, dest := range svc.Destinations {
		orchestrator.Register(dest)
	}

	if err := startSchedules(orchestrator); err != nil {
		slog.Error("Cron init failed", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.New(orchestrator, svc.Store, authManager, slog.Default()).Router(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		slog.Info("Starting FitSync server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ListenAndServe failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

// startSchedules registers the recurring syncs. Schedules are interpreted in
// UTC, matching the date keys the pipeline produces.
func startSchedules(orchestrator *syncer.Orchestrator) error {
	c := cron.New(cron.WithLocation(time.UTC))
	for _, schedule := range []string{shared.CronDaytimeSync, shared.CronMorningSync} {
		if _, err := c.AddFunc(schedule, func() { runScheduledSync(orchestrator) }); err != nil {
			return err
		}
	}
	c.Start()
	return nil
}

// runScheduledSync executes one pass and logs instead of crashing: the next
// scheduled run is the retry mechanism.
func runScheduledSync(orchestrator *syncer.Orchestrator) {
	slog.Info("Running scheduled sync")
	ctx, cancel := context.WithTimeout(context.Background(), scheduledTimeout)
	defer cancel()

	_, err := orchestrator.Run(ctx)
	switch {
	case errors.Is(err, syncer.ErrSyncInProgress):
		slog.Warn("Skipping scheduled sync; previous pass still running")
	case err != nil:
		slog.Error("Scheduled sync failed", "error", err)
		sentry.CaptureException(err, map[string]interface{}{"trigger": "cron"})
	}
}
