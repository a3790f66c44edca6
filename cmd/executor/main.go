// Executor server: hierarchical multi-agent orchestrator. Provides the HTTP
// API, drives runs through the scheduler, and streams run events to clients.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/catface996/opstack-executor-sub002/pkg/api"
	"github.com/catface996/opstack-executor-sub002/pkg/config"
	"github.com/catface996/opstack-executor-sub002/pkg/model"
	"github.com/catface996/opstack-executor-sub002/pkg/model/factory"
	"github.com/catface996/opstack-executor-sub002/pkg/run"
	"github.com/catface996/opstack-executor-sub002/pkg/scheduler"
	"github.com/catface996/opstack-executor-sub002/pkg/service"
	"github.com/catface996/opstack-executor-sub002/pkg/version"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, continuing with existing environment")
	}

	serverCfg := config.LoadServerConfigFromEnv()
	if serverCfg.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	slog.Info("Starting executor",
		"version", version.Full(),
		"addr", serverCfg.Addr())

	limits, err := config.LoadExecutionLimitsFromEnv()
	if err != nil {
		slog.Error("Failed to load execution limits", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Model client with retry and concurrency wrappers.
	client, err := factory.FromEnv(ctx)
	if err != nil {
		slog.Error("Failed to initialize model client", "error", err)
		os.Exit(1)
	}
	client = model.WithRetry(client, model.DefaultRetryConfig(), slog.Default())
	client = model.WithLimit(client, limits.MaxConcurrentModelCalls)
	slog.Info("Model client initialized")

	registry := run.NewRegistry()
	sweeper := run.NewSweeper(registry, limits.RunRetention, limits.SweepInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	sched := scheduler.New(client, limits, registry, nil, nil)
	hierarchies := service.NewHierarchyService(nil)
	runs := service.NewRunService(hierarchies, registry, sched, limits, nil)

	server := api.NewServer(runs, hierarchies, limits, nil)

	errCh := make(chan error, 1)
	go func() {
		addr := serverCfg.Addr()
		slog.Info("HTTP server listening", "addr", addr)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

	exitCode := 0
	select {
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	case err := <-errCh:
		slog.Error("Server error triggered shutdown", "error", err)
		exitCode = 1
	}

	// Wait for active runs to drain before stopping the HTTP server.
	drainCtx, drainCancel := context.WithTimeout(ctx, limits.GracefulShutdownTimeout)
	defer drainCancel()
	waitForRuns(drainCtx, registry)

	httpCtx, httpCancel := context.WithTimeout(ctx, 5*time.Second)
	defer httpCancel()
	if err := server.Shutdown(httpCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
	os.Exit(exitCode)
}

// waitForRuns blocks until no runs are active or ctx expires.
func waitForRuns(ctx context.Context, registry *run.Registry) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		active := registry.ActiveCount()
		if active == 0 {
			slog.Info("All runs drained")
			return
		}
		select {
		case <-ctx.Done():
			slog.Warn("Shutdown timeout exceeded with active runs", "active", active)
			return
		case <-ticker.C:
		}
	}
}
