package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"frontend/config"
	"frontend/server"
	"frontend/utils"

	"github.com/go-kit/log/level"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger := utils.NewLogger(os.Stderr, "info")
		level.Error(logger).Log("msg", "failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(os.Stderr, cfg.Log.Level)

	app, err := server.New(cfg, logger)
	if err != nil {
		level.Error(logger).Log("msg", "failed to build server", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		level.Info(logger).Log("msg", "frontend gateway starting", "port", cfg.Server.Port, "backend", cfg.Backend.URL)
		return app.Listen(":" + cfg.Server.Port)
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		level.Info(logger).Log("msg", "gracefully shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		level.Error(logger).Log("msg", "server stopped with error", "err", err)
		os.Exit(1)
	}

	level.Info(logger).Log("msg", "server stopped gracefully")
}
