package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bobby-s-dev/weather-dashboard/internal/api"
	"github.com/bobby-s-dev/weather-dashboard/internal/scheduler"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			return serve(a)
		},
	}
}

func serve(a *app) error {
	logger := a.logger
	cfg := a.cfg

	logger.Info("Starting weather dashboard",
		zap.String("backend", cfg.Backend.BaseURL))

	// Optional auto refresh
	var refresh *scheduler.Scheduler
	var status api.StatusReporter
	if cfg.Refresh.Schedule != "" {
		refresh = scheduler.NewScheduler(a.controller, cfg.Refresh.Schedule, logger)
		if err := refresh.Start(); err != nil {
			return err
		}
		defer refresh.Stop()
		status = refresh
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          api.ErrorHandler,
	})

	// Setup handlers and routes
	handler := api.NewHandler(a.controller, a.locator, status, logger)
	api.SetupRoutes(app, handler, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("Starting server", zap.String("address", addr))
		errCh <- app.Listen(addr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("Failed to start server", zap.Error(err))
		return err
	case <-quit:
	}

	logger.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown Fiber app
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
	return nil
}
