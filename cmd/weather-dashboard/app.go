package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bobby-s-dev/weather-dashboard/internal/config"
	"github.com/bobby-s-dev/weather-dashboard/internal/controller"
	"github.com/bobby-s-dev/weather-dashboard/internal/geo"
	"github.com/bobby-s-dev/weather-dashboard/internal/state"
	"github.com/bobby-s-dev/weather-dashboard/pkg/client"
)

// app carries the wiring shared by every command.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	controller *controller.Controller
	locator    geo.Locator
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if url, _ := cmd.Flags().GetString("api-url"); url != "" {
		cfg.Backend.BaseURL = url
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)

	weatherClient := client.NewWeatherClient(client.ClientConfig{
		BaseURL:        cfg.Backend.BaseURL,
		Timeout:        cfg.Backend.Timeout,
		BreakerEnabled: cfg.CircuitBreaker.Enabled,
		Threshold:      cfg.CircuitBreaker.Threshold,
		BreakerTimeout: cfg.CircuitBreaker.Timeout,
	}, logger)

	return &app{
		cfg:        cfg,
		logger:     logger,
		controller: controller.New(weatherClient, state.NewStore(logger), logger),
		locator:    newLocator(cfg, logger),
	}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	return zcfg.Build()
}

// newLocator picks the configured position source: fixed coordinates first,
// then an IP lookup service.
func newLocator(cfg *config.Config, logger *zap.Logger) geo.Locator {
	if cfg.Geolocation.Latitude != "" || cfg.Geolocation.Longitude != "" {
		static, err := geo.ParseStatic(cfg.Geolocation.Latitude, cfg.Geolocation.Longitude)
		if err != nil {
			logger.Warn("Ignoring configured device position", zap.Error(err))
			return geo.Unavailable{}
		}
		return static
	}
	if cfg.Geolocation.LookupURL != "" {
		return geo.NewIPLocator(cfg.Geolocation.LookupURL, logger)
	}
	return geo.Unavailable{}
}
