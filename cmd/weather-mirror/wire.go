package main

import (
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/i474232898/weather-mirror/internal/config"
	"github.com/i474232898/weather-mirror/internal/logging"
	"github.com/i474232898/weather-mirror/internal/metrics"
	"github.com/i474232898/weather-mirror/internal/store"
	"github.com/i474232898/weather-mirror/internal/weather"
	"github.com/i474232898/weather-mirror/internal/weather/providers"
)

type components struct {
	cfg      *config.AppConfig
	logger   *zap.Logger
	registry *prometheus.Registry
	service  *weather.Service
}

// build loads configuration and assembles the pipeline shared by every command.
func build(configPath string, verbose bool) (*components, error) {
	dotEnvErr := config.LoadDotEnv()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, err
	}
	if dotEnvErr != nil {
		logger.Info("no .env file loaded", zap.Error(dotEnvErr))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.New(registry)

	snapshots, err := store.New(store.Options{
		Backend: cfg.Cache.Backend,
		Dir:     cfg.Cache.Dir,
		Redis: &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
	})
	if err != nil {
		return nil, err
	}

	fetcher := providers.NewWttrProvider(
		cfg.BaseURL,
		providers.NewHTTPClient(cfg.HTTPTimeout, logger),
		providers.NewLimiter(cfg.RateLimitRPS),
		logger,
	)
	normalizer := weather.NewNormalizer(weather.Icons{AssetDir: cfg.IconDir}, logger)

	logger.Info("pipeline ready",
		zap.String("location", cfg.Location),
		zap.String("cache_backend", cfg.Cache.Backend),
		zap.String("unit", cfg.DisplayUnit.Symbol()),
	)

	return &components{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		service:  weather.NewService(fetcher, snapshots, normalizer, collector, logger),
	}, nil
}
