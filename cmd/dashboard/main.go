package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/joho/godotenv"

	"github.com/couchcryptid/sensor-feed-dashboard/internal/adapter/feed"
	httpadapter "github.com/couchcryptid/sensor-feed-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/sensor-feed-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/adapter/openweather"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/config"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/observability"
	"github.com/couchcryptid/sensor-feed-dashboard/internal/pipeline"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	thresholds, err := config.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		logger.Error("failed to load thresholds", "path", cfg.ThresholdsFile, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var serverOpts []httpadapter.Option
	if cfg.WeatherEnabled() {
		client := openweather.NewClient(openweather.Config{
			APIKey:  cfg.WeatherAPIKey,
			BaseURL: cfg.WeatherBaseURL,
			City:    cfg.WeatherCity,
			Lat:     cfg.WeatherLat,
			Lon:     cfg.WeatherLon,
			Timeout: cfg.WeatherTimeout,
		}, metrics, logger)
		cond, err := client.Fetch(ctx)
		if err != nil {
			logger.Warn("weather conditions unavailable", "city", cfg.WeatherCity, "error", err)
		} else {
			serverOpts = append(serverOpts, httpadapter.WithConditions(&cond))
		}
	} else {
		logger.Info("weather conditions disabled")
	}

	var sinks []pipeline.Sink
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		sinks = append(sinks, writer)
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	client := feed.NewClient(cfg.FeedURL, cfg.FeedConnectTimeout, cfg.FeedReadTimeout, logger)
	p := pipeline.New(client, thresholds, logger, metrics, sinks...)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger, serverOpts...)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Start the feed session. The server keeps serving the last snapshot and
	// the closure status after it ends.
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	// Sinks close only after the session stops publishing.
	select {
	case <-runDone:
	case <-shutdownCtx.Done():
		logger.Warn("pipeline did not stop before shutdown timeout")
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
