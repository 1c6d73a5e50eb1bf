package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/wildfire-risk-etl/internal/adapter/airnow"
	"github.com/couchcryptid/wildfire-risk-etl/internal/adapter/firms"
	"github.com/couchcryptid/wildfire-risk-etl/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/wildfire-risk-etl/internal/adapter/kafka"
	"github.com/couchcryptid/wildfire-risk-etl/internal/adapter/noaa"
	"github.com/couchcryptid/wildfire-risk-etl/internal/config"
	"github.com/couchcryptid/wildfire-risk-etl/internal/domain"
	"github.com/couchcryptid/wildfire-risk-etl/internal/export"
	"github.com/couchcryptid/wildfire-risk-etl/internal/industrial"
	"github.com/couchcryptid/wildfire-risk-etl/internal/observability"
	"github.com/couchcryptid/wildfire-risk-etl/internal/pipeline"
	"github.com/couchcryptid/wildfire-risk-etl/internal/risk"
	"github.com/couchcryptid/wildfire-risk-etl/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	st, err := store.Open(cfg.DatabasePath, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}

	source := firms.NewClient(cfg.FIRMSAPIKey, cfg.FIRMSTimeout, metrics, logger)

	detector := industrial.NewDetector(st, industrial.DetectorConfig{
		LookbackDays:       cfg.LookbackDays,
		DetectionThreshold: cfg.DetectionThreshold,
		GridSizeKM:         cfg.GridSizeKM,
	}, logger, nil)
	snapshot := industrial.NewSnapshotStore(cfg.SnapshotPath)

	// Enrichment providers are feature-flagged via USE_WEATHER / AIRNOW_API_KEY.
	var weather domain.WeatherProvider
	if cfg.UseWeather {
		client := noaa.NewClient(cfg.NOAATimeout, metrics, logger)
		weather = noaa.NewCachedProvider(client, cfg.NOAACacheSize, metrics)
		metrics.WeatherEnabled.Set(1)
		logger.Info("weather enrichment enabled", "cache_size", cfg.NOAACacheSize, "timeout", cfg.NOAATimeout)
	} else {
		logger.Info("weather enrichment disabled")
	}

	var airQuality domain.AirQualityProvider
	if cfg.AirNowEnabled {
		airQuality = airnow.NewClient(cfg.AirNowAPIKey, cfg.NOAATimeout, metrics, logger)
		logger.Info("air quality enrichment enabled")
	} else {
		logger.Info("air quality enrichment disabled")
	}

	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka sink enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSinkTopic)
	} else {
		logger.Info("kafka sink disabled")
	}

	p := pipeline.New(pipeline.Deps{
		Source:     source,
		Detector:   detector,
		Snapshot:   snapshot,
		Scorer:     risk.NewScorer(cfg.UseWeather),
		Store:      st,
		Publisher:  publisher,
		Exporter:   export.NewExporter(cfg.ExportDir, logger),
		Weather:    weather,
		AirQuality: airQuality,
	}, cfg, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
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
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("shutdown complete")
}
