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

	"github.com/couchcryptid/sightings-etl/internal/adapter/excel"
	"github.com/couchcryptid/sightings-etl/internal/adapter/file"
	httpadapter "github.com/couchcryptid/sightings-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/sightings-etl/internal/adapter/kafka"
	"github.com/couchcryptid/sightings-etl/internal/adapter/mapbox"
	"github.com/couchcryptid/sightings-etl/internal/config"
	"github.com/couchcryptid/sightings-etl/internal/domain"
	"github.com/couchcryptid/sightings-etl/internal/observability"
	"github.com/couchcryptid/sightings-etl/internal/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	// Coordinate backfill is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	opts := pipeline.Options{
		BatchSize:   cfg.BatchSize,
		MaxAttempts: cfg.PublishMaxAttempts,
	}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		opts.Publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	}
	if cfg.ExportXLSX != "" {
		opts.Exporters = append(opts.Exporters, excel.NewExporter(cfg.ExportXLSX, logger))
	}
	if cfg.ExportCSV != "" {
		opts.Exporters = append(opts.Exporters, file.NewCSVExporter(cfg.ExportCSV, logger))
	}

	loader := file.NewLoader(cfg.InputPath, cfg.InputSheet, logger)
	cleaner := pipeline.NewCleaner(cfg.Rules, geocoder, logger, metrics)
	p := pipeline.New(loader, cleaner, logger, metrics, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server. An empty HTTP_ADDR runs the batch and exits.
	var srv *httpadapter.Server
	if cfg.HTTPAddr != "" {
		srv = httpadapter.NewServer(cfg.HTTPAddr, p, cfg.TopN, logger)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("http server error", "error", err)
				stop()
			}
		}()
	}

	// Start ETL pipeline.
	errCh := make(chan error, 1)
	go func() { errCh <- p.Run(ctx) }()

	var code int
	select {
	case err := <-errCh:
		code = exitCode(logger, err)
		if code == 0 && srv != nil {
			// Keep serving the result until asked to stop.
			<-ctx.Done()
		}
	case <-ctx.Done():
		code = exitCode(logger, <-errCh)
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if srv != nil {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return code
}

// exitCode logs a failed pipeline run and maps it to the process exit code.
func exitCode(logger *slog.Logger, err error) int {
	if err == nil {
		return 0
	}
	var schemaErr *domain.SchemaError
	if errors.As(err, &schemaErr) {
		logger.Error("input rejected", "error", err, "missing", schemaErr.Missing)
	} else {
		logger.Error("pipeline error", "error", err)
	}
	return 1
}
