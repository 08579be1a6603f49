package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"segstats/adapters/excel"
	"segstats/adapters/rng"
	"segstats/adapters/stats/toolkit"
	"segstats/app"
	"segstats/internal"
	"segstats/internal/config"
	"segstats/internal/metrics"
	"segstats/ui"

	"github.com/gin-gonic/gin"
)

func main() {
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.Logging.Level))
	defer logger.Sync()

	categorical := append([]string{appConfig.Analysis.SegmentColumn}, appConfig.Data.Categorical...)
	reader := excel.NewDataReader(appConfig.Data.File,
		excel.WithSheet(appConfig.Data.Sheet),
		excel.WithCategorical(categorical...),
	).WithLogger(logger)

	var metricsSink *metrics.Metrics
	if appConfig.Metrics.Enabled {
		metricsSink = metrics.New()
	}

	testers := toolkit.New(
		toolkit.WithDegeneratePolicy(appConfig.Analysis.Degenerate),
		toolkit.WithYatesCorrection(appConfig.Analysis.Yates),
	)
	service := app.NewSegmentAnalysisService(reader, testers, rng.NewSeededRNG(), metricsSink, logger, app.AnalysisConfig{
		SegmentColumn: appConfig.Analysis.SegmentColumn,
		Seed:          appConfig.Analysis.Seed,
		Alternative:   appConfig.Analysis.Alternative,
		Workers:       appConfig.Analysis.Workers,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load eagerly so a bad DATA_FILE fails at startup rather than on the first request.
	if _, err := service.Table(ctx); err != nil {
		logger.Error("Failed to load %s: %v", appConfig.Data.File, err)
		log.Fatalf("Failed to load customer table: %v", err)
	}

	gin.SetMode(appConfig.Server.GinMode)
	server := ui.NewServer(service, metricsSink, logger)

	if err := server.Run(ctx, ":"+appConfig.Server.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	logger.Info("Server stopped")
}
