package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/bike-rental-report/internal/adapter/cache"
	"github.com/couchcryptid/bike-rental-report/internal/adapter/csvsource"
	"github.com/couchcryptid/bike-rental-report/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/bike-rental-report/internal/adapter/kafka"
	"github.com/couchcryptid/bike-rental-report/internal/config"
	"github.com/couchcryptid/bike-rental-report/internal/observability"
	"github.com/couchcryptid/bike-rental-report/internal/pipeline"
	"github.com/couchcryptid/bike-rental-report/internal/report"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Summary publishing is feature-flagged via KAFKA_ENABLED / KAFKA_SUMMARY_TOPIC.
	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		metrics.PublishEnabled.Set(1)
		logger.Info("kafka summary publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaSummaryTopic)
	} else {
		logger.Info("kafka summary publishing disabled")
	}

	source := csvsource.NewSource(cfg.DataPath, logger)
	builder := pipeline.NewBuilder(logger)
	p := pipeline.New(source, builder, publisher, logger, metrics)

	// The dataset is loaded once, before serving. Any bad row is fatal.
	ds, err := p.Run(ctx)
	if err != nil {
		logger.Error("dataset load failed", "path", cfg.DataPath, "error", err)
		closeWriter(writer, logger)
		stop()
		os.Exit(1)
	}

	summarizer := cache.NewCachedSummarizer(report.NewSummarizer(ds), cfg.SummaryCacheSize, metrics)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:       cfg.HTTPAddr,
		Ready:      p,
		Data:       p,
		Summarizer: summarizer,
		PageSize:   cfg.PageSize,
		Metrics:    metrics,
		Logger:     logger,

		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	exitCode := 0
	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", "error", err)
		exitCode = 1
	}
	closeWriter(writer, logger)

	logger.Info("shutdown complete")
	stop()
	os.Exit(exitCode)
}

func closeWriter(w *kafkaadapter.Writer, logger *slog.Logger) {
	if w == nil {
		return
	}
	if err := w.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
}
