package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"BlackGlass/internal/config"
	"BlackGlass/internal/feeds"
	"BlackGlass/internal/infrastructure/httpapi"
	"BlackGlass/internal/infrastructure/scheduler"
	"BlackGlass/internal/infrastructure/sink"
	"BlackGlass/internal/logging"
	"BlackGlass/internal/ports"
	"BlackGlass/internal/report"
	"BlackGlass/internal/tagger"
)

// Application wires configuration to the aggregation pipeline, report
// engine, and transport adapter.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	aggregator *feeds.Aggregator
	engine     *report.Engine
	server     *httpapi.Server
	warmup     ports.Scheduler
	closer     func() error
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	cache := feeds.NewCache(cfg.Cache.TTL())
	fetcher := feeds.NewFetcher(cache, feeds.FetcherOptions{
		Timeout:           cfg.Fetch.Timeout(),
		RequestsPerMinute: cfg.Fetch.RequestsPerMinute,
		MaxEntries:        cfg.Fetch.MaxEntriesPerFeed,
	}, baseLogger.With("component", "fetcher"))

	classifier := tagger.New()
	aggregator := feeds.NewAggregator(fetcher, cfg.Feeds, cfg.Alerts, classifier,
		cfg.Fetch.MaxParallelFetches, baseLogger.With("component", "aggregator"))

	reportSink, documents, closer, err := buildSink(cfg.Sink)
	if err != nil {
		return nil, fmt.Errorf("build sink: %w", err)
	}

	store := report.NewStore()
	engine := report.NewEngine(aggregator, reportSink, store, baseLogger.With("component", "report"))

	server := httpapi.New(aggregator, engine, documents, baseLogger.With("component", "http"))

	return &Application{
		cfg:        cfg,
		logger:     baseLogger,
		aggregator: aggregator,
		engine:     engine,
		server:     server,
		warmup:     scheduler.NewCron(cfg.Scheduler.CronExpression),
		closer:     closer,
	}, nil
}

type sinkAndSource interface {
	ports.Sink
	httpapi.DocumentSource
}

func buildSink(cfg config.SinkConfig) (ports.Sink, httpapi.DocumentSource, func() error, error) {
	var s sinkAndSource
	closer := func() error { return nil }

	switch cfg.Kind {
	case "sqlite":
		archive, err := sink.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		s = archive
		closer = archive.Close
	default:
		s = sink.NewFilesystem(cfg.ReportsDir)
	}

	return s, s, closer, nil
}

// Run starts the cache-warming schedule and serves the HTTP API until the
// listener stops.
func (a *Application) Run(ctx context.Context) error {
	warm := func(t time.Time) {
		a.logger.Debug("warming feed cache", "at", t)
		a.aggregator.FetchAll(ctx, a.cfg.Feeds)
		a.aggregator.FetchAlerts(ctx)
	}
	if err := a.warmup.Start(ctx, warm); err != nil {
		a.logger.Warn("cache warmup disabled", "error", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.warmup.Stop(stopCtx)
		_ = a.closer()
	}()

	a.logger.Info("serving", "addr", a.cfg.HTTP.ListenAddr, "feeds", len(a.cfg.Feeds), "alerts", len(a.cfg.Alerts))
	return a.server.Run(a.cfg.HTTP.ListenAddr)
}
