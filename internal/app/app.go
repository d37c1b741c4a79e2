package app

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	_ "github.com/lib/pq"

	"newsbrief/internal/config"
	"newsbrief/internal/discovery"
	"newsbrief/internal/infrastructure/feed"
	"newsbrief/internal/infrastructure/llm"
	"newsbrief/internal/infrastructure/scheduler"
	"newsbrief/internal/infrastructure/scrape"
	"newsbrief/internal/infrastructure/storage"
	"newsbrief/internal/infrastructure/telegram"
	"newsbrief/internal/logging"
	"newsbrief/internal/ports"
	transporthttp "newsbrief/internal/transport/http"
	"newsbrief/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	server    *transporthttp.Server
	db        *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	llmClient := llm.NewClient(cfg.LLM)

	registry := discovery.NewRegistry()
	registry.Register(feed.NewFetcher(nil, baseLogger.With("component", "fetcher.feed")))
	registry.Register(scrape.NewExtractor(nil, llmClient, baseLogger.With("component", "fetcher.homepage")))

	source := discovery.NewAggregator(registry, cfg.Sources, baseLogger.With("component", "discovery"))

	var repository ports.DraftRepository
	var db *sql.DB
	if cfg.Database.DSN != "" {
		opened, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			baseLogger.Warn("database unavailable, drafts will not be persisted", "error", err)
		} else {
			db = opened
			repository = storage.NewPostgresRepository(db)
		}
	}

	var notifier ports.ReviewNotifier
	if cfg.Notifications.Telegram.BotToken != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Scorer:     llm.NewScorer(llmClient, cfg.Newsletter),
		Formatter:  llm.NewFormatter(llmClient, cfg.Newsletter),
		Repository: repository,
		Notifier:   notifier,
		Newsletter: cfg.Newsletter,
		Curation:   cfg.Curation,
		Logger:     baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		scheduler: usecase.NewScheduler(
			scheduler.NewTickerScheduler(cfg.Scheduler.Interval),
			pipeline,
			baseLogger.With("component", "scheduler"),
		),
		server: transporthttp.NewServer(pipeline, baseLogger.With("component", "http")),
		db:     db,
	}
}

// Pipeline exposes the discovery pipeline for one-shot invocations.
func (a *Application) Pipeline() *usecase.Pipeline {
	return a.pipeline
}

// Run starts the scheduler and serves the HTTP trigger until ctx ends.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    a.cfg.Server.ListenAddr,
		Handler: a.server.Routes(),
	}

	go func() {
		<-ctx.Done()
		_ = a.scheduler.Stop(context.Background())
		_ = httpServer.Shutdown(context.Background())
		if a.db != nil {
			_ = a.db.Close()
		}
	}()

	a.logger.Info("listening", "addr", a.cfg.Server.ListenAddr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
