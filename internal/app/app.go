package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"ContentAgent/internal/config"
	"ContentAgent/internal/infrastructure/feed"
	"ContentAgent/internal/infrastructure/llm"
	"ContentAgent/internal/infrastructure/report"
	"ContentAgent/internal/infrastructure/scheduler"
	"ContentAgent/internal/infrastructure/storage"
	"ContentAgent/internal/infrastructure/telegram"
	"ContentAgent/internal/infrastructure/uploader"
	"ContentAgent/internal/logging"
	"ContentAgent/internal/ports"
	"ContentAgent/internal/score"
	"ContentAgent/internal/source"
	"ContentAgent/internal/usecase"
)

// Application wires configuration to adapters, the pipeline, and the
// scheduled runner.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	pipeline  *usecase.Pipeline
	scheduled *usecase.Scheduler
}

// New builds a runnable application instance. Optional collaborators
// (history, uploader, generator, notifier) are wired only when their
// configuration is present.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.LogLevel)
	}

	client := feed.NewClient(cfg.RequestDelay(), cfg.MaxRetries, baseLogger.With("component", "feed.client"))

	registry := source.NewRegistry()
	registry.Register(feed.NewAWSNewsScanner(client, baseLogger.With("component", "feed.aws")))
	registry.Register(feed.NewPurviewScanner(client, baseLogger.With("component", "feed.purview")))
	registry.Register(feed.NewFileScanner())

	fetchers := make([]ports.Fetcher, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		fetchers = append(fetchers, feed.NewStrategyFetcher(registry, src, baseLogger.With("component", "feed.fetcher")))
	}

	var db *sql.DB
	var history ports.HistoryRepository
	if cfg.History.DSN != "" {
		var err error
		db, err = storage.Open(ctx, cfg.History.DSN)
		if err != nil {
			return nil, fmt.Errorf("open history database: %w", err)
		}

		repo := storage.NewPostgresHistory(db, cfg.History.LookbackDays)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure history schema: %w", err)
		}
		history = repo
	}

	var up ports.Uploader
	if cfg.Upload.Endpoint != "" {
		up = uploader.New(cfg.Upload, baseLogger.With("component", "uploader"))
	}

	var posts ports.PostWriter
	if cfg.Generator.Endpoint != "" {
		posts = llm.NewClient(cfg.Generator)
	}

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram)
	}

	pipeline := usecase.NewPipeline(usecase.Deps{
		Fetchers: fetchers,
		History:  history,
		Reports:  report.NewWriter(cfg.OutputDir, baseLogger.With("component", "report")),
		Uploader: up,
		Posts:    posts,
		Notifier: notifier,
		Logger:   baseLogger.With("component", "pipeline"),
	}, usecase.Params{
		MaxPerSource:      cfg.MaxArticlesPerSource,
		TechnicalKeywords: cfg.TechnicalKeywords,
		Scoring: score.Params{
			WindowDays:      cfg.RecencyWindowDays,
			RecencyWeight:   cfg.RecencyWeight,
			RelevanceWeight: cfg.RelevanceWeight,
			Taxonomy:        cfg.Taxonomy(),
		},
		TargetSelected: cfg.TargetSelected,
		MinThreshold:   cfg.MinScoreThreshold,
	})

	daily := scheduler.NewDaily(cfg.Schedule.At, cfg.Schedule.Location())
	scheduled := usecase.NewScheduler(daily, pipeline, baseLogger.With("component", "scheduler"))

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		pipeline:  pipeline,
		scheduled: scheduled,
	}, nil
}

// RunOnce executes a single pipeline run against the current instant.
func (a *Application) RunOnce(ctx context.Context) usecase.Result {
	now := time.Now().In(a.cfg.Schedule.Location())
	return a.pipeline.RunOnce(ctx, now)
}

// RunScheduled starts the daily trigger and blocks until the context is
// cancelled.
func (a *Application) RunScheduled(ctx context.Context) error {
	if err := a.scheduled.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started",
		"at", a.cfg.Schedule.At,
		"timezone", a.cfg.Schedule.Location().String())

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.scheduled.Stop(stopCtx)
}

// Close releases long-lived resources.
func (a *Application) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}
