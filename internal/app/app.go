package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"newsharvest/internal/config"
	"newsharvest/internal/dedup"
	"newsharvest/internal/domain"
	"newsharvest/internal/infrastructure/parser"
	"newsharvest/internal/infrastructure/scheduler"
	"newsharvest/internal/infrastructure/scraper"
	"newsharvest/internal/infrastructure/storage"
	"newsharvest/internal/infrastructure/telegram"
	"newsharvest/internal/logging"
	"newsharvest/internal/ports"
	"newsharvest/internal/processor"
	"newsharvest/internal/profiles"
	"newsharvest/internal/usecase"
)

// Application wires config to the ingestion pipeline and its lifecycle.
type Application struct {
	cfg          config.Config
	db           *sql.DB
	orchestrator *usecase.Orchestrator
	scheduler    *usecase.Scheduler
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := storage.NewPostgresStore(db)

	profileStore := profiles.NewStore(
		profiles.Defaults{MaxArticles: cfg.Fetch.MaxArticlesDefault},
		profilesFromConfig(cfg.Websites),
	)

	limiter := scraper.NewHostLimiter(cfg.Fetch.HostDelay())
	httpFetcher := scraper.NewHTTPFetcher(nil, limiter, cfg.Fetch.UserAgent, cfg.Fetch.HTTPTimeout())
	pool := scraper.NewSessionPool(int64(cfg.Fetch.MaxBrowserSessions))
	renderer := scraper.NewChromeRenderer(pool, cfg.Fetch.RenderTimeout())
	selector := scraper.NewStrategySelector(httpFetcher, renderer, baseLogger.With("component", "selector"))

	writer := dedup.NewWriter(store, baseLogger.With("component", "dedup"))

	registry := processor.NewRegistry()
	registry.Register(processor.NewRSSProcessor(
		httpFetcher, parser.NewRSSExtractor(), writer,
		cfg.Fetch.SourceTimeout(), baseLogger.With("component", "processor.rss"),
	))
	registry.Register(processor.NewHTMLProcessor(
		profileStore, selector, parser.NewHTMLExtractor(cfg.Fetch.MaxArticlesDefault), writer,
		cfg.Fetch.SourceTimeout(), baseLogger.With("component", "processor.html"),
	))

	var notifier ports.Notifier
	if cfg.Notifications.Telegram.BotToken != "" && cfg.Notifications.Telegram.ChatID != "" {
		notifier = telegram.NewNotifier(cfg.Notifications.Telegram.BotToken, cfg.Notifications.Telegram.ChatID)
	}

	orchestrator := usecase.NewOrchestrator(usecase.OrchestratorDeps{
		Sources:       store,
		Registry:      registry,
		Notifier:      notifier,
		MaxConcurrent: cfg.Fetch.MaxConcurrentSources,
		Logger:        baseLogger.With("component", "orchestrator"),
	})

	var sched *usecase.Scheduler
	if cfg.Scheduler.Interval() > 0 {
		driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval())
		sched = usecase.NewScheduler(driver, orchestrator)
	}

	return &Application{
		cfg:          cfg,
		db:           db,
		orchestrator: orchestrator,
		scheduler:    sched,
	}, nil
}

// RunOnce executes a single full ingestion run.
func (a *Application) RunOnce(ctx context.Context) domain.FetchRunResult {
	return a.orchestrator.RunAll(ctx)
}

// RunSource executes a single source by id.
func (a *Application) RunSource(ctx context.Context, sourceID string) (domain.ProcessingSummary, error) {
	return a.orchestrator.RunSource(ctx, sourceID)
}

// Scheduled reports whether recurring runs are configured.
func (a *Application) Scheduled() bool {
	return a.scheduler != nil
}

// StartScheduler begins recurring runs; it returns immediately.
func (a *Application) StartScheduler(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}
	return a.scheduler.Start(ctx)
}

// StopScheduler halts recurring runs.
func (a *Application) StopScheduler(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}
	return a.scheduler.Stop(ctx)
}

// Close releases the database handle.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func profilesFromConfig(defs []config.WebsiteProfile) []domain.ScrapingProfile {
	out := make([]domain.ScrapingProfile, 0, len(defs))
	for _, def := range defs {
		out = append(out, domain.ScrapingProfile{
			ID:                       def.ID,
			ArticleSelector:          def.ArticleSelector,
			TitleSelector:            def.TitleSelector,
			URLSelector:              def.URLSelector,
			DateSelector:             def.DateSelector,
			DescriptionSelector:      def.DescriptionSelector,
			TitleCleanPrefixes:       def.TitleCleanPrefixes,
			TitleCleanPatterns:       def.TitleCleanPatterns,
			MaxArticles:              def.MaxArticles,
			SkipArticlesWithoutDates: def.SkipArticlesWithoutDates,
		})
	}
	return out
}
