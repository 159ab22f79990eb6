package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/hanzi-api/internal/config"
	"github.com/phrazzld/hanzi-api/internal/domain/srs"
	"github.com/phrazzld/hanzi-api/internal/generation"
	"github.com/phrazzld/hanzi-api/internal/platform/gemini"
	"github.com/phrazzld/hanzi-api/internal/platform/postgres"
	"github.com/phrazzld/hanzi-api/internal/reminder"
	"github.com/phrazzld/hanzi-api/internal/service"
	"github.com/phrazzld/hanzi-api/internal/service/auth"
	"github.com/phrazzld/hanzi-api/internal/service/review_session"
	"github.com/phrazzld/hanzi-api/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	cardStore   store.CardStore
	folderStore store.FolderStore

	// Services
	jwtService      auth.JWTService
	generator       generation.Generator
	cardService     service.CardService
	folderService   service.FolderService
	statsService    service.StatsService
	practiceService service.PracticeService
	reviewManager   review_session.Manager

	// Background jobs
	reminder *reminder.Reminder
}

// newApplication creates a new application instance with all dependencies initialized.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	if cfg.Auth.Enabled {
		app.jwtService, err = auth.NewJWTService(cfg.Auth)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
		}
		logger.Info("JWT authentication service initialized",
			slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))
	} else {
		logger.Warn("Authentication disabled; API routes are open")
	}

	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.folderStore = postgres.NewPostgresFolderStore(db, logger)
	tx := store.NewSQLTransactor(db)

	app.generator, err = newGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	app.cardService, err = service.NewCardService(app.cardStore, app.folderStore, tx, app.generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.folderService, err = service.NewFolderService(app.cardStore, app.folderStore, tx, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create folder service: %w", err)
	}

	app.statsService, err = service.NewStatsService(app.cardStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create stats service: %w", err)
	}

	app.practiceService, err = service.NewPracticeService(app.cardStore, app.generator, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create practice service: %w", err)
	}

	app.reviewManager, err = review_session.NewManager(app.cardStore, srs.NewDefaultScheduler(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create review session manager: %w", err)
	}

	app.reminder = reminder.New(app.cardStore, cfg.Reminder.IntervalMinutes, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// newGenerator returns the Gemini generator when an API key is configured
// and a generator that reports ErrUnavailable otherwise.
func newGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (generation.Generator, error) {
	if !cfg.Enabled() {
		logger.Warn("No Gemini API key configured; enrichment and dialogues are unavailable")
		return generation.Unavailable{}, nil
	}

	gen, err := gemini.NewGeminiGenerator(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	logger.Info("LLM generator initialized", slog.String("model", cfg.ModelName))
	return gen, nil
}

// Run starts the background jobs and the HTTP server, and blocks until the
// server shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.reminder.Start(); err != nil {
		return fmt.Errorf("failed to start reminder: %w", err)
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.reminder != nil {
		app.reminder.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("Application shutdown completed")
}
