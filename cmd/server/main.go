// Package main implements the entry point for the hanzi-api server, a
// spaced repetition vocabulary trainer for Chinese with optional Gemini
// powered enrichment and practice dialogues.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/phrazzld/hanzi-api/internal/config"
	"github.com/phrazzld/hanzi-api/internal/platform/logger"
	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		log.Fatalf("hanzi-api: %v", err)
	}
}

// run parses flags, loads configuration and either executes a migration
// command or serves the API until shutdown.
func run(args []string) error {
	flags := config.NewFlagSet("hanzi-api")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadWithOptions(config.LoadOptions{
		EnvFiles: []string{".env"},
		Flags:    flags,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("Server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("auth_enabled", cfg.Auth.Enabled),
		slog.Bool("llm_enabled", cfg.LLM.Enabled()))

	ctx := context.Background()

	db, err := setupAppDatabase(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	migrateCmd, _ := flags.GetString(config.FlagMigrate)
	if migrateCmd != "" {
		defer func() {
			if err := db.Close(); err != nil {
				appLogger.Error("Error closing database connection", slog.String("error", err.Error()))
			}
		}()
		return runMigrations(ctx, db, migrateCmd, appLogger)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
