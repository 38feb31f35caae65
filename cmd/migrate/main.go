package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/cookingbylea/recipes/backend/config"
	"github.com/cookingbylea/recipes/backend/internal/database"
	"github.com/cookingbylea/recipes/backend/internal/logging"
)

func main() {
	dir := flag.String("dir", "", "migrations directory (defaults to MIGRATIONS_DIR)")
	flag.Parse()

	if err := run(*dir); err != nil {
		log.Fatalf("migrate: %v", err)
	}
}

func run(dir string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if dir != "" {
		cfg.MigrationsDir = dir
	}

	logger, shutdown, err := logging.FromConfig(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	db, err := database.New(cfg, logger)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.RunMigrations(db, cfg.MigrationsDir, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("All migrations applied successfully", slog.String("dir", cfg.MigrationsDir))
	return nil
}
