package main

import (
	"context"
	"flag"
	"log"

	"github.com/alexivanou/crwd-api/internal/config"
	"github.com/alexivanou/crwd-api/internal/database"
	"github.com/alexivanou/crwd-api/internal/repository"
	"github.com/alexivanou/crwd-api/internal/seeder"
	"go.uber.org/zap"
)

func main() {
	var (
		dataDir    = flag.String("data", "", "Directory with cities.tsv, venues.tsv and events.tsv (defaults to SEEDER_DATA_DIR)")
		migrations = flag.String("migrations", "migrations", "Migrations directory")
	)
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if *dataDir != "" {
		cfg.Seeder.DataDir = *dataDir
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	// Make sure the schema exists; a no-op when already migrated
	if err := database.Migrate(db, cfg.DB, *migrations); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	logger.Info("Starting data import...",
		zap.String("data_dir", cfg.Seeder.DataDir),
		zap.Strings("cities", cfg.Seeder.Cities),
	)

	repos := repository.NewRepositories(db, cfg.DB.Type)
	parser := seeder.NewParser(cfg.Seeder.DataDir, cfg.Seeder)

	summary, err := seeder.Seed(ctx, parser, repos, logger)
	if err != nil {
		logger.Fatal("Data import failed", zap.Error(err))
	}

	logger.Info("Data import completed successfully!",
		zap.Int("cities", summary.Cities),
		zap.Int("venues", summary.Venues),
		zap.Int("events", summary.Events),
	)
}
