package seeder

import (
	"context"
	"fmt"

	"github.com/alexivanou/crwd-api/internal/config"
	"github.com/alexivanou/crwd-api/internal/database"
	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/alexivanou/crwd-api/internal/repository"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Summary counts the rows written by Seed
type Summary struct {
	Cities int
	Venues int
	Events int
}

// Seed imports cities, then venues, then events so foreign keys resolve
func Seed(ctx context.Context, parser *Parser, repos *repository.Container, logger *zap.Logger) (Summary, error) {
	var summary Summary

	logger.Info("Parsing cities...")
	cities, err := parser.ParseCities()
	if err != nil {
		return summary, fmt.Errorf("failed to parse cities: %w", err)
	}
	if err := repos.City.BulkInsertCities(ctx, cities); err != nil {
		return summary, fmt.Errorf("failed to insert cities: %w", err)
	}
	summary.Cities = len(cities)

	logger.Info("Parsing venues...")
	venues, err := parser.ParseVenues(CreateCityCodeMap(cities))
	if err != nil {
		return summary, fmt.Errorf("failed to parse venues: %w", err)
	}
	if err := repos.Venue.BulkInsertVenues(ctx, venues); err != nil {
		return summary, fmt.Errorf("failed to insert venues: %w", err)
	}
	summary.Venues = len(venues)

	logger.Info("Parsing events (streaming mode)...")
	err = parser.ProcessEvents(CreateVenueIDMap(venues), func(batch []model.Event) error {
		if err := repos.Event.BulkInsertEvents(ctx, batch); err != nil {
			return err
		}
		summary.Events += len(batch)
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("failed to process events: %w", err)
	}

	logger.Info("Catalog imported",
		zap.Int("cities", summary.Cities),
		zap.Int("venues", summary.Venues),
		zap.Int("events", summary.Events),
	)
	return summary, nil
}

// Bootstrap applies migrations and seeds the catalog when it has no cities.
// It reports whether a seed ran.
func Bootstrap(ctx context.Context, db *sqlx.DB, dbCfg config.DBConfig, seederCfg config.SeederConfig, migrationsDir string, logger *zap.Logger) (bool, error) {
	if err := database.Migrate(db, dbCfg, migrationsDir); err != nil {
		return false, fmt.Errorf("failed to run migrations: %w", err)
	}

	isEmpty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		return false, err
	}
	if !isEmpty {
		return false, nil
	}

	logger.Info("Database is empty, seeding catalog...", zap.String("data_dir", seederCfg.DataDir))
	repos := repository.NewRepositories(db, dbCfg.Type)
	if _, err := Seed(ctx, NewParser(seederCfg.DataDir, seederCfg), repos, logger); err != nil {
		return false, err
	}
	return true, nil
}
