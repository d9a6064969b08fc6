package repository

import (
	"context"

	"github.com/alexivanou/crwd-api/internal/config"
	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// CityRepository defines operations for reference cities
type CityRepository interface {
	ListCities(ctx context.Context) ([]model.City, error)
	GetCityByCode(ctx context.Context, code string) (*model.City, error)
	FindNearestCity(ctx context.Context, origin model.GeoPoint) (*model.City, float64, error)
	BulkInsertCities(ctx context.Context, cities []model.City) error
}

// VenueRepository defines operations for venues
type VenueRepository interface {
	// ListVenues returns venues ordered by id. An empty cityCode lists every city.
	ListVenues(ctx context.Context, cityCode string) ([]model.Venue, error)
	GetVenueByID(ctx context.Context, id int) (*model.Venue, error)
	BulkInsertVenues(ctx context.Context, venues []model.Venue) error
}

// EventRepository defines operations for events
type EventRepository interface {
	// ListEvents returns events joined with their venue, ordered by id
	ListEvents(ctx context.Context, cityCode string) ([]model.Event, error)
	ListEventsByVenue(ctx context.Context, venueID int) ([]model.Event, error)
	GetEventByID(ctx context.Context, id int) (*model.Event, error)
	BulkInsertEvents(ctx context.Context, events []model.Event) error
}

// Container holds all repositories
type Container struct {
	City  CityRepository
	Venue VenueRepository
	Event EventRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	catalog := &catalogRepository{db: db, chunkSize: 100}

	if dbType == config.DBTypePostgreSQL {
		// PG allows 65535 parameters per statement
		catalog.chunkSize = 1000
		return &Container{
			City:  &pgCityRepository{db: db},
			Venue: catalog,
			Event: catalog,
		}
	}

	// Default to SQLite
	return &Container{
		City:  &sqliteCityRepository{db: db},
		Venue: catalog,
		Event: catalog,
	}
}

// IsDatabaseEmpty reports whether the city catalog has no rows (used by main)
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM cities"); err != nil {
		// Treat a missing table as empty
		return true, nil
	}
	return count == 0, nil
}

func chunks(n, size int, fn func(start, end int) error) error {
	for i := 0; i < n; i += size {
		end := i + size
		if end > n {
			end = n
		}
		if err := fn(i, end); err != nil {
			return err
		}
	}
	return nil
}
