package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/crwd-api/internal/geo"
	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/jmoiron/sqlx"
)

type sqliteCityRepository struct {
	db *sqlx.DB
}

func (r *sqliteCityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	if err := r.db.SelectContext(ctx, &cities, "SELECT * FROM cities ORDER BY position, code"); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *sqliteCityRepository) GetCityByCode(ctx context.Context, code string) (*model.City, error) {
	var city model.City
	if err := r.db.GetContext(ctx, &city, "SELECT * FROM cities WHERE UPPER(code) = UPPER(?)", code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

// FindNearestCity scans the whole catalog in Go. The reference list is a
// handful of rows, so no bounding box prefilter is needed.
func (r *sqliteCityRepository) FindNearestCity(ctx context.Context, origin model.GeoPoint) (*model.City, float64, error) {
	cities, err := r.ListCities(ctx)
	if err != nil {
		return nil, 0, err
	}

	code, err := geo.NearestCity(origin, geo.CandidatesFromCities(cities))
	if errors.Is(err, geo.ErrNoCandidates) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	for i := range cities {
		if cities[i].Code == code {
			return &cities[i], geo.Haversine(origin, cities[i].Location()), nil
		}
	}
	return nil, 0, nil
}

func (r *sqliteCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	// 100 rows * 6 params stays well within the SQLite variable limit
	return chunks(len(cities), 100, func(start, end int) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT OR REPLACE INTO cities (code, name, country, lat, lng, position)
		VALUES (:code, :name, :country, :lat, :lng, :position)`,
			cities[start:end])
		return err
	})
}
