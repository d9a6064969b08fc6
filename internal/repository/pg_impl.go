package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

type pgCityRepository struct {
	db *sqlx.DB
}

func (r *pgCityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	if err := r.db.SelectContext(ctx, &cities, "SELECT * FROM cities ORDER BY position, code"); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *pgCityRepository) GetCityByCode(ctx context.Context, code string) (*model.City, error) {
	var city model.City
	if err := r.db.GetContext(ctx, &city, "SELECT * FROM cities WHERE UPPER(code) = UPPER($1)", code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *pgCityRepository) FindNearestCity(ctx context.Context, origin model.GeoPoint) (*model.City, float64, error) {
	// Haversine via SQL; position breaks ties in catalog order
	q := `
		SELECT *, 6371 * 2 * atan2(sqrt(h), sqrt(1 - h)) AS distance
		FROM (
			SELECT c.*,
				least(1.0, greatest(0.0,
					power(sin(radians(c.lat - $1) / 2), 2) +
					cos(radians($1)) * cos(radians(c.lat)) *
					power(sin(radians(c.lng - $2) / 2), 2)
				)) AS h
			FROM cities c
		) AS scored
		ORDER BY distance ASC, position ASC
		LIMIT 1
	`
	type cityWithDist struct {
		model.City
		H        float64 `db:"h"`
		Distance float64 `db:"distance"`
	}

	var res cityWithDist
	if err := r.db.GetContext(ctx, &res, q, origin.Lat, origin.Lng); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	return &res.City, res.Distance, nil
}

func (r *pgCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	return chunks(len(cities), 2000, func(start, end int) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO cities (code, name, country, lat, lng, position)
		VALUES (:code, :name, :country, :lat, :lng, :position)
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name, country = EXCLUDED.country,
			lat = EXCLUDED.lat, lng = EXCLUDED.lng, position = EXCLUDED.position`,
			cities[start:end])
		return err
	})
}
