package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/jmoiron/sqlx"
)

// catalogRepository serves venues and events on both dialects.
// Queries are written with ? and rebound for the driver.
type catalogRepository struct {
	db        *sqlx.DB
	chunkSize int
}

const eventColumns = `
	e.id, e.venue_id, v.name AS venue_name, v.city_code,
	e.name, e.description, e.event_date, e.start_time, e.end_time,
	e.price, e.category, e.tags, e.interested_count, e.going_count`

func (r *catalogRepository) ListVenues(ctx context.Context, cityCode string) ([]model.Venue, error) {
	q := "SELECT * FROM venues"
	var args []interface{}
	if cityCode != "" {
		q += " WHERE UPPER(city_code) = UPPER(?)"
		args = append(args, cityCode)
	}
	q += " ORDER BY id"

	var venues []model.Venue
	if err := r.db.SelectContext(ctx, &venues, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to list venues: %w", err)
	}
	return venues, nil
}

func (r *catalogRepository) GetVenueByID(ctx context.Context, id int) (*model.Venue, error) {
	var venue model.Venue
	if err := r.db.GetContext(ctx, &venue, r.db.Rebind("SELECT * FROM venues WHERE id = ?"), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &venue, nil
}

func (r *catalogRepository) BulkInsertVenues(ctx context.Context, venues []model.Venue) error {
	return chunks(len(venues), r.chunkSize, func(start, end int) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO venues (id, name, category, city_code, description, lat, lng, tags, is_open)
		VALUES (:id, :name, :category, :city_code, :description, :lat, :lng, :tags, :is_open)`,
			venues[start:end])
		return err
	})
}

func (r *catalogRepository) ListEvents(ctx context.Context, cityCode string) ([]model.Event, error) {
	q := "SELECT " + eventColumns + " FROM events e JOIN venues v ON v.id = e.venue_id"
	var args []interface{}
	if cityCode != "" {
		q += " WHERE UPPER(v.city_code) = UPPER(?)"
		args = append(args, cityCode)
	}
	q += " ORDER BY e.id"

	var events []model.Event
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (r *catalogRepository) ListEventsByVenue(ctx context.Context, venueID int) ([]model.Event, error) {
	q := "SELECT " + eventColumns + " FROM events e JOIN venues v ON v.id = e.venue_id WHERE e.venue_id = ? ORDER BY e.id"
	var events []model.Event
	if err := r.db.SelectContext(ctx, &events, r.db.Rebind(q), venueID); err != nil {
		return nil, fmt.Errorf("failed to list venue events: %w", err)
	}
	return events, nil
}

func (r *catalogRepository) GetEventByID(ctx context.Context, id int) (*model.Event, error) {
	q := "SELECT " + eventColumns + " FROM events e JOIN venues v ON v.id = e.venue_id WHERE e.id = ?"
	var event model.Event
	if err := r.db.GetContext(ctx, &event, r.db.Rebind(q), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *catalogRepository) BulkInsertEvents(ctx context.Context, events []model.Event) error {
	return chunks(len(events), r.chunkSize, func(start, end int) error {
		_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO events (id, venue_id, name, description, event_date, start_time, end_time,
			price, category, tags, interested_count, going_count)
		VALUES (:id, :venue_id, :name, :description, :event_date, :start_time, :end_time,
			:price, :category, :tags, :interested_count, :going_count)`,
			events[start:end])
		return err
	})
}
