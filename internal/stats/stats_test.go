package stats

import (
	"context"
	"testing"
	"time"

	"github.com/alexivanou/crwd-api/internal/config"
	"github.com/alexivanou/crwd-api/internal/database"
	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/alexivanou/crwd-api/internal/repository"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSessions int

func (f fixedSessions) Len() int { return int(f) }

func setupTestDB(t *testing.T) (*sqlx.DB, config.DBConfig) {
	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "stats_" + uuid.NewString()}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))
	return db, cfg
}

func TestCollector_Collect(t *testing.T) {
	db, cfg := setupTestDB(t)
	ctx := context.Background()

	repos := repository.NewRepositories(db, cfg.Type)
	require.NoError(t, repos.City.BulkInsertCities(ctx, []model.City{{Code: "IASI", Name: "Iasi", Lat: 47.1585, Lng: 27.6014}}))
	require.NoError(t, repos.Venue.BulkInsertVenues(ctx, []model.Venue{
		{ID: 1, Name: "Fire Club", CityCode: "IASI", Lat: 47.17, Lng: 27.576, IsOpen: true},
		{ID: 2, Name: "Underground", CityCode: "IASI", Lat: 47.16, Lng: 27.58},
	}))
	require.NoError(t, repos.Event.BulkInsertEvents(ctx, []model.Event{
		{ID: 1, VenueID: 1, Name: "Past", Date: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), Price: decimal.Zero, Category: model.CategoryParty},
		{ID: 2, VenueID: 1, Name: "Tonight", Date: time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), Price: decimal.Zero, Category: model.CategoryParty},
		{ID: 3, VenueID: 1, Name: "Later", Date: time.Date(2026, 10, 30, 0, 0, 0, 0, time.UTC), Price: decimal.Zero, Category: model.CategoryConcert},
	}))

	collector := NewCollector(db, cfg, fixedSessions(4))
	collector.now = func() time.Time { return time.Date(2026, 10, 16, 22, 0, 0, 0, time.UTC) }

	stats, err := collector.Collect(ctx)
	require.NoError(t, err)

	assert.Equal(t, "memory", stats.Catalog.Backend)
	assert.Equal(t, int64(1), stats.Catalog.Cities)
	assert.Equal(t, int64(2), stats.Catalog.Venues)
	assert.Equal(t, int64(1), stats.Catalog.OpenVenues)
	assert.Equal(t, int64(3), stats.Catalog.Events)
	assert.Equal(t, int64(2), stats.Catalog.UpcomingEvents)
	assert.Equal(t, map[string]int64{"party": 1, "concert": 1}, stats.Catalog.ByCategory)
	assert.Equal(t, 4, stats.Redemptions.ActiveSessions)

	assert.Greater(t, stats.Runtime.HeapAlloc, uint64(0))
	assert.GreaterOrEqual(t, stats.Runtime.Goroutines, 1)
}

func TestCollector_EmptyDB(t *testing.T) {
	db, cfg := setupTestDB(t)

	collector := NewCollector(db, cfg, nil)

	stats, err := collector.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(0), stats.Catalog.Events)
	assert.Empty(t, stats.Catalog.ByCategory)
	assert.Equal(t, 0, stats.Redemptions.ActiveSessions)
}
