package seeder

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexivanou/crwd-api/internal/config"
	"github.com/alexivanou/crwd-api/internal/database"
	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/alexivanou/crwd-api/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const citiesTSV = `# code	name	country	lat	lng
BUCHAREST	Bucharest	RO	44.4268	26.1025
CLUJ	Cluj-Napoca	RO	46.7712	23.6236
BROKEN	Nowhere	RO	north	east
BRASOV	Brasov	RO	45.6579	25.6012
`

const venuesTSV = `# id	name	category	city	lat	lng	open	tags	description
1	Control Club	club	BUCHAREST	44.4361	26.0996	true	techno,live	Basement club
2	Form Space	club	CLUJ	46.7697	23.5890	false	electronic
3	Ghost Bar	bar	PARIS	48.85	2.35	true
x	Bad Row	bar	CLUJ	46.7	23.5	true
`

const eventsTSV = `# id	venue	name	date	start	end	price	category	interested	going	tags	description
10	1	Techno Night	2026-10-20	23:00	06:00	45.50	party	150	80	techno,dj	All night long
11	2	Jazz Jam	+3	20:00	23:00	0	jazz	10	5
12	3	Orphan	2026-10-20	20:00	23:00	10	party	1	1
13	1	Mystery	2026-10-21	20:00	23:00	15	poetry	0	0
14	1	Negative	2026-10-21	20:00	23:00	-5	party	0	0
`

func TestCreateCityCodeMap(t *testing.T) {
	codes := CreateCityCodeMap([]model.City{{Code: "BUCHAREST"}, {Code: "CLUJ"}})

	assert.True(t, codes["BUCHAREST"])
	assert.True(t, codes["CLUJ"])
	assert.False(t, codes["IASI"])
}

func TestCreateVenueIDMap(t *testing.T) {
	ids := CreateVenueIDMap([]model.Venue{{ID: 1}, {ID: 7}})

	assert.True(t, ids[1])
	assert.True(t, ids[7])
	assert.False(t, ids[2])
}

func TestParser_ParseCities(t *testing.T) {
	t.Run("All cities", func(t *testing.T) {
		parser := NewParser("", config.SeederConfig{})
		cities, err := parser.parseCitiesFromReader(strings.NewReader(citiesTSV))
		require.NoError(t, err)

		require.Len(t, cities, 3)
		assert.Equal(t, "BUCHAREST", cities[0].Code)
		assert.Equal(t, 0, cities[0].Position)
		assert.Equal(t, "BRASOV", cities[2].Code)
		assert.Equal(t, 2, cities[2].Position)
	})

	t.Run("Filtered cities", func(t *testing.T) {
		parser := NewParser("", config.SeederConfig{Cities: []string{"cluj"}})
		cities, err := parser.parseCitiesFromReader(strings.NewReader(citiesTSV))
		require.NoError(t, err)

		require.Len(t, cities, 1)
		assert.Equal(t, "CLUJ", cities[0].Code)
		assert.Equal(t, 1, cities[0].Position)
	})
}

func TestParser_ParseVenues(t *testing.T) {
	parser := NewParser("", config.SeederConfig{})
	known := map[string]bool{"BUCHAREST": true, "CLUJ": true}

	venues, err := parser.parseVenuesFromReader(strings.NewReader(venuesTSV), known)
	require.NoError(t, err)

	require.Len(t, venues, 2)
	assert.Equal(t, "Control Club", venues[0].Name)
	assert.Equal(t, model.Tags{"techno", "live"}, venues[0].Tags)
	assert.Equal(t, "Basement club", venues[0].Description)
	assert.True(t, venues[0].IsOpen)
	assert.False(t, venues[1].IsOpen)
	assert.Empty(t, venues[1].Description)
}

func TestParser_ProcessEvents(t *testing.T) {
	parser := NewParser("", config.SeederConfig{BatchSize: 2})
	parser.now = func() time.Time { return time.Date(2026, 10, 16, 21, 30, 0, 0, time.UTC) }

	var batches [][]model.Event
	err := parser.processEventsFromReader(strings.NewReader(eventsTSV), map[int]bool{1: true, 2: true},
		func(batch []model.Event) error {
			batches = append(batches, append([]model.Event(nil), batch...))
			return nil
		})
	require.NoError(t, err)

	// 10, 11 in the first batch; 13 in the flush
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 1)

	techno := batches[0][0]
	assert.Equal(t, "45.5", techno.Price.String())
	assert.Equal(t, model.Tags{"techno", "dj"}, techno.Tags)
	assert.Equal(t, 230, techno.Engagement())

	jazz := batches[0][1]
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), jazz.Date)
	assert.True(t, jazz.Price.IsZero())

	assert.Equal(t, model.CategoryOther, batches[1][0].Category)
}

func TestParser_ZipArchive(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "cities.zip"))
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("cities.tsv")
	require.NoError(t, err)
	_, err = w.Write([]byte(citiesTSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	parser := NewParser(dir, config.SeederConfig{})
	cities, err := parser.ParseCities()
	require.NoError(t, err)
	assert.Len(t, cities, 3)
}

func TestParser_MissingFile(t *testing.T) {
	parser := NewParser(t.TempDir(), config.SeederConfig{})
	_, err := parser.ParseCities()
	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cities.tsv"), []byte(citiesTSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "venues.tsv"), []byte(venuesTSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.tsv"), []byte(eventsTSV), 0644))

	cfg := config.DBConfig{Type: config.DBTypeMemory, Name: "seed_" + uuid.NewString()}
	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))

	repos := repository.NewRepositories(db, cfg.Type)
	summary, err := Seed(context.Background(), NewParser(dir, config.SeederConfig{BatchSize: 10}), repos, zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, Summary{Cities: 3, Venues: 2, Events: 3}, summary)

	events, err := repos.Event.ListEvents(context.Background(), "BUCHAREST")
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestBootstrap(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cities.tsv"), []byte(citiesTSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "venues.tsv"), []byte(venuesTSV), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "events.tsv"), []byte(eventsTSV), 0644))

	ctx := context.Background()
	dbCfg := config.DBConfig{Type: config.DBTypeMemory, Name: "boot_" + uuid.NewString()}
	db, err := database.Connect(ctx, dbCfg)
	require.NoError(t, err)
	defer db.Close()

	seederCfg := config.SeederConfig{DataDir: dir, BatchSize: 10}

	seeded, err := Bootstrap(ctx, db, dbCfg, seederCfg, "../../migrations", zap.NewNop())
	require.NoError(t, err)
	assert.True(t, seeded)

	repos := repository.NewRepositories(db, dbCfg.Type)
	cities, err := repos.City.ListCities(ctx)
	require.NoError(t, err)
	assert.Len(t, cities, 3)

	// A populated catalog is left alone
	seeded, err = Bootstrap(ctx, db, dbCfg, seederCfg, "../../migrations", zap.NewNop())
	require.NoError(t, err)
	assert.False(t, seeded)

	venues, err := repos.Venue.ListVenues(ctx, "")
	require.NoError(t, err)
	assert.Len(t, venues, 2)
}

func TestParser_ShippedCatalog(t *testing.T) {
	parser := NewParser("../../data", config.SeederConfig{BatchSize: 100})

	cities, err := parser.ParseCities()
	require.NoError(t, err)
	require.Len(t, cities, 6)

	byCode := make(map[string]model.City, len(cities))
	for _, c := range cities {
		byCode[c.Code] = c
	}
	// The geo and service tests use these same coordinates
	assert.InDelta(t, 44.4268, byCode["BUCHAREST"].Lat, 1e-9)
	assert.InDelta(t, 45.6579, byCode["BRASOV"].Lat, 1e-9)
	assert.InDelta(t, 25.6012, byCode["BRASOV"].Lng, 1e-9)

	venues, err := parser.ParseVenues(CreateCityCodeMap(cities))
	require.NoError(t, err)
	assert.Len(t, venues, 16)

	var events int
	require.NoError(t, parser.ProcessEvents(CreateVenueIDMap(venues), func(batch []model.Event) error {
		events += len(batch)
		return nil
	}))
	assert.Equal(t, 22, events)
}
