package seeder

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/crwd-api/internal/config"
	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/shopspring/decimal"
)

const (
	citiesFile = "cities.tsv"
	venuesFile = "venues.tsv"
	eventsFile = "events.tsv"
)

// Parser parses the catalog TSV files
type Parser struct {
	dataDir   string
	batchSize int
	// cities limits the import; empty allows all
	cities map[string]bool
	now    func() time.Time
}

// NewParser creates a new parser instance with config
func NewParser(dataDir string, seederCfg config.SeederConfig) *Parser {
	cities := make(map[string]bool)
	for _, code := range seederCfg.Cities {
		cities[strings.ToUpper(code)] = true
	}

	return &Parser{
		dataDir:   dataDir,
		batchSize: seederCfg.BatchSize,
		cities:    cities,
		now:       time.Now,
	}
}

// open returns the named table, preferring a zipped copy next to it
func (p *Parser) open(name string) (io.ReadCloser, error) {
	zipPath := filepath.Join(p.dataDir, strings.TrimSuffix(name, filepath.Ext(name))+".zip")
	if _, err := os.Stat(zipPath); err == nil {
		return openFromZip(zipPath, name)
	}

	file, err := os.Open(filepath.Join(p.dataDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return file, nil
}

type zipEntry struct {
	io.ReadCloser
	archive *zip.ReadCloser
}

func (z zipEntry) Close() error {
	z.ReadCloser.Close()
	return z.archive.Close()
}

func openFromZip(zipPath, name string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}

	var target *zip.File
	for _, f := range r.File {
		if filepath.Base(f.Name) == name {
			target = f
			break
		}
		if target == nil && strings.HasSuffix(f.Name, ".tsv") {
			target = f
		}
	}
	if target == nil {
		r.Close()
		return nil, fmt.Errorf("no %s file found in zip", name)
	}

	rc, err := target.Open()
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to open file in zip: %w", err)
	}
	return zipEntry{ReadCloser: rc, archive: r}, nil
}

// rows calls fn with the fields of every non-comment line
func rows(reader io.Reader, fn func(parts []string) error) error {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(strings.Split(line, "\t")); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// ParseCities parses cities.tsv: code, name, country, lat, lng.
// Position follows file order.
func (p *Parser) ParseCities() ([]model.City, error) {
	file, err := p.open(citiesFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return p.parseCitiesFromReader(file)
}

func (p *Parser) parseCitiesFromReader(reader io.Reader) ([]model.City, error) {
	var cities []model.City
	position := 0

	err := rows(reader, func(parts []string) error {
		if len(parts) < 5 {
			return nil
		}
		code := strings.ToUpper(strings.TrimSpace(parts[0]))
		lat, err := strconv.ParseFloat(parts[3], 64)
		if err != nil {
			return nil
		}
		lng, err := strconv.ParseFloat(parts[4], 64)
		if err != nil {
			return nil
		}

		pos := position
		position++
		if code == "" || (len(p.cities) > 0 && !p.cities[code]) {
			return nil
		}

		cities = append(cities, model.City{
			Code:     code,
			Name:     parts[1],
			Country:  parts[2],
			Lat:      lat,
			Lng:      lng,
			Position: pos,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan cities: %w", err)
	}
	return cities, nil
}

// ParseVenues parses venues.tsv, keeping venues of known cities:
// id, name, category, city_code, lat, lng, is_open, tags, description
func (p *Parser) ParseVenues(cityCodes map[string]bool) ([]model.Venue, error) {
	file, err := p.open(venuesFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return p.parseVenuesFromReader(file, cityCodes)
}

func (p *Parser) parseVenuesFromReader(reader io.Reader, cityCodes map[string]bool) ([]model.Venue, error) {
	var venues []model.Venue

	err := rows(reader, func(parts []string) error {
		if len(parts) < 7 {
			return nil
		}
		id, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil
		}
		cityCode := strings.ToUpper(parts[3])
		if !cityCodes[cityCode] {
			return nil
		}
		lat, err := strconv.ParseFloat(parts[4], 64)
		if err != nil {
			return nil
		}
		lng, err := strconv.ParseFloat(parts[5], 64)
		if err != nil {
			return nil
		}
		isOpen, err := strconv.ParseBool(parts[6])
		if err != nil {
			isOpen = true
		}

		venue := model.Venue{
			ID:       id,
			Name:     parts[1],
			Category: parts[2],
			CityCode: cityCode,
			Lat:      lat,
			Lng:      lng,
			IsOpen:   isOpen,
		}
		if len(parts) > 7 {
			venue.Tags = model.ParseTags(parts[7])
		}
		if len(parts) > 8 {
			venue.Description = parts[8]
		}
		venues = append(venues, venue)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan venues: %w", err)
	}
	return venues, nil
}

// ProcessEvents streams events.tsv in batches, keeping events of known venues:
// id, venue_id, name, date, start, end, price, category, interested, going, tags, description.
// A date of the form +N means N days after today.
func (p *Parser) ProcessEvents(venueIDs map[int]bool, callback func(batch []model.Event) error) error {
	file, err := p.open(eventsFile)
	if err != nil {
		return err
	}
	defer file.Close()

	return p.processEventsFromReader(file, venueIDs, callback)
}

func (p *Parser) processEventsFromReader(reader io.Reader, venueIDs map[int]bool, callback func(batch []model.Event) error) error {
	batchSize := p.batchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	batch := make([]model.Event, 0, batchSize)
	today := p.now()

	err := rows(reader, func(parts []string) error {
		event, ok := parseEvent(parts, today)
		if !ok || !venueIDs[event.VenueID] {
			return nil
		}
		batch = append(batch, event)

		if len(batch) >= batchSize {
			if err := callback(batch); err != nil {
				return fmt.Errorf("event callback error: %w", err)
			}
			batch = batch[:0]
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan events: %w", err)
	}

	if len(batch) > 0 {
		if err := callback(batch); err != nil {
			return fmt.Errorf("event callback error: %w", err)
		}
	}
	return nil
}

func parseEvent(parts []string, today time.Time) (model.Event, bool) {
	if len(parts) < 10 {
		return model.Event{}, false
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.Event{}, false
	}
	venueID, err := strconv.Atoi(parts[1])
	if err != nil {
		return model.Event{}, false
	}
	date, err := parseEventDate(parts[3], today)
	if err != nil {
		return model.Event{}, false
	}
	price, err := decimal.NewFromString(parts[6])
	if err != nil || price.IsNegative() {
		return model.Event{}, false
	}
	interested, _ := strconv.Atoi(parts[8])
	going, _ := strconv.Atoi(parts[9])

	event := model.Event{
		ID:              id,
		VenueID:         venueID,
		Name:            parts[2],
		Date:            date,
		StartTime:       parts[4],
		EndTime:         parts[5],
		Price:           price,
		Category:        model.ParseEventCategory(parts[7]),
		InterestedCount: interested,
		GoingCount:      going,
	}
	if len(parts) > 10 {
		event.Tags = model.ParseTags(parts[10])
	}
	if len(parts) > 11 {
		event.Description = parts[11]
	}
	return event, true
}

func parseEventDate(raw string, today time.Time) (time.Time, error) {
	if strings.HasPrefix(raw, "+") {
		days, err := strconv.Atoi(raw[1:])
		if err != nil {
			return time.Time{}, err
		}
		y, m, d := today.Date()
		return time.Date(y, m, d+days, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", raw)
}

// CreateCityCodeMap creates a set of city codes from cities slice
func CreateCityCodeMap(cities []model.City) map[string]bool {
	m := make(map[string]bool)
	for _, city := range cities {
		m[city.Code] = true
	}
	return m
}

// CreateVenueIDMap creates a set of venue IDs from venues slice
func CreateVenueIDMap(venues []model.Venue) map[int]bool {
	m := make(map[int]bool)
	for _, venue := range venues {
		m[venue.ID] = true
	}
	return m
}
