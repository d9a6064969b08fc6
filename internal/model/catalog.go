package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventCategory enumerates the kinds of events listed in the app
type EventCategory string

const (
	CategoryParty    EventCategory = "party"
	CategoryConcert  EventCategory = "concert"
	CategoryJazz     EventCategory = "jazz"
	CategoryKaraoke  EventCategory = "karaoke"
	CategoryStandup  EventCategory = "standup"
	CategoryFestival EventCategory = "festival"
	CategoryOther    EventCategory = "other"
)

// ParseEventCategory maps a raw value to a known category.
// Unknown values fall back to CategoryOther.
func ParseEventCategory(raw string) EventCategory {
	switch c := EventCategory(raw); c {
	case CategoryParty, CategoryConcert, CategoryJazz, CategoryKaraoke, CategoryStandup, CategoryFestival:
		return c
	default:
		return CategoryOther
	}
}

// Venue is a bar or club from the catalog
type Venue struct {
	ID          int     `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Category    string  `db:"category" json:"category"`
	CityCode    string  `db:"city_code" json:"city_code"`
	Description string  `db:"description" json:"description"`
	Lat         float64 `db:"lat" json:"lat"`
	Lng         float64 `db:"lng" json:"lng"`
	Tags        Tags    `db:"tags" json:"tags"`
	IsOpen      bool    `db:"is_open" json:"is_open"`
}

// Location returns the venue coordinate
func (v Venue) Location() GeoPoint {
	return GeoPoint{Lat: v.Lat, Lng: v.Lng}
}

// Event is a dated happening hosted by a venue
type Event struct {
	ID              int             `db:"id" json:"id"`
	VenueID         int             `db:"venue_id" json:"venue_id"`
	VenueName       string          `db:"venue_name" json:"venue_name"`
	CityCode        string          `db:"city_code" json:"city_code"`
	Name            string          `db:"name" json:"name"`
	Description     string          `db:"description" json:"description"`
	Date            time.Time       `db:"event_date" json:"date"`
	StartTime       string          `db:"start_time" json:"start_time"`
	EndTime         string          `db:"end_time" json:"end_time"`
	Price           decimal.Decimal `db:"price" json:"price"`
	Category        EventCategory   `db:"category" json:"category"`
	Tags            Tags            `db:"tags" json:"tags"`
	InterestedCount int             `db:"interested_count" json:"interested_count"`
	GoingCount      int             `db:"going_count" json:"going_count"`
}

// Engagement is the score used by trending mode
func (e Event) Engagement() int {
	return e.InterestedCount + e.GoingCount
}
