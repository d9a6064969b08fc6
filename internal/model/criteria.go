package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTrendingThreshold is the minimum engagement for trending results
const DefaultTrendingThreshold = 200

// DateWindow is an inclusive calendar-date range. A zero bound is open.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// PriceRange is an inclusive price range
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// FilterCriteria holds the event filters. Nil or empty fields do not constrain.
type FilterCriteria struct {
	SearchText        string
	DateWindow        *DateWindow
	PriceRange        *PriceRange
	Categories        []string
	Trending          bool
	TrendingThreshold int
	CityCode          string
}

// Threshold returns the trending threshold in effect
func (c FilterCriteria) Threshold() int {
	if c.TrendingThreshold <= 0 {
		return DefaultTrendingThreshold
	}
	return c.TrendingThreshold
}

// VenueCriteria holds the venue filters
type VenueCriteria struct {
	SearchText string
	Categories []string
	OpenOnly   bool
	CityCode   string
	// Origin enables distance ordering; RadiusKm > 0 drops venues further away
	Origin   *GeoPoint
	RadiusKm float64
}
