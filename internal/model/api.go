package model

import "time"

// NearestCityRequest carries the caller's position or the reason it is missing
type NearestCityRequest struct {
	Origin *GeoPoint
	// LocationError is what the client reported when it could not get a position
	LocationError string
}

// NearestCityResponse represents the response for nearest city search
type NearestCityResponse struct {
	City         City           `json:"city"`
	Origin       GeoPoint       `json:"origin"`
	DistanceKm   float64        `json:"distance_km"`
	Fallback     bool           `json:"fallback"`
	Prompt       string         `json:"prompt,omitempty"`
	Alternatives []CityDistance `json:"alternatives"`
}

// EventsResponse represents a filtered event listing
type EventsResponse struct {
	Results []Event `json:"results"`
	Count   int     `json:"count"`
}

// VenueResult is a venue with its distance from the request origin
type VenueResult struct {
	Venue
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// VenuesResponse represents a filtered venue listing
type VenuesResponse struct {
	Results []VenueResult `json:"results"`
	Count   int           `json:"count"`
}

// RedemptionResponse shows the code a member reads out to staff
type RedemptionResponse struct {
	ID               string    `json:"id"`
	VenueID          int       `json:"venue_id"`
	Code             string    `json:"code"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
	SecondsRemaining int       `json:"seconds_remaining"`
}

// DashboardResponse is the role specific landing payload
type DashboardResponse struct {
	Role   Role             `json:"role"`
	Member *MemberDashboard `json:"member,omitempty"`
	Bar    *BarDashboard    `json:"bar,omitempty"`
	Brand  *BrandDashboard  `json:"brand,omitempty"`
}

// MemberDashboard is the discovery home for members
type MemberDashboard struct {
	Trending []Event `json:"trending"`
	Upcoming int     `json:"upcoming"`
}

// BarDashboard summarises one venue for its owner
type BarDashboard struct {
	Venue           Venue   `json:"venue"`
	Events          int     `json:"events"`
	InterestedTotal int     `json:"interested_total"`
	GoingTotal      int     `json:"going_total"`
	GrowthPercent   float64 `json:"growth_percent"`
}

// BrandDashboard aggregates engagement per event category
type BrandDashboard struct {
	Venues     int               `json:"venues"`
	Categories []CategoryMetrics `json:"categories"`
}

// CategoryMetrics is the engagement of one event category
type CategoryMetrics struct {
	Category      EventCategory `json:"category"`
	Events        int           `json:"events"`
	Engagement    int           `json:"engagement"`
	GrowthPercent float64       `json:"growth_percent"`
}
