package model

// GeoPoint is a WGS84 coordinate in decimal degrees
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// City is a reference point used for nearest-city selection
type City struct {
	Code    string  `db:"code" json:"code"`
	Name    string  `db:"name" json:"name"`
	Country string  `db:"country" json:"country"`
	Lat     float64 `db:"lat" json:"lat"`
	Lng     float64 `db:"lng" json:"lng"`
	// Position keeps the catalog order, which decides nearest-city ties
	Position int `db:"position" json:"-"`
}

// Location returns the city's coordinate
func (c City) Location() GeoPoint {
	return GeoPoint{Lat: c.Lat, Lng: c.Lng}
}

// CityDistance is the distance from an origin to one reference city
type CityDistance struct {
	CityCode   string  `json:"city_code"`
	DistanceKm float64 `json:"distance_km"`
}
