// Package geo resolves the caller's position and the nearest reference city.
package geo

import (
	"errors"
	"math"
	"sort"

	"github.com/alexivanou/crwd-api/internal/model"
)

const earthRadiusKm = 6371.0

// ErrNoCandidates is returned when nearest-city selection gets an empty list
var ErrNoCandidates = errors.New("no candidate cities")

// Candidate is a named reference point
type Candidate struct {
	ID       string
	Location model.GeoPoint
}

// CandidatesFromCities keeps the catalog order of cities
func CandidatesFromCities(cities []model.City) []Candidate {
	out := make([]Candidate, 0, len(cities))
	for _, c := range cities {
		out = append(out, Candidate{ID: c.Code, Location: c.Location()})
	}
	return out
}

// Haversine returns the great-circle distance in kilometres
func Haversine(a, b model.GeoPoint) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// NearestCity returns the id of the closest candidate.
// On exactly equal distances the earlier candidate wins.
func NearestCity(origin model.GeoPoint, candidates []Candidate) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}

	best := 0
	bestDist := Haversine(origin, candidates[0].Location)
	for i := 1; i < len(candidates); i++ {
		if d := Haversine(origin, candidates[i].Location); d < bestDist {
			best, bestDist = i, d
		}
	}
	return candidates[best].ID, nil
}

// RankByDistance lists every candidate by ascending distance, stable on ties
func RankByDistance(origin model.GeoPoint, candidates []Candidate) []model.CityDistance {
	ranked := make([]model.CityDistance, len(candidates))
	for i, c := range candidates {
		ranked[i] = model.CityDistance{CityCode: c.ID, DistanceKm: Haversine(origin, c.Location)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].DistanceKm < ranked[j].DistanceKm
	})
	return ranked
}

// ValidCoordinate reports whether p is within the lat/lng ranges
func ValidCoordinate(p model.GeoPoint) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
