package api

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/crwd-api/internal/geo"
	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// maxPrice stands in for an open upper price bound
var maxPrice = decimal.NewFromInt(math.MaxInt64)

// parseOrigin reads lat and lng. Both or neither must be present.
func parseOrigin(q url.Values) (*model.GeoPoint, error) {
	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errors.New("parameters 'lat' and 'lng' must be given together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, errors.New("invalid lat parameter")
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, errors.New("invalid lng parameter")
	}

	p := model.GeoPoint{Lat: lat, Lng: lng}
	if !geo.ValidCoordinate(p) {
		return nil, errors.New("invalid coordinates range")
	}
	return &p, nil
}

// listParam collects a parameter given repeatedly or as a comma separated list
func listParam(q url.Values, key string) []string {
	var out []string
	for _, raw := range q[key] {
		for _, part := range strings.Split(raw, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

func parseBool(q url.Values, key string) (bool, error) {
	raw := q.Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s parameter", key)
	}
	return v, nil
}

func parseDate(q url.Values, key string) (time.Time, error) {
	raw := q.Get(key)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s parameter, expected YYYY-MM-DD", key)
	}
	return t, nil
}

func parsePrice(q url.Values, key string, def decimal.Decimal) (decimal.Decimal, error) {
	raw := q.Get(key)
	if raw == "" {
		return def, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid %s parameter", key)
	}
	return d, nil
}

func parseEventCriteria(q url.Values) (model.FilterCriteria, error) {
	criteria := model.FilterCriteria{
		SearchText: strings.TrimSpace(q.Get("q")),
		Categories: listParam(q, "category"),
		CityCode:   q.Get("city"),
	}

	from, err := parseDate(q, "from")
	if err != nil {
		return criteria, err
	}
	to, err := parseDate(q, "to")
	if err != nil {
		return criteria, err
	}
	if !from.IsZero() || !to.IsZero() {
		if !from.IsZero() && !to.IsZero() && to.Before(from) {
			return criteria, errors.New("'to' must not be before 'from'")
		}
		criteria.DateWindow = &model.DateWindow{Start: from, End: to}
	}

	if q.Get("min_price") != "" || q.Get("max_price") != "" {
		lo, err := parsePrice(q, "min_price", decimal.Zero)
		if err != nil {
			return criteria, err
		}
		hi, err := parsePrice(q, "max_price", maxPrice)
		if err != nil {
			return criteria, err
		}
		if hi.LessThan(lo) {
			return criteria, errors.New("'max_price' must not be below 'min_price'")
		}
		criteria.PriceRange = &model.PriceRange{Min: lo, Max: hi}
	}

	if criteria.Trending, err = parseBool(q, "trending"); err != nil {
		return criteria, err
	}
	if raw := q.Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return criteria, errors.New("invalid threshold parameter")
		}
		criteria.TrendingThreshold = n
	}

	return criteria, nil
}

func parseVenueCriteria(q url.Values) (model.VenueCriteria, error) {
	criteria := model.VenueCriteria{
		SearchText: strings.TrimSpace(q.Get("q")),
		Categories: listParam(q, "category"),
		CityCode:   q.Get("city"),
	}

	var err error
	if criteria.OpenOnly, err = parseBool(q, "open"); err != nil {
		return criteria, err
	}
	if criteria.Origin, err = parseOrigin(q); err != nil {
		return criteria, err
	}

	if raw := q.Get("radius_km"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			return criteria, errors.New("invalid radius_km parameter")
		}
		if criteria.Origin == nil {
			return criteria, errors.New("radius_km requires 'lat' and 'lng'")
		}
		criteria.RadiusKm = r
	}

	return criteria, nil
}
