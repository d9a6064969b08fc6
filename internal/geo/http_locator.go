package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexivanou/crwd-api/internal/metrics"
	"github.com/alexivanou/crwd-api/internal/model"
	"golang.org/x/time/rate"
)

// HTTPLocator looks up an approximate position from an IP geolocation endpoint.
// The endpoint must answer with a JSON object holding "lat" and "lon" (or "lng").
type HTTPLocator struct {
	url string
	hc  *http.Client
	rl  *rate.Limiter
}

// NewHTTPLocator creates a locator limited to rps lookups per second
func NewHTTPLocator(url string, rps int) *HTTPLocator {
	if rps <= 0 {
		rps = 5
	}
	return &HTTPLocator{
		url: url,
		hc:  &http.Client{},
		rl:  rate.NewLimiter(rate.Limit(rps), rps),
	}
}

type lookupResponse struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
	Lng *float64 `json:"lng"`
}

// Locate performs a single lookup without retries
func (l *HTTPLocator) Locate(ctx context.Context) (model.GeoPoint, error) {
	if err := l.rl.Wait(ctx); err != nil {
		return model.GeoPoint{}, ErrTimeout
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return model.GeoPoint{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := l.hc.Do(req)
	if err != nil {
		metrics.ObserveExternal("geolocation", 0, time.Since(start))
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return model.GeoPoint{}, ErrTimeout
		}
		return model.GeoPoint{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	defer resp.Body.Close()
	metrics.ObserveExternal("geolocation", resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return model.GeoPoint{}, ErrPermissionDenied
	case resp.StatusCode != http.StatusOK:
		return model.GeoPoint{}, fmt.Errorf("%w: status %d", ErrPositionUnavailable, resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return model.GeoPoint{}, fmt.Errorf("%w: %v", ErrPositionUnavailable, err)
	}
	lng := body.Lng
	if lng == nil {
		lng = body.Lon
	}
	if body.Lat == nil || lng == nil {
		return model.GeoPoint{}, fmt.Errorf("%w: missing coordinates", ErrPositionUnavailable)
	}
	return model.GeoPoint{Lat: *body.Lat, Lng: *lng}, nil
}
