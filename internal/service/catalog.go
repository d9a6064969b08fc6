package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexivanou/crwd-api/internal/cache"
	"github.com/alexivanou/crwd-api/internal/filter"
	"github.com/alexivanou/crwd-api/internal/metrics"
	"github.com/alexivanou/crwd-api/internal/model"
)

func scopeKey(cityCode string) string {
	if cityCode == "" {
		return "all"
	}
	return cityCode
}

func (s *Service) loadEvents(ctx context.Context, cityCode string) ([]model.Event, error) {
	cityCode = strings.ToUpper(cityCode)
	events, err := cached(ctx, s, cache.Key("events", scopeKey(cityCode)), func() ([]model.Event, error) {
		return s.eventRepo.ListEvents(ctx, cityCode)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load events: %w", err)
	}
	return events, nil
}

func (s *Service) loadVenues(ctx context.Context, cityCode string) ([]model.Venue, error) {
	cityCode = strings.ToUpper(cityCode)
	venues, err := cached(ctx, s, cache.Key("venues", scopeKey(cityCode)), func() ([]model.Venue, error) {
		return s.venueRepo.ListVenues(ctx, cityCode)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load venues: %w", err)
	}
	return venues, nil
}

// InvalidateCatalog drops every cached catalog listing. Call it after the
// catalog was (re)seeded so a shared cache does not serve rows from an old import.
func (s *Service) InvalidateCatalog(ctx context.Context) error {
	cities, err := s.cityRepo.ListCities(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cities: %w", err)
	}

	keys := []string{
		cache.Key("cities"),
		cache.Key("events", scopeKey("")),
		cache.Key("venues", scopeKey("")),
	}
	for _, c := range cities {
		keys = append(keys, cache.Key("events", scopeKey(c.Code)), cache.Key("venues", scopeKey(c.Code)))
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}

// SearchEvents narrows the event catalog with criteria
func (s *Service) SearchEvents(ctx context.Context, criteria model.FilterCriteria) (*model.EventsResponse, error) {
	events, err := s.loadEvents(ctx, criteria.CityCode)
	if err != nil {
		return nil, err
	}

	if criteria.TrendingThreshold <= 0 {
		criteria.TrendingThreshold = s.trendingThreshold
	}
	results := filter.ApplyFilters(events, criteria)
	metrics.ObserveFilter("events", len(results))

	return &model.EventsResponse{Results: results, Count: len(results)}, nil
}

// GetEvent returns one event or nil when it does not exist
func (s *Service) GetEvent(ctx context.Context, id int) (*model.Event, error) {
	event, err := s.eventRepo.GetEventByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// SearchVenues narrows the venue catalog with criteria
func (s *Service) SearchVenues(ctx context.Context, criteria model.VenueCriteria) (*model.VenuesResponse, error) {
	venues, err := s.loadVenues(ctx, criteria.CityCode)
	if err != nil {
		return nil, err
	}

	results := filter.ApplyVenueFilters(venues, criteria)
	metrics.ObserveFilter("venues", len(results))

	return &model.VenuesResponse{Results: results, Count: len(results)}, nil
}

// GetVenue returns one venue or nil when it does not exist
func (s *Service) GetVenue(ctx context.Context, id int) (*model.Venue, error) {
	venue, err := s.venueRepo.GetVenueByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get venue: %w", err)
	}
	return venue, nil
}
