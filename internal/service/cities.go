package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/crwd-api/internal/cache"
	"github.com/alexivanou/crwd-api/internal/geo"
	"github.com/alexivanou/crwd-api/internal/metrics"
	"github.com/alexivanou/crwd-api/internal/model"
	"go.uber.org/zap"
)

// ListCities returns the reference cities in catalog order
func (s *Service) ListCities(ctx context.Context) ([]model.City, error) {
	cities, err := cached(ctx, s, cache.Key("cities"), func() ([]model.City, error) {
		return s.cityRepo.ListCities(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

// GetCity returns a reference city by code, or nil when it is not in the catalog
func (s *Service) GetCity(ctx context.Context, code string) (*model.City, error) {
	city, err := s.cityRepo.GetCityByCode(ctx, strings.ToUpper(code))
	if err != nil {
		return nil, fmt.Errorf("failed to get city %s: %w", code, err)
	}
	return city, nil
}

// NearestCity picks the reference city closest to the caller. When the
// caller has no usable position the fallback origin is used and the
// response carries a prompt explaining why.
func (s *Service) NearestCity(ctx context.Context, req model.NearestCityRequest) (*model.NearestCityResponse, error) {
	res := geo.ResolveOrigin(ctx, s.locatorFor(req), s.fallback, s.locateTimeout)
	if res.Fallback {
		reason := fallbackReason(res.Err)
		metrics.ObserveFallback(reason)
		s.logger.Debug("Using fallback origin", zap.String("reason", reason), zap.Error(res.Err))
	}

	city, dist, err := s.cityRepo.FindNearestCity(ctx, res.Origin)
	if err != nil {
		return nil, fmt.Errorf("failed to find nearest city: %w", err)
	}
	if city == nil {
		return nil, nil
	}

	cities, err := s.ListCities(ctx)
	if err != nil {
		return nil, err
	}

	return &model.NearestCityResponse{
		City:         *city,
		Origin:       res.Origin,
		DistanceKm:   dist,
		Fallback:     res.Fallback,
		Prompt:       res.Prompt(),
		Alternatives: geo.RankByDistance(res.Origin, geo.CandidatesFromCities(cities)),
	}, nil
}

func (s *Service) locatorFor(req model.NearestCityRequest) geo.Locator {
	switch {
	case req.Origin != nil:
		return geo.StaticLocator(*req.Origin)
	case req.LocationError != "":
		return geo.FailingLocator{Err: geo.ParseLocationError(req.LocationError)}
	default:
		return s.locator
	}
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, geo.ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, geo.ErrTimeout):
		return "timeout"
	default:
		return "unavailable"
	}
}
