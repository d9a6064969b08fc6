package service

import (
	"context"
	"fmt"
	"math"

	"github.com/alexivanou/crwd-api/internal/filter"
	"github.com/alexivanou/crwd-api/internal/model"
	"golang.org/x/sync/errgroup"
)

const memberTrendingLimit = 5

var dashboardCategories = []model.EventCategory{
	model.CategoryParty,
	model.CategoryConcert,
	model.CategoryJazz,
	model.CategoryKaraoke,
	model.CategoryStandup,
	model.CategoryFestival,
	model.CategoryOther,
}

// Dashboard builds the landing payload for a role
func (s *Service) Dashboard(ctx context.Context, role model.Role, venueID int) (*model.DashboardResponse, error) {
	switch role {
	case model.RoleMember:
		member, err := s.memberDashboard(ctx)
		if err != nil {
			return nil, err
		}
		return &model.DashboardResponse{Role: role, Member: member}, nil
	case model.RoleBarOwner:
		bar, err := s.barDashboard(ctx, venueID)
		if err != nil || bar == nil {
			return nil, err
		}
		return &model.DashboardResponse{Role: role, Bar: bar}, nil
	case model.RoleBrandOwner:
		brand, err := s.brandDashboard(ctx)
		if err != nil {
			return nil, err
		}
		return &model.DashboardResponse{Role: role, Brand: brand}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

func (s *Service) memberDashboard(ctx context.Context) (*model.MemberDashboard, error) {
	events, err := s.loadEvents(ctx, "")
	if err != nil {
		return nil, err
	}

	window := filter.Upcoming(s.now())
	upcoming := filter.ApplyFilters(events, model.FilterCriteria{DateWindow: window})
	trending := filter.ApplyFilters(upcoming, model.FilterCriteria{
		Trending:          true,
		TrendingThreshold: s.trendingThreshold,
	})
	if len(trending) > memberTrendingLimit {
		trending = trending[:memberTrendingLimit]
	}

	return &model.MemberDashboard{Trending: trending, Upcoming: len(upcoming)}, nil
}

// barDashboard returns nil when the venue does not exist
func (s *Service) barDashboard(ctx context.Context, venueID int) (*model.BarDashboard, error) {
	if venueID <= 0 {
		return nil, ErrVenueRequired
	}

	var (
		venue  *model.Venue
		events []model.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		venue, err = s.GetVenue(gctx, venueID)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.eventRepo.ListEventsByVenue(gctx, venueID)
		if err != nil {
			return fmt.Errorf("failed to load venue events: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if venue == nil {
		return nil, nil
	}

	dash := &model.BarDashboard{
		Venue:         *venue,
		Events:        len(events),
		GrowthPercent: s.growth(),
	}
	for _, e := range events {
		dash.InterestedTotal += e.InterestedCount
		dash.GoingTotal += e.GoingCount
	}
	return dash, nil
}

func (s *Service) brandDashboard(ctx context.Context) (*model.BrandDashboard, error) {
	var (
		venues []model.Venue
		events []model.Event
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		venues, err = s.loadVenues(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.loadEvents(gctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byCategory := make(map[model.EventCategory]*model.CategoryMetrics)
	for _, e := range events {
		m, ok := byCategory[e.Category]
		if !ok {
			m = &model.CategoryMetrics{Category: e.Category}
			byCategory[e.Category] = m
		}
		m.Events++
		m.Engagement += e.Engagement()
	}

	dash := &model.BrandDashboard{Venues: len(venues), Categories: []model.CategoryMetrics{}}
	for _, c := range dashboardCategories {
		m, ok := byCategory[c]
		if !ok {
			continue
		}
		m.GrowthPercent = s.growth()
		dash.Categories = append(dash.Categories, *m)
	}
	return dash, nil
}

// growth is a mock week over week change in [-10, 30), one decimal place
func (s *Service) growth() float64 {
	s.rngMu.Lock()
	v := s.rng.Float64()*40 - 10
	s.rngMu.Unlock()
	return math.Round(v*10) / 10
}
