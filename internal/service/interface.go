package service

import (
	"context"

	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/alexivanou/crwd-api/internal/redeem"
	"github.com/google/uuid"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	ListCities(ctx context.Context) ([]model.City, error)
	GetCity(ctx context.Context, code string) (*model.City, error)
	NearestCity(ctx context.Context, req model.NearestCityRequest) (*model.NearestCityResponse, error)
	SearchEvents(ctx context.Context, criteria model.FilterCriteria) (*model.EventsResponse, error)
	GetEvent(ctx context.Context, id int) (*model.Event, error)
	SearchVenues(ctx context.Context, criteria model.VenueCriteria) (*model.VenuesResponse, error)
	GetVenue(ctx context.Context, id int) (*model.Venue, error)
	IssueRedemption(ctx context.Context, venueID int) (*model.RedemptionResponse, error)
	CurrentRedemption(ctx context.Context, id uuid.UUID) (*model.RedemptionResponse, error)
	RedemptionQR(ctx context.Context, id uuid.UUID, size int) ([]byte, error)
	CloseRedemption(ctx context.Context, id uuid.UUID) error
	WatchRedemption(ctx context.Context, id uuid.UUID) (<-chan redeem.Tick, error)
	Dashboard(ctx context.Context, role model.Role, venueID int) (*model.DashboardResponse, error)
}
