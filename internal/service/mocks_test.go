package service

import (
	"context"

	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/alexivanou/crwd-api/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockCityRepository implements repository.CityRepository interface
type MockCityRepository struct {
	mock.Mock
}

func (m *MockCityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.City), args.Error(1)
}

func (m *MockCityRepository) GetCityByCode(ctx context.Context, code string) (*model.City, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockCityRepository) FindNearestCity(ctx context.Context, origin model.GeoPoint) (*model.City, float64, error) {
	args := m.Called(ctx, origin)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*model.City), args.Get(1).(float64), args.Error(2)
}

func (m *MockCityRepository) BulkInsertCities(ctx context.Context, cities []model.City) error {
	args := m.Called(ctx, cities)
	return args.Error(0)
}

// MockVenueRepository implements repository.VenueRepository interface
type MockVenueRepository struct {
	mock.Mock
}

func (m *MockVenueRepository) ListVenues(ctx context.Context, cityCode string) ([]model.Venue, error) {
	args := m.Called(ctx, cityCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Venue), args.Error(1)
}

func (m *MockVenueRepository) GetVenueByID(ctx context.Context, id int) (*model.Venue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Venue), args.Error(1)
}

func (m *MockVenueRepository) BulkInsertVenues(ctx context.Context, venues []model.Venue) error {
	args := m.Called(ctx, venues)
	return args.Error(0)
}

// MockEventRepository implements repository.EventRepository interface
type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) ListEvents(ctx context.Context, cityCode string) ([]model.Event, error) {
	args := m.Called(ctx, cityCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *MockEventRepository) ListEventsByVenue(ctx context.Context, venueID int) ([]model.Event, error) {
	args := m.Called(ctx, venueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Event), args.Error(1)
}

func (m *MockEventRepository) GetEventByID(ctx context.Context, id int) (*model.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *MockEventRepository) BulkInsertEvents(ctx context.Context, events []model.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type mockRepos struct {
	city  *MockCityRepository
	venue *MockVenueRepository
	event *MockEventRepository
}

func newMockRepos() (*mockRepos, *repository.Container) {
	m := &mockRepos{
		city:  new(MockCityRepository),
		venue: new(MockVenueRepository),
		event: new(MockEventRepository),
	}
	return m, &repository.Container{City: m.city, Venue: m.venue, Event: m.event}
}
