package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/alexivanou/crwd-api/internal/cache"
	"github.com/alexivanou/crwd-api/internal/geo"
	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/alexivanou/crwd-api/internal/redeem"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testCities = []model.City{
	{Code: "BUCHAREST", Name: "Bucharest", Lat: 44.4268, Lng: 26.1025, Position: 0},
	{Code: "CLUJ", Name: "Cluj-Napoca", Lat: 46.7712, Lng: 23.6236, Position: 1},
	{Code: "BRASOV", Name: "Brasov", Lat: 45.6579, Lng: 25.6012, Position: 2},
}

var testNow = time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)

func day(offset int) time.Time {
	return time.Date(2026, 10, 16+offset, 0, 0, 0, 0, time.UTC)
}

func testEvents() []model.Event {
	return []model.Event{
		{ID: 1, VenueID: 1, Name: "Techno Night", Date: day(2), Price: decimal.NewFromInt(40), Category: model.CategoryParty, InterestedCount: 300, GoingCount: 100},
		{ID: 2, VenueID: 1, Name: "Jazz Jam", Date: day(1), Price: decimal.Zero, Category: model.CategoryJazz, InterestedCount: 20, GoingCount: 10},
		{ID: 3, VenueID: 2, Name: "Old Party", Date: day(-3), Price: decimal.NewFromInt(10), Category: model.CategoryParty, InterestedCount: 900, GoingCount: 900},
		{ID: 4, VenueID: 2, Name: "Karaoke", Date: day(0), Price: decimal.Zero, Category: model.CategoryKaraoke, InterestedCount: 120, GoingCount: 30},
	}
}

func TestService_NearestCity(t *testing.T) {
	bucharest := testCities[0]
	origin := model.GeoPoint{Lat: 44.43, Lng: 26.10}

	tests := []struct {
		name           string
		req            model.NearestCityRequest
		opts           []Option
		expectedOrigin model.GeoPoint
		fallback       bool
		prompt         string
	}{
		{
			name:           "Client position",
			req:            model.NearestCityRequest{Origin: &origin},
			expectedOrigin: origin,
		},
		{
			name:           "Permission denied",
			req:            model.NearestCityRequest{LocationError: "permission_denied"},
			expectedOrigin: DefaultFallback,
			fallback:       true,
			prompt:         "Location access is off",
		},
		{
			name:           "No position and no locator",
			req:            model.NearestCityRequest{},
			expectedOrigin: DefaultFallback,
			fallback:       true,
			prompt:         "unavailable",
		},
		{
			name:           "Out of range position",
			req:            model.NearestCityRequest{Origin: &model.GeoPoint{Lat: 120, Lng: 0}},
			expectedOrigin: DefaultFallback,
			fallback:       true,
		},
		{
			name:           "Server side locator",
			req:            model.NearestCityRequest{},
			opts:           []Option{WithLocator(geo.StaticLocator(origin), time.Second)},
			expectedOrigin: origin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks, repos := newMockRepos()
			mocks.city.On("FindNearestCity", mock.Anything, tt.expectedOrigin).Return(&bucharest, 0.4, nil)
			mocks.city.On("ListCities", mock.Anything).Return(testCities, nil)

			svc := NewService(repos, tt.opts...)
			resp, err := svc.NearestCity(context.Background(), tt.req)
			require.NoError(t, err)
			require.NotNil(t, resp)

			assert.Equal(t, "BUCHAREST", resp.City.Code)
			assert.Equal(t, tt.expectedOrigin, resp.Origin)
			assert.Equal(t, tt.fallback, resp.Fallback)
			if tt.prompt != "" {
				assert.Contains(t, resp.Prompt, tt.prompt)
			}
			if !tt.fallback {
				assert.Empty(t, resp.Prompt)
			}
			require.Len(t, resp.Alternatives, 3)
			assert.Equal(t, "BUCHAREST", resp.Alternatives[0].CityCode)
			assert.Equal(t, "BRASOV", resp.Alternatives[1].CityCode)
			mocks.city.AssertExpectations(t)
		})
	}
}

func TestService_NearestCityEmptyCatalog(t *testing.T) {
	mocks, repos := newMockRepos()
	mocks.city.On("FindNearestCity", mock.Anything, mock.Anything).Return(nil, 0.0, nil)

	svc := NewService(repos)
	resp, err := svc.NearestCity(context.Background(), model.NearestCityRequest{})
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestService_NearestCityRepoError(t *testing.T) {
	mocks, repos := newMockRepos()
	mocks.city.On("FindNearestCity", mock.Anything, mock.Anything).Return(nil, 0.0, errors.New("db down"))

	svc := NewService(repos)
	_, err := svc.NearestCity(context.Background(), model.NearestCityRequest{})
	assert.Error(t, err)
}

func TestService_SearchEvents(t *testing.T) {
	mocks, repos := newMockRepos()
	mocks.event.On("ListEvents", mock.Anything, "").Return(testEvents(), nil)

	svc := NewService(repos, WithTrendingThreshold(150))
	ctx := context.Background()

	t.Run("Default order is by date", func(t *testing.T) {
		resp, err := svc.SearchEvents(ctx, model.FilterCriteria{})
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Count)
		assert.Equal(t, []int{3, 4, 2, 1}, eventIDs(resp.Results))
	})

	t.Run("Free events", func(t *testing.T) {
		resp, err := svc.SearchEvents(ctx, model.FilterCriteria{
			PriceRange: &model.PriceRange{Min: decimal.Zero, Max: decimal.Zero},
		})
		require.NoError(t, err)
		assert.Equal(t, []int{4, 2}, eventIDs(resp.Results))
	})

	t.Run("Trending uses the configured threshold", func(t *testing.T) {
		resp, err := svc.SearchEvents(ctx, model.FilterCriteria{Trending: true})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 4}, eventIDs(resp.Results))
	})

	t.Run("Explicit threshold wins", func(t *testing.T) {
		resp, err := svc.SearchEvents(ctx, model.FilterCriteria{Trending: true, TrendingThreshold: 1000})
		require.NoError(t, err)
		assert.Equal(t, []int{3}, eventIDs(resp.Results))
	})
}

func TestService_SearchEventsUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewRedis(mr.Addr(), "", 0)
	defer rc.Close()

	events := testEvents()
	for i := range events {
		events[i].CityCode = "CLUJ"
	}
	mocks, repos := newMockRepos()
	mocks.event.On("ListEvents", mock.Anything, "CLUJ").Return(events, nil).Once()

	svc := NewService(repos, WithCache(rc, time.Minute))
	for i := 0; i < 3; i++ {
		resp, err := svc.SearchEvents(context.Background(), model.FilterCriteria{CityCode: "cluj"})
		require.NoError(t, err)
		assert.Equal(t, 4, resp.Count)
	}
	mocks.event.AssertNumberOfCalls(t, "ListEvents", 1)
	assert.True(t, mr.Exists("crwd:events:CLUJ"))
}

func TestService_SearchVenues(t *testing.T) {
	mocks, repos := newMockRepos()
	mocks.venue.On("ListVenues", mock.Anything, "").Return([]model.Venue{
		{ID: 1, Name: "Control", Category: "club", CityCode: "BUCHAREST", Lat: 44.4361, Lng: 26.0996, IsOpen: true},
		{ID: 2, Name: "Green Hours", Category: "bar", CityCode: "BUCHAREST", Lat: 44.4434, Lng: 26.0953, IsOpen: false},
	}, nil)

	svc := NewService(repos)
	resp, err := svc.SearchVenues(context.Background(), model.VenueCriteria{OpenOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Control", resp.Results[0].Name)
}

func TestService_GetEventAndVenue(t *testing.T) {
	mocks, repos := newMockRepos()
	mocks.event.On("GetEventByID", mock.Anything, 1).Return(&model.Event{ID: 1, Name: "Techno Night"}, nil)
	mocks.event.On("GetEventByID", mock.Anything, 2).Return(nil, nil)
	mocks.venue.On("GetVenueByID", mock.Anything, 9).Return(nil, errors.New("db down"))

	svc := NewService(repos)
	ctx := context.Background()

	event, err := svc.GetEvent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Techno Night", event.Name)

	event, err = svc.GetEvent(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, event)

	_, err = svc.GetVenue(ctx, 9)
	assert.Error(t, err)
}

func TestService_Redemption(t *testing.T) {
	mocks, repos := newMockRepos()
	mocks.venue.On("GetVenueByID", mock.Anything, 1).Return(&model.Venue{ID: 1, Name: "Control"}, nil)
	mocks.venue.On("GetVenueByID", mock.Anything, 404).Return(nil, nil)

	store := redeem.NewStore(redeem.NewGenerator(redeem.Alphabet, redeem.DefaultLength, 3), time.Minute)
	svc := NewService(repos, WithRedemptions(store, 10*time.Millisecond))
	ctx := context.Background()

	t.Run("Unknown venue", func(t *testing.T) {
		resp, err := svc.IssueRedemption(ctx, 404)
		require.NoError(t, err)
		assert.Nil(t, resp)
	})

	resp, err := svc.IssueRedemption(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{5}$`), resp.Code)
	assert.Equal(t, 60, resp.SecondsRemaining)

	id := uuid.MustParse(resp.ID)

	t.Run("Current", func(t *testing.T) {
		current, err := svc.CurrentRedemption(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, resp.Code, current.Code)
	})

	t.Run("QR", func(t *testing.T) {
		png, err := svc.RedemptionQR(ctx, id, 64)
		require.NoError(t, err)
		assert.Equal(t, []byte("\x89PNG"), png[:4])
	})

	t.Run("Watch", func(t *testing.T) {
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()
		ticks, err := svc.WatchRedemption(wctx, id)
		require.NoError(t, err)
		tick := <-ticks
		assert.Equal(t, resp.Code, tick.Code)
	})

	t.Run("Unknown session", func(t *testing.T) {
		_, err := svc.CurrentRedemption(ctx, uuid.New())
		assert.ErrorIs(t, err, redeem.ErrSessionNotFound)
		_, err = svc.RedemptionQR(ctx, uuid.New(), 0)
		assert.ErrorIs(t, err, redeem.ErrSessionNotFound)
		_, err = svc.WatchRedemption(ctx, uuid.New())
		assert.ErrorIs(t, err, redeem.ErrSessionNotFound)
		assert.ErrorIs(t, svc.CloseRedemption(ctx, uuid.New()), redeem.ErrSessionNotFound)
	})

	t.Run("Close", func(t *testing.T) {
		require.NoError(t, svc.CloseRedemption(ctx, id))
		_, err := svc.CurrentRedemption(ctx, id)
		assert.ErrorIs(t, err, redeem.ErrSessionNotFound)
	})
}

func TestService_GetCity(t *testing.T) {
	mocks, repos := newMockRepos()
	mocks.city.On("GetCityByCode", mock.Anything, "CLUJ").Return(&testCities[1], nil)
	mocks.city.On("GetCityByCode", mock.Anything, "PARIS").Return(nil, nil)

	svc := NewService(repos)
	ctx := context.Background()

	city, err := svc.GetCity(ctx, "cluj")
	require.NoError(t, err)
	assert.Equal(t, "Cluj-Napoca", city.Name)

	city, err = svc.GetCity(ctx, "paris")
	require.NoError(t, err)
	assert.Nil(t, city)
}

func TestService_InvalidateCatalog(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewRedis(mr.Addr(), "", 0)
	defer rc.Close()

	mocks, repos := newMockRepos()
	mocks.city.On("ListCities", mock.Anything).Return(testCities, nil)
	mocks.event.On("ListEvents", mock.Anything, "CLUJ").Return(testEvents(), nil).Twice()

	svc := NewService(repos, WithCache(rc, time.Minute))
	ctx := context.Background()

	_, err := svc.SearchEvents(ctx, model.FilterCriteria{CityCode: "CLUJ"})
	require.NoError(t, err)
	_, err = svc.ListCities(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists("crwd:events:CLUJ"))
	require.True(t, mr.Exists("crwd:cities"))

	require.NoError(t, svc.InvalidateCatalog(ctx))
	assert.False(t, mr.Exists("crwd:events:CLUJ"))
	assert.False(t, mr.Exists("crwd:cities"))

	// The next search goes back to the repository
	_, err = svc.SearchEvents(ctx, model.FilterCriteria{CityCode: "CLUJ"})
	require.NoError(t, err)
	mocks.event.AssertNumberOfCalls(t, "ListEvents", 2)
}

func eventIDs(events []model.Event) []int {
	ids := make([]int, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
