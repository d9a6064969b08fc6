package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/alexivanou/crwd-api/internal/cache"
	"github.com/alexivanou/crwd-api/internal/geo"
	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/alexivanou/crwd-api/internal/redeem"
	"github.com/alexivanou/crwd-api/internal/repository"
	"go.uber.org/zap"
)

// ErrVenueRequired is returned when the bar owner dashboard has no venue
var ErrVenueRequired = errors.New("venue_id is required for the bar owner dashboard")

// DefaultFallback is the origin used when the caller's position is unknown (Bucharest)
var DefaultFallback = model.GeoPoint{Lat: 44.4268, Lng: 26.1025}

// Service provides business logic for the API
type Service struct {
	cityRepo  repository.CityRepository
	venueRepo repository.VenueRepository
	eventRepo repository.EventRepository

	cache    cache.Cache
	cacheTTL time.Duration

	locator           geo.Locator
	locateTimeout     time.Duration
	fallback          model.GeoPoint
	trendingThreshold int

	redemptions *redeem.Store
	tick        time.Duration

	// rng drives mock growth figures; seeded so dashboards are reproducible
	rngMu sync.Mutex
	rng   *rand.Rand

	now    func() time.Time
	logger *zap.Logger
}

// Option customises a Service
type Option func(*Service)

// WithCache enables read-through caching of catalog lists
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithLocator sets the server side position lookup used when a request carries no coordinate
func WithLocator(l geo.Locator, timeout time.Duration) Option {
	return func(s *Service) {
		s.locator = l
		s.locateTimeout = timeout
	}
}

// WithFallback sets the origin used when no position is available
func WithFallback(p model.GeoPoint) Option {
	return func(s *Service) { s.fallback = p }
}

// WithTrendingThreshold sets the default trending threshold
func WithTrendingThreshold(n int) Option {
	return func(s *Service) { s.trendingThreshold = n }
}

// WithRedemptions sets the redemption store and stream tick
func WithRedemptions(store *redeem.Store, tick time.Duration) Option {
	return func(s *Service) {
		s.redemptions = store
		s.tick = tick
	}
}

// WithAnalyticsSeed seeds the dashboard growth figures
func WithAnalyticsSeed(seed int64) Option {
	return func(s *Service) { s.rng = rand.New(rand.NewSource(seed)) }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new service instance
func NewService(repos *repository.Container, opts ...Option) *Service {
	s := &Service{
		cityRepo:          repos.City,
		venueRepo:         repos.Venue,
		eventRepo:         repos.Event,
		cache:             cache.Noop{},
		cacheTTL:          5 * time.Minute,
		locateTimeout:     geo.DefaultLocateTimeout,
		fallback:          DefaultFallback,
		trendingThreshold: model.DefaultTrendingThreshold,
		tick:              redeem.DefaultTick,
		rng:               rand.New(rand.NewSource(1)),
		now:               time.Now,
		logger:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.redemptions == nil {
		s.redemptions = redeem.NewStore(redeem.NewGenerator(redeem.Alphabet, redeem.DefaultLength, 0), redeem.DefaultInterval)
	}
	return s
}

// cached loads key from the cache or calls load and stores the result.
// Cache failures are logged and never fail the request.
func cached[T any](ctx context.Context, s *Service, key string, load func() (T, error)) (T, error) {
	var v T
	found, err := s.cache.Get(ctx, key, &v)
	if err != nil {
		s.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}
	if found && err == nil {
		return v, nil
	}

	v, err = load()
	if err != nil {
		return v, err
	}
	if err := s.cache.Set(ctx, key, v, s.cacheTTL); err != nil {
		s.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
