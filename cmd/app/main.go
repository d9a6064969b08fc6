package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/crwd-api/internal/api"
	"github.com/alexivanou/crwd-api/internal/cache"
	"github.com/alexivanou/crwd-api/internal/config"
	"github.com/alexivanou/crwd-api/internal/database"
	"github.com/alexivanou/crwd-api/internal/geo"
	"github.com/alexivanou/crwd-api/internal/metrics"
	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/alexivanou/crwd-api/internal/redeem"
	"github.com/alexivanou/crwd-api/internal/repository"
	"github.com/alexivanou/crwd-api/internal/seeder"
	"github.com/alexivanou/crwd-api/internal/service"
	"github.com/alexivanou/crwd-api/internal/stats"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	seeded, err := seeder.Bootstrap(ctx, db, cfg.DB, cfg.Seeder, "migrations", logger)
	if err != nil {
		logger.Fatal("Failed to prepare database", zap.Error(err))
	}
	if seeded {
		logger.Info("Database seeded successfully")
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)

	reg := metrics.InitRegistry()

	store := redeem.NewStore(
		redeem.NewGenerator(redeem.Alphabet, cfg.Redeem.CodeLength, cfg.Redeem.Seed),
		cfg.Redeem.Interval,
		redeem.WithIdleTTL(cfg.Redeem.IdleTTL),
	)
	go store.RunSweeper(ctx, time.Minute, func(removed int) {
		logger.Debug("Swept idle redemption sessions", zap.Int("removed", removed))
	})

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithFallback(model.GeoPoint{Lat: cfg.Discovery.FallbackLat, Lng: cfg.Discovery.FallbackLng}),
		service.WithTrendingThreshold(cfg.Discovery.TrendingThreshold),
		service.WithRedemptions(store, cfg.Redeem.Tick),
		service.WithAnalyticsSeed(cfg.Analytics.Seed),
	}
	if cfg.Discovery.GeoLookupURL != "" {
		logger.Info("IP geolocation enabled", zap.String("url", cfg.Discovery.GeoLookupURL))
		opts = append(opts, service.WithLocator(
			geo.NewHTTPLocator(cfg.Discovery.GeoLookupURL, cfg.Discovery.GeoLookupRPS),
			cfg.Discovery.LocateTimeout,
		))
	}
	if cfg.Cache.Enabled() {
		rc := cache.NewRedis(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err := rc.Ping(ctx); err != nil {
			logger.Warn("Redis unavailable, caching disabled", zap.String("addr", cfg.Cache.RedisAddr), zap.Error(err))
			rc.Close()
		} else {
			defer rc.Close()
			logger.Info("Catalog cache enabled", zap.String("addr", cfg.Cache.RedisAddr), zap.Duration("ttl", cfg.Cache.TTL))
			opts = append(opts, service.WithCache(rc, cfg.Cache.TTL))
		}
	}

	svc := service.NewService(repos, opts...)
	if seeded {
		// Redis may still hold listings from an earlier import
		if err := svc.InvalidateCatalog(ctx); err != nil {
			logger.Warn("Failed to invalidate catalog cache", zap.Error(err))
		}
	}
	statsCollector := stats.NewCollector(db, cfg.DB, store)
	router := api.NewRouter(svc, statsCollector, reg, logger)

	// No WriteTimeout: redemption streams stay open for minutes
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exited")
}
