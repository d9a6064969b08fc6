package api

import (
	"net/http"

	"github.com/alexivanou/crwd-api/internal/metrics"
	"github.com/alexivanou/crwd-api/internal/service"
	"github.com/alexivanou/crwd-api/internal/stats"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, reg *prometheus.Registry, logger *zap.Logger) *mux.Router {
	handler := NewHandler(service, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()
	router.Use(Observe(logger))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)
	if reg != nil {
		router.Handle("/metrics", metrics.Handler(reg)).Methods(http.MethodGet)
	}

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/cities", handler.ListCities).Methods(http.MethodGet)
	v1.HandleFunc("/cities/nearest", handler.NearestCity).Methods(http.MethodGet)
	v1.HandleFunc("/cities/{code}", handler.GetCity).Methods(http.MethodGet)
	v1.HandleFunc("/events", handler.SearchEvents).Methods(http.MethodGet)
	v1.HandleFunc("/events/{id}", handler.GetEvent).Methods(http.MethodGet)
	v1.HandleFunc("/venues", handler.SearchVenues).Methods(http.MethodGet)
	v1.HandleFunc("/venues/{id}", handler.GetVenue).Methods(http.MethodGet)
	v1.HandleFunc("/venues/{id}/redemptions", handler.IssueRedemption).Methods(http.MethodPost)
	// mux reports a later 404 over an earlier method mismatch, so answer 405 explicitly
	v1.HandleFunc("/venues/{id}/redemptions", methodNotAllowed(http.MethodPost))
	v1.HandleFunc("/redemptions/{id}", handler.GetRedemption).Methods(http.MethodGet)
	v1.HandleFunc("/redemptions/{id}", handler.CloseRedemption).Methods(http.MethodDelete)
	v1.HandleFunc("/redemptions/{id}", methodNotAllowed(http.MethodGet, http.MethodDelete))
	v1.HandleFunc("/redemptions/{id}/qr.png", handler.RedemptionQR).Methods(http.MethodGet)
	v1.HandleFunc("/redemptions/{id}/stream", handler.StreamRedemption).Methods(http.MethodGet)
	v1.HandleFunc("/dashboard", handler.Dashboard).Methods(http.MethodGet)
	if statsCollector != nil {
		v1.HandleFunc("/stats", statsHandler.GetStats).Methods(http.MethodGet)
	}

	return router
}
