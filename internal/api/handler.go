package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/alexivanou/crwd-api/internal/model"
	"github.com/alexivanou/crwd-api/internal/redeem"
	"github.com/alexivanou/crwd-api/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler handles HTTP requests
type Handler struct {
	service service.ServiceInterface
	logger  *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding response", zap.Error(err))
	}
}

func (h *Handler) internalError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// methodNotAllowed answers a path whose supported methods are routed elsewhere
func methodNotAllowed(allowed ...string) http.HandlerFunc {
	allow := strings.Join(allowed, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func intVar(r *http.Request, name string) (int, error) {
	return strconv.Atoi(mux.Vars(r)[name])
}

func sessionVar(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

// ListCities handles GET /api/v1/cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListCities(r.Context())
	if err != nil {
		h.internalError(w, "Error listing cities", err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, map[string]interface{}{
		"cities": cities,
		"count":  len(cities),
	})
}

// GetCity handles GET /api/v1/cities/{code}
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	city, err := h.service.GetCity(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		h.internalError(w, "Error getting city", err)
		return
	}
	if city == nil {
		http.Error(w, "city not found", http.StatusNotFound)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, city)
}

// NearestCity handles GET /api/v1/cities/nearest
func (h *Handler) NearestCity(w http.ResponseWriter, r *http.Request) {
	origin, err := parseOrigin(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	req := model.NearestCityRequest{
		Origin:        origin,
		LocationError: r.URL.Query().Get("geo_error"),
	}

	response, err := h.service.NearestCity(r.Context(), req)
	if err != nil {
		h.internalError(w, "Error finding nearest city", err)
		return
	}
	if response == nil {
		http.Error(w, "no cities found", http.StatusNotFound)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, response)
}

// SearchEvents handles GET /api/v1/events
func (h *Handler) SearchEvents(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseEventCriteria(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, err := h.service.SearchEvents(r.Context(), criteria)
	if err != nil {
		h.internalError(w, "Error searching events", err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, response)
}

// GetEvent handles GET /api/v1/events/{id}
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		http.Error(w, "invalid event id", http.StatusBadRequest)
		return
	}

	event, err := h.service.GetEvent(r.Context(), id)
	if err != nil {
		h.internalError(w, "Error getting event", err)
		return
	}
	if event == nil {
		http.Error(w, "event not found", http.StatusNotFound)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, event)
}

// SearchVenues handles GET /api/v1/venues
func (h *Handler) SearchVenues(w http.ResponseWriter, r *http.Request) {
	criteria, err := parseVenueCriteria(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	response, err := h.service.SearchVenues(r.Context(), criteria)
	if err != nil {
		h.internalError(w, "Error searching venues", err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, response)
}

// GetVenue handles GET /api/v1/venues/{id}
func (h *Handler) GetVenue(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		http.Error(w, "invalid venue id", http.StatusBadRequest)
		return
	}

	venue, err := h.service.GetVenue(r.Context(), id)
	if err != nil {
		h.internalError(w, "Error getting venue", err)
		return
	}
	if venue == nil {
		http.Error(w, "venue not found", http.StatusNotFound)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, venue)
}

// IssueRedemption handles POST /api/v1/venues/{id}/redemptions
func (h *Handler) IssueRedemption(w http.ResponseWriter, r *http.Request) {
	id, err := intVar(r, "id")
	if err != nil {
		http.Error(w, "invalid venue id", http.StatusBadRequest)
		return
	}

	response, err := h.service.IssueRedemption(r.Context(), id)
	if err != nil {
		h.internalError(w, "Error issuing redemption", err)
		return
	}
	if response == nil {
		http.Error(w, "venue not found", http.StatusNotFound)
		return
	}

	writeJSON(h.logger, w, http.StatusCreated, response)
}

// GetRedemption handles GET /api/v1/redemptions/{id}
func (h *Handler) GetRedemption(w http.ResponseWriter, r *http.Request) {
	id, err := sessionVar(r)
	if err != nil {
		http.Error(w, "invalid redemption id", http.StatusBadRequest)
		return
	}

	response, err := h.service.CurrentRedemption(r.Context(), id)
	if errors.Is(err, redeem.ErrSessionNotFound) {
		http.Error(w, "redemption not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(w, "Error getting redemption", err)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, response)
}

// CloseRedemption handles DELETE /api/v1/redemptions/{id}
func (h *Handler) CloseRedemption(w http.ResponseWriter, r *http.Request) {
	id, err := sessionVar(r)
	if err != nil {
		http.Error(w, "invalid redemption id", http.StatusBadRequest)
		return
	}

	err = h.service.CloseRedemption(r.Context(), id)
	if errors.Is(err, redeem.ErrSessionNotFound) {
		http.Error(w, "redemption not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(w, "Error closing redemption", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RedemptionQR handles GET /api/v1/redemptions/{id}/qr.png
func (h *Handler) RedemptionQR(w http.ResponseWriter, r *http.Request) {
	id, err := sessionVar(r)
	if err != nil {
		http.Error(w, "invalid redemption id", http.StatusBadRequest)
		return
	}

	size := redeem.DefaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size < 64 || size > 1024 {
			http.Error(w, "invalid size parameter", http.StatusBadRequest)
			return
		}
	}

	png, err := h.service.RedemptionQR(r.Context(), id, size)
	if errors.Is(err, redeem.ErrSessionNotFound) {
		http.Error(w, "redemption not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.internalError(w, "Error rendering redemption qr", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

// Dashboard handles GET /api/v1/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	role, err := model.ParseRole(r.URL.Query().Get("role"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var venueID int
	if raw := r.URL.Query().Get("venue_id"); raw != "" {
		venueID, err = strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid venue_id parameter", http.StatusBadRequest)
			return
		}
	}

	response, err := h.service.Dashboard(r.Context(), role, venueID)
	if errors.Is(err, service.ErrVenueRequired) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.internalError(w, "Error building dashboard", err)
		return
	}
	if response == nil {
		http.Error(w, "venue not found", http.StatusNotFound)
		return
	}

	writeJSON(h.logger, w, http.StatusOK, response)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
