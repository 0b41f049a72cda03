package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fieldservice/internal/domain"
	"fieldservice/internal/service"
)

// NavigationHandler handles route simulation requests.
type NavigationHandler struct {
	navigationService *service.NavigationService
}

// NewNavigationHandler creates a new NavigationHandler.
func NewNavigationHandler(navigationService *service.NavigationService) *NavigationHandler {
	return &NavigationHandler{navigationService: navigationService}
}

// CoordinateJSON is a lat/lng pair in a request or response body.
type CoordinateJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c *CoordinateJSON) coordinate() *domain.Coordinate {
	if c == nil {
		return nil
	}
	return &domain.Coordinate{Latitude: c.Lat, Longitude: c.Lng}
}

func toCoordinateJSON(c domain.Coordinate) CoordinateJSON {
	return CoordinateJSON{Lat: c.Latitude, Lng: c.Longitude}
}

// NavigationRequest is the HTTP request body for starting navigation or
// estimating a trip. A missing origin means the worker's last position.
type NavigationRequest struct {
	WorkerID    string          `json:"worker_id"`
	Origin      *CoordinateJSON `json:"origin"`
	Destination *CoordinateJSON `json:"destination"`
}

// NavigationStateResponse is the HTTP response for a simulation state.
type NavigationStateResponse struct {
	SessionID        string         `json:"session_id,omitempty"`
	Status           string         `json:"status"`
	Index            int            `json:"index"`
	TotalPoints      int            `json:"total_points"`
	Position         CoordinateJSON `json:"position"`
	Destination      CoordinateJSON `json:"destination"`
	RemainingKm      float64        `json:"remaining_km"`
	RemainingMinutes int            `json:"remaining_minutes"`
	UpdatedAt        string         `json:"updated_at,omitempty"`
}

// EstimateResponse is the HTTP response for a straight-line estimate.
type EstimateResponse struct {
	DistanceKm      float64 `json:"distance_km"`
	DistanceText    string  `json:"distance_text"`
	DurationMinutes int     `json:"duration_minutes"`
	DurationText    string  `json:"duration_text"`
	SpeedKmh        float64 `json:"speed_kmh"`
	ArrivalTime     string  `json:"arrival_time"`
	ArrivalText     string  `json:"arrival_text"`
}

// ConfigResponse advertises the navigation timings and service area.
type ConfigResponse struct {
	TickIntervalMs     int64          `json:"tick_interval_ms"`
	LocationIntervalMs int64          `json:"location_interval_ms"`
	NavigationSpeedKmh float64        `json:"navigation_speed_kmh"`
	EstimateSpeedKmh   float64        `json:"estimate_speed_kmh"`
	GeofenceRadiusKm   float64        `json:"geofence_radius_km"`
	Fallback           CoordinateJSON `json:"fallback"`
	Bounds             struct {
		MinLat float64 `json:"min_lat"`
		MaxLat float64 `json:"max_lat"`
		MinLng float64 `json:"min_lng"`
		MaxLng float64 `json:"max_lng"`
	} `json:"bounds"`
}

// GetConfig handles GET /v1/navigation/config
func (h *NavigationHandler) GetConfig(c *gin.Context) {
	cfg := h.navigationService.Config()

	resp := ConfigResponse{
		TickIntervalMs:     cfg.TickInterval.Milliseconds(),
		LocationIntervalMs: cfg.LocationInterval.Milliseconds(),
		NavigationSpeedKmh: cfg.NavigationSpeedKmh,
		EstimateSpeedKmh:   cfg.EstimateSpeedKmh,
		GeofenceRadiusKm:   cfg.GeofenceRadiusKm,
		Fallback:           toCoordinateJSON(cfg.Fallback),
	}
	resp.Bounds.MinLat = cfg.Bounds.MinLat
	resp.Bounds.MaxLat = cfg.Bounds.MaxLat
	resp.Bounds.MinLng = cfg.Bounds.MinLng
	resp.Bounds.MaxLng = cfg.Bounds.MaxLng

	respondJSON(c, http.StatusOK, resp)
}

// Estimate handles POST /v1/navigation/estimate
func (h *NavigationHandler) Estimate(c *gin.Context) {
	var req NavigationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Destination == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "destination is required"})
		return
	}

	eta, err := h.navigationService.Estimate(c.Request.Context(), service.EstimateRequest{
		WorkerID:    req.WorkerID,
		Origin:      req.Origin.coordinate(),
		Destination: *req.Destination.coordinate(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EstimateResponse{
		DistanceKm:      eta.DistanceKm,
		DistanceText:    eta.DistanceText,
		DurationMinutes: eta.DurationMinutes,
		DurationText:    eta.DurationText,
		SpeedKmh:        eta.SpeedKmh,
		ArrivalTime:     eta.ArrivalTime.Format(time.RFC3339),
		ArrivalText:     eta.ArrivalText,
	})
}

// Start handles POST /v1/workers/:id/navigation
func (h *NavigationHandler) Start(c *gin.Context) {
	var req NavigationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Destination == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "destination is required"})
		return
	}

	state, err := h.navigationService.StartNavigation(c.Request.Context(), service.StartNavigationRequest{
		WorkerID:    c.Param("id"),
		Origin:      req.Origin.coordinate(),
		Destination: *req.Destination.coordinate(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toNavigationStateResponse(state))
}

// Get handles GET /v1/workers/:id/navigation
func (h *NavigationHandler) Get(c *gin.Context) {
	respondJSON(c, http.StatusOK, toNavigationStateResponse(h.navigationService.NavigationState(c.Param("id"))))
}

// Stop handles DELETE /v1/workers/:id/navigation
func (h *NavigationHandler) Stop(c *gin.Context) {
	state, err := h.navigationService.StopNavigation(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toNavigationStateResponse(state))
}

func toNavigationStateResponse(s domain.SimulationState) NavigationStateResponse {
	resp := NavigationStateResponse{
		SessionID:        s.SessionID,
		Status:           string(s.Status),
		Index:            s.Index,
		TotalPoints:      s.TotalPoints,
		Position:         toCoordinateJSON(s.Position),
		Destination:      toCoordinateJSON(s.Destination),
		RemainingKm:      s.RemainingKm,
		RemainingMinutes: s.RemainingMinutes,
	}
	if !s.UpdatedAt.IsZero() {
		resp.UpdatedAt = s.UpdatedAt.Format(time.RFC3339Nano)
	}
	return resp
}
