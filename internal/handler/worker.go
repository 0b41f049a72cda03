package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fieldservice/internal/domain"
	"fieldservice/internal/service"
)

// WorkerHandler handles worker location and attendance requests.
type WorkerHandler struct {
	attendanceService *service.AttendanceService
	navigationService *service.NavigationService
}

// NewWorkerHandler creates a new WorkerHandler.
func NewWorkerHandler(attendanceService *service.AttendanceService, navigationService *service.NavigationService) *WorkerHandler {
	return &WorkerHandler{
		attendanceService: attendanceService,
		navigationService: navigationService,
	}
}

// UpdateLocationRequest is the HTTP request body for a device position.
type UpdateLocationRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// UpdateLocationResponse is the HTTP response for a device position.
type UpdateLocationResponse struct {
	WorkerID string `json:"worker_id"`
	Ignored  bool   `json:"ignored"`
}

// AttendanceResponse is the HTTP response for attendance data.
type AttendanceResponse struct {
	WorkerID      string  `json:"worker_id"`
	Date          string  `json:"date"`
	Status        string  `json:"status"`
	ClockInAt     string  `json:"clock_in_at"`
	ClockOutAt    *string `json:"clock_out_at,omitempty"`
	WorkedMinutes int     `json:"worked_minutes"`
}

// NearbyWorkerResponse is one entry of a nearby-workers lookup.
type NearbyWorkerResponse struct {
	WorkerID string  `json:"worker_id"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	LastSeen *string `json:"last_seen,omitempty"`
}

// UpdateLocation handles POST /v1/workers/:id/location
func (h *WorkerHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Lat == nil || req.Lng == nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng are required"})
		return
	}

	workerID := c.Param("id")
	ignored, err := h.navigationService.UpdateLocation(c.Request.Context(), workerID, domain.Coordinate{
		Latitude:  *req.Lat,
		Longitude: *req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, UpdateLocationResponse{WorkerID: workerID, Ignored: ignored})
}

// ClearLocation handles DELETE /v1/workers/:id/location
func (h *WorkerHandler) ClearLocation(c *gin.Context) {
	if err := h.navigationService.ClearLocation(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Nearby handles GET /v1/locations/nearby?lat=&lng=&radius_km=
func (h *WorkerHandler) Nearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng are required"})
		return
	}

	radiusKm := 5.0
	if v := c.Query("radius_km"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid radius_km"})
			return
		}
		radiusKm = r
	}

	workers, err := h.navigationService.NearbyWorkers(c.Request.Context(), domain.Coordinate{Latitude: lat, Longitude: lng}, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NearbyWorkerResponse, 0, len(workers))
	for _, w := range workers {
		entry := NearbyWorkerResponse{WorkerID: w.WorkerID, Lat: w.Lat, Lng: w.Lng}
		if !w.LastSeen.IsZero() {
			seen := w.LastSeen.UTC().Format(time.RFC3339)
			entry.LastSeen = &seen
		}
		response = append(response, entry)
	}
	respondJSON(c, http.StatusOK, response)
}

// ClockIn handles POST /v1/workers/:id/clock-in
func (h *WorkerHandler) ClockIn(c *gin.Context) {
	record, err := h.attendanceService.ClockIn(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toAttendanceResponse(record))
}

// ClockOut handles POST /v1/workers/:id/clock-out
func (h *WorkerHandler) ClockOut(c *gin.Context) {
	record, err := h.attendanceService.ClockOut(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAttendanceResponse(record))
}

// GetAttendance handles GET /v1/workers/:id/attendance?date=YYYY-MM-DD
func (h *WorkerHandler) GetAttendance(c *gin.Context) {
	record, err := h.attendanceService.GetAttendance(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toAttendanceResponse(record))
}

func toAttendanceResponse(r *domain.AttendanceRecord) AttendanceResponse {
	resp := AttendanceResponse{
		WorkerID:      r.WorkerID,
		Date:          r.Date,
		Status:        string(r.Status),
		ClockInAt:     r.ClockInAt.Format(time.RFC3339),
		WorkedMinutes: r.WorkedMinutes,
	}
	if r.ClockOutAt != nil {
		out := r.ClockOutAt.Format(time.RFC3339)
		resp.ClockOutAt = &out
	}
	return resp
}
