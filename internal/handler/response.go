package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldservice/internal/directions"
	"fieldservice/internal/geo"
	"fieldservice/internal/navigation"
	"fieldservice/internal/repository"
	"fieldservice/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrNoActiveSession):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidJobNumber),
		errors.Is(err, service.ErrInvalidWorkerID),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, geo.ErrInvalidCoordinate):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrJobAlreadyCompleted),
		errors.Is(err, service.ErrAlreadyClockedIn),
		errors.Is(err, service.ErrNotClockedIn),
		errors.Is(err, service.ErrAttendanceLocked),
		errors.Is(err, navigation.ErrSuperseded):
		return http.StatusConflict

	// Upstream failures
	case errors.Is(err, directions.ErrProvider),
		errors.Is(err, navigation.ErrEmptyRoute):
		return http.StatusBadGateway

	case errors.Is(err, service.ErrServiceClosed):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
