package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fieldservice/internal/service"
)

// JobHandler handles HTTP requests for jobs.
type JobHandler struct {
	jobService *service.JobService
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(jobService *service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// CompleteJobRequest is the HTTP request body for completing a job.
type CompleteJobRequest struct {
	Remarks string `json:"remarks"`
}

// GetJob handles GET /v1/jobs/:number
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobService.GetJob(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, job)
}

// InvalidateJob handles DELETE /v1/jobs/:number/cache
func (h *JobHandler) InvalidateJob(c *gin.Context) {
	if err := h.jobService.InvalidateJob(c.Request.Context(), c.Param("number")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// CompleteJob handles POST /v1/jobs/:number/complete
func (h *JobHandler) CompleteJob(c *gin.Context) {
	var req CompleteJobRequest
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}
	}

	job, err := h.jobService.CompleteJob(c.Request.Context(), service.CompleteJobRequest{
		JobNumber: c.Param("number"),
		Remarks:   req.Remarks,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, job)
}
