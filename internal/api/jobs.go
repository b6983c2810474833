package api

import (
	"errors"
	"net/http"
	"strconv"

	"restobot/internal/scheduler"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// JobHandler exposes the scheduling query surface consumed by the
// administration layer.
type JobHandler struct {
	Jobs *scheduler.Service
}

func NewJobHandler(jobs *scheduler.Service) *JobHandler {
	return &JobHandler{Jobs: jobs}
}

// GetDueJobs lists jobs currently eligible for dispatch.
func (h *JobHandler) GetDueJobs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 {
		limit = 100
	}

	jobs, err := h.Jobs.FindDue(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	job, err := h.Jobs.Get(c.Request.Context(), id)
	if errors.Is(err, scheduler.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, job)
}

// CancelJob transitions a pending job to cancelled. Jobs that already
// left pending are reported as a conflict.
func (h *JobHandler) CancelJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	err = h.Jobs.Cancel(c.Request.Context(), id)
	switch {
	case errors.Is(err, scheduler.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
	case errors.Is(err, scheduler.ErrNotCancellable):
		c.JSON(http.StatusConflict, gin.H{"error": "job is no longer pending"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
	}
}
