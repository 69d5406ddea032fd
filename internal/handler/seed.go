package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"collegeattendance/internal/seed"
)

type seedResponse struct {
	seed.Result
	Message string `json:"message"`
}

// SeedDemoData wipes and repopulates every table synchronously.
func (h *Handler) SeedDemoData(c *gin.Context) {
	res, err := h.seeder.Run(c.Request.Context())
	if err != nil {
		h.log.Error("seed demo data failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to seed mock data"})
		return
	}
	c.JSON(http.StatusOK, seedResponse{Result: res, Message: "Mock data inserted"})
}

// EnqueueSeedJob schedules a seed run on the worker queue.
func (h *Handler) EnqueueSeedJob(c *gin.Context) {
	if h.queue == nil || h.jobs == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "seed queue not configured"})
		return
	}
	job, err := seed.Enqueue(c.Request.Context(), h.queue, h.jobs)
	if err != nil {
		h.log.Error("enqueue seed job failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to queue seed job"})
		return
	}
	c.Header("Location", "/seed-demo-data/jobs/"+job.ID)
	c.JSON(http.StatusAccepted, job)
}

// staleJobAfter is how long a queued or running job may go without an update before status
// responses flag it. A full seed run takes well under a minute.
const staleJobAfter = 15 * time.Minute

// SeedJobStatus reports a queued seed run.
func (h *Handler) SeedJobStatus(c *gin.Context) {
	if h.jobs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	job, ok, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.log.Error("load seed job failed", zap.String("job_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to load job"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	job.Stale = job.IsStale(h.now(), staleJobAfter)
	c.JSON(http.StatusOK, job)
}
