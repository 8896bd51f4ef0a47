package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/deal-comb/app/cfg"
	"github.com/lysyi3m/deal-comb/app/database"
	"github.com/lysyi3m/deal-comb/app/sources"
	"github.com/lysyi3m/deal-comb/app/tasks"
)

// Handler serves the observability and control endpoints.
type Handler struct {
	entryRepo  database.EntryRepository
	sourceRepo database.SourceRepository
	registry   *sources.Registry
	scheduler  tasks.TaskSchedulerInterface
}

func NewHandler(entryRepo database.EntryRepository, sourceRepo database.SourceRepository,
	registry *sources.Registry, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		entryRepo:  entryRepo,
		sourceRepo: sourceRepo,
		registry:   registry,
		scheduler:  scheduler,
	}
}

// HealthCheck reports service liveness and store reachability.
func (h *Handler) HealthCheck(c *gin.Context) {
	if _, err := h.entryRepo.Buckets(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "dedup store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": cfg.Get().Version,
	})
}

// GetStats reports per-bucket live entry counts and per-source
// scheduling state.
func (h *Handler) GetStats(c *gin.Context) {
	now := time.Now().UTC()

	buckets, err := h.entryRepo.Buckets()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	bucketStats := make(map[string]int, len(buckets))
	for _, bucket := range buckets {
		count, err := h.entryRepo.CountLive(bucket, now)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		bucketStats[bucket] = count
	}

	states, err := h.sourceRepo.GetAllStates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sourceStats := make([]gin.H, 0, len(states))
	for _, s := range states {
		sourceStats = append(sourceStats, gin.H{
			"name":            s.Name,
			"last_checked_at": s.LastCheckedAt,
			"next_check_at":   s.NextCheckAt,
			"checked_count":   s.CheckedCount,
			"error_count":     s.ErrorCount,
			"last_error":      s.LastError,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"sources_configured": h.registry.Count(),
		"buckets":            bucketStats,
		"sources":            sourceStats,
	})
}

// GetMetrics returns the report of the latest scheduling pass.
func (h *Handler) GetMetrics(c *gin.Context) {
	snap := h.scheduler.LastSnapshot()
	if snap == nil {
		c.JSON(http.StatusOK, gin.H{"status": "no passes completed yet"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// CheckSource triggers an immediate cycle for a named source, bypassing
// its due time.
func (h *Handler) CheckSource(c *gin.Context) {
	name := c.Param("name")

	if err := h.scheduler.CheckNow(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": "check scheduled",
		"source": name,
	})
}
