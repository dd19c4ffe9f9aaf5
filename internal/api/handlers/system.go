package handlers

import (
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/services/cleanup"
	"aforo-worker-go/internal/store"
)

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	WorkerID string
	store    *store.Store
	cleanup  *cleanup.Service
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(workerID string, s *store.Store, c *cleanup.Service) *SystemHandler {
	return &SystemHandler{
		WorkerID: workerID,
		store:    s,
		cleanup:  c,
	}
}

// @Summary Get system stats
// @Description Counting totals plus process statistics
// @Tags system
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	stats, err := h.store.EngineStats(time.Now().UTC())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load engine stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"worker_id":       h.WorkerID,
			"total_events":    stats.TotalEvents,
			"events_today":    stats.EventsToday,
			"active_areas":    stats.ActiveAreas,
			"access_points":   stats.AccessPoints,
			"total_occupancy": stats.TotalOccupancy,
			"memory_mb":       m.Alloc / 1024 / 1024,
			"goroutines":      runtime.NumGoroutine(),
			"go_version":      runtime.Version(),
		},
		"timestamp": time.Now().Unix(),
	})
}

// @Summary Run retention cleanup
// @Description Delete events and measurements older than the retention window, then vacuum
// @Tags system
// @Produce json
// @Success 200 {object} cleanup.Result
// @Failure 409 {object} map[string]string
// @Router /system/cleanup [post]
func (h *SystemHandler) RunCleanup(c *gin.Context) {
	result, err := h.cleanup.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, cleanup.ErrAlreadyRunning) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("Cleanup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Last cleanup result
// @Tags system
// @Produce json
// @Success 200 {object} cleanup.Result
// @Failure 404 {object} map[string]string
// @Router /system/cleanup [get]
func (h *SystemHandler) LastCleanup(c *gin.Context) {
	result := h.cleanup.LastResult()
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no cleanup has run yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}
