package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"aforo-worker-go/internal/logging"
	"aforo-worker-go/internal/store"
)

type EventHandler struct {
	store *store.Store
}

func NewEventHandler(s *store.Store) *EventHandler {
	return &EventHandler{store: s}
}

// AreaEvents returns the recent event log of one area
// @Summary Area events
// @Description Most recent counting events and alerts for an area, newest first
// @Tags events
// @Produce json
// @Param id path int true "Area ID"
// @Param limit query int false "Maximum rows to return" default(100)
// @Success 200 {array} models.CountingEvent
// @Failure 400 {object} map[string]string
// @Router /areas/{id}/events [get]
func (h *EventHandler) AreaEvents(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	events, err := h.store.AreaEvents(id, limit)
	if err != nil {
		logging.Error(c).Err(err).Uint("area_id", id).Msg("Failed to list area events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

// AreaMeasurements returns occupancy snapshots of one area
// @Summary Area measurements
// @Description Occupancy snapshots inside [start, end), oldest first
// @Tags events
// @Produce json
// @Param id path int true "Area ID"
// @Param start query string false "Range start (RFC 3339), defaults to 24h ago"
// @Param end query string false "Range end (RFC 3339), defaults to now"
// @Param limit query int false "Maximum rows to return" default(1000)
// @Success 200 {array} models.Measurement
// @Failure 400 {object} map[string]string
// @Router /areas/{id}/measurements [get]
func (h *EventHandler) AreaMeasurements(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
			return
		}
		start = t.UTC()
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
			return
		}
		end = t.UTC()
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))

	rows, err := h.store.AreaMeasurements(id, start, end, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// AlertStats returns alert counts per area and kind
// @Summary Alert statistics
// @Description Warning and exceeded alert counts per area inside [start, end)
// @Tags events
// @Produce json
// @Param start query string false "Range start (RFC 3339), defaults to 24h ago"
// @Param end query string false "Range end (RFC 3339), defaults to now"
// @Success 200 {array} store.AlertStatRow
// @Failure 400 {object} map[string]string
// @Router /alerts/stats [get]
func (h *EventHandler) AlertStats(c *gin.Context) {
	end := time.Now().UTC()
	start := end.Add(-24 * time.Hour)
	if v := c.Query("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
			return
		}
		start = t.UTC()
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end"})
			return
		}
		end = t.UTC()
	}

	rows, err := h.store.AlertStats(start, end)
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to load alert stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}
