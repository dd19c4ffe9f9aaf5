package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"aforo-worker-go/internal/logging"
	"aforo-worker-go/internal/store"
)

type SummaryHandler struct {
	store *store.Store
}

func NewSummaryHandler(s *store.Store) *SummaryHandler {
	return &SummaryHandler{store: s}
}

// Summary returns aggregated counting activity
// @Summary Usage summary
// @Description Enter counts by area type, hour and bucket over the day, week or month containing the anchor date
// @Tags summary
// @Produce json
// @Param granularity query string false "day, week or month" default(day)
// @Param date query string false "Anchor date (YYYY-MM-DD), defaults to today"
// @Param area_id query int false "Restrict to one area"
// @Success 200 {object} store.Summary
// @Failure 400 {object} map[string]string
// @Router /summary [get]
func (h *SummaryHandler) Summary(c *gin.Context) {
	granularity := store.Granularity(c.DefaultQuery("granularity", "day"))
	switch granularity {
	case store.GranularityDay, store.GranularityWeek, store.GranularityMonth:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "granularity must be day, week or month"})
		return
	}

	anchor := time.Now().UTC()
	if v := c.Query("date"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		anchor = t
	}

	var areaID uint
	if v := c.Query("area_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid area_id"})
			return
		}
		areaID = uint(id)
	}

	summary, err := h.store.Summarize(granularity, anchor, areaID)
	if err != nil {
		logging.Error(c).Err(err).Str("granularity", string(granularity)).Msg("Failed to build summary")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
