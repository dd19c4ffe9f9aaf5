package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/store"
)

type AreaHandler struct {
	store *store.Store
}

func NewAreaHandler(s *store.Store) *AreaHandler {
	return &AreaHandler{store: s}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

type AreaRequest struct {
	Name         string           `json:"name" binding:"required"`
	Type         models.AreaType  `json:"type" binding:"required,oneof=people vehicles"`
	MaxOccupancy int              `json:"max_occupancy" binding:"required,gt=0"`
	LimitMode    models.LimitMode `json:"limit_mode" binding:"omitempty,oneof=soft hard"`
	MapMetadata  string           `json:"map_metadata"`
	Enabled      *bool            `json:"enabled"`
}

// ListAreas returns all configured areas
// @Summary List areas
// @Description Get every configured area, enabled or not
// @Tags areas
// @Produce json
// @Success 200 {array} models.Area
// @Failure 500 {object} map[string]string
// @Router /areas [get]
func (h *AreaHandler) ListAreas(c *gin.Context) {
	areas, err := h.store.Areas()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list areas")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, areas)
}

// CreateArea creates a new area
// @Summary Create area
// @Description Create a new monitored area
// @Tags areas
// @Accept json
// @Produce json
// @Param request body AreaRequest true "Area configuration"
// @Success 201 {object} models.Area
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /areas [post]
func (h *AreaHandler) CreateArea(c *gin.Context) {
	var req AreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	area := models.Area{
		Name:         req.Name,
		Type:         req.Type,
		MaxOccupancy: req.MaxOccupancy,
		LimitMode:    models.LimitModeSoft,
		Color:        models.ColorGreen,
		MapMetadata:  req.MapMetadata,
		Enabled:      true,
	}
	if req.LimitMode != "" {
		area.LimitMode = req.LimitMode
	}
	if req.Enabled != nil {
		area.Enabled = *req.Enabled
	}

	if err := h.store.CreateArea(&area); err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("Failed to create area")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info().Str("name", area.Name).Uint("id", area.ID).Msg("Area created")
	c.JSON(http.StatusCreated, area)
}

// GetArea returns one area
// @Summary Get area
// @Tags areas
// @Produce json
// @Param id path int true "Area ID"
// @Success 200 {object} models.Area
// @Failure 404 {object} map[string]string
// @Router /areas/{id} [get]
func (h *AreaHandler) GetArea(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	area, err := h.store.Area(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "area not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, area)
}

// UpdateArea edits an area's configuration
// @Summary Update area
// @Description Update name, type, limit or enabled flag. Live occupancy is not editable here.
// @Tags areas
// @Accept json
// @Produce json
// @Param id path int true "Area ID"
// @Param request body AreaRequest true "Area configuration"
// @Success 200 {object} models.Area
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /areas/{id} [put]
func (h *AreaHandler) UpdateArea(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	area, err := h.store.Area(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "area not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var req AreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	area.Name = req.Name
	area.Type = req.Type
	area.MaxOccupancy = req.MaxOccupancy
	if req.LimitMode != "" {
		area.LimitMode = req.LimitMode
	}
	area.MapMetadata = req.MapMetadata
	if req.Enabled != nil {
		area.Enabled = *req.Enabled
	}
	// The limit may have changed, so the band has to be recomputed.
	area.Color = models.ColorForOccupancy(area.Occupancy, area.MaxOccupancy)

	if err := h.store.UpdateArea(area); err != nil {
		log.Error().Err(err).Uint("id", id).Msg("Failed to update area")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, area)
}

// DeleteArea removes an area and its access points
// @Summary Delete area
// @Tags areas
// @Param id path int true "Area ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /areas/{id} [delete]
func (h *AreaHandler) DeleteArea(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteArea(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "area not found"})
			return
		}
		log.Error().Err(err).Uint("id", id).Msg("Failed to delete area")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Info().Uint("id", id).Msg("Area deleted")
	c.JSON(http.StatusOK, gin.H{"message": "area deleted"})
}

// AreasStatus returns current occupancy of every enabled area
// @Summary Areas live status
// @Description Current occupancy, color band and access point count per enabled area
// @Tags areas
// @Produce json
// @Success 200 {array} store.AreaStatus
// @Failure 500 {object} map[string]string
// @Router /areas/status [get]
func (h *AreaHandler) AreasStatus(c *gin.Context) {
	status, err := h.store.AreasStatus()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load areas status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

type AccessPointRequest struct {
	SourceID  string           `json:"source_id" binding:"required"`
	Direction models.Direction `json:"direction" binding:"required,oneof=entrance exit"`
	Geometry  string           `json:"geometry"`
	Enabled   *bool            `json:"enabled"`
}

// ListAccessPoints returns the enabled access points of an area
// @Summary List access points
// @Tags areas
// @Produce json
// @Param id path int true "Area ID"
// @Success 200 {array} models.AccessPoint
// @Router /areas/{id}/access-points [get]
func (h *AreaHandler) ListAccessPoints(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	points, err := h.store.AccessPointsByArea(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, points)
}

// CreateAccessPoint binds a zone to an area boundary
// @Summary Create access point
// @Tags areas
// @Accept json
// @Produce json
// @Param id path int true "Area ID"
// @Param request body AccessPointRequest true "Access point configuration"
// @Success 201 {object} models.AccessPoint
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /areas/{id}/access-points [post]
func (h *AreaHandler) CreateAccessPoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req AccessPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	point := models.AccessPoint{
		AreaID:    id,
		SourceID:  req.SourceID,
		Direction: req.Direction,
		Geometry:  req.Geometry,
		Enabled:   true,
	}
	if req.Enabled != nil {
		point.Enabled = *req.Enabled
	}

	if err := h.store.CreateAccessPoint(&point); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "area not found"})
			return
		}
		log.Error().Err(err).Uint("area_id", id).Msg("Failed to create access point")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info().
		Uint("area_id", id).
		Str("source_id", point.SourceID).
		Str("direction", string(point.Direction)).
		Msg("Access point created")
	c.JSON(http.StatusCreated, point)
}

// UpdateAccessPoint edits an access point
// @Summary Update access point
// @Tags access-points
// @Accept json
// @Produce json
// @Param id path int true "Access point ID"
// @Param request body AccessPointRequest true "Access point configuration"
// @Success 200 {object} models.AccessPoint
// @Failure 404 {object} map[string]string
// @Router /access-points/{id} [put]
func (h *AreaHandler) UpdateAccessPoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var point models.AccessPoint
	if err := h.store.DB().First(&point, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "access point not found"})
		return
	}

	var req AccessPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	point.SourceID = req.SourceID
	point.Direction = req.Direction
	point.Geometry = req.Geometry
	if req.Enabled != nil {
		point.Enabled = *req.Enabled
	}

	if err := h.store.UpdateAccessPoint(&point); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, point)
}

// DeleteAccessPoint removes an access point
// @Summary Delete access point
// @Tags access-points
// @Param id path int true "Access point ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /access-points/{id} [delete]
func (h *AreaHandler) DeleteAccessPoint(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteAccessPoint(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "access point not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "access point deleted"})
}
