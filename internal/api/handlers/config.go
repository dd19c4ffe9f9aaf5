package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/services/frigate"
	"aforo-worker-go/internal/store"
)

type ConfigHandler struct {
	store   *store.Store
	frigate *frigate.Service
}

func NewConfigHandler(s *store.Store, f *frigate.Service) *ConfigHandler {
	return &ConfigHandler{store: s, frigate: f}
}

type SettingsRequest struct {
	MQTTHost            *string  `json:"mqtt_host"`
	MQTTPort            *int     `json:"mqtt_port"`
	MQTTUser            *string  `json:"mqtt_user"`
	MQTTPass            *string  `json:"mqtt_pass"`
	MQTTUseTLS          *bool    `json:"mqtt_use_tls"`
	MQTTTopic           *string  `json:"mqtt_topic"`
	ConfidenceThreshold *float64 `json:"confidence_threshold"`
	RetentionDays       *int     `json:"retention_days"`
	Enabled             *bool    `json:"enabled"`
}

// GetSettings returns the counting configuration
// @Summary Get settings
// @Description Current broker, classification and retention settings. The broker password is never returned.
// @Tags config
// @Produce json
// @Success 200 {object} models.Settings
// @Router /config [get]
func (h *ConfigHandler) GetSettings(c *gin.Context) {
	settings, err := h.store.Settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings edits the counting configuration
// @Summary Update settings
// @Description Partial update of broker, classification and retention settings. Broker changes take effect on the next reload.
// @Tags config
// @Accept json
// @Produce json
// @Param request body SettingsRequest true "Settings to change"
// @Success 200 {object} models.Settings
// @Failure 400 {object} map[string]string
// @Router /config [put]
func (h *ConfigHandler) UpdateSettings(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings, err := h.store.Settings()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.MQTTHost != nil {
		settings.MQTTHost = *req.MQTTHost
	}
	if req.MQTTPort != nil {
		settings.MQTTPort = *req.MQTTPort
	}
	if req.MQTTUser != nil {
		settings.MQTTUser = *req.MQTTUser
	}
	if req.MQTTPass != nil {
		settings.MQTTPass = *req.MQTTPass
	}
	if req.MQTTUseTLS != nil {
		settings.MQTTUseTLS = *req.MQTTUseTLS
	}
	if req.MQTTTopic != nil {
		settings.MQTTTopic = *req.MQTTTopic
	}
	if req.ConfidenceThreshold != nil {
		if *req.ConfidenceThreshold < 0 || *req.ConfidenceThreshold > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "confidence_threshold must be within [0, 1]"})
			return
		}
		settings.ConfidenceThreshold = *req.ConfidenceThreshold
	}
	if req.RetentionDays != nil {
		if *req.RetentionDays < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "retention_days must be at least 1"})
			return
		}
		settings.RetentionDays = *req.RetentionDays
	}
	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}

	if err := h.store.UpdateSettings(settings); err != nil {
		log.Error().Err(err).Msg("Failed to update settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info().Msg("Settings updated")
	c.JSON(http.StatusOK, settings)
}

type ToggleObjectRequest struct {
	Label string `json:"label" binding:"required"`
}

// ToggleObject flips one label in the active counting set
// @Summary Toggle counted object
// @Description Add or remove a label from the active counting set
// @Tags config
// @Accept json
// @Produce json
// @Param request body ToggleObjectRequest true "Label to toggle"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /config/objects/toggle [post]
func (h *ConfigHandler) ToggleObject(c *gin.Context) {
	var req ToggleObjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	active, err := h.store.ToggleActiveLabel(req.Label)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Info().Str("label", req.Label).Strs("active", active).Msg("Active objects toggled")
	c.JSON(http.StatusOK, gin.H{"active_objects": active})
}

// Reload restarts the broker subscription with current settings
// @Summary Reload subscription
// @Description Tear down and rebuild the MQTT subscription from stored settings
// @Tags config
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /config/reload [post]
func (h *ConfigHandler) Reload(c *gin.Context) {
	if err := h.frigate.Reload(); err != nil {
		log.Error().Err(err).Msg("Failed to reload MQTT subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "subscription reloaded"})
}

// ConnectionStatus returns the broker connection state
// @Summary Connection status
// @Tags config
// @Produce json
// @Success 200 {object} frigate.Status
// @Router /config/connection [get]
func (h *ConfigHandler) ConnectionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.frigate.Status())
}
