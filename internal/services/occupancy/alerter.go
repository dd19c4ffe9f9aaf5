package occupancy

import (
	"time"

	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/store"
)

// Alert thresholds as a percentage of the area's maximum occupancy.
const (
	warningPercent  = 80
	exceededPercent = 100
)

// Alerter evaluates an area's occupancy against its limit after every
// committed delta. Alerts are level triggered: while the area stays over a
// threshold, every further change records another alert row.
type Alerter struct {
	store     *store.Store
	publisher Publisher
}

func NewAlerter(s *store.Store, publisher Publisher) *Alerter {
	return &Alerter{store: s, publisher: publisher}
}

// Evaluate records an exceeded or warning alert when the area is at or over
// the corresponding threshold. Areas without a positive limit never alert.
func (a *Alerter) Evaluate(area *models.Area, source string, ts time.Time) {
	if area.MaxOccupancy <= 0 {
		return
	}

	percentage := area.Occupancy * 100 / area.MaxOccupancy

	var kind models.EventKind
	var alertType string
	switch {
	case percentage >= exceededPercent:
		kind = models.EventExceeded
		alertType = "exceeded"
	case percentage >= warningPercent:
		kind = models.EventWarning
		alertType = "warning"
	default:
		return
	}

	meta := models.AlertMetadata{
		Occupancy:    area.Occupancy,
		MaxOccupancy: area.MaxOccupancy,
		Percentage:   percentage,
		AlertType:    alertType,
	}

	event, err := a.store.InsertAlert(area.ID, kind, source, ts, meta)
	if err != nil {
		log.Error().Err(err).
			Str("area", area.Name).
			Str("alert", alertType).
			Msg("Failed to record alert")
		return
	}

	log.Warn().
		Str("area", area.Name).
		Str("alert", alertType).
		Int("occupancy", area.Occupancy).
		Int("max_occupancy", area.MaxOccupancy).
		Int("percentage", percentage).
		Msg("Occupancy alert")

	if a.publisher != nil {
		a.publisher.PublishAlert(area, event)
	}
}
