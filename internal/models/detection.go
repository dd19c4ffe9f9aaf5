package models

import "time"

// NormalizedDetection is the strict shape produced by the classifier. Nothing
// downstream ever sees the raw broker payload.
type NormalizedDetection struct {
	EventID      string    `json:"event_id"` // upstream tracking id
	Camera       string    `json:"camera"`
	Label        string    `json:"label"` // normalized domain label
	EnteredZones []string  `json:"entered_zones"`
	ExitedZones  []string  `json:"exited_zones"`
	Confidence   float64   `json:"confidence"`
	Timestamp    time.Time `json:"timestamp"`
}

// AreaDelta is one signed occupancy change resolved from a zone transition.
// A single detection can fan out into deltas for several areas when a zone
// is a shared boundary.
type AreaDelta struct {
	AreaID        uint      `json:"area_id"`
	AreaName      string    `json:"area_name"`
	AccessPointID uint      `json:"access_point_id"`
	Delta         int       `json:"delta"` // +1 or -1, never 0
	Source        string    `json:"source"`
	Zone          string    `json:"zone"`
	EventID       string    `json:"event_id"`
	Label         string    `json:"label"`
	Confidence    float64   `json:"confidence"`
	Timestamp     time.Time `json:"timestamp"`
}

// Kind maps the delta sign onto the event kind persisted for it.
func (d AreaDelta) Kind() EventKind {
	if d.Delta > 0 {
		return EventEnter
	}
	return EventExit
}

// EventMetadata is the opaque blob stored with each committed enter/exit row.
// It carries the upstream event id the dedup gate matches on.
type EventMetadata struct {
	ZoneName       string  `json:"zone_name"`
	OriginalLabel  string  `json:"original_label,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
	FrigateEventID string  `json:"frigate_event_id"`
	AccessPointID  uint    `json:"access_point_id,omitempty"`
}

// AlertMetadata is stored with warning/exceeded rows.
type AlertMetadata struct {
	Occupancy    int    `json:"occupancy"`
	MaxOccupancy int    `json:"max_occupancy"`
	Percentage   int    `json:"percentage"`
	AlertType    string `json:"alert_type"`
}
