package models

import (
	"time"
)

// AreaType says which family of objects an area counts
type AreaType string

const (
	AreaTypePeople   AreaType = "people"
	AreaTypeVehicles AreaType = "vehicles"
)

// LimitMode controls what happens when max occupancy is reached
type LimitMode string

const (
	LimitModeSoft LimitMode = "soft" // alert only
	LimitModeHard LimitMode = "hard" // alert + block semantics left to caller
)

// Direction of an access point relative to its area
type Direction string

const (
	DirectionEntrance Direction = "entrance"
	DirectionExit     Direction = "exit"
)

// EventKind classifies a counting event row
type EventKind string

const (
	EventEnter    EventKind = "enter"
	EventExit     EventKind = "exit"
	EventWarning  EventKind = "warning"
	EventExceeded EventKind = "exceeded"
)

// ColorBand is the coarse visual status derived from occupancy ratio
type ColorBand string

const (
	ColorGreen  ColorBand = "green"
	ColorYellow ColorBand = "yellow"
	ColorOrange ColorBand = "orange"
	ColorRed    ColorBand = "red"
)

// Area is a monitored space with a maximum occupancy and a live count.
// Occupancy and Color are mutated only by the occupancy service.
type Area struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;not null" json:"name"`
	Type         AreaType  `gorm:"not null" json:"type"`
	MaxOccupancy int       `gorm:"not null;default:100" json:"max_occupancy"`
	LimitMode    LimitMode `gorm:"not null;default:soft" json:"limit_mode"`
	Occupancy    int       `gorm:"not null;default:0" json:"occupancy"`
	Color        ColorBand `gorm:"not null;default:green" json:"color"`
	MapMetadata  string    `json:"map_metadata,omitempty"`
	Enabled      bool      `gorm:"not null;default:true" json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	AccessPoints []AccessPoint `gorm:"constraint:OnDelete:CASCADE" json:"access_points,omitempty"`
}

// AccessPoint binds an upstream zone (or camera) name to one area boundary.
// The same SourceID may be bound to access points of several areas: a shared
// boundary is the exit of one area and the entrance of the next.
type AccessPoint struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AreaID    uint      `gorm:"not null;index:idx_access_points_area" json:"area_id"`
	SourceID  string    `gorm:"not null;index" json:"source_id"`
	Direction Direction `gorm:"not null" json:"direction"`
	Geometry  string    `json:"geometry,omitempty"`
	Enabled   bool      `gorm:"not null;default:true;index:idx_access_points_area" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CountingEvent is an immutable record of one accepted occupancy change or
// alert. Value is +1/-1 for enter/exit and 0 for warning/exceeded rows.
type CountingEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AreaID    uint      `gorm:"not null;index:idx_counting_events_area_ts,priority:1" json:"area_id"`
	Kind      EventKind `gorm:"not null;index:idx_counting_events_kind_ts,priority:1" json:"kind"`
	Value     int       `gorm:"not null;default:0" json:"value"`
	Source    string    `gorm:"not null" json:"source"`
	Timestamp time.Time `gorm:"not null;index:idx_counting_events_area_ts,priority:2;index:idx_counting_events_kind_ts,priority:2" json:"ts"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Measurement is a periodic occupancy snapshot, decoupled from per-transition
// events so trend queries don't have to fold the whole event log.
type Measurement struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AreaID    uint      `gorm:"not null;index:idx_measurements_area_ts,priority:1" json:"area_id"`
	Occupancy int       `gorm:"not null" json:"occupancy"`
	Density   *float64  `json:"density,omitempty"`
	Timestamp time.Time `gorm:"not null;index:idx_measurements_area_ts,priority:2" json:"ts"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings is the module configuration singleton. Written by the config API,
// read by everything else.
type Settings struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	MQTTHost            string    `gorm:"not null;default:localhost" json:"mqtt_host"`
	MQTTPort            int       `gorm:"not null;default:1883" json:"mqtt_port"`
	MQTTUser            string    `json:"mqtt_user,omitempty"`
	MQTTPass            string    `json:"-"`
	MQTTUseTLS          bool      `gorm:"not null;default:false" json:"mqtt_use_tls"`
	MQTTTopic           string    `gorm:"not null;default:frigate/events" json:"mqtt_topic"`
	Objects             string    `gorm:"not null" json:"objects"`        // JSON array of known labels
	ActiveObjects       string    `gorm:"not null" json:"active_objects"` // JSON array, subset of Objects
	ConfidenceThreshold float64   `gorm:"not null;default:0.7" json:"confidence_threshold"`
	RetentionDays       int       `gorm:"not null;default:30" json:"retention_days"`
	Enabled             bool      `gorm:"not null;default:false" json:"enabled"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ColorForOccupancy derives the color band from the occupancy ratio.
// Bands: <60% green, 60-79% yellow, 80-99% orange, >=100% red.
func ColorForOccupancy(occupancy, maxOccupancy int) ColorBand {
	if maxOccupancy <= 0 {
		return ColorGreen
	}
	percentage := float64(occupancy) / float64(maxOccupancy) * 100
	switch {
	case percentage >= 100:
		return ColorRed
	case percentage >= 80:
		return ColorOrange
	case percentage >= 60:
		return ColorYellow
	default:
		return ColorGreen
	}
}
