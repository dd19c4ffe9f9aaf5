package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"aforo-worker-go/internal/models"
)

// dedupWindow is how far back to look for a counting event carrying the same
// upstream event id before treating a new delta as a duplicate.
const dedupWindow = 1000 * time.Millisecond

// ApplyResult reports the outcome of one committed delta.
type ApplyResult struct {
	Area      *models.Area
	Event     *models.CountingEvent
	OldValue  int
	Duplicate bool
}

// IsDuplicate reports whether an event with the same upstream event id was
// already recorded for this area and kind inside the dedup window. The
// metadata column is JSON, so the id is pulled out with JSON_EXTRACT.
func (s *Store) IsDuplicate(areaID uint, kind models.EventKind, frigateEventID string, now time.Time) (bool, error) {
	if frigateEventID == "" {
		return false, nil
	}
	var count int64
	err := s.db.Model(&models.CountingEvent{}).
		Where("area_id = ? AND kind = ? AND timestamp >= ?", areaID, kind, now.Add(-dedupWindow)).
		Where("JSON_EXTRACT(metadata, '$.frigate_event_id') = ?", frigateEventID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check duplicate event: %w", err)
	}
	return count > 0, nil
}

// ApplyDelta records one signed occupancy change for an area and updates the
// area's live occupancy and color band in the same transaction. The occupancy
// is clamped at zero so spurious exits can never drive it negative.
func (s *Store) ApplyDelta(delta models.AreaDelta) (*ApplyResult, error) {
	result := &ApplyResult{}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var area models.Area
		if err := tx.First(&area, delta.AreaID).Error; err != nil {
			return fmt.Errorf("failed to load area %d: %w", delta.AreaID, err)
		}

		result.OldValue = area.Occupancy

		occupancy := area.Occupancy + delta.Delta
		if occupancy < 0 {
			occupancy = 0
		}
		area.Occupancy = occupancy
		area.Color = models.ColorForOccupancy(occupancy, area.MaxOccupancy)

		metadata, _ := json.Marshal(models.EventMetadata{
			ZoneName:       delta.Zone,
			OriginalLabel:  delta.Label,
			Confidence:     delta.Confidence,
			FrigateEventID: delta.EventID,
			AccessPointID:  delta.AccessPointID,
		})

		event := models.CountingEvent{
			AreaID:    area.ID,
			Kind:      delta.Kind(),
			Value:     delta.Delta,
			Source:    delta.Source,
			Timestamp: delta.Timestamp,
			Metadata:  string(metadata),
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("failed to record counting event: %w", err)
		}

		if err := tx.Model(&models.Area{}).Where("id = ?", area.ID).
			Updates(map[string]any{"occupancy": area.Occupancy, "color": area.Color}).Error; err != nil {
			return fmt.Errorf("failed to update occupancy for area %d: %w", area.ID, err)
		}

		result.Area = &area
		result.Event = &event
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// InsertAlert records a threshold alert row. Alerts carry value 0 so summing
// event values still yields the net occupancy change.
func (s *Store) InsertAlert(areaID uint, kind models.EventKind, source string, ts time.Time, meta models.AlertMetadata) (*models.CountingEvent, error) {
	metadata, _ := json.Marshal(meta)
	event := models.CountingEvent{
		AreaID:    areaID,
		Kind:      kind,
		Value:     0,
		Source:    source,
		Timestamp: ts,
		Metadata:  string(metadata),
	}
	if err := s.db.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("failed to record alert: %w", err)
	}
	return &event, nil
}

// AreaEvents returns the most recent events for one area, newest first.
func (s *Store) AreaEvents(areaID uint, limit int) ([]models.CountingEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	var events []models.CountingEvent
	err := s.db.Where("area_id = ?", areaID).
		Order("timestamp DESC").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list events for area %d: %w", areaID, err)
	}
	return events, nil
}

// AlertStatRow counts alerts of one kind for one area inside a range.
type AlertStatRow struct {
	AreaID   uint             `json:"area_id"`
	AreaName string           `json:"area_name"`
	Kind     models.EventKind `json:"kind"`
	Count    int64            `json:"count"`
}

// AlertStats returns warning/exceeded counts per area between start and end.
func (s *Store) AlertStats(start, end time.Time) ([]AlertStatRow, error) {
	var rows []AlertStatRow
	err := s.db.Model(&models.CountingEvent{}).
		Select("counting_events.area_id, areas.name AS area_name, counting_events.kind, COUNT(*) AS count").
		Joins("JOIN areas ON areas.id = counting_events.area_id").
		Where("counting_events.kind IN ?", []models.EventKind{models.EventWarning, models.EventExceeded}).
		Where("counting_events.timestamp >= ? AND counting_events.timestamp < ?", start, end).
		Group("counting_events.area_id, counting_events.kind").
		Order("areas.name, counting_events.kind").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load alert stats: %w", err)
	}
	return rows, nil
}

// Stats is the engine-wide counters block served by the status endpoint.
type Stats struct {
	TotalEvents    int64 `json:"total_events"`
	EventsToday    int64 `json:"events_today"`
	ActiveAreas    int64 `json:"active_areas"`
	AccessPoints   int64 `json:"access_points"`
	TotalOccupancy int64 `json:"total_occupancy"`
}

// EngineStats aggregates totals across the whole store.
func (s *Store) EngineStats(now time.Time) (*Stats, error) {
	var stats Stats

	if err := s.db.Model(&models.CountingEvent{}).Count(&stats.TotalEvents).Error; err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := s.db.Model(&models.CountingEvent{}).
		Where("timestamp >= ?", dayStart).Count(&stats.EventsToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's events: %w", err)
	}

	if err := s.db.Model(&models.Area{}).Where("enabled = ?", true).Count(&stats.ActiveAreas).Error; err != nil {
		return nil, fmt.Errorf("failed to count areas: %w", err)
	}

	if err := s.db.Model(&models.AccessPoint{}).Where("enabled = ?", true).Count(&stats.AccessPoints).Error; err != nil {
		return nil, fmt.Errorf("failed to count access points: %w", err)
	}

	var total struct{ Total int64 }
	if err := s.db.Model(&models.Area{}).Where("enabled = ?", true).
		Select("COALESCE(SUM(occupancy), 0) AS total").Scan(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to sum occupancy: %w", err)
	}
	stats.TotalOccupancy = total.Total

	return &stats, nil
}

// DeleteEventsBatch removes up to limit events older than cutoff and returns
// the number removed. Batching keeps each delete short so the WAL writer
// never blocks ingest for long.
func (s *Store) DeleteEventsBatch(cutoff time.Time, limit int) (int64, error) {
	res := s.db.Exec(
		"DELETE FROM counting_events WHERE id IN (SELECT id FROM counting_events WHERE timestamp < ? LIMIT ?)",
		cutoff, limit,
	)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete event batch: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteMeasurementsBatch removes up to limit measurements older than cutoff.
func (s *Store) DeleteMeasurementsBatch(cutoff time.Time, limit int) (int64, error) {
	res := s.db.Exec(
		"DELETE FROM measurements WHERE id IN (SELECT id FROM measurements WHERE timestamp < ? LIMIT ?)",
		cutoff, limit,
	)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete measurement batch: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Vacuum reclaims file space after a large retention sweep.
func (s *Store) Vacuum() error {
	if err := s.db.Exec("VACUUM").Error; err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

// FileSize returns the database file size in bytes, or 0 for in-memory stores.
func (s *Store) FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
