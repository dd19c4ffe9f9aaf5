package store

import (
	"fmt"
	"time"

	"aforo-worker-go/internal/models"
)

// InsertMeasurement records one occupancy snapshot.
func (s *Store) InsertMeasurement(m *models.Measurement) error {
	if err := s.db.Create(m).Error; err != nil {
		return fmt.Errorf("failed to record measurement: %w", err)
	}
	return nil
}

// AreaMeasurements returns snapshots for one area inside [start, end),
// oldest first, capped at limit rows.
func (s *Store) AreaMeasurements(areaID uint, start, end time.Time, limit int) ([]models.Measurement, error) {
	if limit <= 0 {
		limit = 1000
	}
	var rows []models.Measurement
	err := s.db.Where("area_id = ? AND timestamp >= ? AND timestamp < ?", areaID, start, end).
		Order("timestamp").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements for area %d: %w", areaID, err)
	}
	return rows, nil
}
