package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"aforo-worker-go/internal/models"
)

var ErrNotFound = errors.New("not found")

// Areas returns all areas, enabled or not, ordered by name.
func (s *Store) Areas() ([]models.Area, error) {
	var areas []models.Area
	if err := s.db.Order("name").Find(&areas).Error; err != nil {
		return nil, fmt.Errorf("failed to list areas: %w", err)
	}
	return areas, nil
}

// EnabledAreas returns only areas currently participating in counting.
func (s *Store) EnabledAreas() ([]models.Area, error) {
	var areas []models.Area
	if err := s.db.Where("enabled = ?", true).Order("name").Find(&areas).Error; err != nil {
		return nil, fmt.Errorf("failed to list enabled areas: %w", err)
	}
	return areas, nil
}

// Area fetches a single area by id.
func (s *Store) Area(id uint) (*models.Area, error) {
	var area models.Area
	if err := s.db.First(&area, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load area %d: %w", id, err)
	}
	return &area, nil
}

// CreateArea persists a new area.
func (s *Store) CreateArea(area *models.Area) error {
	if err := s.db.Create(area).Error; err != nil {
		return fmt.Errorf("failed to create area: %w", err)
	}
	return nil
}

// UpdateArea persists edits to an existing area.
func (s *Store) UpdateArea(area *models.Area) error {
	if err := s.db.Save(area).Error; err != nil {
		return fmt.Errorf("failed to update area %d: %w", area.ID, err)
	}
	return nil
}

// DeleteArea removes an area and, by cascade, its access points. Event rows
// referencing the area survive until retention cleanup removes them.
func (s *Store) DeleteArea(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("area_id = ?", id).Delete(&models.AccessPoint{}).Error; err != nil {
			return fmt.Errorf("failed to delete access points for area %d: %w", id, err)
		}
		res := tx.Delete(&models.Area{}, id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete area %d: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AccessPointsByArea returns the enabled access points bound to an area.
func (s *Store) AccessPointsByArea(areaID uint) ([]models.AccessPoint, error) {
	var points []models.AccessPoint
	err := s.db.Where("area_id = ? AND enabled = ?", areaID, true).Find(&points).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list access points for area %d: %w", areaID, err)
	}
	return points, nil
}

// AccessPointMatch joins an access point with its owning area for resolution.
type AccessPointMatch struct {
	ID        uint             `json:"id"`
	AreaID    uint             `json:"area_id"`
	SourceID  string           `json:"source_id"`
	Direction models.Direction `json:"direction"`
	AreaName  string           `json:"area_name"`
	AreaType  models.AreaType  `json:"area_type"`
}

// AccessPointsBySource returns every enabled access point whose source
// identifier matches the given zone or camera name, restricted to enabled
// areas. Multiple matches across areas are expected for shared boundaries.
func (s *Store) AccessPointsBySource(sourceID string) ([]AccessPointMatch, error) {
	var matches []AccessPointMatch
	err := s.db.Model(&models.AccessPoint{}).
		Select(`access_points.id, access_points.area_id, access_points.source_id,
			access_points.direction, areas.name AS area_name, areas.type AS area_type`).
		Joins("JOIN areas ON areas.id = access_points.area_id").
		Where("access_points.source_id = ? AND access_points.enabled = ? AND areas.enabled = ?", sourceID, true, true).
		Scan(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve access points for source %q: %w", sourceID, err)
	}
	return matches, nil
}

// CreateAccessPoint binds a new access point to an area.
func (s *Store) CreateAccessPoint(point *models.AccessPoint) error {
	var count int64
	if err := s.db.Model(&models.Area{}).Where("id = ?", point.AreaID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check area %d: %w", point.AreaID, err)
	}
	if count == 0 {
		return ErrNotFound
	}
	if err := s.db.Create(point).Error; err != nil {
		return fmt.Errorf("failed to create access point: %w", err)
	}
	return nil
}

// UpdateAccessPoint persists edits to an access point.
func (s *Store) UpdateAccessPoint(point *models.AccessPoint) error {
	if err := s.db.Save(point).Error; err != nil {
		return fmt.Errorf("failed to update access point %d: %w", point.ID, err)
	}
	return nil
}

// DeleteAccessPoint removes a single access point.
func (s *Store) DeleteAccessPoint(id uint) error {
	res := s.db.Delete(&models.AccessPoint{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete access point %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AreaStatus is the live dashboard row for one enabled area.
type AreaStatus struct {
	ID                uint             `json:"id"`
	Name              string           `json:"name"`
	Type              models.AreaType  `json:"type"`
	MaxOccupancy      int              `json:"max_occupancy"`
	Occupancy         int              `json:"occupancy"`
	Color             models.ColorBand `json:"color"`
	LimitMode         models.LimitMode `json:"limit_mode"`
	AccessPointsCount int              `json:"access_points_count"`
}

// AreasStatus returns current occupancy and color for every enabled area.
func (s *Store) AreasStatus() ([]AreaStatus, error) {
	var status []AreaStatus
	err := s.db.Model(&models.Area{}).
		Select(`areas.id, areas.name, areas.type, areas.max_occupancy, areas.occupancy,
			areas.color, areas.limit_mode, COUNT(access_points.id) AS access_points_count`).
		Joins("LEFT JOIN access_points ON access_points.area_id = areas.id AND access_points.enabled = ?", true).
		Where("areas.enabled = ?", true).
		Group("areas.id").
		Order("areas.name").
		Scan(&status).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load areas status: %w", err)
	}
	return status, nil
}
