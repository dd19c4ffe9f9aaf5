package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"aforo-worker-go/internal/models"
)

// Store wraps the embedded SQLite database shared by the counting engine and
// the configuration API.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the counting database at path and runs
// migrations. Pass ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would be its own database, so
	// in-memory stores must stay on a single connection.
	if path == ":memory:" {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := db.Exec("PRAGMA journal_mode = WAL").Error; err != nil {
		log.Warn().Err(err).Msg("Failed to enable WAL journal mode")
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate() error {
	err := s.db.AutoMigrate(
		&models.Area{},
		&models.AccessPoint{},
		&models.CountingEvent{},
		&models.Measurement{},
		&models.Settings{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return s.seedSettings()
}

// seedSettings inserts the configuration singleton when the table is empty.
func (s *Store) seedSettings() error {
	var count int64
	if err := s.db.Model(&models.Settings{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	objects, _ := json.Marshal(models.DefaultObjects())
	active, _ := json.Marshal(models.DefaultActiveObjects())

	settings := models.Settings{
		MQTTHost:            "localhost",
		MQTTPort:            1883,
		MQTTTopic:           "frigate/events",
		Objects:             string(objects),
		ActiveObjects:       string(active),
		ConfidenceThreshold: 0.7,
		RetentionDays:       30,
		Enabled:             false,
	}
	return s.db.Create(&settings).Error
}

// Settings returns the configuration singleton.
func (s *Store) Settings() (*models.Settings, error) {
	var settings models.Settings
	if err := s.db.Order("id DESC").First(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &settings, nil
}

// UpdateSettings overwrites the configuration singleton.
func (s *Store) UpdateSettings(settings *models.Settings) error {
	if err := s.db.Save(settings).Error; err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	return nil
}

// ActiveLabels returns the decoded active label set.
func (s *Store) ActiveLabels() (map[string]bool, error) {
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}
	var labels []string
	if err := json.Unmarshal([]byte(settings.ActiveObjects), &labels); err != nil {
		return nil, fmt.Errorf("failed to decode active objects: %w", err)
	}
	active := make(map[string]bool, len(labels))
	for _, l := range labels {
		active[l] = true
	}
	return active, nil
}

// ToggleActiveLabel flips one label in the active set and returns the new set.
func (s *Store) ToggleActiveLabel(label string) ([]string, error) {
	settings, err := s.Settings()
	if err != nil {
		return nil, err
	}

	var labels []string
	if err := json.Unmarshal([]byte(settings.ActiveObjects), &labels); err != nil {
		return nil, fmt.Errorf("failed to decode active objects: %w", err)
	}

	found := false
	next := labels[:0]
	for _, l := range labels {
		if l == label {
			found = true
			continue
		}
		next = append(next, l)
	}
	if !found {
		next = append(next, label)
	}

	encoded, _ := json.Marshal(next)
	settings.ActiveObjects = string(encoded)
	if err := s.UpdateSettings(settings); err != nil {
		return nil, err
	}
	return next, nil
}

// DB exposes the underlying handle for raw aggregate queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close closes the underlying SQLite connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
