package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aforo-worker-go/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestArea(t *testing.T, s *Store, name string, areaType models.AreaType, max int) *models.Area {
	t.Helper()
	area := &models.Area{
		Name:         name,
		Type:         areaType,
		MaxOccupancy: max,
		LimitMode:    models.LimitModeSoft,
		Color:        models.ColorGreen,
		Enabled:      true,
	}
	require.NoError(t, s.CreateArea(area))
	return area
}

func TestOpenSeedsSettings(t *testing.T) {
	s := newTestStore(t)

	settings, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, "localhost", settings.MQTTHost)
	assert.Equal(t, 1883, settings.MQTTPort)
	assert.Equal(t, "frigate/events", settings.MQTTTopic)
	assert.InDelta(t, 0.7, settings.ConfidenceThreshold, 1e-9)
	assert.Equal(t, 30, settings.RetentionDays)
	assert.False(t, settings.Enabled)

	active, err := s.ActiveLabels()
	require.NoError(t, err)
	assert.True(t, active["auto"])
	assert.True(t, active["personas"])
	assert.False(t, active["camión"])
}

func TestToggleActiveLabel(t *testing.T) {
	s := newTestStore(t)

	labels, err := s.ToggleActiveLabel("camión")
	require.NoError(t, err)
	assert.Contains(t, labels, "camión")

	labels, err = s.ToggleActiveLabel("camión")
	require.NoError(t, err)
	assert.NotContains(t, labels, "camión")

	// Toggling survives a round trip through the settings row.
	active, err := s.ActiveLabels()
	require.NoError(t, err)
	assert.False(t, active["camión"])
	assert.True(t, active["auto"])
}

func delta(areaID uint, d int, eventID string, ts time.Time) models.AreaDelta {
	return models.AreaDelta{
		AreaID:     areaID,
		Delta:      d,
		Source:     "cam-door",
		Zone:       "lobby_in",
		EventID:    eventID,
		Label:      "personas",
		Confidence: 0.9,
		Timestamp:  ts,
	}
}

func TestApplyDeltaUpdatesOccupancyAndColor(t *testing.T) {
	s := newTestStore(t)
	area := newTestArea(t, s, "Lobby", models.AreaTypePeople, 10)
	now := time.Now().UTC()

	result, err := s.ApplyDelta(delta(area.ID, +1, "ev-1", now))
	require.NoError(t, err)
	assert.Equal(t, 0, result.OldValue)
	assert.Equal(t, 1, result.Area.Occupancy)
	assert.Equal(t, models.ColorGreen, result.Area.Color)
	assert.Equal(t, models.EventEnter, result.Event.Kind)
	assert.Equal(t, +1, result.Event.Value)

	// Push occupancy to 8/10, crossing into orange.
	for i := 0; i < 7; i++ {
		result, err = s.ApplyDelta(delta(area.ID, +1, "ev-more", now.Add(time.Duration(i+2)*time.Second)))
		require.NoError(t, err)
	}
	assert.Equal(t, 8, result.Area.Occupancy)
	assert.Equal(t, models.ColorOrange, result.Area.Color)

	// The persisted row must agree with the returned snapshot.
	stored, err := s.Area(area.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, stored.Occupancy)
	assert.Equal(t, models.ColorOrange, stored.Color)
}

func TestApplyDeltaClampsAtZero(t *testing.T) {
	s := newTestStore(t)
	area := newTestArea(t, s, "Lobby", models.AreaTypePeople, 10)

	result, err := s.ApplyDelta(delta(area.ID, -1, "ev-exit", time.Now().UTC()))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Area.Occupancy)
	assert.Equal(t, models.EventExit, result.Event.Kind)
	// The event still records the exit even though occupancy did not move.
	assert.Equal(t, -1, result.Event.Value)
}

func TestIsDuplicateWindow(t *testing.T) {
	s := newTestStore(t)
	area := newTestArea(t, s, "Lobby", models.AreaTypePeople, 10)
	now := time.Now().UTC()

	_, err := s.ApplyDelta(delta(area.ID, +1, "ev-dup", now))
	require.NoError(t, err)

	dup, err := s.IsDuplicate(area.ID, models.EventEnter, "ev-dup", now.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.True(t, dup, "same id inside the window")

	dup, err = s.IsDuplicate(area.ID, models.EventExit, "ev-dup", now.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, dup, "opposite direction is not a duplicate")

	dup, err = s.IsDuplicate(area.ID, models.EventEnter, "ev-other", now.Add(500*time.Millisecond))
	require.NoError(t, err)
	assert.False(t, dup, "different id is not a duplicate")

	dup, err = s.IsDuplicate(area.ID, models.EventEnter, "ev-dup", now.Add(2*time.Second))
	require.NoError(t, err)
	assert.False(t, dup, "window has passed")

	dup, err = s.IsDuplicate(area.ID, models.EventEnter, "", now)
	require.NoError(t, err)
	assert.False(t, dup, "empty id never matches")
}

func TestAlertStats(t *testing.T) {
	s := newTestStore(t)
	area := newTestArea(t, s, "Lobby", models.AreaTypePeople, 10)
	now := time.Now().UTC()

	meta := models.AlertMetadata{Occupancy: 10, MaxOccupancy: 10, Percentage: 100, AlertType: "exceeded"}
	_, err := s.InsertAlert(area.ID, models.EventExceeded, "cam", now, meta)
	require.NoError(t, err)
	_, err = s.InsertAlert(area.ID, models.EventExceeded, "cam", now.Add(time.Minute), meta)
	require.NoError(t, err)
	_, err = s.InsertAlert(area.ID, models.EventWarning, "cam", now, models.AlertMetadata{AlertType: "warning"})
	require.NoError(t, err)

	rows, err := s.AlertStats(now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byKind := map[models.EventKind]int64{}
	for _, r := range rows {
		assert.Equal(t, "Lobby", r.AreaName)
		byKind[r.Kind] = r.Count
	}
	assert.Equal(t, int64(2), byKind[models.EventExceeded])
	assert.Equal(t, int64(1), byKind[models.EventWarning])
}

func TestAccessPointsBySource(t *testing.T) {
	s := newTestStore(t)
	lobby := newTestArea(t, s, "Lobby", models.AreaTypePeople, 10)
	hall := newTestArea(t, s, "Hall", models.AreaTypePeople, 20)

	require.NoError(t, s.CreateAccessPoint(&models.AccessPoint{
		AreaID: lobby.ID, SourceID: "doorway", Direction: models.DirectionExit, Enabled: true,
	}))
	require.NoError(t, s.CreateAccessPoint(&models.AccessPoint{
		AreaID: hall.ID, SourceID: "doorway", Direction: models.DirectionEntrance, Enabled: true,
	}))
	require.NoError(t, s.CreateAccessPoint(&models.AccessPoint{
		AreaID: hall.ID, SourceID: "back_door", Direction: models.DirectionExit, Enabled: false,
	}))

	matches, err := s.AccessPointsBySource("doorway")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = s.AccessPointsBySource("back_door")
	require.NoError(t, err)
	assert.Empty(t, matches, "disabled access points are invisible")

	// Disabling the area hides its access points as well.
	hall.Enabled = false
	require.NoError(t, s.UpdateArea(hall))
	matches, err = s.AccessPointsBySource("doorway")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, lobby.ID, matches[0].AreaID)
}

func TestDeleteAreaCascades(t *testing.T) {
	s := newTestStore(t)
	area := newTestArea(t, s, "Lobby", models.AreaTypePeople, 10)
	require.NoError(t, s.CreateAccessPoint(&models.AccessPoint{
		AreaID: area.ID, SourceID: "door", Direction: models.DirectionEntrance, Enabled: true,
	}))

	require.NoError(t, s.DeleteArea(area.ID))

	_, err := s.Area(area.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	points, err := s.AccessPointsByArea(area.ID)
	require.NoError(t, err)
	assert.Empty(t, points)

	assert.ErrorIs(t, s.DeleteArea(area.ID), ErrNotFound)
}

func TestDeleteEventsBatch(t *testing.T) {
	s := newTestStore(t)
	area := newTestArea(t, s, "Lobby", models.AreaTypePeople, 100)

	old := time.Now().UTC().AddDate(0, 0, -40)
	recent := time.Now().UTC()
	for i := 0; i < 5; i++ {
		_, err := s.ApplyDelta(delta(area.ID, +1, "ev-old", old.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := s.ApplyDelta(delta(area.ID, +1, "ev-new", recent))
	require.NoError(t, err)

	cutoff := time.Now().UTC().AddDate(0, 0, -30)

	deleted, err := s.DeleteEventsBatch(cutoff, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted, "batch size is honored")

	deleted, err = s.DeleteEventsBatch(cutoff, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	events, err := s.AreaEvents(area.ID, 100)
	require.NoError(t, err)
	assert.Len(t, events, 1, "recent events survive")
}

func TestEngineStats(t *testing.T) {
	s := newTestStore(t)
	lobby := newTestArea(t, s, "Lobby", models.AreaTypePeople, 10)
	newTestArea(t, s, "Parking", models.AreaTypeVehicles, 50)

	now := time.Now().UTC()
	_, err := s.ApplyDelta(delta(lobby.ID, +1, "ev-1", now))
	require.NoError(t, err)
	_, err = s.ApplyDelta(delta(lobby.ID, +1, "ev-2", now.Add(2*time.Second)))
	require.NoError(t, err)

	stats, err := s.EngineStats(now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalEvents)
	assert.Equal(t, int64(2), stats.EventsToday)
	assert.Equal(t, int64(2), stats.ActiveAreas)
	assert.Equal(t, int64(2), stats.TotalOccupancy)
}
