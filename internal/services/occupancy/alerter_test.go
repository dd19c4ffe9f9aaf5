package occupancy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestArea(t *testing.T, s *store.Store, max int) *models.Area {
	t.Helper()
	area := &models.Area{
		Name:         "Lobby",
		Type:         models.AreaTypePeople,
		MaxOccupancy: max,
		LimitMode:    models.LimitModeSoft,
		Color:        models.ColorGreen,
		Enabled:      true,
	}
	require.NoError(t, s.CreateArea(area))
	return area
}

func alertKinds(t *testing.T, s *store.Store, areaID uint) []models.EventKind {
	t.Helper()
	events, err := s.AreaEvents(areaID, 100)
	require.NoError(t, err)
	var kinds []models.EventKind
	for _, e := range events {
		if e.Kind == models.EventWarning || e.Kind == models.EventExceeded {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}

func TestAlerterThresholds(t *testing.T) {
	tests := []struct {
		name      string
		occupancy int
		max       int
		expected  []models.EventKind
	}{
		{name: "under warning", occupancy: 79, max: 100, expected: nil},
		{name: "warning lower bound", occupancy: 80, max: 100, expected: []models.EventKind{models.EventWarning}},
		{name: "just under limit", occupancy: 99, max: 100, expected: []models.EventKind{models.EventWarning}},
		{name: "at limit", occupancy: 100, max: 100, expected: []models.EventKind{models.EventExceeded}},
		{name: "over limit", occupancy: 120, max: 100, expected: []models.EventKind{models.EventExceeded}},
		{name: "no limit configured", occupancy: 50, max: 0, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			area := newTestArea(t, s, tt.max)
			area.Occupancy = tt.occupancy

			a := NewAlerter(s, nil)
			a.Evaluate(area, "cam", time.Now().UTC())

			assert.Equal(t, tt.expected, alertKinds(t, s, area.ID))
		})
	}
}

func TestAlerterMetadata(t *testing.T) {
	s := newTestStore(t)
	area := newTestArea(t, s, 10)
	area.Occupancy = 10

	a := NewAlerter(s, nil)
	a.Evaluate(area, "cam-door", time.Now().UTC())

	events, err := s.AreaEvents(area.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventExceeded, events[0].Kind)
	assert.Equal(t, 0, events[0].Value, "alert rows carry no occupancy change")
	assert.Equal(t, "cam-door", events[0].Source)

	var meta models.AlertMetadata
	require.NoError(t, json.Unmarshal([]byte(events[0].Metadata), &meta))
	assert.Equal(t, 10, meta.Occupancy)
	assert.Equal(t, 10, meta.MaxOccupancy)
	assert.Equal(t, 100, meta.Percentage)
	assert.Equal(t, "exceeded", meta.AlertType)
}

func TestServiceSerializesAndDeduplicates(t *testing.T) {
	s := newTestStore(t)
	area := newTestArea(t, s, 100)

	svc := NewService(s, nil, 16)
	defer svc.Stop()

	now := time.Now().UTC()
	d := models.AreaDelta{
		AreaID:    area.ID,
		Delta:     +1,
		Source:    "cam",
		Zone:      "door",
		EventID:   "ev-1",
		Label:     "personas",
		Timestamp: now,
	}

	// The same upstream event delivered twice must count once.
	svc.Apply(d)
	svc.Apply(d)

	d2 := d
	d2.EventID = "ev-2"
	d2.Timestamp = now.Add(10 * time.Millisecond)
	svc.Apply(d2)

	require.Eventually(t, func() bool {
		stored, err := s.Area(area.ID)
		return err == nil && stored.Occupancy == 2
	}, 2*time.Second, 10*time.Millisecond)

	// Give a mistaken third application time to surface before asserting.
	time.Sleep(100 * time.Millisecond)

	stored, err := s.Area(area.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Occupancy)

	events, err := s.AreaEvents(area.ID, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestServiceApplyAfterStop(t *testing.T) {
	s := newTestStore(t)
	area := newTestArea(t, s, 100)

	svc := NewService(s, nil, 16)
	svc.Stop()

	// Must not panic or block.
	svc.Apply(models.AreaDelta{AreaID: area.ID, Delta: +1, EventID: "ev", Timestamp: time.Now().UTC()})

	stored, err := s.Area(area.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Occupancy)
}
