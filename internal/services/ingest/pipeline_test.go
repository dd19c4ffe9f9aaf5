package ingest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/services/occupancy"
	"aforo-worker-go/internal/store"
)

func TestPipelineEndToEnd(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	area := &models.Area{Name: "Lobby", Type: models.AreaTypePeople, MaxOccupancy: 10, Enabled: true}
	require.NoError(t, s.CreateArea(area))
	require.NoError(t, s.CreateAccessPoint(&models.AccessPoint{
		AreaID: area.ID, SourceID: "lobby_in", Direction: models.DirectionEntrance, Enabled: true,
	}))

	svc := occupancy.NewService(s, nil, 16)
	defer svc.Stop()

	p := NewPipeline(s, s, svc)

	frameTime := float64(time.Now().UTC().Unix())
	payload := fmt.Sprintf(`{
		"type": "update",
		"before": {"id": "ev-p1", "camera": "cam-door", "label": "person", "top_score": 0.92, "current_zones": []},
		"after":  {"id": "ev-p1", "camera": "cam-door", "label": "person", "top_score": 0.92, "frame_time": %f, "current_zones": ["lobby_in"]}
	}`, frameTime)

	p.Handle([]byte(payload))

	require.Eventually(t, func() bool {
		stored, err := s.Area(area.ID)
		return err == nil && stored.Occupancy == 1
	}, 2*time.Second, 10*time.Millisecond)

	events, err := s.AreaEvents(area.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventEnter, events[0].Kind)
	assert.Equal(t, "cam-door", events[0].Source)
}

func TestPipelineDropsGarbageSilently(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	svc := occupancy.NewService(s, nil, 16)
	defer svc.Stop()

	p := NewPipeline(s, s, svc)

	// None of these may panic or create rows.
	p.Handle([]byte(`garbage`))
	p.Handle([]byte(`{}`))
	p.Handle([]byte(`{"type": "update", "after": {"id": "x", "label": "dog", "top_score": 0.99, "current_zones": ["z"]}}`))

	var count int64
	require.NoError(t, s.DB().Model(&models.CountingEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}
