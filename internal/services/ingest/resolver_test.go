package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/store"
)

type fakeDirectory struct {
	matches map[string][]store.AccessPointMatch
}

func (f *fakeDirectory) AccessPointsBySource(sourceID string) ([]store.AccessPointMatch, error) {
	return f.matches[sourceID], nil
}

func match(areaID uint, name string, areaType models.AreaType, dir models.Direction) store.AccessPointMatch {
	return store.AccessPointMatch{
		ID:        areaID * 10,
		AreaID:    areaID,
		Direction: dir,
		AreaName:  name,
		AreaType:  areaType,
	}
}

func TestDeltaForTruthTable(t *testing.T) {
	tests := []struct {
		name      string
		t         transition
		direction models.Direction
		expected  int
	}{
		{name: "entered entrance", t: transitionEnter, direction: models.DirectionEntrance, expected: +1},
		{name: "exited exit", t: transitionExit, direction: models.DirectionExit, expected: +1},
		{name: "exited entrance", t: transitionExit, direction: models.DirectionEntrance, expected: -1},
		{name: "entered exit", t: transitionEnter, direction: models.DirectionExit, expected: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, deltaFor(tt.t, tt.direction))
		})
	}
}

func TestResolveSingleArea(t *testing.T) {
	dir := &fakeDirectory{matches: map[string][]store.AccessPointMatch{
		"lobby_in": {match(1, "Lobby", models.AreaTypePeople, models.DirectionEntrance)},
	}}
	r := NewResolver(dir)

	det := &models.NormalizedDetection{
		EventID:      "ev-1",
		Camera:       "cam-door",
		Label:        "personas",
		EnteredZones: []string{"lobby_in"},
		Confidence:   0.9,
		Timestamp:    time.Now(),
	}

	deltas, err := r.Resolve(det)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, uint(1), deltas[0].AreaID)
	assert.Equal(t, +1, deltas[0].Delta)
	assert.Equal(t, "lobby_in", deltas[0].Zone)
	assert.Equal(t, "ev-1", deltas[0].EventID)
}

func TestResolveSharedBoundaryFansOut(t *testing.T) {
	// One zone is the exit of the lobby and the entrance of the hall:
	// crossing it moves the person from one area to the other in one event.
	dir := &fakeDirectory{matches: map[string][]store.AccessPointMatch{
		"doorway": {
			match(1, "Lobby", models.AreaTypePeople, models.DirectionExit),
			match(2, "Hall", models.AreaTypePeople, models.DirectionEntrance),
		},
	}}
	r := NewResolver(dir)

	det := &models.NormalizedDetection{
		EventID:      "ev-2",
		Label:        "personas",
		EnteredZones: []string{"doorway"},
		Timestamp:    time.Now(),
	}

	deltas, err := r.Resolve(det)
	require.NoError(t, err)
	require.Len(t, deltas, 2)

	byArea := map[uint]int{}
	for _, d := range deltas {
		byArea[d.AreaID] = d.Delta
	}
	assert.Equal(t, -1, byArea[1], "leaving the lobby")
	assert.Equal(t, +1, byArea[2], "entering the hall")
}

func TestResolveSkipsMismatchedAreaType(t *testing.T) {
	dir := &fakeDirectory{matches: map[string][]store.AccessPointMatch{
		"gate": {
			match(1, "Parking", models.AreaTypeVehicles, models.DirectionEntrance),
			match(2, "Patio", models.AreaTypePeople, models.DirectionEntrance),
		},
	}}
	r := NewResolver(dir)

	det := &models.NormalizedDetection{
		EventID:      "ev-3",
		Label:        "auto",
		EnteredZones: []string{"gate"},
		Timestamp:    time.Now(),
	}

	deltas, err := r.Resolve(det)
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, uint(1), deltas[0].AreaID)
}

func TestResolveUnknownZone(t *testing.T) {
	r := NewResolver(&fakeDirectory{matches: map[string][]store.AccessPointMatch{}})

	det := &models.NormalizedDetection{
		EventID:      "ev-4",
		Label:        "personas",
		EnteredZones: []string{"nowhere"},
		ExitedZones:  []string{"elsewhere"},
		Timestamp:    time.Now(),
	}

	deltas, err := r.Resolve(det)
	require.NoError(t, err)
	assert.Empty(t, deltas)
}
