package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultActive = map[string]bool{"auto": true, "personas": true}

func TestClassifyAcceptsZoneTransition(t *testing.T) {
	c := NewClassifier()
	payload := []byte(`{
		"type": "update",
		"before": {"id": "ev-1", "camera": "cam-door", "label": "person", "top_score": 0.9, "current_zones": []},
		"after":  {"id": "ev-1", "camera": "cam-door", "label": "person", "top_score": 0.9, "current_zones": ["lobby_in"]}
	}`)

	det, reason := c.Classify(payload, defaultActive, 0.7)
	require.NotNil(t, det, reason)
	assert.Equal(t, "ev-1", det.EventID)
	assert.Equal(t, "cam-door", det.Camera)
	assert.Equal(t, "personas", det.Label)
	assert.Equal(t, []string{"lobby_in"}, det.EnteredZones)
	assert.Empty(t, det.ExitedZones)
	assert.InDelta(t, 0.9, det.Confidence, 1e-9)
}

func TestClassifyZoneExit(t *testing.T) {
	c := NewClassifier()
	payload := []byte(`{
		"type": "update",
		"before": {"id": "ev-2", "camera": "cam-door", "label": "car", "top_score": 0.8, "current_zones": ["gate"]},
		"after":  {"id": "ev-2", "camera": "cam-door", "label": "car", "top_score": 0.8, "current_zones": []}
	}`)

	det, reason := c.Classify(payload, defaultActive, 0.7)
	require.NotNil(t, det, reason)
	assert.Equal(t, "auto", det.Label)
	assert.Empty(t, det.EnteredZones)
	assert.Equal(t, []string{"gate"}, det.ExitedZones)
}

func TestClassifyRejects(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{
			name:    "malformed json",
			payload: `{not json`,
		},
		{
			name:    "end marks completion, not a crossing",
			payload: `{"type": "end", "after": {"id": "x", "camera": "cam", "label": "person", "top_score": 0.9, "current_zones": ["a"]}}`,
		},
		{
			name:    "missing after",
			payload: `{"type": "update"}`,
		},
		{
			name:    "missing id",
			payload: `{"type": "update", "after": {"camera": "cam", "label": "person", "top_score": 0.9, "current_zones": ["a"]}}`,
		},
		{
			name:    "missing camera",
			payload: `{"type": "update", "after": {"id": "x", "label": "person", "top_score": 0.9, "current_zones": ["a"]}}`,
		},
		{
			name:    "irrelevant label",
			payload: `{"type": "update", "after": {"id": "x", "camera": "cam", "label": "dog", "top_score": 0.9, "current_zones": ["a"]}}`,
		},
		{
			name:    "inactive label",
			payload: `{"type": "update", "after": {"id": "x", "camera": "cam", "label": "truck", "top_score": 0.9, "current_zones": ["a"]}}`,
		},
		{
			name:    "below confidence threshold",
			payload: `{"type": "update", "after": {"id": "x", "camera": "cam", "label": "person", "top_score": 0.5, "current_zones": ["a"]}}`,
		},
		{
			name: "no zone change",
			payload: `{"type": "update",
				"before": {"id": "x", "camera": "cam", "label": "person", "top_score": 0.9, "current_zones": ["a"]},
				"after":  {"id": "x", "camera": "cam", "label": "person", "top_score": 0.9, "current_zones": ["a"]}}`,
		},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det, reason := c.Classify([]byte(tt.payload), defaultActive, 0.7)
			assert.Nil(t, det)
			assert.NotEmpty(t, reason)
		})
	}
}

func TestClassifyFallsBackToScore(t *testing.T) {
	c := NewClassifier()
	payload := []byte(`{
		"type": "new",
		"after": {"id": "ev-3", "camera": "cam", "label": "person", "score": 0.85, "current_zones": ["hall"]}
	}`)

	det, reason := c.Classify(payload, defaultActive, 0.7)
	require.NotNil(t, det, reason)
	assert.InDelta(t, 0.85, det.Confidence, 1e-9)
}

func TestClassifyKeepsScorelessDetection(t *testing.T) {
	c := NewClassifier()
	payload := []byte(`{
		"type": "update",
		"after": {"id": "ev-4", "camera": "cam", "label": "person", "current_zones": ["hall"]}
	}`)

	det, reason := c.Classify(payload, defaultActive, 0.7)
	require.NotNil(t, det, reason)
	assert.Zero(t, det.Confidence)
}

func TestClassifyPrefersExplicitTransitionLists(t *testing.T) {
	c := NewClassifier()
	payload := []byte(`{
		"type": "update",
		"after": {"id": "ev-5", "camera": "cam", "label": "person", "top_score": 0.9,
			"entered_zones": ["front"], "exited_zones": ["back"], "current_zones": ["front"]}
	}`)

	det, reason := c.Classify(payload, defaultActive, 0.7)
	require.NotNil(t, det, reason)
	assert.Equal(t, []string{"front"}, det.EnteredZones)
	assert.Equal(t, []string{"back"}, det.ExitedZones)
}

func TestZoneTransitionsBothDirections(t *testing.T) {
	before := &frigateObject{CurrentZones: []string{"a", "b"}}
	after := &frigateObject{CurrentZones: []string{"b", "c"}}

	entered, exited := zoneTransitions(before, after)
	assert.Equal(t, []string{"c"}, entered)
	assert.Equal(t, []string{"a"}, exited)
}
