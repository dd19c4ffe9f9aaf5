package ingest

import (
	"encoding/json"
	"fmt"
	"time"

	"aforo-worker-go/internal/models"
)

// frigateEvent is the envelope published on the detector's events topic.
// Only the fields the classifier reads are declared.
type frigateEvent struct {
	Type   string         `json:"type"` // new, update, end
	Before *frigateObject `json:"before"`
	After  *frigateObject `json:"after"`
}

type frigateObject struct {
	ID           string   `json:"id"`
	Camera       string   `json:"camera"`
	Label        string   `json:"label"`
	TopScore     float64  `json:"top_score"`
	Score        float64  `json:"score"`
	FrameTime    float64  `json:"frame_time"`
	CurrentZones []string `json:"current_zones"`
	EnteredZones []string `json:"entered_zones"`
	ExitedZones  []string `json:"exited_zones"`
}

// Classifier turns raw broker payloads into normalized detections. It fails
// closed: anything malformed, irrelevant, inactive or under-confident is
// dropped with a reason instead of guessed at.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify parses a raw payload and decides whether it is countable. A nil
// detection with a non-empty reason means the event was skipped.
func (c *Classifier) Classify(payload []byte, activeLabels map[string]bool, threshold float64) (*models.NormalizedDetection, string) {
	var event frigateEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Sprintf("unparseable payload: %v", err)
	}

	// An "end" message marks detection completion, not a zone change.
	if event.Type != "new" && event.Type != "update" {
		return nil, fmt.Sprintf("irrelevant event type %q", event.Type)
	}
	if event.After == nil {
		return nil, "missing after state"
	}
	if event.After.ID == "" {
		return nil, "missing tracking id"
	}
	if event.After.Camera == "" {
		return nil, "missing camera"
	}
	if event.After.Label == "" {
		return nil, "missing label"
	}

	label, ok := models.NormalizeLabel(event.After.Label)
	if !ok {
		return nil, fmt.Sprintf("irrelevant label %q", event.After.Label)
	}
	if !activeLabels[label] {
		return nil, fmt.Sprintf("inactive label %q", label)
	}

	confidence := event.After.TopScore
	if confidence == 0 {
		confidence = event.After.Score
	}
	// A detection without any score is kept; the threshold only filters
	// detections that actually report confidence.
	if confidence > 0 && confidence < threshold {
		return nil, fmt.Sprintf("confidence %.2f below threshold %.2f", confidence, threshold)
	}

	entered, exited := zoneTransitions(event.Before, event.After)
	if len(entered) == 0 && len(exited) == 0 {
		return nil, "no zone transitions"
	}

	ts := time.Now().UTC()
	if event.After.FrameTime > 0 {
		sec := int64(event.After.FrameTime)
		nsec := int64((event.After.FrameTime - float64(sec)) * float64(time.Second))
		ts = time.Unix(sec, nsec).UTC()
	}

	return &models.NormalizedDetection{
		EventID:      event.After.ID,
		Camera:       event.After.Camera,
		Label:        label,
		EnteredZones: entered,
		ExitedZones:  exited,
		Confidence:   confidence,
		Timestamp:    ts,
	}, ""
}

// zoneTransitions computes the zone-membership delta. When the payload spells
// the transitions out they are taken as-is; otherwise they are derived by
// diffing the zone sets of the before and after states. A zone present only
// in after was entered; a zone present only in before was exited.
func zoneTransitions(before, after *frigateObject) (entered, exited []string) {
	if len(after.EnteredZones) > 0 || len(after.ExitedZones) > 0 {
		return after.EnteredZones, after.ExitedZones
	}

	var prev []string
	if before != nil {
		prev = before.CurrentZones
	}
	prevSet := make(map[string]bool, len(prev))
	for _, z := range prev {
		prevSet[z] = true
	}
	currSet := make(map[string]bool, len(after.CurrentZones))
	for _, z := range after.CurrentZones {
		currSet[z] = true
		if !prevSet[z] {
			entered = append(entered, z)
		}
	}
	for _, z := range prev {
		if !currSet[z] {
			exited = append(exited, z)
		}
	}
	return entered, exited
}
