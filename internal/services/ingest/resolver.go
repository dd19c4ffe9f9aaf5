package ingest

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/store"
)

// transition is the direction of a zone boundary crossing as observed
// upstream, before access point semantics are applied.
type transition int

const (
	transitionEnter transition = iota
	transitionExit
)

// AccessPointDirectory resolves a zone or camera name to the access points
// bound to it.
type AccessPointDirectory interface {
	AccessPointsBySource(sourceID string) ([]store.AccessPointMatch, error)
}

// Resolver maps zone transitions onto signed area deltas via the configured
// access points.
type Resolver struct {
	directory AccessPointDirectory
}

func NewResolver(directory AccessPointDirectory) *Resolver {
	return &Resolver{directory: directory}
}

// deltaFor encodes the crossing truth table. Crossing a boundary in the
// direction it is declared for moves an object into the area; crossing it
// against its declared direction moves the object out.
//
//	entered an entrance zone  -> +1
//	exited  an exit zone      -> +1
//	exited  an entrance zone  -> -1
//	entered an exit zone      -> -1
func deltaFor(t transition, direction models.Direction) int {
	switch {
	case t == transitionEnter && direction == models.DirectionEntrance:
		return +1
	case t == transitionExit && direction == models.DirectionExit:
		return +1
	case t == transitionExit && direction == models.DirectionEntrance:
		return -1
	case t == transitionEnter && direction == models.DirectionExit:
		return -1
	}
	return 0
}

// Resolve fans one detection out into signed deltas, one per matching access
// point whose area counts this label. Every zone transition is evaluated;
// a shared boundary zone legitimately produces deltas for multiple areas.
func (r *Resolver) Resolve(det *models.NormalizedDetection) ([]models.AreaDelta, error) {
	var deltas []models.AreaDelta

	appendDeltas := func(zone string, t transition) error {
		matches, err := r.directory.AccessPointsBySource(zone)
		if err != nil {
			return fmt.Errorf("failed to resolve zone %q: %w", zone, err)
		}
		for _, match := range matches {
			if !match.AreaType.Accepts(det.Label) {
				log.Debug().
					Str("zone", zone).
					Str("label", det.Label).
					Str("area", match.AreaName).
					Msg("Area type does not count this label, skipping")
				continue
			}
			delta := deltaFor(t, match.Direction)
			if delta == 0 {
				continue
			}
			deltas = append(deltas, models.AreaDelta{
				AreaID:        match.AreaID,
				AreaName:      match.AreaName,
				AccessPointID: match.ID,
				Delta:         delta,
				Source:        det.Camera,
				Zone:          zone,
				EventID:       det.EventID,
				Label:         det.Label,
				Confidence:    det.Confidence,
				Timestamp:     det.Timestamp,
			})
		}
		return nil
	}

	for _, zone := range det.EnteredZones {
		if err := appendDeltas(zone, transitionEnter); err != nil {
			return nil, err
		}
	}
	for _, zone := range det.ExitedZones {
		if err := appendDeltas(zone, transitionExit); err != nil {
			return nil, err
		}
	}

	return deltas, nil
}
