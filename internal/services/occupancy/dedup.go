package occupancy

import (
	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/store"
)

// Gate suppresses repeated deltas carrying the same upstream event id for
// the same area and direction. The upstream tracker re-emits an object's
// state on every frame update, so one physical crossing can surface several
// times within a second.
type Gate struct {
	store *store.Store
}

func NewGate(s *store.Store) *Gate {
	return &Gate{store: s}
}

// IsDuplicate checks the recent event log for this delta's upstream id.
// Lookup failures let the delta through: double counting under a transient
// store error beats silently losing a crossing.
func (g *Gate) IsDuplicate(delta models.AreaDelta) bool {
	dup, err := g.store.IsDuplicate(delta.AreaID, delta.Kind(), delta.EventID, delta.Timestamp)
	if err != nil {
		log.Warn().Err(err).
			Uint("area_id", delta.AreaID).
			Str("event_id", delta.EventID).
			Msg("Duplicate check failed, accepting delta")
		return false
	}
	if dup {
		log.Debug().
			Uint("area_id", delta.AreaID).
			Str("event_id", delta.EventID).
			Str("kind", string(delta.Kind())).
			Msg("Duplicate delta suppressed")
	}
	return dup
}
