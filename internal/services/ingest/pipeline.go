package ingest

import (
	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/models"
)

// SettingsSource exposes the live classification parameters.
type SettingsSource interface {
	ActiveLabels() (map[string]bool, error)
	Settings() (*models.Settings, error)
}

// DeltaSink receives resolved deltas for serialized application.
type DeltaSink interface {
	Apply(delta models.AreaDelta)
}

// Pipeline ties classification and resolution together behind a single
// message handler suitable for a broker callback.
type Pipeline struct {
	classifier *Classifier
	resolver   *Resolver
	settings   SettingsSource
	sink       DeltaSink
}

func NewPipeline(settings SettingsSource, directory AccessPointDirectory, sink DeltaSink) *Pipeline {
	return &Pipeline{
		classifier: NewClassifier(),
		resolver:   NewResolver(directory),
		settings:   settings,
		sink:       sink,
	}
}

// Handle processes one raw broker payload end to end. Errors are logged,
// never returned: a bad message must not take the subscription down.
func (p *Pipeline) Handle(payload []byte) {
	settings, err := p.settings.Settings()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load settings, dropping message")
		return
	}
	active, err := p.settings.ActiveLabels()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load active labels, dropping message")
		return
	}

	det, reason := p.classifier.Classify(payload, active, settings.ConfidenceThreshold)
	if det == nil {
		log.Debug().Str("reason", reason).Msg("Detection skipped")
		return
	}

	deltas, err := p.resolver.Resolve(det)
	if err != nil {
		log.Error().Err(err).Str("event_id", det.EventID).Msg("Failed to resolve detection")
		return
	}
	if len(deltas) == 0 {
		log.Debug().
			Str("event_id", det.EventID).
			Str("camera", det.Camera).
			Msg("Detection matched no access points")
		return
	}

	for _, delta := range deltas {
		p.sink.Apply(delta)
	}
}
