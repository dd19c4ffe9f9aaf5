package messaging

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/config"
	"aforo-worker-go/internal/models"
)

// Service publishes committed counting events and alerts on NATS so other
// systems (dashboards, notifiers) can react without polling the API.
type Service struct {
	conn *nats.Conn
	cfg  *config.Config
}

func NewService(cfg *config.Config) (*Service, error) {
	opts := []nats.Option{
		nats.Name("aforo-worker"),
		nats.Timeout(cfg.NatsConnectTimeout),
		nats.ReconnectWait(cfg.NatsReconnectWait),
		nats.MaxReconnects(cfg.NatsMaxReconnects),
	}

	conn, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", cfg.NatsURL).Msg("NATS connection established")

	return &Service{
		conn: conn,
		cfg:  cfg,
	}, nil
}

// EventMessage is the wire shape for both event and alert publications.
type EventMessage struct {
	AreaID    uint             `json:"area_id"`
	AreaName  string           `json:"area_name"`
	Kind      models.EventKind `json:"kind"`
	Value     int              `json:"value"`
	Occupancy int              `json:"occupancy"`
	Color     models.ColorBand `json:"color"`
	Source    string           `json:"source"`
	Timestamp string           `json:"timestamp"`
	Metadata  json.RawMessage  `json:"metadata,omitempty"`
}

func (s *Service) publish(subject string, area *models.Area, event *models.CountingEvent) {
	msg := EventMessage{
		AreaID:    area.ID,
		AreaName:  area.Name,
		Kind:      event.Kind,
		Value:     event.Value,
		Occupancy: area.Occupancy,
		Color:     area.Color,
		Source:    event.Source,
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Metadata:  json.RawMessage(event.Metadata),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("subject", subject).Msg("Failed to marshal event message")
		return
	}
	if err := s.conn.Publish(subject, payload); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("Failed to publish event message")
	}
}

// PublishEvent pushes one committed enter/exit event.
func (s *Service) PublishEvent(area *models.Area, event *models.CountingEvent) {
	s.publish(s.cfg.EventsSubject, area, event)
}

// PublishAlert pushes one warning/exceeded alert.
func (s *Service) PublishAlert(area *models.Area, event *models.CountingEvent) {
	s.publish(s.cfg.AlertsSubject, area, event)
}

func (s *Service) IsConnected() bool {
	return s.conn != nil && s.conn.IsConnected()
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.conn != nil {
		// Try graceful drain with timeout, fallback to immediate close
		if err := s.conn.Drain(); err != nil {
			log.Warn().Err(err).Msg("Failed to drain NATS connection gracefully, closing immediately")
			s.conn.Close()
		}
	}
	return nil
}
