package measurement

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/config"
	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/store"
)

// Service snapshots the occupancy of every enabled area at a fixed interval.
// Trend charts read these rows instead of replaying the event log.
type Service struct {
	store *store.Store
	cfg   *config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewService(s *store.Store, cfg *config.Config) *Service {
	return &Service{store: s, cfg: cfg}
}

func (s *Service) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.MeasurementInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.snapshot()
			}
		}
	}()

	log.Info().Dur("interval", s.cfg.MeasurementInterval).Msg("Occupancy measurements started")
}

func (s *Service) snapshot() {
	areas, err := s.store.EnabledAreas()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list areas for measurement")
		return
	}

	now := time.Now().UTC()
	for _, area := range areas {
		m := models.Measurement{
			AreaID:    area.ID,
			Occupancy: area.Occupancy,
			Timestamp: now,
		}
		if err := s.store.InsertMeasurement(&m); err != nil {
			log.Error().Err(err).Str("area", area.Name).Msg("Failed to record measurement")
		}
	}
}

func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
