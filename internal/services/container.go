package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/config"
	"aforo-worker-go/internal/services/cleanup"
	"aforo-worker-go/internal/services/frigate"
	"aforo-worker-go/internal/services/ingest"
	"aforo-worker-go/internal/services/measurement"
	"aforo-worker-go/internal/services/messaging"
	"aforo-worker-go/internal/services/occupancy"
	"aforo-worker-go/internal/store"
)

// ServiceContainer holds all services
type ServiceContainer struct {
	Config       *config.Config
	Store        *store.Store
	Messaging    *messaging.Service
	Occupancy    *occupancy.Service
	Pipeline     *ingest.Pipeline
	Frigate      *frigate.Service
	Cleanup      *cleanup.Service
	Measurements *measurement.Service
}

// NewServiceContainer creates a new service container
func NewServiceContainer(cfg *config.Config) (*ServiceContainer, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	// NATS publication is optional; counting works without it.
	var msg *messaging.Service
	var publisher occupancy.Publisher
	if cfg.NatsEnabled {
		msg, err = messaging.NewService(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable, continuing without event publication")
		} else {
			publisher = msg
		}
	}

	occupancySvc := occupancy.NewService(st, publisher, cfg.AreaQueueSize)
	pipeline := ingest.NewPipeline(st, st, occupancySvc)
	frigateSvc := frigate.NewService(st, pipeline.Handle)

	return &ServiceContainer{
		Config:       cfg,
		Store:        st,
		Messaging:    msg,
		Occupancy:    occupancySvc,
		Pipeline:     pipeline,
		Frigate:      frigateSvc,
		Cleanup:      cleanup.NewService(st, cfg),
		Measurements: measurement.NewService(st, cfg),
	}, nil
}

// Start brings up the broker subscription and background workers.
func (sc *ServiceContainer) Start() error {
	if err := sc.Frigate.Start(); err != nil {
		return err
	}
	sc.Cleanup.Start()
	sc.Measurements.Start()
	return nil
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	if sc.Frigate != nil {
		sc.Frigate.Stop()
	}
	if sc.Occupancy != nil {
		sc.Occupancy.Stop()
	}
	if sc.Cleanup != nil {
		sc.Cleanup.Stop()
	}
	if sc.Measurements != nil {
		sc.Measurements.Stop()
	}
	if sc.Messaging != nil {
		if err := sc.Messaging.Shutdown(ctx); err != nil {
			return err
		}
	}
	if sc.Store != nil {
		return sc.Store.Close()
	}
	return nil
}
