package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/config"
)

func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("worker_id", cfg.WorkerID).Str("service", service).Logger()
}

func WithArea(base zerolog.Logger, area string) zerolog.Logger {
	return base.With().Str("area", area).Logger()
}
