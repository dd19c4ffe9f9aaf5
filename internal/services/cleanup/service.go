package cleanup

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/config"
	"aforo-worker-go/internal/store"
)

// Result reports one retention sweep.
type Result struct {
	EventsDeleted       int64         `json:"events_deleted"`
	MeasurementsDeleted int64         `json:"measurements_deleted"`
	SpaceFreed          int64         `json:"space_freed_bytes"`
	Duration            time.Duration `json:"duration"`
	Cutoff              time.Time     `json:"cutoff"`
	Vacuumed            bool          `json:"vacuumed"`
}

// Service periodically deletes events and measurements older than the
// configured retention window. Deletion happens in small batches with a
// pause between them so the sweep never holds the write lock for long.
type Service struct {
	store *store.Store
	cfg   *config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
	last    *Result
}

func NewService(s *store.Store, cfg *config.Config) *Service {
	return &Service{store: s, cfg: cfg}
}

// Start launches the periodic sweep loop.
func (s *Service) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Run(ctx); err != nil {
					log.Error().Err(err).Msg("Retention cleanup failed")
				}
			}
		}
	}()

	log.Info().Dur("interval", s.cfg.CleanupInterval).Msg("Retention cleanup started")
}

// Run performs one sweep now. Concurrent runs are rejected; the API can
// trigger a sweep while the timer loop is idle.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	settings, err := s.store.Settings()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cutoff := start.UTC().AddDate(0, 0, -settings.RetentionDays)
	sizeBefore := s.store.FileSize(s.cfg.DBPath)

	result := &Result{Cutoff: cutoff}

	result.EventsDeleted, err = s.sweep(ctx, cutoff, s.store.DeleteEventsBatch)
	if err != nil {
		return nil, err
	}
	result.MeasurementsDeleted, err = s.sweep(ctx, cutoff, s.store.DeleteMeasurementsBatch)
	if err != nil {
		return nil, err
	}

	if s.cfg.VacuumAfterCleanup && result.EventsDeleted+result.MeasurementsDeleted > 0 {
		if err := s.store.Vacuum(); err != nil {
			log.Warn().Err(err).Msg("Vacuum after cleanup failed")
		} else {
			result.Vacuumed = true
		}
	}

	if sizeAfter := s.store.FileSize(s.cfg.DBPath); sizeBefore > sizeAfter {
		result.SpaceFreed = sizeBefore - sizeAfter
	}
	result.Duration = time.Since(start)

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	log.Info().
		Int64("events_deleted", result.EventsDeleted).
		Int64("measurements_deleted", result.MeasurementsDeleted).
		Int64("space_freed", result.SpaceFreed).
		Dur("duration", result.Duration).
		Time("cutoff", cutoff).
		Msg("Retention cleanup finished")

	return result, nil
}

// sweep repeats one batched delete until the table has no rows older than
// the cutoff, pausing between batches.
func (s *Service) sweep(ctx context.Context, cutoff time.Time, deleteBatch func(time.Time, int) (int64, error)) (int64, error) {
	var total int64
	for {
		deleted, err := deleteBatch(cutoff, s.cfg.CleanupBatchSize)
		if err != nil {
			return total, err
		}
		total += deleted
		if deleted < int64(s.cfg.CleanupBatchSize) {
			return total, nil
		}
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		case <-time.After(s.cfg.CleanupBatchPause):
		}
	}
}

// LastResult returns the most recent sweep outcome, if any.
func (s *Service) LastResult() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Stop halts the periodic loop and waits for an in-flight sweep to finish.
func (s *Service) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
