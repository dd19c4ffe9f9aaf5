package occupancy

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/store"
)

// Publisher pushes committed events and alerts to interested outside parties.
// A nil publisher disables publication.
type Publisher interface {
	PublishEvent(area *models.Area, event *models.CountingEvent)
	PublishAlert(area *models.Area, event *models.CountingEvent)
}

// Service applies resolved deltas to the store. Deltas for the same area are
// funneled through one bounded queue with a single consumer, so occupancy
// updates for an area are strictly serialized while distinct areas proceed
// in parallel.
type Service struct {
	store     *store.Store
	gate      *Gate
	alerter   *Alerter
	publisher Publisher
	queueSize int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	queues map[uint]chan models.AreaDelta
	closed bool
}

func NewService(s *store.Store, publisher Publisher, queueSize int) *Service {
	if queueSize <= 0 {
		queueSize = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:     s,
		gate:      NewGate(s),
		alerter:   NewAlerter(s, publisher),
		publisher: publisher,
		queueSize: queueSize,
		ctx:       ctx,
		cancel:    cancel,
		queues:    make(map[uint]chan models.AreaDelta),
	}
}

// Apply enqueues one delta for its area. When the area's queue is full the
// delta is dropped with a warning rather than blocking the broker callback.
func (s *Service) Apply(delta models.AreaDelta) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	queue, ok := s.queues[delta.AreaID]
	if !ok {
		queue = make(chan models.AreaDelta, s.queueSize)
		s.queues[delta.AreaID] = queue
		s.wg.Add(1)
		go s.consume(queue)
	}
	s.mu.Unlock()

	select {
	case queue <- delta:
	default:
		log.Warn().
			Uint("area_id", delta.AreaID).
			Str("event_id", delta.EventID).
			Msg("Area queue full, dropping delta")
	}
}

func (s *Service) consume(queue chan models.AreaDelta) {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case delta, ok := <-queue:
			if !ok {
				return
			}
			s.process(delta)
		}
	}
}

func (s *Service) process(delta models.AreaDelta) {
	if s.gate.IsDuplicate(delta) {
		return
	}

	result, err := s.store.ApplyDelta(delta)
	if err != nil {
		log.Error().Err(err).
			Uint("area_id", delta.AreaID).
			Str("event_id", delta.EventID).
			Msg("Failed to apply delta")
		return
	}

	log.Info().
		Str("area", result.Area.Name).
		Str("kind", string(result.Event.Kind)).
		Str("label", delta.Label).
		Int("occupancy", result.Area.Occupancy).
		Int("previous", result.OldValue).
		Str("color", string(result.Area.Color)).
		Msg("Occupancy updated")

	if s.publisher != nil {
		s.publisher.PublishEvent(result.Area, result.Event)
	}

	s.alerter.Evaluate(result.Area, delta.Source, delta.Timestamp)
}

// Stop drains nothing and returns once every consumer has exited. Deltas
// still queued are discarded.
func (s *Service) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
