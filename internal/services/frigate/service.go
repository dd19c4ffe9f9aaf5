package frigate

import (
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/store"
)

const (
	connectTimeout = 10 * time.Second

	// Reconnects are scheduled manually so the backoff stays predictable:
	// 5s, 10s, ..., capped at 25s, giving up after 10 attempts.
	baseReconnectDelay   = 5 * time.Second
	maxReconnectAttempts = 10
	maxDelayMultiplier   = 5
)

// Status is the broker connection state exposed over the API.
type Status struct {
	Enabled   bool   `json:"enabled"`
	Connected bool   `json:"connected"`
	Broker    string `json:"broker,omitempty"`
	Topic     string `json:"topic,omitempty"`
	Attempts  int    `json:"reconnect_attempts"`
	LastError string `json:"last_error,omitempty"`
}

// Service maintains the subscription to the detector's MQTT events topic.
// Connection parameters live in the settings singleton, so Reload picks up
// configuration changes without restarting the worker.
type Service struct {
	store   *store.Store
	handler func(payload []byte)

	mu       sync.Mutex
	client   mqtt.Client
	timer    *time.Timer
	attempts int
	stopped  bool
	status   Status
}

func NewService(s *store.Store, handler func(payload []byte)) *Service {
	return &Service{store: s, handler: handler}
}

// Start connects to the broker when counting is enabled and configured.
// A disabled or incomplete configuration leaves the service inert; Reload
// brings it up later.
func (s *Service) Start() error {
	settings, err := s.store.Settings()
	if err != nil {
		return fmt.Errorf("failed to load MQTT settings: %w", err)
	}

	s.mu.Lock()
	s.stopped = false
	s.attempts = 0
	s.mu.Unlock()

	if !settings.Enabled || settings.MQTTHost == "" || settings.MQTTPort == 0 {
		log.Info().Msg("Counting disabled or broker not configured, MQTT subscription inactive")
		s.setStatus(func(st *Status) { *st = Status{Enabled: false} })
		return nil
	}

	s.connect(settings)
	return nil
}

func brokerURL(settings *models.Settings) string {
	scheme := "tcp"
	if settings.MQTTUseTLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, settings.MQTTHost, settings.MQTTPort)
}

func (s *Service) connect(settings *models.Settings) {
	broker := brokerURL(settings)
	topic := settings.MQTTTopic

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("aforo-worker-" + uuid.NewString()[:8])
	opts.SetConnectTimeout(connectTimeout)
	opts.SetAutoReconnect(false)
	opts.SetCleanSession(true)
	if settings.MQTTUser != "" {
		opts.SetUsername(settings.MQTTUser)
		opts.SetPassword(settings.MQTTPass)
	}

	opts.OnConnect = func(c mqtt.Client) {
		log.Info().Str("broker", broker).Str("topic", topic).Msg("MQTT connection established")
		s.mu.Lock()
		s.attempts = 0
		s.mu.Unlock()
		s.setStatus(func(st *Status) {
			st.Connected = true
			st.Attempts = 0
			st.LastError = ""
		})

		token := c.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
			s.handler(msg.Payload())
		})
		token.Wait()
		if err := token.Error(); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to subscribe to events topic")
			s.setStatus(func(st *Status) { st.LastError = err.Error() })
		}
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost")
		s.setStatus(func(st *Status) {
			st.Connected = false
			st.LastError = err.Error()
		})
		s.scheduleReconnect(settings)
	}

	s.setStatus(func(st *Status) {
		st.Enabled = true
		st.Broker = broker
		st.Topic = topic
	})

	client := mqtt.NewClient(opts)

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.client = client
	s.mu.Unlock()

	log.Info().Str("broker", broker).Msg("Connecting to MQTT broker")
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		log.Error().Str("broker", broker).Msg("MQTT connection timed out")
		s.setStatus(func(st *Status) { st.LastError = "connection timeout" })
		s.scheduleReconnect(settings)
		return
	}
	if err := token.Error(); err != nil {
		log.Error().Err(err).Str("broker", broker).Msg("MQTT connection failed")
		s.setStatus(func(st *Status) { st.LastError = err.Error() })
		s.scheduleReconnect(settings)
	}
}

// ReconnectDelay returns the backoff before the given attempt number
// (1-based): 5s times the attempt count, capped at 25s.
func ReconnectDelay(attempt int) time.Duration {
	multiplier := attempt
	if multiplier > maxDelayMultiplier {
		multiplier = maxDelayMultiplier
	}
	return baseReconnectDelay * time.Duration(multiplier)
}

func (s *Service) scheduleReconnect(settings *models.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.timer != nil {
		// A reconnect is already pending.
		return
	}

	s.attempts++
	if s.attempts > maxReconnectAttempts {
		log.Error().
			Int("attempts", maxReconnectAttempts).
			Msg("Exhausted MQTT reconnect attempts, giving up until reload")
		s.setStatusLocked(func(st *Status) { st.LastError = "reconnect attempts exhausted" })
		return
	}

	delay := ReconnectDelay(s.attempts)
	attempt := s.attempts
	s.setStatusLocked(func(st *Status) { st.Attempts = attempt })

	log.Info().
		Int("attempt", attempt).
		Dur("delay", delay).
		Msg("Scheduling MQTT reconnect")

	s.timer = time.AfterFunc(delay, func() {
		s.mu.Lock()
		s.timer = nil
		stopped := s.stopped
		s.mu.Unlock()
		if stopped {
			return
		}
		s.connect(settings)
	})
}

// Reload tears the current connection down and starts over with the latest
// stored settings.
func (s *Service) Reload() error {
	log.Info().Msg("Reloading MQTT subscription")
	s.Stop()
	return s.Start()
}

// Stop cancels any pending reconnect and disconnects. Safe to call more
// than once.
func (s *Service) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	client := s.client
	s.client = nil
	s.attempts = 0
	s.mu.Unlock()

	if client != nil && client.IsConnected() {
		client.Disconnect(250)
	}
	s.setStatus(func(st *Status) { st.Connected = false })
}

// Status returns a snapshot of the connection state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Service) setStatus(mutate func(*Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.status)
}

func (s *Service) setStatusLocked(mutate func(*Status)) {
	mutate(&s.status)
}
