package frigate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aforo-worker-go/internal/models"
	"aforo-worker-go/internal/store"
)

func TestReconnectDelay(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 1, expected: 5 * time.Second},
		{attempt: 2, expected: 10 * time.Second},
		{attempt: 3, expected: 15 * time.Second},
		{attempt: 4, expected: 20 * time.Second},
		{attempt: 5, expected: 25 * time.Second},
		{attempt: 6, expected: 25 * time.Second},
		{attempt: 10, expected: 25 * time.Second},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ReconnectDelay(tt.attempt), "attempt %d", tt.attempt)
	}
}

func TestBrokerURL(t *testing.T) {
	settings := &models.Settings{MQTTHost: "broker.local", MQTTPort: 1883}
	assert.Equal(t, "tcp://broker.local:1883", brokerURL(settings))

	settings.MQTTUseTLS = true
	settings.MQTTPort = 8883
	assert.Equal(t, "ssl://broker.local:8883", brokerURL(settings))
}

func TestStartStaysInertWhenDisabled(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	// Seeded settings have Enabled=false, so Start must not dial anything.
	svc := NewService(s, func([]byte) {})
	require.NoError(t, svc.Start())

	status := svc.Status()
	assert.False(t, status.Enabled)
	assert.False(t, status.Connected)

	svc.Stop()
	svc.Stop() // idempotent
}

func TestScheduleReconnectGivesUp(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	svc := NewService(s, func([]byte) {})
	settings := &models.Settings{MQTTHost: "broker.local", MQTTPort: 1883}

	svc.mu.Lock()
	svc.attempts = maxReconnectAttempts
	svc.mu.Unlock()

	svc.scheduleReconnect(settings)

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Nil(t, svc.timer, "no reconnect pending once attempts are exhausted")
	assert.Equal(t, "reconnect attempts exhausted", svc.status.LastError)
}

func TestStopCancelsPendingReconnect(t *testing.T) {
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	svc := NewService(s, func([]byte) {})
	settings := &models.Settings{MQTTHost: "broker.local", MQTTPort: 1883}

	svc.scheduleReconnect(settings)
	svc.mu.Lock()
	require.NotNil(t, svc.timer)
	svc.mu.Unlock()

	svc.Stop()

	svc.mu.Lock()
	defer svc.mu.Unlock()
	assert.Nil(t, svc.timer)
	assert.True(t, svc.stopped)
	assert.Zero(t, svc.attempts)
}
