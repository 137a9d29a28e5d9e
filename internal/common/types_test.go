package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	id := NewID()
	assert.True(t, id.IsValid())
	assert.NotEqual(t, id, NewID())
}

func TestID_JSONRoundTrip(t *testing.T) {
	id := NewID()

	data, err := json.Marshal(id)
	require.NoError(t, err)

	var decoded ID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, id, decoded)
}

func TestID_IsValid(t *testing.T) {
	assert.False(t, ID("not-a-uuid").IsValid())
	assert.False(t, ID("").IsValid())
}

func TestDeliveryStatus(t *testing.T) {
	tests := []struct {
		status   DeliveryStatus
		valid    bool
		terminal bool
	}{
		{DeliveryStatusQueued, true, false},
		{DeliveryStatusSending, true, false},
		{DeliveryStatusSent, true, true},
		{DeliveryStatusFailed, true, true},
		{DeliveryStatus("unknown"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.status.IsValid())
			assert.Equal(t, tt.terminal, tt.status.IsTerminal())
		})
	}
}

func TestMockClock(t *testing.T) {
	start := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	assert.Equal(t, start, clock.Now())

	clock.Advance(time.Hour)
	assert.Equal(t, start.Add(time.Hour), clock.Now())

	clock.SetTime(start)
	assert.Equal(t, start, clock.Now())
}
