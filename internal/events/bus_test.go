package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))
	defer func() { _ = bus.Close() }()

	var mu sync.Mutex
	var received []CarouselSent

	handler := func(event CarouselSent) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event)
	}
	require.NoError(t, bus.Subscribe(TopicCarouselSent, handler))

	event := CarouselSent{
		Event:        NewEvent(),
		ConfigID:     1,
		FunctionName: "news_digest",
		ChatID:       -1001234,
		MessageID:    42,
		TotalSent:    1,
	}
	require.NoError(t, bus.Publish(TopicCarouselSent, event))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1 && received[0].MessageID == 42
	}, 2*time.Second, 10*time.Millisecond)
}

func TestEventBus_PublishAfterClose(t *testing.T) {
	bus := NewEventBus(zaptest.NewLogger(t))
	require.NoError(t, bus.Close())

	err := bus.Publish(TopicCarouselSent, CarouselSent{Event: NewEvent()})
	assert.Error(t, err)
}

func TestNewEvent(t *testing.T) {
	first := NewEvent()
	second := NewEvent()

	assert.NotEmpty(t, first.CorrelationID)
	assert.NotEqual(t, first.CorrelationID, second.CorrelationID)
	assert.WithinDuration(t, time.Now(), first.Timestamp, time.Second)
}
