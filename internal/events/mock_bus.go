package events

import (
	"sync"
)

// MockEventBus provides an in-memory implementation of EventBus for testing
type MockEventBus struct {
	mutex           sync.RWMutex
	publishedEvents map[string][]interface{}
	subscriptions   map[string][]interface{}
	publishError    error
	closed          bool
}

// NewMockEventBus creates a new MockEventBus instance
func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		publishedEvents: make(map[string][]interface{}),
		subscriptions:   make(map[string][]interface{}),
	}
}

// Publish implements the EventBus interface
func (m *MockEventBus) Publish(topic string, data interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.publishError != nil {
		return m.publishError
	}

	m.publishedEvents[topic] = append(m.publishedEvents[topic], data)
	return nil
}

// Subscribe implements the EventBus interface
func (m *MockEventBus) Subscribe(topic string, handler interface{}) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.subscriptions[topic] = append(m.subscriptions[topic], handler)
	return nil
}

// Unsubscribe implements the EventBus interface
func (m *MockEventBus) Unsubscribe(topic string, handler interface{}) error {
	return nil
}

// Close implements the EventBus interface
func (m *MockEventBus) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.closed = true
	return nil
}

// SetPublishError makes subsequent Publish calls fail with err
func (m *MockEventBus) SetPublishError(err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.publishError = err
}

// PublishedEvents returns all events published to the given topic
func (m *MockEventBus) PublishedEvents(topic string) []interface{} {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	events := make([]interface{}, len(m.publishedEvents[topic]))
	copy(events, m.publishedEvents[topic])
	return events
}

// PublishedEventCount returns the number of events published to the given topic
func (m *MockEventBus) PublishedEventCount(topic string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.publishedEvents[topic])
}
