package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Ensure MockPushRelay implements PushRelay
var _ driven.PushRelay = (*MockPushRelay)(nil)

type relayedMessage struct {
	topic   domain.Topic
	payload []byte
}

// MockPushRelay loops published messages back to its listeners
type MockPushRelay struct {
	mu        sync.Mutex
	listeners []func(domain.Topic, []byte)
	published []relayedMessage
	ready     chan struct{}
	once      sync.Once
}

// NewMockPushRelay creates a new MockPushRelay
func NewMockPushRelay() *MockPushRelay {
	return &MockPushRelay{ready: make(chan struct{})}
}

func (m *MockPushRelay) Publish(ctx context.Context, topic domain.Topic, payload []byte) error {
	m.mu.Lock()
	m.published = append(m.published, relayedMessage{topic: topic, payload: payload})
	listeners := append([]func(domain.Topic, []byte){}, m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(topic, payload)
	}
	return nil
}

func (m *MockPushRelay) Listen(ctx context.Context, deliver func(domain.Topic, []byte)) error {
	m.mu.Lock()
	m.listeners = append(m.listeners, deliver)
	m.mu.Unlock()
	m.once.Do(func() { close(m.ready) })

	<-ctx.Done()
	return ctx.Err()
}

// Ready is closed once a listener is registered
func (m *MockPushRelay) Ready() <-chan struct{} {
	return m.ready
}

// PublishedCount returns how many messages were published
func (m *MockPushRelay) PublishedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.published)
}
