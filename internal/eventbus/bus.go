package eventbus

import (
	"log/slog"
	"sync"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.EventBus = (*Bus)(nil)

type subscriber struct {
	id      uint64
	handler func(any)
}

// Bus is an in-process topic registry.
// Subscribers of a topic are called in registration order.
type Bus struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers map[domain.Topic][]subscriber
	logger      *slog.Logger
}

// New creates a new event bus
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		subscribers: make(map[domain.Topic][]subscriber),
		logger:      logger,
	}
}

// Subscribe registers handler for topic.
// The returned function removes it and is safe to call more than once.
func (b *Bus) Subscribe(topic domain.Topic, handler func(any)) func() {
	if handler == nil {
		return func() {}
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subscribers[topic] = append(b.subscribers[topic], subscriber{id: id, handler: handler})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(topic, id) })
	}
}

// Publish calls every handler registered for topic at dispatch time.
// Nil payloads are dropped. A panicking handler does not stop delivery
// to the others.
func (b *Bus) Publish(topic domain.Topic, payload any) {
	if payload == nil {
		return
	}

	b.mu.RLock()
	subs := make([]subscriber, len(b.subscribers[topic]))
	copy(subs, b.subscribers[topic])
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(topic, s, payload)
	}
}

// Count returns the number of subscribers for topic
func (b *Bus) Count(topic domain.Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}

func (b *Bus) deliver(topic domain.Topic, s subscriber, payload any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked", "topic", topic, "panic", r)
		}
	}()
	s.handler(payload)
}

func (b *Bus) remove(topic domain.Topic, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[topic]
	for i, s := range subs {
		if s.id == id {
			b.subscribers[topic] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(b.subscribers[topic]) == 0 {
		delete(b.subscribers, topic)
	}
}
