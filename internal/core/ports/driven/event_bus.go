package driven

import "github.com/custodia-labs/folio/internal/core/domain"

// EventBus is the in-process broadcast used for push updates
type EventBus interface {
	// Subscribe registers handler for topic and returns an idempotent
	// unsubscribe function
	Subscribe(topic domain.Topic, handler func(payload any)) (unsubscribe func())

	// Publish delivers payload synchronously to the current subscribers.
	// Nil payloads are dropped.
	Publish(topic domain.Topic, payload any)
}
