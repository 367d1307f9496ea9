package driven

import (
	"context"

	"github.com/custodia-labs/folio/internal/core/domain"
)

// PushRelay fans push updates out to every running instance (Redis pub/sub)
type PushRelay interface {
	// Publish sends an encoded payload on topic
	Publish(ctx context.Context, topic domain.Topic, payload []byte) error

	// Listen blocks, calling deliver for each relayed message, until ctx is done
	Listen(ctx context.Context, deliver func(topic domain.Topic, payload []byte)) error
}
