package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/custodia-labs/folio/internal/core/domain"
	"github.com/custodia-labs/folio/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.PushRelay = (*Relay)(nil)

const relayPrefix = "folio:push:"

// Relay fans push updates out to every instance through Redis pub/sub.
// Each topic maps to the channel folio:push:<topic>.
type Relay struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRelay creates a pub/sub relay on client
func NewRelay(client *redis.Client, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{client: client, logger: logger}
}

// Publish sends payload to every subscriber of topic
func (r *Relay) Publish(ctx context.Context, topic domain.Topic, payload []byte) error {
	if err := r.client.Publish(ctx, channelFor(topic), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Listen subscribes to every known topic and calls deliver for each message.
// It returns once the subscription is confirmed to have failed or ctx is done.
func (r *Relay) Listen(ctx context.Context, deliver func(domain.Topic, []byte)) error {
	channels := make([]string, 0, len(domain.Topics))
	for _, topic := range domain.Topics {
		channels = append(channels, channelFor(topic))
	}

	sub := r.client.Subscribe(ctx, channels...)
	defer sub.Close()

	// Wait for the confirmation so publishes after Listen starts are not lost
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", strings.Join(channels, ","), err)
	}
	r.logger.Info("push relay listening", "channels", channels)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			deliver(domain.Topic(strings.TrimPrefix(msg.Channel, relayPrefix)), []byte(msg.Payload))
		}
	}
}

func channelFor(topic domain.Topic) string {
	return relayPrefix + string(topic)
}
