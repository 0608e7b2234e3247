package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "storefront"

// RedisBroadcaster publishes over Redis pub/sub so that views connected to
// different instances see each other's writes.
type RedisBroadcaster struct {
	client *redis.Client
	log    *slog.Logger
}

func NewRedisBroadcaster(client *redis.Client, log *slog.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, log: log}
}

func channelName(sessionID string) string {
	return fmt.Sprintf("%s:%s", channelPrefix, sessionID)
}

func (b *RedisBroadcaster) Publish(ctx context.Context, ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, channelName(ev.SessionID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (b *RedisBroadcaster) Subscribe(ctx context.Context, sessionID string) (<-chan Event, error) {
	pubsub := b.client.Subscribe(ctx, channelName(sessionID))

	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan Event, subscriberBuffer)
	go func() {
		defer func() {
			_ = pubsub.Close()
			close(out)
		}()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.Warn("failed to unmarshal event", "channel", msg.Channel, "error", err)
					continue
				}
				ev.SessionID = sessionID
				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	return out, nil
}
