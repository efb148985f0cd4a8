package hub

import (
	"context"

	"nearchat/internal/events"
)

// Subscriber is the pub/sub side the bridge listens on.
type Subscriber interface {
	Subscribe(ctx context.Context, patterns []string, handler func(channel string, payload []byte)) error
}

// RedisBridge re-broadcasts pub/sub frames into the local hub so every
// process delivers to its own connections regardless of where a message was
// published.
type RedisBridge struct {
	subscriber Subscriber
	hub        *Hub
}

func NewRedisBridge(subscriber Subscriber, h *Hub) *RedisBridge {
	return &RedisBridge{subscriber: subscriber, hub: h}
}

// Run blocks until ctx is cancelled, forwarding every frame published on a
// room, conversation or user channel to local subscribers.
func (b *RedisBridge) Run(ctx context.Context) error {
	patterns := []string{
		events.ChannelPrefixRoom + "*",
		events.ChannelPrefixConversation + "*",
		events.ChannelPrefixUser + "*",
	}
	return b.subscriber.Subscribe(ctx, patterns, func(channel string, payload []byte) {
		b.hub.Broadcast(channel, payload)
	})
}
