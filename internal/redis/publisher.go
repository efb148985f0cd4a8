package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Publisher fans outbound frames to every server process via pub/sub; the
// bridge on each process delivers them to its local hub.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return p.client.Publish(ctx, channel, payload).Err()
}
