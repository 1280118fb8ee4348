package broker

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisPublisher exports relay events over Redis pub/sub.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	if err := p.client.Publish(ctx, p.channel, event).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

func (p *RedisPublisher) Type() string {
	return "redis"
}

// Close is a no-op; the Redis client is shared and owned by the caller.
func (p *RedisPublisher) Close() error {
	return nil
}
