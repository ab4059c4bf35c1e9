package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"Gin_postgres_redis_library/lending"

	"github.com/redis/go-redis/v9"
)

const DefaultChannel = "library:loans:created"

// RedisPublisher publishes each event as JSON on a pub/sub channel.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
}

func NewRedisPublisher(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

type redisMessage struct {
	lending.LoanCreated
	Text string `json:"text"`
}

func (p *RedisPublisher) LoanCreated(ctx context.Context, ev lending.LoanCreated) error {
	b, err := json.Marshal(redisMessage{LoanCreated: ev, Text: FormatLoanCreated(ev)})
	if err != nil {
		return err
	}
	if err := p.rdb.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}
