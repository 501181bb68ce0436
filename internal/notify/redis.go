package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisSink publishes alert events on per-building pub/sub channels so
// out-of-process consumers (dashboards, relays) can subscribe.
type RedisSink struct {
	client *redis.Client
	prefix string
}

// NewRedisSink wraps an existing redis client. Events for building B go to
// channel "<prefix>:B".
func NewRedisSink(client *redis.Client, prefix string) *RedisSink {
	if prefix == "" {
		prefix = "alerts"
	}
	return &RedisSink{client: client, prefix: prefix}
}

// NewRedisClient builds a client from flat connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func (s *RedisSink) Publish(ctx context.Context, buildingID string, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return s.client.Publish(ctx, s.Channel(buildingID), payload).Err()
}

// Channel returns the pub/sub channel used for a building's events.
func (s *RedisSink) Channel(buildingID string) string {
	return s.prefix + ":" + buildingID
}
