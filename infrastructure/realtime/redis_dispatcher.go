package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"storeassist/config"

	"github.com/redis/go-redis/v9"
)

// Envelope is the wire format published on audience channels. The
// transport edge decodes it and relays the event to live connections.
type Envelope struct {
	Event  string    `json:"event"`
	Args   []any     `json:"args"`
	SentAt time.Time `json:"sent_at"`
}

// RedisDispatcher publishes envelopes on redis pub/sub channels:
// "group:<name>" for group casts, "user:<id>" for user casts. PUBLISH
// with zero subscribers succeeds, which gives the absent-audience
// no-op for free.
type RedisDispatcher struct {
	client *redis.Client
}

func NewRedisDispatcher(client *redis.Client) *RedisDispatcher {
	return &RedisDispatcher{client: client}
}

// NewRedisClient builds the shared redis client from configuration.
func NewRedisClient(cfg *config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

func (d *RedisDispatcher) GroupCast(ctx context.Context, group, event string, args ...any) error {
	return d.publish(ctx, GroupChannel(group), event, args)
}

func (d *RedisDispatcher) UserCast(ctx context.Context, userID uint, event string, args ...any) error {
	return d.publish(ctx, UserChannel(userID), event, args)
}

func (d *RedisDispatcher) publish(ctx context.Context, channel, event string, args []any) error {
	if args == nil {
		args = []any{}
	}
	payload, err := json.Marshal(Envelope{Event: event, Args: args, SentAt: time.Now()})
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	if err := d.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

// GroupChannel names the pub/sub channel for a group audience.
func GroupChannel(group string) string { return "group:" + group }

// UserChannel names the pub/sub channel for a single user's connections.
func UserChannel(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

var _ Dispatcher = (*RedisDispatcher)(nil)
