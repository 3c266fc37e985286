package events

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const defaultMaxLen = 10000

// RedisStream appends events to a Redis stream with XADD. The stream is
// trimmed approximately to MaxLen entries.
type RedisStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStream(client *redis.Client, stream string, maxLen int64) *RedisStream {
	if maxLen <= 0 {
		maxLen = defaultMaxLen
	}
	return &RedisStream{client: client, stream: stream, maxLen: maxLen}
}

func (r *RedisStream) Publish(ctx context.Context, e Event) error {
	values := map[string]interface{}{
		"type":           string(e.Type),
		"appointment_id": e.AppointmentID,
		"actor_id":       e.ActorID,
		"actor_role":     string(e.ActorRole),
		"at":             e.At.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
	if e.Status != "" {
		values["status"] = string(e.Status)
	}
	if e.RiskLevel != "" {
		values["risk_level"] = string(e.RiskLevel)
	}
	err := r.client.XAdd(ctx, &redis.XAddArgs{
		Stream: r.stream,
		MaxLen: r.maxLen,
		Approx: true,
		Values: values,
	}).Err()
	if err != nil {
		return fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return nil
}

// NewRedisClient mirrors the connection options the server is configured with.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}
