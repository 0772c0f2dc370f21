package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const queueTTL = 7 * 24 * time.Hour

func queueKey(userID string) string {
	return "notify:user:" + userID
}

type envelope struct {
	Kind      string            `json:"kind"`
	Payload   map[string]string `json:"payload"`
	CreatedAt time.Time         `json:"created_at"`
}

var _ Sink = (*RedisSink)(nil)

// RedisSink appends notifications to a per-user redis list that delivery
// workers outside this service drain.
type RedisSink struct {
	client *redis.Client
}

func NewRedisSink(client *redis.Client) *RedisSink {
	return &RedisSink{client: client}
}

func (r *RedisSink) Notify(ctx context.Context, userID uuid.UUID, kind string, payload map[string]string) error {
	data, err := json.Marshal(envelope{
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	key := queueKey(userID.String())
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.RPush(ctx, key, data).Err(); err != nil {
			return err
		}

		return p.Expire(ctx, key, queueTTL).Err()
	})

	return err
}

// Pending returns the queued notifications for a user, oldest first.
func (r *RedisSink) Pending(ctx context.Context, userID uuid.UUID) ([]map[string]string, error) {
	items, err := r.client.LRange(ctx, queueKey(userID.String()), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	var payloads []map[string]string
	for _, item := range items {
		var env envelope
		if err := json.Unmarshal([]byte(item), &env); err != nil {
			return nil, err
		}

		payload := env.Payload
		if payload == nil {
			payload = make(map[string]string)
		}
		payload["kind"] = env.Kind
		payloads = append(payloads, payload)
	}

	return payloads, nil
}
