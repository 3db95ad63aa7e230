package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Abandoned drafts expire on their own; completed flows clear explicitly.
const redisTTL = 24 * time.Hour

// Redis is a Store backed by a Redis instance, for deployments where the
// service runs more than one replica.
type Redis struct {
	client *redis.Client
}

var _ Store = (*Redis)(nil)

// NewRedis creates a Redis-backed store from a URL
// (e.g. redis://localhost:6379/0).
func NewRedis(redisURL string) (*Redis, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return &Redis{client: redis.NewClient(opts)}, nil
}

// Ping verifies the connection.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Save(ctx context.Context, namespace string, rec Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, draftKey(namespace), b, redisTTL).Err()
}

func (r *Redis) Load(ctx context.Context, namespace string) (*Record, error) {
	v, err := r.client.Get(ctx, draftKey(namespace)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Decode(namespace, []byte(v)), nil
}

func (r *Redis) Clear(ctx context.Context, namespace string) error {
	return r.client.Del(ctx, draftKey(namespace)).Err()
}

func draftKey(namespace string) string {
	return "draft:" + namespace
}
