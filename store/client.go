package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

type RedisClient struct {
	client *redis.Client
	prefix string
}

func NewRedisClient(addr, password string, db int, prefix string) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     20,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return &RedisClient{client: rdb, prefix: prefix}, nil
}

func (r *RedisClient) key(parts ...string) string {
	out := r.prefix
	for _, p := range parts {
		out += ":" + p
	}
	return out
}

// Incr implements a fixed-window counter shared across service instances.
// The window starts on the first increment and the key expires with it.
func (r *RedisClient) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	k := r.key("rate", key)
	count, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := r.client.PExpire(ctx, k, window).Err(); err != nil {
			return count, window, err
		}
		return count, window, nil
	}
	remaining, err := r.client.PTTL(ctx, k).Result()
	if err != nil || remaining < 0 {
		remaining = window
	}
	return count, remaining, err
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
