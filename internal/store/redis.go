package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores values under "<namespace>:<key>" keys with no expiry,
// matching the file backend's persist-until-cleared lifecycle.
type RedisKV struct {
	client *redis.Client
}

// NewRedisKV wraps an existing Redis client.
func NewRedisKV(client *redis.Client) *RedisKV {
	return &RedisKV{client: client}
}

func redisKey(namespace, key string) string {
	return namespace + ":" + key
}

// Get reads a value, returning (nil, nil) when the key does not exist.
func (r *RedisKV) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKey(namespace, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s from Redis: %w", namespace, key, err)
	}
	return data, nil
}

func (r *RedisKV) Set(ctx context.Context, namespace, key string, value []byte) error {
	if err := r.client.Set(ctx, redisKey(namespace, key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s/%s to Redis: %w", namespace, key, err)
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, namespace, key string) error {
	if err := r.client.Del(ctx, redisKey(namespace, key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s/%s from Redis: %w", namespace, key, err)
	}
	return nil
}
