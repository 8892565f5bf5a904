package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisBackend stores sessions as plain keys with a native Redis TTL.
type RedisBackend struct {
	client *goredis.Client
}

func NewRedisBackend(client *goredis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

func (r *RedisBackend) Get(ctx context.Context, key string) (*Entry, error) {
	var getCmd *goredis.StringCmd
	var ttlCmd *goredis.DurationCmd

	_, err := r.client.Pipelined(ctx, func(p goredis.Pipeliner) error {
		getCmd = p.Get(ctx, key)
		ttlCmd = p.PTTL(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	value, err := getCmd.Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	entry := &Entry{Value: value}
	if ttl := ttlCmd.Val(); ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}
	return entry, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func (r *RedisBackend) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ok, err := r.client.Expire(ctx, key, ttl).Result()
	if err != nil {
		return fmt.Errorf("redis expire session: %w", err)
	}
	if !ok {
		return ErrKeyNotFound
	}
	return nil
}
