package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/i474232898/weather-mirror/internal/weather"
)

// DefaultRedisKey prefixes the two keys that make up the snapshot slot.
const DefaultRedisKey = "weather-mirror:snapshot"

// RedisStore keeps the snapshot body and its capture time under two keys
// written in one MULTI/EXEC, so readers never see a body with another
// snapshot's time.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) bodyKey() string { return s.key + ":body" }
func (s *RedisStore) timeKey() string { return s.key + ":captured_at" }

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Put(ctx context.Context, snap weather.RawSnapshot) error {
	if snap.Empty() {
		return ErrEmptySnapshot
	}
	at := snap.CapturedAt
	if at.IsZero() {
		at = time.Now()
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.bodyKey(), snap.Body, 0)
		pipe.Set(ctx, s.timeKey(), at.Format(time.RFC3339Nano), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put snapshot: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context) (weather.RawSnapshot, error) {
	vals, err := s.client.MGet(ctx, s.bodyKey(), s.timeKey()).Result()
	if errors.Is(err, redis.Nil) {
		return weather.RawSnapshot{}, fmt.Errorf("redis: %w", weather.ErrCacheMiss)
	}
	if err != nil {
		return weather.RawSnapshot{}, fmt.Errorf("redis get snapshot: %w", err)
	}

	body, okBody := vals[0].(string)
	stamp, okTime := vals[1].(string)
	if !okBody || !okTime || body == "" {
		return weather.RawSnapshot{}, fmt.Errorf("redis: %w", weather.ErrCacheMiss)
	}

	at, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return weather.RawSnapshot{}, fmt.Errorf("redis capture time %q: %w", stamp, weather.ErrCacheMiss)
	}

	snap := weather.NewRawSnapshot([]byte(body), at.Local())
	if snap.Empty() {
		return weather.RawSnapshot{}, fmt.Errorf("redis: %w", weather.ErrCacheMiss)
	}
	return snap, nil
}
