package session

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings for the Redis seed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// RedisStore keeps seeds in Redis so every API replica sees the same order
// for a session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return NewRedisStoreFromClient(rdb, cfg.TTL, cfg.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client, ttl time.Duration, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "chapterdesk"
	}
	return &RedisStore{client: client, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + ":session:" + sessionID + ":" + SeedKey
}

// GetOrCreate uses SETNX so concurrent first renders agree on one seed.
func (s *RedisStore) GetOrCreate(ctx context.Context, sessionID string, candidate int64) (int64, error) {
	key := s.key(sessionID)
	ok, err := s.client.SetNX(ctx, key, candidate, s.ttl).Result()
	if err != nil {
		return 0, fmt.Errorf("setnx %s: %w", key, err)
	}
	if ok {
		return candidate, nil
	}

	raw, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		// Expired between SETNX and GET; the candidate is as good as any.
		if err := s.client.Set(ctx, key, candidate, s.ttl).Err(); err != nil {
			return 0, fmt.Errorf("set %s: %w", key, err)
		}
		return candidate, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	seed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt seed at %s: %w", key, err)
	}
	return seed, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
