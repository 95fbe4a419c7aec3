package common

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marathon-readiness/toolkit/internal/logging"
)

// RedisCacheService implements CacheInterface using Redis, for deployments
// where the local state cache must survive restarts or be shared across
// replicas. Values are stored as strings; callers serialize.
type RedisCacheService struct {
	client *redis.Client
}

var _ CacheInterface = (*RedisCacheService)(nil)

// NewRedisCacheService creates a Redis-backed cache service and verifies the
// connection.
func NewRedisCacheService(addr, password string) (*RedisCacheService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCacheService{client: client}, nil
}

func (r *RedisCacheService) Set(key string, value interface{}, duration time.Duration) {
	if err := r.client.Set(context.Background(), key, value, duration).Err(); err != nil {
		logging.Warn("redis cache set failed", "key", key, "error", err.Error())
	}
}

func (r *RedisCacheService) Get(key string) (interface{}, bool) {
	data, err := r.client.Get(context.Background(), key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logging.Warn("redis cache get failed", "key", key, "error", err.Error())
		return nil, false
	}
	return data, true
}

func (r *RedisCacheService) Delete(key string) {
	if err := r.client.Del(context.Background(), key).Err(); err != nil {
		logging.Warn("redis cache delete failed", "key", key, "error", err.Error())
	}
}

func (r *RedisCacheService) Close() error {
	return r.client.Close()
}
