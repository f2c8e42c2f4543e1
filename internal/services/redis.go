package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// EventsChannel carries a JSON mirror of every domain event for
// cross-instance fanout.
const EventsChannel = "greencommute:events"

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// CacheJSON stores a JSON-encoded value under key with a TTL. No-op
// when Redis is not configured.
func CacheJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if RedisClient == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, key, data, ttl).Err()
}

// GetCachedJSON loads a cached value into dest. Returns false on a
// miss or when Redis is not configured.
func GetCachedJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if RedisClient == nil {
		return false, nil
	}
	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, err
	}
	return true, nil
}

// InvalidateCache removes cached keys, e.g. after a mutation that
// changes aggregate stats.
func InvalidateCache(ctx context.Context, keys ...string) error {
	if RedisClient == nil || len(keys) == 0 {
		return nil
	}
	return RedisClient.Del(ctx, keys...).Err()
}

// PublishEvent publishes a domain event to the events channel. No-op
// when Redis is not configured.
func PublishEvent(ctx context.Context, eventKind string, payload interface{}) error {
	if RedisClient == nil {
		return nil
	}

	envelope := map[string]interface{}{
		"type":      eventKind,
		"data":      payload,
		"timestamp": time.Now().Unix(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, EventsChannel, data).Err()
}
