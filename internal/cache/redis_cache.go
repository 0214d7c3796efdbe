package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Redis-backed Cache. Every backend failure is logged and
// swallowed: a broken cache serves misses, it never breaks a request.
type RedisCache struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisCache creates a new RedisCache against the given address.
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{
		client:  redis.NewClient(&redis.Options{Addr: addr}),
		timeout: 2 * time.Second,
	}
}

// Get retrieves and unmarshals the value for key. A backend error or a
// corrupt entry is treated as a miss.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Cache get for key %s failed, degrading to miss: %v", key, err)
		}
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("Cache entry for key %s is corrupt, treating as miss: %v", key, err)
		return false, nil
	}
	return true, nil
}

// Set marshals and stores the value under key with the given TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("Cache set for key %s failed to marshal: %v", key, err)
		return nil
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("Cache set for key %s failed: %v", key, err)
	}
	return nil
}

// Remove deletes the given keys.
func (c *RedisCache) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Cache remove for keys %v failed: %v", keys, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
