// Package cache is an optional redis-backed cache for status-bucket
// counts. A missing redis instance degrades to pass-through: every
// helper is nil-safe.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init connects to redis. On failure the cache stays disabled and the
// service runs without it.
func Init(addr string) {
	client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection warning: %v (continuing without cache)", err)
		client = nil
	} else {
		log.Println("Redis connected successfully")
	}
}

// GetJSON attempts to get the key and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) {
	if client == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, b, ttl).Err(); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}

// Invalidate drops every key matching the pattern. Status-count keys
// are invalidated whenever a decision lands.
func Invalidate(ctx context.Context, pattern string) {
	if client == nil {
		return
	}
	keys, err := client.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache: invalidate %s: %v", pattern, err)
	}
}
