package cache

import (
	"context"
	"fmt"
	"log"

	"github.com/Death-Raider13/CAPS-TEAM/internal/pkg/env"
	"github.com/redis/go-redis/v9"
)

var (
	client    *redis.Client
	available bool
	ctx       = context.Background()
)

// SetupCache initializes the connection to the redis server
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		available = false
		log.Printf("Warning: Could not connect to cache: %v", err)
	} else {
		available = true
		log.Printf("Successfully connected to cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Available reports whether the last connection attempt succeeded and
// caching is enabled by configuration.
func Available() bool {
	if !env.GetBool("CACHE_ENABLED", true) {
		return false
	}
	GetClient()
	return available
}

// Incr bumps a counter key
func Incr(key string) error {
	return GetClient().Incr(ctx, key).Err()
}

// Counter reads a counter key. Missing keys read as zero.
func Counter(key string) (int64, error) {
	n, err := GetClient().Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
