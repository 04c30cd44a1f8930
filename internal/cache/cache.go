package cache

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis connects to the Redis instance used as a read-through cache
// for outbound nutrition API lookups. The cache is an optimization, not a
// dependency: callers must treat a nil client (or a failed command) as a
// cache miss and go straight to the API.
func OpenRedis() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("WARNING: REDIS_ADDR not set, nutrition cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Redis unreachable (%v), nutrition cache disabled", err)
		return nil
	}

	log.Println("Redis cache connection established successfully")
	return client
}
