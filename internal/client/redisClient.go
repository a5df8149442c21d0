package client

import (
	"context"
	"djassa-payments/internal/config"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// InitRedisClient connects to Redis for shared rate-limit counters.
// Returns nil when no address is configured; callers fall back to
// process-local state.
func InitRedisClient(redisCfg *config.Redis) *redis.Client {
	if redisCfg.Addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis:", err)
	}

	return rdb
}
