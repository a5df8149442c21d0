package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// CounterStore counts requests per caller within a fixed window. The
// window opens on the caller's first request and expires after the
// window duration.
type CounterStore interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisCounterStore keeps counters in Redis so the limit holds across
// serving instances.
type RedisCounterStore struct {
	rdb *redis.Client
}

func NewRedisCounterStore(rdb *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{rdb: rdb}
}

func (s *RedisCounterStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		if err := s.rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}

	return count, nil
}

// MemoryCounterStore is the fallback when no Redis is configured;
// limits then only hold per process.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]*windowCounter
}

type windowCounter struct {
	count   int64
	resetAt time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counters: make(map[string]*windowCounter),
	}
}

func (s *MemoryCounterStore) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	wc, ok := s.counters[key]
	if !ok || now.After(wc.resetAt) {
		wc = &windowCounter{resetAt: now.Add(window)}
		s.counters[key] = wc
	}

	wc.count++
	return wc.count, nil
}

// RateLimitMiddleware rejects callers exceeding limit requests per
// window. The caller identity is the authenticated user id when
// present, otherwise the client IP.
func RateLimitMiddleware(store CounterStore, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identifier, _ := c.Get(UserIDContextKey).(string)
			if identifier == "" {
				identifier = c.RealIP()
			}

			key := fmt.Sprintf("ratelimit:%s", identifier)

			// Fails open on store errors, loudly: a Redis outage must
			// not block payments, but the lost limit has to show up in
			// the logs.
			count, err := store.Incr(c.Request().Context(), key, window)
			if err != nil {
				log.Printf("rate limiter degraded, counter store error: %v", err)
				return next(c)
			}

			if count > int64(limit) {
				return echo.NewHTTPError(http.StatusTooManyRequests,
					"rate limit exceeded, try again later")
			}

			return next(c)
		}
	}
}
