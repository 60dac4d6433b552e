package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"habitflow/internal/config"
	"habitflow/pkg/logger"
)

var (
	client *redis.Client
	once   sync.Once
)

// Client returns the global Redis client (initialized on first use).
func Client(ctx context.Context) *redis.Client {
	once.Do(func() {
		cfg := config.Get()
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error(ctx, "Invalid REDIS_URL", "error", err, "url", cfg.RedisURL)
			return
		}
		opts.PoolSize = cfg.RedisPoolSize
		c := redis.NewClient(opts)
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Error(ctx, "Redis ping failed", "error", err)
			return
		}
		client = c
		logger.Info(ctx, "Redis client initialized", "pool_size", cfg.RedisPoolSize)
	})
	return client
}

func habitsKey(ownerID string) string {
	return "habits:" + ownerID
}

func todayKey(ownerID, date string) string {
	return "today:" + ownerID + ":" + date
}

func getRaw(ctx context.Context, key string) ([]byte, bool) {
	c := Client(ctx)
	if c == nil {
		return nil, false
	}
	b, err := c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Debug(ctx, "Redis get failed", "error", err, "key", key)
		return nil, false
	}
	return b, true
}

func setRaw(ctx context.Context, key string, b []byte) {
	c := Client(ctx)
	if c == nil {
		return
	}
	ttl := time.Duration(config.Get().CacheTTL) * time.Second
	if err := c.Set(ctx, key, b, ttl).Err(); err != nil {
		logger.Debug(ctx, "Redis set failed", "error", err, "key", key)
	}
}

// GetRawHabits reads a user's habit-list response bytes. (nil, false) on
// miss or error.
func GetRawHabits(ctx context.Context, ownerID string) ([]byte, bool) {
	return getRaw(ctx, habitsKey(ownerID))
}

// SetRawHabitsAsync writes the habit-list response off the request path.
func SetRawHabitsAsync(ownerID string, b []byte) {
	go setRaw(context.Background(), habitsKey(ownerID), b)
}

// GetRawTodayProgress reads a user's today-progress response bytes for a
// date. (nil, false) on miss or error.
func GetRawTodayProgress(ctx context.Context, ownerID, date string) ([]byte, bool) {
	return getRaw(ctx, todayKey(ownerID, date))
}

// SetRawTodayProgressAsync writes the today-progress response off the
// request path.
func SetRawTodayProgressAsync(ownerID, date string, b []byte) {
	go setRaw(context.Background(), todayKey(ownerID, date), b)
}

// InvalidateOwner drops the cached responses for a user after any change to
// their habit or log set. The date is the current day whose progress figure
// went stale.
func InvalidateOwner(ctx context.Context, ownerID, date string) {
	c := Client(ctx)
	if c == nil {
		return
	}
	if err := c.Del(ctx, habitsKey(ownerID), todayKey(ownerID, date)).Err(); err != nil {
		logger.Debug(ctx, "Redis invalidate failed", "error", err, "user_id", ownerID)
	}
}
