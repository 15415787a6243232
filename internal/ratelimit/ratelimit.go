// Package ratelimit caps how many bets a user may place per window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter decides whether a user may perform action now.
type Limiter interface {
	Allow(ctx context.Context, userID int64, action string) (bool, error)
}

// RedisLimiter is a fixed-window counter. Each attempt increments the key and,
// in the same script, gives it the window as TTL if it has none, so a key can
// never outlive its window.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

// Options for the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a Redis client and checks it answers.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

var incrWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return n
`)

// NewRedisLimiter allows limit attempts per user and action in each window.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, limit: limit, window: window}
}

func (l *RedisLimiter) key(userID int64, action string) string {
	return fmt.Sprintf("ratelimit:%d:%s", userID, action)
}

func (l *RedisLimiter) Allow(ctx context.Context, userID int64, action string) (bool, error) {
	key := l.key(userID, action)

	count, err := incrWindow.Run(ctx, l.client, []string{key}, l.window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("check rate limit: %w", err)
	}
	return count <= int64(l.limit), nil
}
