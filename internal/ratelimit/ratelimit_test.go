package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestRedisLimiter(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := Connect(ctx, Options{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	l := NewRedisLimiter(client, 3, time.Minute)
	userID := time.Now().UnixNano()
	defer client.Del(ctx, l.key(userID, "play"))

	for i := 1; i <= 3; i++ {
		ok, err := l.Allow(ctx, userID, "play")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("attempt %d rejected, want allowed", i)
		}
	}
	ok, err := l.Allow(ctx, userID, "play")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("fourth attempt allowed, want rejected")
	}

	ttl, err := client.TTL(ctx, l.key(userID, "play")).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl = %s, want within the window", ttl)
	}
}

func TestRedisLimiterRepairsMissingTTL(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()

	client, err := Connect(ctx, Options{Addr: addr})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	l := NewRedisLimiter(client, 3, time.Minute)
	userID := time.Now().UnixNano()
	key := l.key(userID, "play")
	defer client.Del(ctx, key)

	// A counter past the limit with no expiry, as left by a lost EXPIRE.
	if err := client.Set(ctx, key, 50, 0).Err(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ok, err := l.Allow(ctx, userID, "play")
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if ok {
		t.Fatal("attempt over the limit allowed")
	}
	ttl, err := client.TTL(ctx, key).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Fatalf("ttl = %s, want the window restored", ttl)
	}
}

func TestConnectFailsFast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := Connect(ctx, Options{Addr: "127.0.0.1:1"}); err == nil {
		t.Fatal("expected connection error")
	}
}
