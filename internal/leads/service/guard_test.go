package service

import (
	"context"
	"testing"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func setupGuard(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisGuard) {
	t.Helper()

	mr := miniredis.NewMiniRedis()
	if err := mr.Start(); err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, NewRedisGuard(client, ttl)
}

func TestRedisGuardBlocksRepeatWithinTTL(t *testing.T) {
	_, guard := setupGuard(t, 2*time.Second)
	ref, _ := domain.ParseLeadReference("legacy_42")

	allowed, err := guard.Acquire(context.Background(), ref, 24)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}
	if !allowed {
		t.Fatal("first acquire should be allowed")
	}

	allowed, err = guard.Acquire(context.Background(), ref, 24)
	if err != nil {
		t.Fatalf("second acquire failed: %v", err)
	}
	if allowed {
		t.Error("identical transition within the TTL should be blocked")
	}
}

func TestRedisGuardAllowsAfterTTL(t *testing.T) {
	mr, guard := setupGuard(t, 2*time.Second)
	ref, _ := domain.ParseLeadReference("legacy_42")

	if allowed, _ := guard.Acquire(context.Background(), ref, 24); !allowed {
		t.Fatal("first acquire should be allowed")
	}

	mr.FastForward(3 * time.Second)

	allowed, err := guard.Acquire(context.Background(), ref, 24)
	if err != nil {
		t.Fatalf("acquire after TTL failed: %v", err)
	}
	if !allowed {
		t.Error("transition should be allowed again once the TTL expires")
	}
}

func TestRedisGuardKeysAreScopedPerLeadAndStage(t *testing.T) {
	_, guard := setupGuard(t, 2*time.Second)
	refA, _ := domain.ParseLeadReference("legacy_42")
	refB, _ := domain.ParseLeadReference("legacy_43")

	if allowed, _ := guard.Acquire(context.Background(), refA, 24); !allowed {
		t.Fatal("first acquire should be allowed")
	}
	if allowed, _ := guard.Acquire(context.Background(), refB, 24); !allowed {
		t.Error("a different lead must not be blocked")
	}
	if allowed, _ := guard.Acquire(context.Background(), refA, 30); !allowed {
		t.Error("a different target stage must not be blocked")
	}
}

func TestNoopGuardAlwaysAllows(t *testing.T) {
	ref, _ := domain.ParseLeadReference("legacy_42")
	for i := 0; i < 3; i++ {
		allowed, err := NoopGuard{}.Acquire(context.Background(), ref, 24)
		if err != nil || !allowed {
			t.Fatalf("noop guard must always allow: allowed=%v err=%v", allowed, err)
		}
	}
}
