package service

import (
	"context"
	"fmt"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/redis/go-redis/v9"
)

// TransitionGuard de-duplicates rapid repeat submissions of the same
// transition (e.g. a double-click). The core provides no compare-and-swap
// against the backing store, so this is the boundary where repeats are
// absorbed.
type TransitionGuard interface {
	// Acquire reports whether this (lead, target stage) transition may
	// proceed. A false return means an identical submission is still in
	// flight.
	Acquire(ctx context.Context, ref domain.LeadReference, targetStage int) (bool, error)
}

// RedisGuard implements TransitionGuard with SET NX and a short TTL.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, ref domain.LeadReference, targetStage int) (bool, error) {
	key := fmt.Sprintf("transition_guard:%s:%d", ref.String(), targetStage)
	return g.client.SetNX(ctx, key, "1", g.ttl).Result()
}

// NoopGuard admits everything. Used when Redis is not configured.
type NoopGuard struct{}

func (NoopGuard) Acquire(context.Context, domain.LeadReference, int) (bool, error) {
	return true, nil
}

var (
	_ TransitionGuard = (*RedisGuard)(nil)
	_ TransitionGuard = NoopGuard{}
)
