package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cybershaala/academy-backend/pkg/redis"
)

// EventGuard is the Redis fast path in front of the database existence check.
// It only short-circuits repeat deliveries of the same payment event; the
// enrollments table's unique indexes remain the source of truth.
type EventGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

// NewEventGuard builds a Redis-backed event guard.
func NewEventGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*EventGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &EventGuard{store: store, ttl: ttl, scope: scope}, nil
}

// CheckAndMark marks the payment reference as seen. Returns true when a
// previous delivery already marked it.
func (g *EventGuard) CheckAndMark(ctx context.Context, paymentRef string) (bool, error) {
	if paymentRef == "" {
		return false, errors.New("payment reference is required")
	}
	key := g.store.IdempotencyKey(g.scope, paymentRef)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete unmarks the payment reference so a failed pipeline run can be
// retried by the gateway.
func (g *EventGuard) Delete(ctx context.Context, paymentRef string) error {
	if paymentRef == "" {
		return errors.New("payment reference is required")
	}
	key := g.store.IdempotencyKey(g.scope, paymentRef)
	return g.store.Del(ctx, key)
}
