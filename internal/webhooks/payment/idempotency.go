package paymentwebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coursebay/coursebay-backend/pkg/redis"
)

// DeliveryGuard deduplicates webhook deliveries that carry an event id.
// The mark is removed when processing fails so the provider's retry is
// handled instead of swallowed.
type DeliveryGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewDeliveryGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*DeliveryGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &DeliveryGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark records the event id and reports whether it was seen before.
func (g *DeliveryGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete clears the mark for an event whose processing failed.
func (g *DeliveryGuard) Delete(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	key := g.store.IdempotencyKey(g.scope, eventID)
	return g.store.Del(ctx, key)
}
