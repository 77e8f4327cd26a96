package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mateovidal/tradewind-backend/pkg/redis"
)

// All dedup keys live under one namespace. Stripe event ids are globally
// unique, so a single scope is enough.
const dedupScope = "stripe-events"

// Stripe retries failed deliveries for up to three days.
const defaultDedupTTL = 72 * time.Hour

// EventDedup records which event ids have been handed to the webhook
// handler so provider redeliveries can be dropped at the door.
type EventDedup struct {
	store redis.IdempotencyStore
	ttl   time.Duration
}

// NewEventDedup builds a dedup over the given store. A non-positive ttl
// falls back to the default retry horizon.
func NewEventDedup(store redis.IdempotencyStore, ttl time.Duration) (*EventDedup, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &EventDedup{store: store, ttl: ttl}, nil
}

// Seen marks the event id and reports whether it had already been recorded.
func (d *EventDedup) Seen(ctx context.Context, eventID string) (bool, error) {
	if eventID == "" {
		return false, errors.New("event id is required")
	}
	fresh, err := d.store.SetNX(ctx, d.store.IdempotencyKey(dedupScope, eventID), "1", d.ttl)
	if err != nil {
		return false, fmt.Errorf("mark event id: %w", err)
	}
	return !fresh, nil
}

// Forget drops the record for an event id so the provider's next retry is
// processed again. Called when the handler fails after the mark.
func (d *EventDedup) Forget(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("event id is required")
	}
	return d.store.Del(ctx, d.store.IdempotencyKey(dedupScope, eventID))
}
