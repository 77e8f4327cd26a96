package stripewebhook

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v84"

	"github.com/mateovidal/tradewind-backend/internal/payments"
)

type stubReconciler struct {
	calls   []string
	outcome payments.ReconcileOutcome
	err     error
}

func (s *stubReconciler) Reconcile(_ context.Context, sessionID string) (payments.ReconcileOutcome, error) {
	s.calls = append(s.calls, sessionID)
	if s.err != nil {
		return "", s.err
	}
	return s.outcome, nil
}

func checkoutEvent(t *testing.T, eventType stripe.EventType, session *stripe.CheckoutSession) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(session)
	if err != nil {
		t.Fatalf("marshal session: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_test",
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestService_HandleCheckoutSessionCompleted(t *testing.T) {
	reconciler := &stubReconciler{outcome: payments.OutcomePaidApplied}
	service, err := NewService(ServiceParams{Payments: reconciler})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := checkoutEvent(t, stripe.EventTypeCheckoutSessionCompleted, &stripe.CheckoutSession{
		ID:            "cs_test_done",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(reconciler.calls) != 1 || reconciler.calls[0] != "cs_test_done" {
		t.Fatalf("expected one reconcile for cs_test_done, got %v", reconciler.calls)
	}
}

func TestService_HandleCompletedButUnpaidSkipsReconcile(t *testing.T) {
	reconciler := &stubReconciler{}
	service, err := NewService(ServiceParams{Payments: reconciler})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := checkoutEvent(t, stripe.EventTypeCheckoutSessionCompleted, &stripe.CheckoutSession{
		ID:            "cs_test_delayed",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid,
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(reconciler.calls) != 0 {
		t.Fatalf("expected no reconcile, got %v", reconciler.calls)
	}
}

func TestService_HandleAsyncPaymentSucceeded(t *testing.T) {
	reconciler := &stubReconciler{outcome: payments.OutcomeAlreadyPaid}
	service, err := NewService(ServiceParams{Payments: reconciler})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := checkoutEvent(t, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded, &stripe.CheckoutSession{
		ID: "cs_test_async",
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(reconciler.calls) != 1 || reconciler.calls[0] != "cs_test_async" {
		t.Fatalf("expected one reconcile for cs_test_async, got %v", reconciler.calls)
	}
}

func TestService_IgnoresUnrelatedEvents(t *testing.T) {
	reconciler := &stubReconciler{}
	service, err := NewService(ServiceParams{Payments: reconciler})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := &stripe.Event{
		Type: stripe.EventTypePaymentIntentCreated,
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(reconciler.calls) != 0 {
		t.Fatalf("expected no reconcile, got %v", reconciler.calls)
	}
}

func TestService_PropagatesReconcileError(t *testing.T) {
	reconciler := &stubReconciler{err: errors.New("db down")}
	service, err := NewService(ServiceParams{Payments: reconciler})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := checkoutEvent(t, stripe.EventTypeCheckoutSessionCompleted, &stripe.CheckoutSession{
		ID:            "cs_test_fail",
		PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid,
	})
	if err := service.HandleEvent(context.Background(), event); err == nil {
		t.Fatalf("expected reconcile error to propagate")
	}
}

type memoryIdempotencyStore struct {
	keys map[string]struct{}
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{keys: map[string]struct{}{}}
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, _ any, _ time.Duration) (bool, error) {
	if _, ok := m.keys[key]; ok {
		return false, nil
	}
	m.keys[key] = struct{}{}
	return true, nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "tw:idempotency:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(m.keys, key)
	}
	return nil
}

func TestEventDedup(t *testing.T) {
	dedup, err := NewEventDedup(newMemoryIdempotencyStore(), time.Hour)
	if err != nil {
		t.Fatalf("setup dedup: %v", err)
	}
	ctx := context.Background()

	seen, err := dedup.Seen(ctx, "evt_1")
	if err != nil {
		t.Fatalf("seen: %v", err)
	}
	if seen {
		t.Fatalf("first delivery should be fresh")
	}

	seen, err = dedup.Seen(ctx, "evt_1")
	if err != nil {
		t.Fatalf("seen repeat: %v", err)
	}
	if !seen {
		t.Fatalf("second delivery should be recorded")
	}

	if err := dedup.Forget(ctx, "evt_1"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	seen, err = dedup.Seen(ctx, "evt_1")
	if err != nil {
		t.Fatalf("seen after forget: %v", err)
	}
	if seen {
		t.Fatalf("forget should allow reprocessing")
	}
}

func TestEventDedupDefaultTTL(t *testing.T) {
	dedup, err := NewEventDedup(newMemoryIdempotencyStore(), 0)
	if err != nil {
		t.Fatalf("setup dedup: %v", err)
	}
	if dedup.ttl != defaultDedupTTL {
		t.Fatalf("expected default ttl, got %s", dedup.ttl)
	}
}
