package paymentwebhook

import (
	"context"
	"strings"
	"testing"
	"time"
)

type stubStore struct {
	values map[string]string
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}}
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	return s.values[key], nil
}

func (s *stubStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = "1"
	return true, nil
}

func (s *stubStore) IdempotencyKey(scope, id string) string {
	return strings.Join([]string{"test", "idempotency", scope, id}, ":")
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestDeliveryGuardCheckAndMark(t *testing.T) {
	t.Parallel()

	guard, err := NewDeliveryGuard(newStubStore(), time.Hour, "payment")
	if err != nil {
		t.Fatalf("build guard: %v", err)
	}
	ctx := context.Background()

	seen, err := guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if seen {
		t.Fatal("first delivery should not be marked as seen")
	}

	seen, err = guard.CheckAndMark(ctx, "evt_1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !seen {
		t.Fatal("replayed delivery should be marked as seen")
	}
}

func TestDeliveryGuardDeleteAllowsRetry(t *testing.T) {
	t.Parallel()

	guard, err := NewDeliveryGuard(newStubStore(), time.Hour, "payment")
	if err != nil {
		t.Fatalf("build guard: %v", err)
	}
	ctx := context.Background()

	if _, err := guard.CheckAndMark(ctx, "evt_2"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := guard.Delete(ctx, "evt_2"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	seen, err := guard.CheckAndMark(ctx, "evt_2")
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if seen {
		t.Fatal("retry after delete should be processed again")
	}
}

func TestDeliveryGuardValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewDeliveryGuard(nil, time.Hour, "payment"); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewDeliveryGuard(newStubStore(), -time.Second, "payment"); err == nil {
		t.Fatal("expected error for negative ttl")
	}
	if _, err := NewDeliveryGuard(newStubStore(), time.Hour, ""); err == nil {
		t.Fatal("expected error for empty scope")
	}

	guard, err := NewDeliveryGuard(newStubStore(), time.Hour, "payment")
	if err != nil {
		t.Fatalf("build guard: %v", err)
	}
	if _, err := guard.CheckAndMark(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty event id")
	}
	if err := guard.Delete(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty event id")
	}
}
