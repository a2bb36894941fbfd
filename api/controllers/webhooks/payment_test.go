package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	paymentwebhook "github.com/coursebay/coursebay-backend/internal/webhooks/payment"
	"github.com/coursebay/coursebay-backend/pkg/enums"
	pkgerrors "github.com/coursebay/coursebay-backend/pkg/errors"
	"github.com/google/uuid"
)

func TestPaymentWebhook_SuccessAndIdempotent(t *testing.T) {
	service := &fakePaymentService{}
	guard, err := paymentwebhook.NewDeliveryGuard(newInMemoryStore(), time.Minute, "payment")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	handler := PaymentWebhook(service, guard, nil)

	payload := buildPayload(t, uuid.NewString(), "paid", "evt_1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if service.calls != 1 {
		t.Fatalf("expected service called once, got %d", service.calls)
	}

	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload)))
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200 on duplicate, got %d", rec2.Code)
	}
	if service.calls != 1 {
		t.Fatalf("duplicate delivery should not increment calls, got %d", service.calls)
	}
}

func TestPaymentWebhook_FailureAllowsRetry(t *testing.T) {
	service := &fakePaymentService{failFirst: true}
	guard, err := paymentwebhook.NewDeliveryGuard(newInMemoryStore(), time.Minute, "payment")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	handler := PaymentWebhook(service, guard, nil)

	payload := buildPayload(t, uuid.NewString(), "paid", "evt_2")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload)))
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on failure, got %d", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload)))
	if rec2.Code != http.StatusOK {
		t.Fatalf("retry after failure should process, got %d", rec2.Code)
	}
	if service.calls != 2 {
		t.Fatalf("expected 2 service calls, got %d", service.calls)
	}
}

func TestPaymentWebhook_NoEventIDSkipsGuard(t *testing.T) {
	service := &fakePaymentService{}
	guard, err := paymentwebhook.NewDeliveryGuard(newInMemoryStore(), time.Minute, "payment")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	handler := PaymentWebhook(service, guard, nil)

	payload := buildPayload(t, uuid.NewString(), "paid", "")

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", bytes.NewReader(payload)))
		if rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected 200, got %d", i+1, rec.Code)
		}
	}
	if service.calls != 2 {
		t.Fatalf("deliveries without event id should all be processed, got %d", service.calls)
	}
}

func TestPaymentWebhook_InvalidBody(t *testing.T) {
	service := &fakePaymentService{}
	handler := PaymentWebhook(service, nil, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/payment", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if service.calls != 0 {
		t.Fatal("service should not be invoked on invalid body")
	}
}

func buildPayload(t *testing.T, ref, status, eventID string) []byte {
	t.Helper()
	body := map[string]string{
		"payment_reference": ref,
		"status":            status,
	}
	if eventID != "" {
		body["event_id"] = eventID
	}
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return payload
}

type fakePaymentService struct {
	calls     int
	failFirst bool
}

func (f *fakePaymentService) Process(_ context.Context, payload paymentwebhook.Payload) (*paymentwebhook.Result, error) {
	f.calls++
	if f.failFirst && f.calls == 1 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")
	}
	return &paymentwebhook.Result{OrderID: 1, Status: enums.OrderStatusPaid}, nil
}

type inMemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{values: map[string]string{}}
}

func (s *inMemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *inMemoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.values[key]; exists {
		return false, nil
	}
	s.values[key] = "1"
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

func (s *inMemoryStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}
