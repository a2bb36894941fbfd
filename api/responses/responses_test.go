package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	pkgerrors "github.com/coursebay/coursebay-backend/pkg/errors"
)

func TestWriteSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]int{"order_id": 5})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	var envelope struct {
		Data map[string]int `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data["order_id"] != 5 {
		t.Fatalf("unexpected payload: %+v", envelope)
	}
}

func TestWriteErrorMapsCodeToStatus(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", pkgerrors.New(pkgerrors.CodeValidation, "bad input"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"not found", pkgerrors.New(pkgerrors.CodeNotFound, "order not found"), http.StatusNotFound, "NOT_FOUND"},
		{"insufficient stock", pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock"), http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"multi seller", pkgerrors.New(pkgerrors.CodeMultiSeller, "multiple sellers"), http.StatusUnprocessableEntity, "MULTI_SELLER_UNSUPPORTED"},
		{"untyped", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), nil, rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}

			var envelope struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if envelope.Error.Code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, envelope.Error.Code)
			}
		})
	}
}

func TestWriteErrorHidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, pkgerrors.New(pkgerrors.CodeInternal, "connection string leaked"))

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Error.Message != "internal server error" {
		t.Fatalf("internal message must not leak, got %q", envelope.Error.Message)
	}
}

func TestWriteErrorIncludesAllowedDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock").
		WithDetails(map[string]any{"product_id": 3, "requested": 5, "available": 1})
	WriteError(context.Background(), nil, rec, err)

	var envelope struct {
		Error struct {
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if decodeErr := json.NewDecoder(rec.Body).Decode(&envelope); decodeErr != nil {
		t.Fatalf("decode body: %v", decodeErr)
	}
	if envelope.Error.Details["requested"] != float64(5) {
		t.Fatalf("expected requested detail, got %#v", envelope.Error.Details)
	}
}
