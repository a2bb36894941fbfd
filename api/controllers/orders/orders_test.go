package orders

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/coursebay/coursebay-backend/api/middleware"
	internalorders "github.com/coursebay/coursebay-backend/internal/orders"
	"github.com/coursebay/coursebay-backend/pkg/enums"
	pkgerrors "github.com/coursebay/coursebay-backend/pkg/errors"
	"github.com/shopspring/decimal"
)

type fakeOrdersService struct {
	internalorders.Service

	createInput  *internalorders.CreateInput
	updateStatus *enums.OrderStatus
	updateActor  *internalorders.Actor
	refundID     int64
	sellerID     int64
	sellerPage   internalorders.ListPage
}

func (f *fakeOrdersService) Create(_ context.Context, input internalorders.CreateInput) (*internalorders.OrderDTO, error) {
	f.createInput = &input
	return &internalorders.OrderDTO{
		ID:          101,
		BuyerID:     input.BuyerID,
		SellerID:    7,
		TotalAmount: decimal.RequireFromString("10.00"),
		Status:      enums.OrderStatusPending,
	}, nil
}

func (f *fakeOrdersService) UpdateStatus(_ context.Context, orderID int64, status enums.OrderStatus, actor internalorders.Actor) (*internalorders.OrderDTO, error) {
	f.updateStatus = &status
	f.updateActor = &actor
	return &internalorders.OrderDTO{ID: orderID, Status: status}, nil
}

func (f *fakeOrdersService) Refund(_ context.Context, orderID int64, actor internalorders.Actor) (*internalorders.OrderDTO, error) {
	f.refundID = orderID
	return &internalorders.OrderDTO{ID: orderID, Status: enums.OrderStatusRefunded}, nil
}

func (f *fakeOrdersService) ListBySeller(_ context.Context, sellerID int64, page internalorders.ListPage) ([]internalorders.OrderDTO, error) {
	f.sellerID = sellerID
	f.sellerPage = page
	return []internalorders.OrderDTO{}, nil
}

func TestCreateController(t *testing.T) {
	svc := &fakeOrdersService{}
	handler := Create(svc, nil)

	body := `{"items":[{"product_id":5,"quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), 42))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.createInput == nil {
		t.Fatal("service was not invoked")
	}
	if svc.createInput.BuyerID != 42 {
		t.Fatalf("expected buyer from context, got %d", svc.createInput.BuyerID)
	}
	if len(svc.createInput.Items) != 1 || svc.createInput.Items[0].ProductID != 5 || svc.createInput.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", svc.createInput.Items)
	}
}

func TestCreateControllerRejectsEmptyItems(t *testing.T) {
	svc := &fakeOrdersService{}
	handler := Create(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"items":[]}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), 42))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if svc.createInput != nil {
		t.Fatal("service should not be invoked on invalid body")
	}
}

func TestUpdateStatusController(t *testing.T) {
	svc := &fakeOrdersService{}
	handler := UpdateStatus(svc, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/orders/9/status", strings.NewReader(`{"status":"shipped"}`))
	ctx := middleware.WithUserID(req.Context(), 7)
	ctx = middleware.WithRole(ctx, enums.UserRoleSeller)
	req = req.WithContext(withURLParam(ctx, "orderID", "9"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.updateStatus == nil || *svc.updateStatus != enums.OrderStatus("shipped") {
		t.Fatalf("unexpected status forwarded: %v", svc.updateStatus)
	}
	if svc.updateActor == nil || svc.updateActor.UserID != 7 || svc.updateActor.Role != enums.UserRoleSeller {
		t.Fatalf("unexpected actor forwarded: %+v", svc.updateActor)
	}
}

func TestRefundControllerInvalidID(t *testing.T) {
	svc := &fakeOrdersService{}
	handler := Refund(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/abc/refund", nil)
	req = req.WithContext(withURLParam(req.Context(), "orderID", "abc"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeValidation) {
		t.Fatalf("expected validation code, got %q", envelope.Error.Code)
	}
}

func TestSellerListRequiresSellerRole(t *testing.T) {
	svc := &fakeOrdersService{}
	handler := SellerList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/orders", nil)
	ctx := middleware.WithUserID(req.Context(), 3)
	ctx = middleware.WithRole(ctx, enums.UserRoleBuyer)
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for buyer, got %d", rec.Code)
	}
}

func TestSellerListForwardsPage(t *testing.T) {
	svc := &fakeOrdersService{}
	handler := SellerList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/seller/orders?offset=40&limit=10", nil)
	ctx := middleware.WithUserID(req.Context(), 3)
	ctx = middleware.WithRole(ctx, enums.UserRoleSeller)
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.sellerID != 3 {
		t.Fatalf("expected seller id from context, got %d", svc.sellerID)
	}
	if svc.sellerPage.Offset != 40 || svc.sellerPage.Limit != 10 {
		t.Fatalf("unexpected page forwarded: %+v", svc.sellerPage)
	}
}

func withURLParam(ctx context.Context, key, value string) context.Context {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, rctx)
}
