package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	appCheckout "github.com/shopfront/payments/internal/application/checkout"
	"github.com/shopfront/payments/internal/payment"
	"github.com/shopfront/payments/internal/testutil"
)

func newTestController(t *testing.T, repo *testutil.MockPaymentRecordRepository, processor *testutil.MockPaymentProcessor) *PaymentController {
	t.Helper()
	t.Setenv("STRIPE_SECRET_KEY", "")

	createUC := appCheckout.NewCreatePaymentUseCase(repo, processor, testutil.NewMockTransactionManager(), nil, zerolog.Nop())
	refundUC := appCheckout.NewRefundPaymentUseCase(repo, processor, nil, zerolog.Nop())

	factory := payment.NewFactory(payment.StripeConfig{}, nil, zerolog.Nop())
	svc := payment.NewService(factory, zerolog.Nop())

	return NewPaymentController(createUC, refundUC, repo, svc)
}

func TestPaymentController_CreatePayment(t *testing.T) {
	repo := testutil.NewMockPaymentRecordRepository()
	processor := testutil.NewMockPaymentProcessor()
	handler := newTestController(t, repo, processor)

	reqBody := CreatePaymentRequest{
		OrderID:    "order-1",
		CustomerID: "customer-1",
		Method:     "stripe",
		Amount:     50.0,
		Currency:   "USD",
	}
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreatePayment(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}

	var resp PaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "pending" {
		t.Errorf("expected status pending, got %s", resp.Status)
	}
	if resp.ClientSecret != "pi_mock_secret" {
		t.Errorf("expected client secret in response, got %q", resp.ClientSecret)
	}
}

func TestPaymentController_CreatePayment_ValidationError(t *testing.T) {
	repo := testutil.NewMockPaymentRecordRepository()
	processor := testutil.NewMockPaymentProcessor()
	handler := newTestController(t, repo, processor)

	body, _ := json.Marshal(CreatePaymentRequest{
		OrderID:  "order-1",
		Amount:   50.0,
		Currency: "USD",
		// Method missing
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreatePayment(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d: %s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestPaymentController_CreatePayment_BackendRejection(t *testing.T) {
	repo := testutil.NewMockPaymentRecordRepository()
	processor := testutil.NewMockPaymentProcessor()
	processor.CreatePaymentFunc = func(ctx context.Context, method string, amount float64, metadata map[string]any) *payment.PaymentResult {
		return &payment.PaymentResult{Success: false, Status: payment.StatusFailed, Error: "card declined"}
	}
	handler := newTestController(t, repo, processor)

	body, _ := json.Marshal(CreatePaymentRequest{
		OrderID:  "order-2",
		Method:   "stripe",
		Amount:   25.0,
		Currency: "USD",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.CreatePayment(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	}

	var resp PaymentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "failed" {
		t.Errorf("expected status failed, got %s", resp.Status)
	}
}

func TestPaymentController_GetPayment_NotFound(t *testing.T) {
	repo := testutil.NewMockPaymentRecordRepository()
	processor := testutil.NewMockPaymentProcessor()
	handler := newTestController(t, repo, processor)

	r := chi.NewRouter()
	r.Get("/api/v1/payments/{id}", handler.GetPayment)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/00000000-0000-0000-0000-000000000001", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d: %s", http.StatusNotFound, rec.Code, rec.Body.String())
	}
}

func TestPaymentController_GetPayment_InvalidID(t *testing.T) {
	repo := testutil.NewMockPaymentRecordRepository()
	processor := testutil.NewMockPaymentProcessor()
	handler := newTestController(t, repo, processor)

	r := chi.NewRouter()
	r.Get("/api/v1/payments/{id}", handler.GetPayment)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestPaymentController_RefundPayment(t *testing.T) {
	repo := testutil.NewMockPaymentRecordRepository()
	processor := testutil.NewMockPaymentProcessor()
	handler := newTestController(t, repo, processor)

	stored := testutil.NewCompletedRecord("stripe", "pi_123", 25_00)
	repo.Create(context.Background(), stored)

	r := chi.NewRouter()
	r.Post("/api/v1/payments/{id}/refund", handler.RefundPayment)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+stored.ID.String()+"/refund", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}

	var resp RefundResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.RefundID != "re_mock" {
		t.Errorf("expected refund id re_mock, got %s", resp.RefundID)
	}
	if resp.Payment.Status != "refunded" {
		t.Errorf("expected payment status refunded, got %s", resp.Payment.Status)
	}
}

func TestPaymentController_RefundPayment_NotRefundable(t *testing.T) {
	repo := testutil.NewMockPaymentRecordRepository()
	processor := testutil.NewMockPaymentProcessor()
	handler := newTestController(t, repo, processor)

	stored := testutil.NewTestRecord("stripe", 25_00) // still pending
	repo.Create(context.Background(), stored)

	r := chi.NewRouter()
	r.Post("/api/v1/payments/{id}/refund", handler.RefundPayment)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/"+stored.ID.String()+"/refund", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d: %s", http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	}
}

func TestPaymentController_ListMethods(t *testing.T) {
	repo := testutil.NewMockPaymentRecordRepository()
	processor := testutil.NewMockPaymentProcessor()
	handler := newTestController(t, repo, processor)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment-methods", nil)
	rec := httptest.NewRecorder()

	handler.ListMethods(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var resp MethodsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}

	// Without a Stripe key only cash is available.
	if len(resp.Methods) != 1 || resp.Methods[0] != "cash" {
		t.Errorf("expected [cash], got %v", resp.Methods)
	}
}

func TestPaymentController_GetMethod(t *testing.T) {
	repo := testutil.NewMockPaymentRecordRepository()
	processor := testutil.NewMockPaymentProcessor()
	handler := newTestController(t, repo, processor)

	r := chi.NewRouter()
	r.Get("/api/v1/payment-methods/{method}", handler.GetMethod)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment-methods/cash", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	var details payment.MethodDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &details); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if details.Name != "cash" || !details.SupportsRefund || !details.IsConfigured {
		t.Errorf("unexpected method details: %+v", details)
	}
}

func TestPaymentController_GetMethod_Unknown(t *testing.T) {
	repo := testutil.NewMockPaymentRecordRepository()
	processor := testutil.NewMockPaymentProcessor()
	handler := newTestController(t, repo, processor)

	r := chi.NewRouter()
	r.Get("/api/v1/payment-methods/{method}", handler.GetMethod)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment-methods/bitcoin", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}
