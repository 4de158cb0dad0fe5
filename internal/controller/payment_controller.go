package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appCheckout "github.com/shopfront/payments/internal/application/checkout"
	"github.com/shopfront/payments/internal/domain/checkout"
	"github.com/shopfront/payments/internal/payment"
)

// PaymentController handles payment-related HTTP requests.
type PaymentController struct {
	createUC       *appCheckout.CreatePaymentUseCase
	refundUC       *appCheckout.RefundPaymentUseCase
	recordRepo     checkout.Repository
	paymentService *payment.Service
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(
	createUC *appCheckout.CreatePaymentUseCase,
	refundUC *appCheckout.RefundPaymentUseCase,
	recordRepo checkout.Repository,
	paymentService *payment.Service,
) *PaymentController {
	return &PaymentController{
		createUC:       createUC,
		refundUC:       refundUC,
		recordRepo:     recordRepo,
		paymentService: paymentService,
	}
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentController) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.createUC.Execute(r.Context(), appCheckout.CreatePaymentRequest{
		OrderID:     req.OrderID,
		CustomerID:  req.CustomerID,
		Method:      req.Method,
		AmountCents: floatToCents(req.Amount),
		Currency:    req.Currency,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	body := FromRecord(resp.Record)
	if !resp.Accepted {
		writeJSON(w, http.StatusUnprocessableEntity, body)
		return
	}

	body.ClientSecret = resp.ClientSecret
	writeJSON(w, http.StatusCreated, body)
}

// GetPayment handles GET /api/v1/payments/{id}
func (h *PaymentController) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payment id", Code: "invalid_id"})
		return
	}

	rec, err := h.recordRepo.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromRecord(rec))
}

// GetOrderPayment handles GET /api/v1/orders/{orderID}/payment
func (h *PaymentController) GetOrderPayment(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid order id", Code: "invalid_id"})
		return
	}

	rec, err := h.recordRepo.GetByOrderID(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromRecord(rec))
}

// RefundPayment handles POST /api/v1/payments/{id}/refund
func (h *PaymentController) RefundPayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payment id", Code: "invalid_id"})
		return
	}

	resp, err := h.refundUC.Execute(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if !resp.Result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, FromRefund(resp.Record, resp.Result))
}

// ListMethods handles GET /api/v1/payment-methods
func (h *PaymentController) ListMethods(w http.ResponseWriter, r *http.Request) {
	methods := h.paymentService.AvailableMethods()
	if methods == nil {
		methods = []string{}
	}
	writeJSON(w, http.StatusOK, MethodsResponse{Methods: methods})
}

// GetMethod handles GET /api/v1/payment-methods/{method}
func (h *PaymentController) GetMethod(w http.ResponseWriter, r *http.Request) {
	method := chi.URLParam(r, "method")

	details, ok := h.paymentService.MethodDetails(method)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "unknown or unavailable payment method", Code: "not_found"})
		return
	}

	writeJSON(w, http.StatusOK, details)
}
