package controller

import (
	"time"

	"github.com/shopfront/payments/internal/domain/checkout"
	"github.com/shopfront/payments/internal/payment"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (float64 for money, string for IDs, validation tags).
// Controllers convert these to application layer requests before calling business logic.

// CreatePaymentRequest holds the input for initiating an order payment.
type CreatePaymentRequest struct {
	OrderID    string  `json:"order_id" validate:"required"`
	CustomerID string  `json:"customer_id"`
	Method     string  `json:"method" validate:"required"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Currency   string  `json:"currency" validate:"required,len=3"`
}

// --- Response DTOs ---

// PaymentResponse represents a payment record in API responses.
type PaymentResponse struct {
	ID                string     `json:"id"`
	OrderID           string     `json:"order_id"`
	CustomerID        string     `json:"customer_id,omitempty"`
	Method            string     `json:"method"`
	Amount            float64    `json:"amount"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	ProviderPaymentID *string    `json:"provider_payment_id,omitempty"`
	RefundID          *string    `json:"refund_id,omitempty"`
	LastError         *string    `json:"last_error,omitempty"`
	ClientSecret      string     `json:"client_secret,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
}

// RefundResponse represents a refund outcome in API responses.
type RefundResponse struct {
	Payment      *PaymentResponse `json:"payment"`
	RefundID     string           `json:"refund_id,omitempty"`
	RefundStatus string           `json:"refund_status"`
	Amount       float64          `json:"amount"`
	Error        string           `json:"error,omitempty"`
}

// MethodsResponse lists the currently available payment methods.
type MethodsResponse struct {
	Methods []string `json:"methods"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromRecord converts a domain payment record to API response.
func FromRecord(rec *checkout.PaymentRecord) *PaymentResponse {
	return &PaymentResponse{
		ID:                rec.ID.String(),
		OrderID:           rec.OrderID,
		CustomerID:        rec.CustomerID,
		Method:            rec.Method,
		Amount:            centsToFloat(rec.Amount.ValueCents),
		Currency:          rec.Amount.Currency,
		Status:            string(rec.Status),
		ProviderPaymentID: rec.ProviderPaymentID,
		RefundID:          rec.RefundID,
		LastError:         rec.LastError,
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         rec.UpdatedAt,
		CompletedAt:       rec.CompletedAt,
	}
}

// FromRefund converts an updated record plus the backend's refund
// result to an API response.
func FromRefund(rec *checkout.PaymentRecord, result *payment.RefundResult) *RefundResponse {
	return &RefundResponse{
		Payment:      FromRecord(rec),
		RefundID:     result.RefundID,
		RefundStatus: result.Status,
		Amount:       result.Amount,
		Error:        result.Error,
	}
}

// floatToCents converts a major-unit amount to cents using the same
// decimal half-up rounding the payment backends charge with.
func floatToCents(f float64) int64 {
	return payment.ToMinorUnits(f)
}

// centsToFloat converts cents to a float dollar amount.
func centsToFloat(cents int64) float64 {
	return float64(cents) / 100.0
}
