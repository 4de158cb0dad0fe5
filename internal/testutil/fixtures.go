package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopfront/payments/internal/domain/checkout"
)

func NewTestRecord(method string, amountCents int64) *checkout.PaymentRecord {
	now := time.Now()
	return &checkout.PaymentRecord{
		ID:         uuid.New(),
		OrderID:    "order-" + uuid.New().String()[:8],
		CustomerID: "customer-1",
		Method:     method,
		Amount:     checkout.Amount{ValueCents: amountCents, Currency: "USD"},
		Status:     checkout.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewPendingProviderRecord returns a pending record that already has a
// provider payment id, i.e. one the reconciler would pick up.
func NewPendingProviderRecord(method, providerPaymentID string, amountCents int64) *checkout.PaymentRecord {
	rec := NewTestRecord(method, amountCents)
	rec.ProviderPaymentID = &providerPaymentID
	return rec
}

func NewCompletedRecord(method, providerPaymentID string, amountCents int64) *checkout.PaymentRecord {
	rec := NewPendingProviderRecord(method, providerPaymentID, amountCents)
	rec.Status = checkout.StatusCompleted
	completedAt := time.Now()
	rec.CompletedAt = &completedAt
	return rec
}
