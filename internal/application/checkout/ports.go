package checkout

import (
	"context"

	"github.com/shopfront/payments/internal/payment"
)

// PaymentProcessor is the payment facade surface the use cases need.
// Every call returns a structured result; failures never surface as
// error values.
type PaymentProcessor interface {
	CreatePayment(ctx context.Context, method string, amount float64, metadata map[string]any) *payment.PaymentResult
	ProcessRefund(ctx context.Context, method, paymentID string, amount float64, metadata map[string]any) *payment.RefundResult
	VerifyPayment(ctx context.Context, method, paymentID string) *payment.VerificationResult
}

// TransactionManager defines the interface for transaction management.
// This is an application-layer port, not a domain concern.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
