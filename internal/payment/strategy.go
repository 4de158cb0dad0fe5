package payment

import (
	"context"
)

// Status is the three-value payment vocabulary shared by every backend.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Refund statuses are backend-defined free text; only the two fixed
// sentinels used by this package are named here.
const (
	RefundStatusManualRequired = "manual_refund_required"
	RefundStatusNotSupported   = "not_supported"
	RefundStatusFailed         = "failed"
)

// PaymentResult is the outcome of a payment-creation attempt.
// Error is set only when Success is false. StatusFailed implies
// Success=false; the inverse does not hold, cash payments succeed
// with StatusPending because collection happens at delivery.
type PaymentResult struct {
	Success      bool
	PaymentID    string
	ClientSecret string
	Status       Status
	Error        string
}

// RefundResult is the outcome of a refund attempt. Amount echoes the
// requested amount back even on failure so the caller knows what was
// attempted. Status keeps the backend's own vocabulary.
type RefundResult struct {
	Success  bool
	RefundID string
	Amount   float64
	Status   string
	Error    string
}

// VerificationResult is the outcome of a payment status lookup.
type VerificationResult struct {
	Success bool
	Status  Status
	Error   string
}

// Strategy is the uniform surface every payment backend implements.
//
// Amounts are expressed in the major currency unit (e.g. dollars)
// throughout; a strategy that needs minor units converts internally.
// Backend failures are captured into the returned result, never
// surfaced as an error value; callers check Result.Success only.
// Configuration problems are signaled at construction time, not at
// call time.
type Strategy interface {
	// Name returns the stable lowercase identifier for the backend,
	// used as the registry key and echoed in logs.
	Name() string

	// CreatePayment initiates a charge of amount. Metadata carries
	// arbitrary context (order id, customer id); values are coerced
	// to strings before being forwarded to backends that require it.
	CreatePayment(ctx context.Context, amount float64, metadata map[string]any) *PaymentResult

	// ProcessRefund requests a refund of amount against a previously
	// created payment.
	ProcessRefund(ctx context.Context, paymentID string, amount float64, metadata map[string]any) *RefundResult

	// SupportsRefund reports whether the backend supports any form of
	// refund, including a manual one.
	SupportsRefund() bool

	// IsConfigured reports whether the backend has everything it
	// needs to operate, without making a network call.
	IsConfigured() bool
}

// StatusVerifier is an optional capability: strategies whose backend
// can report the current state of a payment implement it so callers
// can reconcile pending payments after a client-side confirmation
// flow.
type StatusVerifier interface {
	VerifyPayment(ctx context.Context, paymentID string) *VerificationResult
}
