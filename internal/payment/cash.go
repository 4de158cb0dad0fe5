package payment

import (
	"context"
)

// CashStrategy handles cash-on-delivery. There is no backend: a
// created payment stays pending until physical collection, and a
// refund only marks intent; money moves through an offline process.
type CashStrategy struct{}

// NewCashStrategy creates a new CashStrategy.
func NewCashStrategy() *CashStrategy {
	return &CashStrategy{}
}

func (s *CashStrategy) Name() string { return "cash" }

// CreatePayment always succeeds immediately. No payment id or client
// secret is assigned; collection happens out-of-band at delivery.
func (s *CashStrategy) CreatePayment(_ context.Context, _ float64, _ map[string]any) *PaymentResult {
	return &PaymentResult{
		Success: true,
		Status:  StatusPending,
	}
}

// ProcessRefund always succeeds immediately with no refund id; the
// manual_refund_required status tells the caller a human has to
// settle it.
func (s *CashStrategy) ProcessRefund(_ context.Context, _ string, amount float64, _ map[string]any) *RefundResult {
	return &RefundResult{
		Success: true,
		Amount:  amount,
		Status:  RefundStatusManualRequired,
	}
}

func (s *CashStrategy) SupportsRefund() bool { return true }

func (s *CashStrategy) IsConfigured() bool { return true }
