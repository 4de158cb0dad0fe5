package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shopfront/payments/internal/domain/checkout"
	domainErrors "github.com/shopfront/payments/internal/domain/errors"
	"github.com/shopfront/payments/internal/infrastructure/observability"
	"github.com/shopfront/payments/internal/payment"
)

// RefundPaymentResponse carries the updated record plus the backend's
// refund result.
type RefundPaymentResponse struct {
	Record *checkout.PaymentRecord
	Result *payment.RefundResult
}

// RefundPaymentUseCase handles payment refunds.
type RefundPaymentUseCase struct {
	repo      checkout.Repository
	processor PaymentProcessor
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewRefundPaymentUseCase creates a new RefundPaymentUseCase.
func NewRefundPaymentUseCase(
	repo checkout.Repository,
	processor PaymentProcessor,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *RefundPaymentUseCase {
	return &RefundPaymentUseCase{
		repo:      repo,
		processor: processor,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute refunds a completed payment. Backends that cannot settle
// refunds themselves flag the record for manual settlement instead.
func (uc *RefundPaymentUseCase) Execute(ctx context.Context, paymentID uuid.UUID) (*RefundPaymentResponse, error) {
	rec, err := uc.repo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !rec.IsRefundable() {
		return nil, domainErrors.NewDomainError(
			"invalid_refund",
			fmt.Sprintf("cannot refund payment in status %s", rec.Status),
			domainErrors.ErrPaymentNotRefundable,
		)
	}

	providerID := ""
	if rec.ProviderPaymentID != nil {
		providerID = *rec.ProviderPaymentID
	}

	result := uc.processor.ProcessRefund(ctx, rec.Method, providerID, rec.Amount.Major(), map[string]any{
		"order_id": rec.OrderID,
	})
	if uc.metrics != nil {
		uc.metrics.RefundsTotal.WithLabelValues(rec.Method, result.Status).Inc()
	}

	if !result.Success {
		uc.logger.Warn().
			Str("order_id", rec.OrderID).
			Str("method", rec.Method).
			Str("reason", result.Error).
			Msg("Refund rejected by backend")
		if uc.metrics != nil {
			uc.metrics.PaymentErrors.WithLabelValues(rec.Method, "refund").Inc()
		}

		// The record stays completed so the refund can be retried.
		reason := result.Error
		rec.LastError = &reason
		if err := uc.repo.Update(ctx, rec); err != nil {
			return nil, err
		}
		return &RefundPaymentResponse{Record: rec, Result: result}, nil
	}

	if result.Status == payment.RefundStatusManualRequired {
		if err := rec.MarkRefundRequired(); err != nil {
			return nil, err
		}
	} else if err := rec.MarkRefunded(result.RefundID); err != nil {
		return nil, err
	}

	if err := uc.repo.Update(ctx, rec); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("order_id", rec.OrderID).
		Str("method", rec.Method).
		Str("refund_id", result.RefundID).
		Str("status", result.Status).
		Msg("Refund processed")

	return &RefundPaymentResponse{Record: rec, Result: result}, nil
}
