package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopfront/payments/internal/domain/checkout"
	"github.com/shopfront/payments/internal/infrastructure/observability"
	"github.com/shopfront/payments/internal/payment"
	"github.com/shopfront/payments/pkg/retry"
)

// ReconcileReport summarizes one reconciliation run.
type ReconcileReport struct {
	Checked   int
	Completed int
	Failed    int
	Pending   int
	Errors    int
}

// ReconcilePaymentsUseCase verifies pending provider-backed payments
// against the backend and settles their records. Cash payments are
// collected at delivery and never reconciled here.
type ReconcilePaymentsUseCase struct {
	repo      checkout.Repository
	processor PaymentProcessor
	method    string
	batchSize int
	retryCfg  retry.Config
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewReconcilePaymentsUseCase creates a new ReconcilePaymentsUseCase.
func NewReconcilePaymentsUseCase(
	repo checkout.Repository,
	processor PaymentProcessor,
	method string,
	batchSize int,
	retryCfg retry.Config,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *ReconcilePaymentsUseCase {
	return &ReconcilePaymentsUseCase{
		repo:      repo,
		processor: processor,
		method:    method,
		batchSize: batchSize,
		retryCfg:  retryCfg,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute verifies one batch of pending payments. A payment whose
// backend still reports pending is left alone for the next run.
func (uc *ReconcilePaymentsUseCase) Execute(ctx context.Context) (*ReconcileReport, error) {
	start := time.Now()

	records, err := uc.repo.ListPendingByMethod(ctx, uc.method, uc.batchSize)
	if err != nil {
		uc.countRun("error")
		return nil, err
	}

	report := &ReconcileReport{Checked: len(records)}

	for _, rec := range records {
		if ctx.Err() != nil {
			uc.countRun("canceled")
			return report, ctx.Err()
		}
		uc.reconcileOne(ctx, rec, report)
	}

	uc.countRun("ok")
	if uc.metrics != nil {
		uc.metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	}

	uc.logger.Info().
		Int("checked", report.Checked).
		Int("completed", report.Completed).
		Int("failed", report.Failed).
		Int("pending", report.Pending).
		Int("errors", report.Errors).
		Msg("Reconciliation run finished")

	return report, nil
}

func (uc *ReconcilePaymentsUseCase) reconcileOne(ctx context.Context, rec *checkout.PaymentRecord, report *ReconcileReport) {
	providerID := ""
	if rec.ProviderPaymentID != nil {
		providerID = *rec.ProviderPaymentID
	}

	result, err := retry.DoWithResult(ctx, uc.retryCfg, func() (*payment.VerificationResult, error) {
		r := uc.processor.VerifyPayment(ctx, rec.Method, providerID)
		if !r.Success {
			if uc.metrics != nil {
				uc.metrics.VerificationRetries.WithLabelValues(rec.Method).Inc()
			}
			return r, errors.New(r.Error)
		}
		return r, nil
	})
	if err != nil {
		uc.logger.Warn().
			Err(err).
			Str("order_id", rec.OrderID).
			Str("payment_id", providerID).
			Msg("Verification exhausted retries, leaving payment pending")
		if uc.metrics != nil {
			uc.metrics.PaymentErrors.WithLabelValues(rec.Method, "verify").Inc()
		}
		report.Errors++
		return
	}

	switch result.Status {
	case payment.StatusCompleted:
		if err := rec.MarkCompleted(); err != nil {
			report.Errors++
			return
		}
		if err := uc.repo.Update(ctx, rec); err != nil {
			uc.logger.Error().Err(err).Str("order_id", rec.OrderID).Msg("Failed to persist completed payment")
			report.Errors++
			return
		}
		report.Completed++
		uc.countVerified(rec.Method, "completed")

	case payment.StatusFailed:
		reason := result.Error
		if reason == "" {
			reason = "payment failed at provider"
		}
		if err := rec.MarkFailed(reason); err != nil {
			report.Errors++
			return
		}
		if err := uc.repo.Update(ctx, rec); err != nil {
			uc.logger.Error().Err(err).Str("order_id", rec.OrderID).Msg("Failed to persist failed payment")
			report.Errors++
			return
		}
		report.Failed++
		uc.countVerified(rec.Method, "failed")

	default:
		report.Pending++
		uc.countVerified(rec.Method, "pending")
	}
}

func (uc *ReconcilePaymentsUseCase) countRun(status string) {
	if uc.metrics != nil {
		uc.metrics.ReconcileRunsTotal.WithLabelValues(status).Inc()
	}
}

func (uc *ReconcilePaymentsUseCase) countVerified(method, outcome string) {
	if uc.metrics != nil {
		uc.metrics.PaymentsVerifiedTotal.WithLabelValues(method, outcome).Inc()
	}
}
