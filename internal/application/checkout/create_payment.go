package checkout

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopfront/payments/internal/domain/checkout"
	"github.com/shopfront/payments/internal/infrastructure/observability"
)

// CreatePaymentRequest holds the input for initiating an order payment.
type CreatePaymentRequest struct {
	OrderID     string
	CustomerID  string
	Method      string
	AmountCents int64
	Currency    string
}

// CreatePaymentResponse holds the persisted record plus the backend's
// answer. Accepted=false means the backend (or method resolution)
// rejected the payment; the record is marked failed in that case.
type CreatePaymentResponse struct {
	Record        *checkout.PaymentRecord
	ClientSecret  string
	Accepted      bool
	FailureReason string
}

// CreatePaymentUseCase persists a payment record and hands the charge
// to the configured payment backend.
type CreatePaymentUseCase struct {
	repo      checkout.Repository
	processor PaymentProcessor
	txManager TransactionManager
	metrics   *observability.Metrics
	logger    zerolog.Logger
}

// NewCreatePaymentUseCase creates a new CreatePaymentUseCase.
func NewCreatePaymentUseCase(
	repo checkout.Repository,
	processor PaymentProcessor,
	txManager TransactionManager,
	metrics *observability.Metrics,
	logger zerolog.Logger,
) *CreatePaymentUseCase {
	return &CreatePaymentUseCase{
		repo:      repo,
		processor: processor,
		txManager: txManager,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute creates a pending record for the order, then asks the
// backend to open the payment. The record ends up pending with a
// provider payment id on success, or failed with the backend's reason.
// Both record writes run in one transaction, so a failed update never
// leaves an orphan pending row.
func (uc *CreatePaymentUseCase) Execute(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResponse, error) {
	rec, err := checkout.NewPaymentRecord(req.OrderID, req.CustomerID, req.Method,
		checkout.Amount{ValueCents: req.AmountCents, Currency: req.Currency})
	if err != nil {
		return nil, err
	}

	var resp *CreatePaymentResponse
	err = uc.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		var txErr error
		resp, txErr = uc.execute(ctx, req, rec)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (uc *CreatePaymentUseCase) execute(ctx context.Context, req CreatePaymentRequest, rec *checkout.PaymentRecord) (*CreatePaymentResponse, error) {
	if err := uc.repo.Create(ctx, rec); err != nil {
		return nil, err
	}

	start := time.Now()
	result := uc.processor.CreatePayment(ctx, req.Method, rec.Amount.Major(), map[string]any{
		"order_id":    req.OrderID,
		"customer_id": req.CustomerID,
	})
	uc.observe(req.Method, string(result.Status), time.Since(start))

	if !result.Success {
		uc.logger.Warn().
			Str("order_id", req.OrderID).
			Str("method", req.Method).
			Str("reason", result.Error).
			Msg("Payment rejected by backend")
		uc.countError(req.Method, "create")

		if err := rec.MarkFailed(result.Error); err != nil {
			return nil, err
		}
		if err := uc.repo.Update(ctx, rec); err != nil {
			return nil, err
		}
		return &CreatePaymentResponse{Record: rec, Accepted: false, FailureReason: result.Error}, nil
	}

	if result.PaymentID != "" {
		rec.SetProviderPaymentID(result.PaymentID)
		if err := uc.repo.Update(ctx, rec); err != nil {
			return nil, err
		}
	}

	uc.logger.Info().
		Str("order_id", req.OrderID).
		Str("method", req.Method).
		Str("payment_id", result.PaymentID).
		Msg("Payment created")

	return &CreatePaymentResponse{
		Record:       rec,
		ClientSecret: result.ClientSecret,
		Accepted:     true,
	}, nil
}

func (uc *CreatePaymentUseCase) observe(method, status string, d time.Duration) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.PaymentsTotal.WithLabelValues(method, status).Inc()
	uc.metrics.PaymentDuration.WithLabelValues(method, status).Observe(d.Seconds())
}

func (uc *CreatePaymentUseCase) countError(method, errorType string) {
	if uc.metrics == nil {
		return
	}
	uc.metrics.PaymentErrors.WithLabelValues(method, errorType).Inc()
}
