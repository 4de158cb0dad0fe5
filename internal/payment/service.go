package payment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// MethodDetails describes a registered payment method's capabilities.
type MethodDetails struct {
	Name           string `json:"name"`
	SupportsRefund bool   `json:"supports_refund"`
	IsConfigured   bool   `json:"is_configured"`
}

// Service is the only entry point the rest of the system calls.
// Every failure (unknown method, missing configuration, backend
// rejection) terminates in a structured result with Success=false;
// nothing above this facade ever receives an error value from a
// payment or refund flow.
type Service struct {
	factory *Factory
	logger  zerolog.Logger
}

// NewService creates a new Service.
func NewService(factory *Factory, logger zerolog.Logger) *Service {
	return &Service{
		factory: factory,
		logger:  logger,
	}
}

// CreatePayment resolves the strategy for method and delegates to it.
// Resolution failures are normalized into the same result shape as
// backend failures, so callers have exactly one shape to handle.
func (s *Service) CreatePayment(ctx context.Context, method string, amount float64, metadata map[string]any) *PaymentResult {
	strategy, err := s.factory.Get(method)
	if err != nil {
		s.logger.Warn().Err(err).Str("method", method).Msg("Payment strategy resolution failed")
		return &PaymentResult{
			Success: false,
			Status:  StatusFailed,
			Error:   err.Error(),
		}
	}
	return strategy.CreatePayment(ctx, amount, metadata)
}

// ProcessRefund resolves the strategy for method and delegates to it.
// A strategy that does not support refunds short-circuits before any
// backend call is made.
func (s *Service) ProcessRefund(ctx context.Context, method, paymentID string, amount float64, metadata map[string]any) *RefundResult {
	strategy, err := s.factory.Get(method)
	if err != nil {
		s.logger.Warn().Err(err).Str("method", method).Msg("Refund strategy resolution failed")
		return &RefundResult{
			Success: false,
			Amount:  amount,
			Status:  RefundStatusFailed,
			Error:   err.Error(),
		}
	}

	if !strategy.SupportsRefund() {
		return &RefundResult{
			Success: false,
			Amount:  amount,
			Status:  RefundStatusNotSupported,
			Error:   fmt.Sprintf("Refunds are not supported for %s payments", strategy.Name()),
		}
	}

	return strategy.ProcessRefund(ctx, paymentID, amount, metadata)
}

// VerifyPayment asks the strategy's backend for the current state of a
// previously created payment. Strategies without a verifiable backend
// yield a failed result with the status left pending.
func (s *Service) VerifyPayment(ctx context.Context, method, paymentID string) *VerificationResult {
	strategy, err := s.factory.Get(method)
	if err != nil {
		return &VerificationResult{
			Success: false,
			Status:  StatusPending,
			Error:   err.Error(),
		}
	}

	verifier, ok := strategy.(StatusVerifier)
	if !ok {
		return &VerificationResult{
			Success: false,
			Status:  StatusPending,
			Error:   fmt.Sprintf("payment verification is not supported for %s payments", strategy.Name()),
		}
	}

	return verifier.VerifyPayment(ctx, paymentID)
}

// IsAvailable reports whether a method is registered and currently
// constructs with its configuration intact. It never fails; any
// problem while probing means "not available".
func (s *Service) IsAvailable(method string) bool {
	_, err := s.factory.Get(method)
	return err == nil
}

// AvailableMethods returns the registered methods filtered down to the
// ones that are available right now.
func (s *Service) AvailableMethods() []string {
	var available []string
	for _, method := range s.factory.SupportedMethods() {
		if s.IsAvailable(method) {
			available = append(available, method)
		}
	}
	return available
}

// MethodDetails returns a method's capability summary, or ok=false if
// resolution fails for any reason.
func (s *Service) MethodDetails(method string) (*MethodDetails, bool) {
	strategy, err := s.factory.Get(method)
	if err != nil {
		return nil, false
	}
	return &MethodDetails{
		Name:           strategy.Name(),
		SupportsRefund: strategy.SupportsRefund(),
		IsConfigured:   strategy.IsConfigured(),
	}, true
}
