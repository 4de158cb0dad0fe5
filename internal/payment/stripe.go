package payment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const defaultStripeCurrency = "usd"

// stripeKeyEnv lets the strategy pick up the credential straight from
// the process environment when the config leaves it empty, so removing
// the key at runtime is caught on the next lookup.
const stripeKeyEnv = "STRIPE_SECRET_KEY"

// StripeConfig holds the Stripe strategy configuration.
type StripeConfig struct {
	SecretKey string
	Currency  string
}

// StripeClient is the narrow slice of the Stripe API this strategy
// uses. The production implementation wraps client.API; tests inject
// a stub.
type StripeClient interface {
	NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	GetPaymentIntent(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	NewRefund(params *stripe.RefundParams) (*stripe.Refund, error)
}

type stripeClient struct {
	api *client.API
}

func (c *stripeClient) NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.api.PaymentIntents.New(params)
}

func (c *stripeClient) GetPaymentIntent(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.api.PaymentIntents.Get(id, params)
}

func (c *stripeClient) NewRefund(params *stripe.RefundParams) (*stripe.Refund, error) {
	return c.api.Refunds.New(params)
}

// StripeStrategy charges cards through Stripe payment intents. Each
// instance holds its own configured client rather than mutating the
// package-global stripe.Key.
type StripeStrategy struct {
	client   StripeClient
	currency string
	breaker  *gobreaker.CircuitBreaker[any]
}

// StripeOption configures a StripeStrategy.
type StripeOption func(*StripeStrategy)

// WithStripeClient injects a custom client. A strategy with an
// injected client is considered configured regardless of the secret
// key.
func WithStripeClient(c StripeClient) StripeOption {
	return func(s *StripeStrategy) { s.client = c }
}

// WithStripeBreaker wraps backend calls in the given circuit breaker.
// The breaker should outlive the strategy, since instances are
// constructed fresh per factory lookup.
func WithStripeBreaker(cb *gobreaker.CircuitBreaker[any]) StripeOption {
	return func(s *StripeStrategy) { s.breaker = cb }
}

// NewStripeStrategy creates a Stripe strategy. It fails when no secret
// key is available from the config or the environment; the factory
// converts that failure into a misconfigured-method error so it never
// escapes to service callers.
func NewStripeStrategy(cfg StripeConfig, opts ...StripeOption) (*StripeStrategy, error) {
	s := &StripeStrategy{
		currency: strings.ToLower(cfg.Currency),
	}
	if s.currency == "" {
		s.currency = defaultStripeCurrency
	}
	for _, o := range opts {
		o(s)
	}

	if s.client == nil {
		key := cfg.SecretKey
		if key == "" {
			key = os.Getenv(stripeKeyEnv)
		}
		if key == "" {
			return nil, fmt.Errorf("stripe secret key is not set")
		}
		api := &client.API{}
		api.Init(key, nil)
		s.client = &stripeClient{api: api}
	}

	return s, nil
}

func (s *StripeStrategy) Name() string { return "stripe" }

func (s *StripeStrategy) SupportsRefund() bool { return true }

func (s *StripeStrategy) IsConfigured() bool { return s.client != nil }

// CreatePayment submits a card payment intent for amount in the
// configured currency. The intent is returned pending; confirmation
// happens client-side with the client secret, outside this package.
func (s *StripeStrategy) CreatePayment(ctx context.Context, amount float64, metadata map[string]any) *PaymentResult {
	params := &stripe.PaymentIntentParams{
		Params:             stripe.Params{Context: ctx},
		Amount:             stripe.Int64(ToMinorUnits(amount)),
		Currency:           stripe.String(s.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	applyMetadata(&params.Params, metadata, "order_id", "customer_id")

	v, err := s.call(func() (any, error) {
		return s.client.NewPaymentIntent(params)
	})
	if err != nil {
		return &PaymentResult{
			Success: false,
			Status:  StatusFailed,
			Error:   stripeErrorMessage(err, "payment processing failed"),
		}
	}

	pi := v.(*stripe.PaymentIntent)
	return &PaymentResult{
		Success:      true,
		PaymentID:    pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       StatusPending,
	}
}

// ProcessRefund refunds amount against a payment intent. The refund
// status is whatever Stripe reports, falling back to "failed" when
// absent.
func (s *StripeStrategy) ProcessRefund(ctx context.Context, paymentID string, amount float64, metadata map[string]any) *RefundResult {
	params := &stripe.RefundParams{
		Params:        stripe.Params{Context: ctx},
		PaymentIntent: stripe.String(paymentID),
		Amount:        stripe.Int64(ToMinorUnits(amount)),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	applyMetadata(&params.Params, metadata, "order_id")

	v, err := s.call(func() (any, error) {
		return s.client.NewRefund(params)
	})
	if err != nil {
		return &RefundResult{
			Success: false,
			Amount:  amount,
			Status:  RefundStatusFailed,
			Error:   stripeErrorMessage(err, "refund processing failed"),
		}
	}

	r := v.(*stripe.Refund)
	status := string(r.Status)
	if status == "" {
		status = RefundStatusFailed
	}
	return &RefundResult{
		Success:  true,
		RefundID: r.ID,
		Amount:   amount,
		Status:   status,
	}
}

// VerifyPayment retrieves the intent's current state and maps Stripe's
// vocabulary onto the shared one: succeeded → completed, canceled →
// failed, everything else → pending. A retrieval error leaves the
// status pending: unknown is not failed.
func (s *StripeStrategy) VerifyPayment(ctx context.Context, paymentID string) *VerificationResult {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{Context: ctx},
	}

	v, err := s.call(func() (any, error) {
		return s.client.GetPaymentIntent(paymentID, params)
	})
	if err != nil {
		return &VerificationResult{
			Success: false,
			Status:  StatusPending,
			Error:   stripeErrorMessage(err, "payment verification failed"),
		}
	}

	pi := v.(*stripe.PaymentIntent)
	return &VerificationResult{
		Success: true,
		Status:  mapIntentStatus(pi.Status),
	}
}

func (s *StripeStrategy) call(fn func() (any, error)) (any, error) {
	if s.breaker == nil {
		return fn()
	}
	return s.breaker.Execute(fn)
}

func mapIntentStatus(st stripe.PaymentIntentStatus) Status {
	switch st {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusCompleted
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed
	default:
		return StatusPending
	}
}

// applyMetadata stringifies every metadata value and guarantees the
// required keys are present, defaulting to "".
func applyMetadata(params *stripe.Params, metadata map[string]any, required ...string) {
	for k, v := range metadata {
		params.AddMetadata(k, metadataString(v))
	}
	for _, k := range required {
		if _, ok := metadata[k]; !ok {
			params.AddMetadata(k, "")
		}
	}
}

func metadataString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func stripeErrorMessage(err error, fallback string) string {
	var sErr *stripe.Error
	if errors.As(err, &sErr) && sErr.Msg != "" {
		return sErr.Msg
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

// ToMinorUnits converts a major-unit amount to integer minor units,
// rounding half-up on the decimal representation so values like
// 19.995 land on 2000 rather than wherever binary floats put them.
// It is the one conversion rule for the whole service; API handlers
// use it too so a persisted amount always matches the charged amount.
func ToMinorUnits(amount float64) int64 {
	s := strconv.FormatFloat(amount, 'f', -1, 64)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, fracPart, _ := strings.Cut(s, ".")
	fracPart += "000"

	cents, _ := strconv.ParseInt(intPart, 10, 64)
	cents = cents*100 + int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
	if fracPart[2] >= '5' {
		cents++
	}

	if neg {
		return -cents
	}
	return cents
}
