package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

// stubStripeClient implements StripeClient with injectable behavior.
type stubStripeClient struct {
	newIntentFunc func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	getIntentFunc func(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	newRefundFunc func(params *stripe.RefundParams) (*stripe.Refund, error)
}

func (c *stubStripeClient) NewPaymentIntent(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.newIntentFunc(params)
}

func (c *stubStripeClient) GetPaymentIntent(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	return c.getIntentFunc(id, params)
}

func (c *stubStripeClient) NewRefund(params *stripe.RefundParams) (*stripe.Refund, error) {
	return c.newRefundFunc(params)
}

func newStubStripe(t *testing.T, stub *stubStripeClient) *StripeStrategy {
	t.Helper()
	s, err := NewStripeStrategy(StripeConfig{}, WithStripeClient(stub))
	require.NoError(t, err)
	return s
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected int64
	}{
		{"whole dollars", 10, 1000},
		{"dollars with cents", 100.50, 10050},
		{"cents only", 0.99, 99},
		{"zero", 0, 0},
		{"half rounds up", 19.995, 2000},
		{"rounding up", 99.999, 10000},
		{"rounding down", 5.554, 555},
		{"three decimals half", 5.555, 556},
		{"negative amount", -10.50, -1050},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToMinorUnits(tt.amount))
		})
	}
}

func TestNewStripeStrategy_MissingKey(t *testing.T) {
	t.Setenv(stripeKeyEnv, "")

	_, err := NewStripeStrategy(StripeConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret key")
}

func TestNewStripeStrategy_KeyFromEnv(t *testing.T) {
	t.Setenv(stripeKeyEnv, "sk_test_abc")

	s, err := NewStripeStrategy(StripeConfig{})
	require.NoError(t, err)
	assert.True(t, s.IsConfigured())
	assert.Equal(t, "stripe", s.Name())
	assert.True(t, s.SupportsRefund())
}

func TestStripeStrategy_CreatePayment_Success(t *testing.T) {
	var captured *stripe.PaymentIntentParams
	s := newStubStripe(t, &stubStripeClient{
		newIntentFunc: func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
			captured = params
			return &stripe.PaymentIntent{
				ID:           "pi_123",
				ClientSecret: "pi_123_secret",
				Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
			}, nil
		},
	})

	result := s.CreatePayment(context.Background(), 19.995, map[string]any{
		"order_id": "ord-42",
		"attempt":  3,
	})

	assert.True(t, result.Success)
	assert.Equal(t, "pi_123", result.PaymentID)
	assert.Equal(t, "pi_123_secret", result.ClientSecret)
	assert.Equal(t, StatusPending, result.Status)
	assert.Empty(t, result.Error)

	require.NotNil(t, captured)
	assert.Equal(t, int64(2000), *captured.Amount)
	assert.Equal(t, "usd", *captured.Currency)
	require.Len(t, captured.PaymentMethodTypes, 1)
	assert.Equal(t, "card", *captured.PaymentMethodTypes[0])
	assert.Equal(t, "ord-42", captured.Metadata["order_id"])
	assert.Equal(t, "3", captured.Metadata["attempt"])
	assert.Equal(t, "", captured.Metadata["customer_id"])
}

func TestStripeStrategy_CreatePayment_ConfiguredCurrency(t *testing.T) {
	var captured *stripe.PaymentIntentParams
	stub := &stubStripeClient{
		newIntentFunc: func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
			captured = params
			return &stripe.PaymentIntent{ID: "pi_1"}, nil
		},
	}
	s, err := NewStripeStrategy(StripeConfig{Currency: "EUR"}, WithStripeClient(stub))
	require.NoError(t, err)

	s.CreatePayment(context.Background(), 5, nil)

	require.NotNil(t, captured)
	assert.Equal(t, "eur", *captured.Currency)
}

func TestStripeStrategy_CreatePayment_BackendError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedMsg string
	}{
		{
			name:        "stripe error message",
			err:         &stripe.Error{Msg: "Your card was declined."},
			expectedMsg: "Your card was declined.",
		},
		{
			name:        "plain error",
			err:         errors.New("connection reset"),
			expectedMsg: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStubStripe(t, &stubStripeClient{
				newIntentFunc: func(_ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
					return nil, tt.err
				},
			})

			result := s.CreatePayment(context.Background(), 10, nil)

			assert.False(t, result.Success)
			assert.Equal(t, StatusFailed, result.Status)
			assert.Equal(t, tt.expectedMsg, result.Error)
			assert.Empty(t, result.PaymentID)
			assert.Empty(t, result.ClientSecret)
		})
	}
}

func TestStripeStrategy_ProcessRefund_Success(t *testing.T) {
	var captured *stripe.RefundParams
	s := newStubStripe(t, &stubStripeClient{
		newRefundFunc: func(params *stripe.RefundParams) (*stripe.Refund, error) {
			captured = params
			return &stripe.Refund{ID: "re_9", Status: stripe.RefundStatusSucceeded}, nil
		},
	})

	result := s.ProcessRefund(context.Background(), "pi_123", 25.00, map[string]any{"order_id": "ord-42"})

	assert.True(t, result.Success)
	assert.Equal(t, "re_9", result.RefundID)
	assert.Equal(t, 25.00, result.Amount)
	assert.Equal(t, "succeeded", result.Status)

	require.NotNil(t, captured)
	assert.Equal(t, "pi_123", *captured.PaymentIntent)
	assert.Equal(t, int64(2500), *captured.Amount)
	assert.Equal(t, string(stripe.RefundReasonRequestedByCustomer), *captured.Reason)
	assert.Equal(t, "ord-42", captured.Metadata["order_id"])
}

func TestStripeStrategy_ProcessRefund_StatusFallback(t *testing.T) {
	s := newStubStripe(t, &stubStripeClient{
		newRefundFunc: func(_ *stripe.RefundParams) (*stripe.Refund, error) {
			return &stripe.Refund{ID: "re_1"}, nil
		},
	})

	result := s.ProcessRefund(context.Background(), "pi_1", 10, nil)

	assert.True(t, result.Success)
	assert.Equal(t, RefundStatusFailed, result.Status)
}

func TestStripeStrategy_ProcessRefund_BackendError(t *testing.T) {
	s := newStubStripe(t, &stubStripeClient{
		newRefundFunc: func(_ *stripe.RefundParams) (*stripe.Refund, error) {
			return nil, &stripe.Error{Msg: "No such payment_intent"}
		},
	})

	result := s.ProcessRefund(context.Background(), "pi_missing", 10, nil)

	assert.False(t, result.Success)
	assert.Equal(t, RefundStatusFailed, result.Status)
	assert.Equal(t, float64(10), result.Amount)
	assert.Equal(t, "No such payment_intent", result.Error)
	assert.Empty(t, result.RefundID)
}

func TestStripeStrategy_VerifyPayment_StatusMapping(t *testing.T) {
	tests := []struct {
		backend  stripe.PaymentIntentStatus
		expected Status
	}{
		{stripe.PaymentIntentStatusSucceeded, StatusCompleted},
		{stripe.PaymentIntentStatusCanceled, StatusFailed},
		{stripe.PaymentIntentStatusProcessing, StatusPending},
		{stripe.PaymentIntentStatusRequiresAction, StatusPending},
		{stripe.PaymentIntentStatusRequiresPaymentMethod, StatusPending},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			s := newStubStripe(t, &stubStripeClient{
				getIntentFunc: func(id string, _ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
					assert.Equal(t, "pi_123", id)
					return &stripe.PaymentIntent{ID: id, Status: tt.backend}, nil
				},
			})

			result := s.VerifyPayment(context.Background(), "pi_123")

			assert.True(t, result.Success)
			assert.Equal(t, tt.expected, result.Status)
		})
	}
}

func TestStripeStrategy_VerifyPayment_BackendError(t *testing.T) {
	s := newStubStripe(t, &stubStripeClient{
		getIntentFunc: func(_ string, _ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
			return nil, errors.New("timeout")
		},
	})

	result := s.VerifyPayment(context.Background(), "pi_123")

	assert.False(t, result.Success)
	assert.Equal(t, StatusPending, result.Status)
	assert.Equal(t, "timeout", result.Error)
}
