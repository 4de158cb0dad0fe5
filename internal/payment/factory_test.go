package payment

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopfront/payments/internal/infrastructure/observability"
)

// stubStrategy counts calls so tests can assert a backend was, or was
// not, invoked.
type stubStrategy struct {
	name           string
	supportsRefund bool
	configured     bool
	createCalls    int
	refundCalls    int
	createResult   *PaymentResult
	refundResult   *RefundResult
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) CreatePayment(_ context.Context, _ float64, _ map[string]any) *PaymentResult {
	s.createCalls++
	if s.createResult != nil {
		return s.createResult
	}
	return &PaymentResult{Success: true, Status: StatusPending}
}

func (s *stubStrategy) ProcessRefund(_ context.Context, _ string, amount float64, _ map[string]any) *RefundResult {
	s.refundCalls++
	if s.refundResult != nil {
		return s.refundResult
	}
	return &RefundResult{Success: true, Amount: amount, Status: "succeeded"}
}

func (s *stubStrategy) SupportsRefund() bool { return s.supportsRefund }

func (s *stubStrategy) IsConfigured() bool { return s.configured }

func newTestFactory(t *testing.T) *Factory {
	t.Helper()
	t.Setenv(stripeKeyEnv, "")
	return NewFactory(StripeConfig{}, nil, zerolog.Nop())
}

func TestFactory_Defaults(t *testing.T) {
	f := newTestFactory(t)

	assert.Equal(t, []string{"cash", "stripe"}, f.SupportedMethods())
}

func TestFactory_IsSupported_CaseInsensitive(t *testing.T) {
	f := newTestFactory(t)

	for _, method := range f.SupportedMethods() {
		assert.True(t, f.IsSupported(method))
		assert.True(t, f.IsSupported("  "+method+" "))
		assert.Equal(t, f.IsSupported("STRIPE"), f.IsSupported("stripe"))
		assert.Equal(t, f.IsSupported("Cash"), f.IsSupported("cash"))
	}
	assert.False(t, f.IsSupported("doesnotexist"))
}

func TestFactory_Get_Unknown_ListsSupported(t *testing.T) {
	f := newTestFactory(t)

	s, err := f.Get("doesnotexist")
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, ErrUnsupportedMethod))

	var unsupported *UnsupportedMethodError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, []string{"cash", "stripe"}, unsupported.Supported)
	assert.Contains(t, err.Error(), "cash")
	assert.Contains(t, err.Error(), "stripe")
}

func TestFactory_Get_MisconfiguredStripe(t *testing.T) {
	f := newTestFactory(t)

	s, err := f.Get("stripe")
	require.Error(t, err)
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, ErrMisconfiguredMethod))
}

func TestFactory_Get_UnconfiguredStrategy(t *testing.T) {
	f := newTestFactory(t)
	f.Register("giftcard", func() (Strategy, error) {
		return &stubStrategy{name: "giftcard", configured: false}, nil
	})

	_, err := f.Get("giftcard")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMisconfiguredMethod))
}

func TestFactory_Get_CaseInsensitiveRoundTrip(t *testing.T) {
	f := newTestFactory(t)
	f.Register("X", func() (Strategy, error) {
		return &stubStrategy{name: "x", configured: true}, nil
	})

	s, err := f.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "x", s.Name())

	s, err = f.Get("X")
	require.NoError(t, err)
	assert.Equal(t, "x", s.Name())
}

func TestFactory_Register_Overwrite(t *testing.T) {
	f := newTestFactory(t)

	replacement := &stubStrategy{name: "cash", supportsRefund: true, configured: true}
	assert.NotPanics(t, func() {
		f.Register("cash", func() (Strategy, error) { return replacement, nil })
	})

	s, err := f.Get("cash")
	require.NoError(t, err)
	assert.Same(t, replacement, s)
	assert.Equal(t, []string{"cash", "stripe"}, f.SupportedMethods())
}

func TestFactory_Get_ConstructsFresh(t *testing.T) {
	f := newTestFactory(t)

	constructions := 0
	f.Register("counted", func() (Strategy, error) {
		constructions++
		return &stubStrategy{name: "counted", configured: true}, nil
	})

	for i := 0; i < 3; i++ {
		_, err := f.Get("counted")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, constructions)
}

func TestFactory_Get_ConstructorFailure(t *testing.T) {
	f := newTestFactory(t)
	f.Register("broken", func() (Strategy, error) {
		return nil, fmt.Errorf("credential missing")
	})

	_, err := f.Get("broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMisconfiguredMethod))
	assert.Contains(t, err.Error(), "credential missing")
}

func TestBreaker_ExportsMetrics(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	cb := newBreaker("stripe", m)

	_, err := cb.Execute(func() (any, error) { return nil, nil })
	require.NoError(t, err)

	// Drive admitted failures until the breaker trips.
	var admitted float64
	for i := 0; i < 20 && cb.State() != gobreaker.StateOpen; i++ {
		_, err := cb.Execute(func() (any, error) { return nil, errors.New("stripe unreachable") })
		if !errors.Is(err, gobreaker.ErrOpenState) {
			admitted++
		}
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())

	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.CircuitBreakerRequests.WithLabelValues("stripe", "success")))
	assert.Equal(t, admitted, promtestutil.ToFloat64(m.CircuitBreakerRequests.WithLabelValues("stripe", "failure")))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("stripe")))
}

func TestBreaker_NilMetrics(t *testing.T) {
	cb := newBreaker("stripe", nil)

	_, err := cb.Execute(func() (any, error) { return nil, nil })
	assert.NoError(t, err)
}
