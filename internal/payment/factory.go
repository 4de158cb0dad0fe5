package payment

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/shopfront/payments/internal/infrastructure/observability"
)

// Constructor produces a fresh strategy instance. Strategies are cheap
// and stateless aside from their backend client, so one is built per
// lookup, so configuration drift is caught on the next call instead
// of being cached as stale "available".
type Constructor func() (Strategy, error)

// Factory maps lowercase method names to strategy constructors. The
// map is written at startup (or through explicit registration) and
// read on every payment, so access is guarded for concurrent use.
type Factory struct {
	mu           sync.RWMutex
	constructors map[string]Constructor
	logger       zerolog.Logger
}

// NewFactory creates a factory pre-populated with the stripe and cash
// strategies. The Stripe circuit breaker is created here, outside the
// constructor closure, so its state survives per-lookup construction.
// metrics may be nil; breaker state is then not exported.
func NewFactory(stripeCfg StripeConfig, metrics *observability.Metrics, logger zerolog.Logger) *Factory {
	f := &Factory{
		constructors: make(map[string]Constructor),
		logger:       logger,
	}

	stripeBreaker := newBreaker("stripe", metrics)
	f.Register("stripe", func() (Strategy, error) {
		return NewStripeStrategy(stripeCfg, WithStripeBreaker(stripeBreaker))
	})
	f.Register("cash", func() (Strategy, error) {
		return NewCashStrategy(), nil
	})

	return f
}

func newBreaker(name string, metrics *observability.Metrics) *gobreaker.CircuitBreaker[any] {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: 10,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 10 && failureRatio >= 0.6
		},
	}

	if metrics != nil {
		st.OnStateChange = func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		}
		st.IsSuccessful = func(err error) bool {
			result := "success"
			if err != nil {
				result = "failure"
			}
			metrics.CircuitBreakerRequests.WithLabelValues(name, result).Inc()
			return err == nil
		}
	}

	return gobreaker.NewCircuitBreaker[any](st)
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// Register adds or overwrites the constructor for a method name. The
// name is lowercased. Overwriting is allowed and logged; this is the
// extension point for adding backends without touching this file.
func (f *Factory) Register(name string, ctor Constructor) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || ctor == nil {
		return
	}

	f.mu.Lock()
	_, overwrite := f.constructors[key]
	f.constructors[key] = ctor
	f.mu.Unlock()

	if overwrite {
		f.logger.Warn().Str("method", key).Msg("Payment strategy overwritten")
	}
}

// Get resolves a method name to a ready-to-use strategy. The strategy
// is constructed fresh and its configuration checked on every lookup.
func (f *Factory) Get(method string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(method))

	f.mu.RLock()
	ctor, ok := f.constructors[key]
	f.mu.RUnlock()

	if !ok {
		return nil, &UnsupportedMethodError{Method: method, Supported: f.SupportedMethods()}
	}

	s, err := ctor()
	if err != nil {
		return nil, &MisconfiguredMethodError{Method: key, Err: err}
	}
	if !s.IsConfigured() {
		return nil, &MisconfiguredMethodError{Method: key}
	}
	return s, nil
}

// SupportedMethods returns all registered method names in a stable
// order. Order carries no meaning.
func (f *Factory) SupportedMethods() []string {
	f.mu.RLock()
	names := make([]string, 0, len(f.constructors))
	for name := range f.constructors {
		names = append(names, name)
	}
	f.mu.RUnlock()

	sort.Strings(names)
	return names
}

// IsSupported reports whether a method is registered. It is a pure
// membership check: no construction, no configuration probe.
func (f *Factory) IsSupported(method string) bool {
	key := strings.ToLower(strings.TrimSpace(method))

	f.mu.RLock()
	_, ok := f.constructors[key]
	f.mu.RUnlock()
	return ok
}
