package controller

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	appCheckout "github.com/shopfront/payments/internal/application/checkout"
	"github.com/shopfront/payments/internal/domain/checkout"
	"github.com/shopfront/payments/internal/infrastructure/config"
	"github.com/shopfront/payments/internal/infrastructure/observability"
	customMW "github.com/shopfront/payments/internal/middleware"
	"github.com/shopfront/payments/internal/payment"
	"github.com/shopfront/payments/internal/repository/postgres"
)

type RouterDeps struct {
	Pool            *pgxpool.Pool
	RedisClient     *redis.Client
	RecordRepo      checkout.Repository
	PaymentService  *payment.Service
	CreateUC        *appCheckout.CreatePaymentUseCase
	RefundUC        *appCheckout.RefundPaymentUseCase
	IdempotencyRepo *postgres.IdempotencyRepository
	IdempotencyTTL  time.Duration
	Metrics         *observability.Metrics
	CORSConfig      config.CORSConfig
	RateLimit       int
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.SecurityHeaders())
	if deps.RateLimit > 0 {
		r.Use(customMW.RateLimit(deps.RateLimit))
	}
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	paymentH := NewPaymentController(deps.CreateUC, deps.RefundUC, deps.RecordRepo, deps.PaymentService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating endpoints.
		idempotencyMW := customMW.Idempotency(deps.IdempotencyRepo, deps.IdempotencyTTL)

		// Payments
		r.With(idempotencyMW).Post("/payments", paymentH.CreatePayment)
		r.Get("/payments/{id}", paymentH.GetPayment)
		r.With(idempotencyMW).Post("/payments/{id}/refund", paymentH.RefundPayment)

		// Orders
		r.Get("/orders/{orderID}/payment", paymentH.GetOrderPayment)

		// Payment methods
		r.Get("/payment-methods", paymentH.ListMethods)
		r.Get("/payment-methods/{method}", paymentH.GetMethod)
	})

	return r
}
