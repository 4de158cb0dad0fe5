package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	appCheckout "github.com/shopfront/payments/internal/application/checkout"
	"github.com/shopfront/payments/internal/bootstrap"
	"github.com/shopfront/payments/internal/controller"
	"github.com/shopfront/payments/internal/payment"
	"github.com/shopfront/payments/internal/repository/postgres"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "payments-api", "payments")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	recordRepo := postgres.NewPaymentRecordRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	// --- Payment backends ---
	factory := payment.NewFactory(payment.StripeConfig{
		SecretKey: app.Config.Stripe.SecretKey,
		Currency:  app.Config.Stripe.Currency,
	}, app.Metrics, app.Logger)
	paymentService := payment.NewService(factory, app.Logger)

	// --- Use cases ---
	createUC := appCheckout.NewCreatePaymentUseCase(recordRepo, paymentService, txManager, app.Metrics, app.Logger)
	refundUC := appCheckout.NewRefundPaymentUseCase(recordRepo, paymentService, app.Metrics, app.Logger)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:            app.Pool,
		RedisClient:     app.Redis,
		RecordRepo:      recordRepo,
		PaymentService:  paymentService,
		CreateUC:        createUC,
		RefundUC:        refundUC,
		IdempotencyRepo: idempotencyRepo,
		IdempotencyTTL:  app.Config.Payment.IdempotencyTTL,
		Metrics:         app.Metrics,
		CORSConfig:      app.Config.Server.CORS,
		RateLimit:       app.Config.Server.RateLimit,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
