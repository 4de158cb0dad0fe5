package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	appCheckout "github.com/shopfront/payments/internal/application/checkout"
	"github.com/shopfront/payments/internal/bootstrap"
	infraRedis "github.com/shopfront/payments/internal/infrastructure/redis"
	"github.com/shopfront/payments/internal/payment"
	"github.com/shopfront/payments/internal/repository/postgres"
	"github.com/shopfront/payments/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "payments-worker", "payments_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories and backends ---
	recordRepo := postgres.NewPaymentRecordRepository(app.Pool)
	idempotencyRepo := postgres.NewIdempotencyRepository(app.Pool)
	factory := payment.NewFactory(payment.StripeConfig{
		SecretKey: app.Config.Stripe.SecretKey,
		Currency:  app.Config.Stripe.Currency,
	}, app.Metrics, app.Logger)
	paymentService := payment.NewService(factory, app.Logger)

	workerCfg := app.Config.Worker
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = workerCfg.VerifyRetries

	reconcileUC := appCheckout.NewReconcilePaymentsUseCase(
		recordRepo,
		paymentService,
		"stripe",
		workerCfg.BatchSize,
		retryCfg,
		app.Metrics,
		app.Logger,
	)

	app.Logger.Info().
		Dur("poll_interval", workerCfg.PollInterval).
		Int("batch_size", workerCfg.BatchSize).
		Msg("Worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Pending payment reconciler.
	g.Go(func() error {
		return runReconciler(gCtx, app, reconcileUC)
	})

	// 2. Idempotency key janitor.
	g.Go(func() error {
		return runIdempotencyCleanup(gCtx, app.Logger, idempotencyRepo)
	})

	// 3. Wait for shutdown signal.
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}

// runReconciler polls for pending provider payments on a ticker. A
// Redis lock keeps multiple worker instances from verifying the same
// batch.
func runReconciler(ctx context.Context, app *bootstrap.App, uc *appCheckout.ReconcilePaymentsUseCase) error {
	ticker := time.NewTicker(app.Config.Worker.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		lock := infraRedis.NewDistributedLock(app.Redis, "reconcile", app.Config.Worker.LockTTL)
		acquired, err := lock.Acquire(ctx)
		if err != nil {
			app.Logger.Error().Err(err).Msg("Failed to acquire reconcile lock")
			continue
		}
		if !acquired {
			app.Logger.Debug().Msg("Another worker holds the reconcile lock, skipping run")
			continue
		}

		if _, err := uc.Execute(ctx); err != nil && err != context.Canceled {
			app.Logger.Error().Err(err).Msg("Reconciliation run failed")
		}

		lock.Release(ctx)
	}
}

// runIdempotencyCleanup deletes expired idempotency keys hourly.
func runIdempotencyCleanup(ctx context.Context, logger zerolog.Logger, repo *postgres.IdempotencyRepository) error {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		deleted, err := repo.Cleanup(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Idempotency cleanup failed")
			continue
		}
		if deleted > 0 {
			logger.Info().Int64("deleted", deleted).Msg("Cleaned up expired idempotency keys")
		}
	}
}
