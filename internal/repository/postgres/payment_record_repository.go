package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopfront/payments/internal/domain/checkout"
	domainErrors "github.com/shopfront/payments/internal/domain/errors"
)

// PaymentRecordRepository implements checkout.Repository using PostgreSQL.
type PaymentRecordRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRecordRepository creates a new PaymentRecordRepository.
func NewPaymentRecordRepository(pool *pgxpool.Pool) *PaymentRecordRepository {
	return &PaymentRecordRepository{pool: pool}
}

func (r *PaymentRecordRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const paymentColumns = `id, order_id, customer_id, method, amount, currency, status,
	        provider_payment_id, refund_id, last_error, created_at, updated_at, completed_at`

// Create inserts a new payment record.
func (r *PaymentRecordRepository) Create(ctx context.Context, rec *checkout.PaymentRecord) error {
	amountStr := centsToNumericString(rec.Amount.ValueCents)

	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, order_id, customer_id, method, amount, currency, status,
		  provider_payment_id, refund_id, last_error, created_at, updated_at, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		rec.ID, rec.OrderID, rec.CustomerID, rec.Method, amountStr, rec.Amount.Currency,
		string(rec.Status), rec.ProviderPaymentID, rec.RefundID, rec.LastError,
		rec.CreatedAt, rec.UpdatedAt, rec.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment record: %w", err)
	}
	return nil
}

// GetByID retrieves a payment record by its ID.
func (r *PaymentRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*checkout.PaymentRecord, error) {
	return r.scanRecord(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

// GetByOrderID retrieves the latest payment record for an order.
func (r *PaymentRecordRepository) GetByOrderID(ctx context.Context, orderID string) (*checkout.PaymentRecord, error) {
	return r.scanRecord(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE order_id = $1 ORDER BY created_at DESC LIMIT 1`, orderID))
}

// Update updates an existing payment record.
func (r *PaymentRecordRepository) Update(ctx context.Context, rec *checkout.PaymentRecord) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET
		  status=$1, provider_payment_id=$2, refund_id=$3, last_error=$4,
		  updated_at=$5, completed_at=$6
		 WHERE id=$7`,
		string(rec.Status), rec.ProviderPaymentID, rec.RefundID, rec.LastError,
		rec.UpdatedAt, rec.CompletedAt, rec.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

// ListPendingByMethod returns pending records for a method that carry a
// provider payment id, oldest first.
func (r *PaymentRecordRepository) ListPendingByMethod(ctx context.Context, method string, limit int) ([]*checkout.PaymentRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE method = $1 AND status = $2 AND provider_payment_id IS NOT NULL
		 ORDER BY created_at ASC LIMIT $3`,
		method, string(checkout.StatusPending), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}
	defer rows.Close()

	var records []*checkout.PaymentRecord
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// scanRecord scans a payment record from any source implementing the scanner interface.
func (r *PaymentRecordRepository) scanRecord(s scanner) (*checkout.PaymentRecord, error) {
	rec := &checkout.PaymentRecord{}
	var (
		amountStr string
		status    string
	)
	err := s.Scan(
		&rec.ID, &rec.OrderID, &rec.CustomerID, &rec.Method, &amountStr, &rec.Amount.Currency,
		&status, &rec.ProviderPaymentID, &rec.RefundID, &rec.LastError,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment record: %w", err)
	}

	cents, err := numericStringToCents(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	rec.Amount.ValueCents = cents
	rec.Status = checkout.PaymentStatus(status)

	return rec, nil
}
