package checkout

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence interface for payment records.
type Repository interface {
	// Create persists a new payment record.
	Create(ctx context.Context, record *PaymentRecord) error

	// GetByID retrieves a payment record by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*PaymentRecord, error)

	// GetByOrderID retrieves the latest payment record for an order.
	GetByOrderID(ctx context.Context, orderID string) (*PaymentRecord, error)

	// Update persists changes to an existing payment record.
	Update(ctx context.Context, record *PaymentRecord) error

	// ListPendingByMethod returns up to limit pending records for a
	// payment method that have a provider payment id to verify.
	ListPendingByMethod(ctx context.Context, method string, limit int) ([]*PaymentRecord, error)
}
