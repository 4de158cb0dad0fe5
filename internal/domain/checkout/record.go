package checkout

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopfront/payments/internal/domain/errors"
)

// PaymentStatus represents the payment record status in the state machine
type PaymentStatus string

const (
	StatusPending        PaymentStatus = "pending"
	StatusCompleted      PaymentStatus = "completed"
	StatusFailed         PaymentStatus = "failed"
	StatusRefundRequired PaymentStatus = "refund_required"
	StatusRefunded       PaymentStatus = "refunded"
)

// Amount represents a monetary amount in the smallest currency unit (e.g. cents).
type Amount struct {
	ValueCents int64
	Currency   string
}

// String returns a human-readable representation of the amount.
func (a Amount) String() string {
	whole := a.ValueCents / 100
	frac := a.ValueCents % 100
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%02d %s", whole, frac, a.Currency)
}

// Major returns the amount in major currency units.
func (a Amount) Major() float64 {
	return float64(a.ValueCents) / 100
}

// Validate checks that the amount is valid.
func (a Amount) Validate() error {
	if a.ValueCents <= 0 {
		return errors.ErrInvalidAmount
	}
	if len(a.Currency) != 3 {
		return errors.ErrInvalidCurrency
	}
	return nil
}

// PaymentRecord is the storefront's persisted view of one payment
// attempt against an order. The provider-side state lives with the
// backend; this record tracks the linkage and the settled outcome.
type PaymentRecord struct {
	ID                uuid.UUID
	OrderID           string
	CustomerID        string
	Method            string
	Amount            Amount
	Status            PaymentStatus
	ProviderPaymentID *string
	RefundID          *string
	LastError         *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	CompletedAt       *time.Time
}

// NewPaymentRecord creates a pending payment record for an order.
func NewPaymentRecord(orderID, customerID, method string, amount Amount) (*PaymentRecord, error) {
	if orderID == "" {
		return nil, errors.NewValidationError("order_id", "required")
	}
	if method == "" {
		return nil, errors.NewValidationError("method", "required")
	}
	if err := amount.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	return &PaymentRecord{
		ID:         uuid.New(),
		OrderID:    orderID,
		CustomerID: customerID,
		Method:     method,
		Amount:     amount,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// CanTransitionTo checks if the record can transition to the given status
func (r *PaymentRecord) CanTransitionTo(newStatus PaymentStatus) bool {
	transitions := map[PaymentStatus][]PaymentStatus{
		StatusPending:        {StatusCompleted, StatusFailed},
		StatusCompleted:      {StatusRefunded, StatusRefundRequired},
		StatusFailed:         {},
		StatusRefundRequired: {StatusRefunded},
		StatusRefunded:       {},
	}

	allowed, exists := transitions[r.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

func (r *PaymentRecord) transition(newStatus PaymentStatus) error {
	if !r.CanTransitionTo(newStatus) {
		return fmt.Errorf("cannot transition from %s to %s: %w",
			r.Status, newStatus, errors.ErrInvalidStateTransition)
	}
	r.Status = newStatus
	r.UpdatedAt = time.Now()
	return nil
}

// SetProviderPaymentID records the backend-assigned payment identifier.
func (r *PaymentRecord) SetProviderPaymentID(id string) {
	r.ProviderPaymentID = &id
	r.UpdatedAt = time.Now()
}

// MarkCompleted transitions the record to completed.
func (r *PaymentRecord) MarkCompleted() error {
	if err := r.transition(StatusCompleted); err != nil {
		return err
	}
	now := time.Now()
	r.CompletedAt = &now
	return nil
}

// MarkFailed transitions the record to failed with a reason.
func (r *PaymentRecord) MarkFailed(reason string) error {
	if err := r.transition(StatusFailed); err != nil {
		return err
	}
	r.LastError = &reason
	return nil
}

// MarkRefunded transitions the record to refunded. refundID may be
// empty for backends that settle refunds without an identifier.
func (r *PaymentRecord) MarkRefunded(refundID string) error {
	if err := r.transition(StatusRefunded); err != nil {
		return err
	}
	if refundID != "" {
		r.RefundID = &refundID
	}
	return nil
}

// MarkRefundRequired flags the record for manual refund settlement.
func (r *PaymentRecord) MarkRefundRequired() error {
	return r.transition(StatusRefundRequired)
}

// IsRefundable reports whether a refund can be initiated for the
// record at its current status.
func (r *PaymentRecord) IsRefundable() bool {
	return r.Status == StatusCompleted
}
