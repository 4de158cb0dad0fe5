package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/shopfront/payments/internal/domain/checkout"
	domainErrors "github.com/shopfront/payments/internal/domain/errors"
	"github.com/shopfront/payments/internal/payment"
)

// --- Payment Record Repository Mock ---

// MockPaymentRecordRepository is a mock implementation of checkout.Repository.
type MockPaymentRecordRepository struct {
	mu      sync.Mutex
	records map[uuid.UUID]*checkout.PaymentRecord

	CreateFunc              func(ctx context.Context, rec *checkout.PaymentRecord) error
	GetByIDFunc             func(ctx context.Context, id uuid.UUID) (*checkout.PaymentRecord, error)
	GetByOrderIDFunc        func(ctx context.Context, orderID string) (*checkout.PaymentRecord, error)
	UpdateFunc              func(ctx context.Context, rec *checkout.PaymentRecord) error
	ListPendingByMethodFunc func(ctx context.Context, method string, limit int) ([]*checkout.PaymentRecord, error)
}

func NewMockPaymentRecordRepository() *MockPaymentRecordRepository {
	return &MockPaymentRecordRepository{
		records: make(map[uuid.UUID]*checkout.PaymentRecord),
	}
}

func (m *MockPaymentRecordRepository) Create(ctx context.Context, rec *checkout.PaymentRecord) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *MockPaymentRecordRepository) GetByID(ctx context.Context, id uuid.UUID) (*checkout.PaymentRecord, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return rec, nil
}

func (m *MockPaymentRecordRepository) GetByOrderID(ctx context.Context, orderID string) (*checkout.PaymentRecord, error) {
	if m.GetByOrderIDFunc != nil {
		return m.GetByOrderIDFunc(ctx, orderID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.OrderID == orderID {
			return rec, nil
		}
	}
	return nil, domainErrors.ErrPaymentNotFound
}

func (m *MockPaymentRecordRepository) Update(ctx context.Context, rec *checkout.PaymentRecord) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.ID]; !ok {
		return domainErrors.ErrPaymentNotFound
	}
	m.records[rec.ID] = rec
	return nil
}

func (m *MockPaymentRecordRepository) ListPendingByMethod(ctx context.Context, method string, limit int) ([]*checkout.PaymentRecord, error) {
	if m.ListPendingByMethodFunc != nil {
		return m.ListPendingByMethodFunc(ctx, method, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*checkout.PaymentRecord
	for _, rec := range m.records {
		if rec.Method == method && rec.Status == checkout.StatusPending && rec.ProviderPaymentID != nil {
			out = append(out, rec)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// GetRecordByID returns the stored record without going through the interface.
func (m *MockPaymentRecordRepository) GetRecordByID(id uuid.UUID) *checkout.PaymentRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[id]
}

// --- Transaction Manager Mock ---

// MockTransactionManager executes the function directly without a real transaction.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// --- Payment Processor Mock ---

// MockPaymentProcessor is a mock of the payment facade surface the use
// cases depend on. Unset funcs answer with generic success.
type MockPaymentProcessor struct {
	CreatePaymentFunc func(ctx context.Context, method string, amount float64, metadata map[string]any) *payment.PaymentResult
	ProcessRefundFunc func(ctx context.Context, method, paymentID string, amount float64, metadata map[string]any) *payment.RefundResult
	VerifyPaymentFunc func(ctx context.Context, method, paymentID string) *payment.VerificationResult
}

func NewMockPaymentProcessor() *MockPaymentProcessor {
	return &MockPaymentProcessor{}
}

func (m *MockPaymentProcessor) CreatePayment(ctx context.Context, method string, amount float64, metadata map[string]any) *payment.PaymentResult {
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, method, amount, metadata)
	}
	return &payment.PaymentResult{
		Success:      true,
		PaymentID:    "pi_mock",
		ClientSecret: "pi_mock_secret",
		Status:       payment.StatusPending,
	}
}

func (m *MockPaymentProcessor) ProcessRefund(ctx context.Context, method, paymentID string, amount float64, metadata map[string]any) *payment.RefundResult {
	if m.ProcessRefundFunc != nil {
		return m.ProcessRefundFunc(ctx, method, paymentID, amount, metadata)
	}
	return &payment.RefundResult{
		Success:  true,
		RefundID: "re_mock",
		Amount:   amount,
		Status:   "succeeded",
	}
}

func (m *MockPaymentProcessor) VerifyPayment(ctx context.Context, method, paymentID string) *payment.VerificationResult {
	if m.VerifyPaymentFunc != nil {
		return m.VerifyPaymentFunc(ctx, method, paymentID)
	}
	return &payment.VerificationResult{Success: true, Status: payment.StatusCompleted}
}
