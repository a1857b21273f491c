package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
	"github.com/skladhub/admin-backend/internal/repository"
)

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Payment, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) VerifyAtomic(ctx context.Context, id, verifiedBy uuid.UUID) (*models.Payment, error) {
	args := m.Called(ctx, id, verifiedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *mockPaymentRepo) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func newPaymentService(repo *mockPaymentRepo) *PaymentService {
	return NewPaymentService(repo, stubAuditor{}, testLogger())
}

func TestPaymentService_VerifyPayment_FromPending(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newPaymentService(repo)
	ctx := context.Background()

	id := uuid.New()
	actorID := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.Payment{
		ID:     id,
		Status: models.PaymentStatusPending,
	}, nil)
	repo.On("VerifyAtomic", ctx, id, actorID).Return(&models.Payment{
		ID:     id,
		Status: models.PaymentStatusVerified,
	}, nil)

	payment, err := svc.VerifyPayment(ctx, id, actorID, "Оператор")

	assert.NoError(t, err)
	assert.Equal(t, models.PaymentStatusVerified, payment.Status)
	repo.AssertExpectations(t)
}

func TestPaymentService_VerifyPayment_AlreadyVerified(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newPaymentService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.Payment{
		ID:     id,
		Status: models.PaymentStatusVerified,
	}, nil)

	_, err := svc.VerifyPayment(ctx, id, uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
	repo.AssertNotCalled(t, "VerifyAtomic")
}

func TestPaymentService_RejectPayment_RequiresReason(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newPaymentService(repo)

	_, err := svc.RejectPayment(context.Background(), uuid.New(), " ", uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "GetByID")
}

func TestPaymentService_RejectPayment_FromFailedForbidden(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newPaymentService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.Payment{
		ID:     id,
		Status: models.PaymentStatusFailed,
	}, nil)

	_, err := svc.RejectPayment(ctx, id, "Документы не совпадают", uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
	repo.AssertNotCalled(t, "Reject")
}

func TestPaymentService_GetPayment_NotFound(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newPaymentService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(nil, repository.ErrPaymentNotFound)

	_, err := svc.GetPayment(ctx, id)

	assert.ErrorIs(t, err, apperror.ErrPaymentNotFound)
}

func TestPaymentService_ListPayments_InvalidStatus(t *testing.T) {
	repo := new(mockPaymentRepo)
	svc := newPaymentService(repo)

	_, err := svc.ListPayments(context.Background(), "refunded", 20, 0)

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "List")
}
