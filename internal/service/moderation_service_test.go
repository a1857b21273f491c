package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, status string, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *mockUserRepo) Reinstate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockListingRepo struct {
	mock.Mock
}

func (m *mockListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Listing), args.Error(1)
}

func (m *mockListingRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Listing, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *mockListingRepo) Unblock(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRefundRepo struct {
	mock.Mock
}

func (m *mockRefundRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Refund), args.Error(1)
}

func (m *mockRefundRepo) ListByDispute(ctx context.Context, disputeID uuid.UUID) ([]models.Refund, error) {
	args := m.Called(ctx, disputeID)
	return args.Get(0).([]models.Refund), args.Error(1)
}

func (m *mockRefundRepo) ListPending(ctx context.Context, limit, offset int) ([]models.Refund, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Refund), args.Error(1)
}

func (m *mockRefundRepo) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newModerationService(users *mockUserRepo, listings *mockListingRepo, refunds *mockRefundRepo) *ModerationService {
	return NewModerationService(users, listings, refunds, stubAuditor{}, testLogger())
}

func TestModerationService_ReinstateUser_Success(t *testing.T) {
	users := new(mockUserRepo)
	svc := newModerationService(users, new(mockListingRepo), new(mockRefundRepo))
	ctx := context.Background()

	id := uuid.New()
	users.On("Reinstate", ctx, id).Return(nil)
	users.On("GetByID", ctx, id).Return(&models.User{
		ID:     id,
		Status: models.UserStatusActive,
	}, nil)

	user, err := svc.ReinstateUser(ctx, id, uuid.New(), "Оператор")

	assert.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, user.Status)
	users.AssertExpectations(t)
}

func TestModerationService_ReinstateUser_NotSuspended(t *testing.T) {
	users := new(mockUserRepo)
	svc := newModerationService(users, new(mockListingRepo), new(mockRefundRepo))
	ctx := context.Background()

	id := uuid.New()
	users.On("Reinstate", ctx, id).Return(common.ErrStaleStatus)

	_, err := svc.ReinstateUser(ctx, id, uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
}

func TestModerationService_UnblockListing_NotBlocked(t *testing.T) {
	listings := new(mockListingRepo)
	svc := newModerationService(new(mockUserRepo), listings, new(mockRefundRepo))
	ctx := context.Background()

	id := uuid.New()
	listings.On("Unblock", ctx, id).Return(common.ErrStaleStatus)

	_, err := svc.UnblockListing(ctx, id, uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
	listings.AssertNotCalled(t, "GetByID")
}

func TestModerationService_ProcessRefund_AlreadyProcessed(t *testing.T) {
	refunds := new(mockRefundRepo)
	svc := newModerationService(new(mockUserRepo), new(mockListingRepo), refunds)
	ctx := context.Background()

	id := uuid.New()
	refunds.On("MarkProcessed", ctx, id).Return(common.ErrStaleStatus)

	_, err := svc.ProcessRefund(ctx, id, uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
	refunds.AssertNotCalled(t, "GetByID")
}

func TestModerationService_ProcessRefund_Success(t *testing.T) {
	refunds := new(mockRefundRepo)
	svc := newModerationService(new(mockUserRepo), new(mockListingRepo), refunds)
	ctx := context.Background()

	id := uuid.New()
	refunds.On("MarkProcessed", ctx, id).Return(nil)
	refunds.On("GetByID", ctx, id).Return(&models.Refund{
		ID:     id,
		Status: models.RefundStatusProcessed,
	}, nil)

	refund, err := svc.ProcessRefund(ctx, id, uuid.New(), "Оператор")

	assert.NoError(t, err)
	assert.Equal(t, models.RefundStatusProcessed, refund.Status)
	refunds.AssertExpectations(t)
}

func TestModerationService_ListUsers_InvalidStatus(t *testing.T) {
	users := new(mockUserRepo)
	svc := newModerationService(users, new(mockListingRepo), new(mockRefundRepo))

	_, err := svc.ListUsers(context.Background(), "banned", 20, 0)

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	users.AssertNotCalled(t, "List")
}
