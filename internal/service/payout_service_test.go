package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

type mockPayoutRepo struct {
	mock.Mock
}

func (m *mockPayoutRepo) CreateBatch(ctx context.Context, payouts []models.Payout) error {
	args := m.Called(ctx, payouts)
	return args.Error(0)
}

func (m *mockPayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Payout, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatuses []string, newStatus string, processed bool) error {
	args := m.Called(ctx, id, fromStatuses, newStatus, processed)
	return args.Error(0)
}

type mockPayoutBookingRepo struct {
	mock.Mock
}

func (m *mockPayoutBookingRepo) ListCompletedPaidInPeriod(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func newPayoutService(repo *mockPayoutRepo, bookings *mockPayoutBookingRepo) *PayoutService {
	return NewPayoutService(repo, bookings, stubAuditor{}, testLogger())
}

func completedBooking(hostID uuid.UUID, amount float64, completedAt time.Time) models.Booking {
	return models.Booking{
		ID:            uuid.New(),
		HostID:        hostID,
		Amount:        amount,
		Status:        models.BookingStatusCompleted,
		PaymentStatus: models.BookingPaymentPaid,
		CompletedAt:   &completedAt,
	}
}

func TestAggregatePayoutsForPeriod_GroupsByHost(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 23, 59, 59, 0, time.UTC)
	hostID := uuid.New()

	bookings := []models.Booking{
		completedBooking(hostID, 1000, start.Add(24*time.Hour)),
		completedBooking(hostID, 2000, start.Add(48*time.Hour)),
	}

	payouts := AggregatePayoutsForPeriod(bookings, start, end)

	assert.Len(t, payouts, 1)
	assert.Equal(t, hostID, payouts[0].HostID)
	assert.InDelta(t, 3000.0, payouts[0].TotalAmount, 0.001)
	assert.InDelta(t, 270.0, payouts[0].PlatformFees, 0.001)
	assert.InDelta(t, 2730.0, payouts[0].NetAmount, 0.001)
	assert.Len(t, payouts[0].BookingIDs, 2)
	assert.Equal(t, models.PayoutStatusPending, payouts[0].Status)
}

func TestAggregatePayoutsForPeriod_FiltersIneligible(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	hostID := uuid.New()

	outside := completedBooking(hostID, 500, end.Add(24*time.Hour))
	unpaid := completedBooking(hostID, 700, start.Add(24*time.Hour))
	unpaid.PaymentStatus = models.BookingPaymentUnpaid
	active := completedBooking(hostID, 900, start.Add(24*time.Hour))
	active.Status = models.BookingStatusActive
	eligible := completedBooking(hostID, 1000, start.Add(24*time.Hour))

	payouts := AggregatePayoutsForPeriod([]models.Booking{outside, unpaid, active, eligible}, start, end)

	assert.Len(t, payouts, 1)
	assert.InDelta(t, 1000.0, payouts[0].TotalAmount, 0.001)
	assert.Len(t, payouts[0].BookingIDs, 1)
}

func TestAggregatePayoutsForPeriod_DeterministicOrder(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	hostA := uuid.New()
	hostB := uuid.New()
	bookings := []models.Booking{
		completedBooking(hostB, 100, start.Add(time.Hour)),
		completedBooking(hostA, 200, start.Add(time.Hour)),
	}

	first := AggregatePayoutsForPeriod(bookings, start, end)
	second := AggregatePayoutsForPeriod(bookings, start, end)

	assert.Equal(t, first, second)
	// Выплаты отсортированы по ID хоста.
	assert.True(t, first[0].HostID.String() < first[1].HostID.String())
}

func TestPayoutService_GeneratePayouts_InvalidPeriod(t *testing.T) {
	repo := new(mockPayoutRepo)
	bookings := new(mockPayoutBookingRepo)
	svc := newPayoutService(repo, bookings)

	start := time.Now()
	_, err := svc.GeneratePayouts(context.Background(), start, start, uuid.New(), "Суперадмин")

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	bookings.AssertNotCalled(t, "ListCompletedPaidInPeriod")
}

func TestPayoutService_GeneratePayouts_EmptyPeriod(t *testing.T) {
	repo := new(mockPayoutRepo)
	bookingRepo := new(mockPayoutBookingRepo)
	svc := newPayoutService(repo, bookingRepo)
	ctx := context.Background()

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	bookingRepo.On("ListCompletedPaidInPeriod", ctx, start, end).Return([]models.Booking{}, nil)

	payouts, err := svc.GeneratePayouts(ctx, start, end, uuid.New(), "Суперадмин")

	assert.NoError(t, err)
	assert.Empty(t, payouts)
	repo.AssertNotCalled(t, "CreateBatch")
}

func TestPayoutService_GeneratePayouts_PersistsBatch(t *testing.T) {
	repo := new(mockPayoutRepo)
	bookingRepo := new(mockPayoutBookingRepo)
	svc := newPayoutService(repo, bookingRepo)
	ctx := context.Background()

	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	hostID := uuid.New()

	bookingRepo.On("ListCompletedPaidInPeriod", ctx, start, end).Return([]models.Booking{
		completedBooking(hostID, 5000, start.Add(time.Hour)),
	}, nil)
	repo.On("CreateBatch", ctx, mock.MatchedBy(func(payouts []models.Payout) bool {
		return len(payouts) == 1 && payouts[0].HostID == hostID
	})).Return(nil)

	payouts, err := svc.GeneratePayouts(ctx, start, end, uuid.New(), "Суперадмин")

	assert.NoError(t, err)
	assert.Len(t, payouts, 1)
	repo.AssertExpectations(t)
}

func TestPayoutService_MarkCompleted_FromProcessingOnly(t *testing.T) {
	repo := new(mockPayoutRepo)
	bookingRepo := new(mockPayoutBookingRepo)
	svc := newPayoutService(repo, bookingRepo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("UpdateStatus", ctx, id, []string{models.PayoutStatusProcessing},
		models.PayoutStatusCompleted, true).Return(common.ErrStaleStatus)

	_, err := svc.MarkCompleted(ctx, id, uuid.New(), "Суперадмин")

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestPayoutService_ListPayouts_InvalidStatus(t *testing.T) {
	repo := new(mockPayoutRepo)
	bookingRepo := new(mockPayoutBookingRepo)
	svc := newPayoutService(repo, bookingRepo)

	_, err := svc.ListPayouts(context.Background(), "cancelled", 20, 0)

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "List")
}
