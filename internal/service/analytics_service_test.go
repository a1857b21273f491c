package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAnalyticsBookingRepo struct {
	mock.Mock
}

func (m *mockAnalyticsBookingRepo) RevenueForPeriod(ctx context.Context, start, end time.Time) (float64, int, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

func (m *mockAnalyticsBookingRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int), args.Error(1)
}

type mockStatusCounter struct {
	mock.Mock
}

func (m *mockStatusCounter) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int), args.Error(1)
}

func newAnalyticsService(bookings *mockAnalyticsBookingRepo) (*AnalyticsService, *mockStatusCounter) {
	counter := new(mockStatusCounter)
	svc := NewAnalyticsService(bookings, counter, counter, counter, NewCacheService(), time.Minute)
	return svc, counter
}

func TestAnalyticsService_GetRevenueStats_ComparesPeriods(t *testing.T) {
	bookings := new(mockAnalyticsBookingRepo)
	svc, _ := newAnalyticsService(bookings)
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	prevStart := start.Add(-end.Sub(start))

	bookings.On("RevenueForPeriod", ctx, start, end).Return(30000.0, 15, nil)
	bookings.On("RevenueForPeriod", ctx, prevStart, start).Return(20000.0, 10, nil)

	stats, err := svc.GetRevenueStats(ctx, start, end)

	assert.NoError(t, err)
	assert.InDelta(t, 30000.0, stats.TotalVolume, 0.001)
	assert.InDelta(t, 2700.0, stats.PlatformRevenue, 0.001)
	assert.InDelta(t, 27300.0, stats.HostPayouts, 0.001)
	assert.Equal(t, 15, stats.BookingCount)
	assert.InDelta(t, 50.0, stats.VolumeChange, 0.001)
	assert.InDelta(t, 50.0, stats.BookingChange, 0.001)
	bookings.AssertExpectations(t)
}

func TestAnalyticsService_GetRevenueStats_SecondCallHitsCache(t *testing.T) {
	bookings := new(mockAnalyticsBookingRepo)
	svc, _ := newAnalyticsService(bookings)
	ctx := context.Background()

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	bookings.On("RevenueForPeriod", ctx, mock.Anything, mock.Anything).Return(10000.0, 5, nil)

	_, err := svc.GetRevenueStats(ctx, start, end)
	assert.NoError(t, err)

	_, err = svc.GetRevenueStats(ctx, start, end)
	assert.NoError(t, err)

	// Текущий и предыдущий периоды по одному разу каждый.
	bookings.AssertNumberOfCalls(t, "RevenueForPeriod", 2)
}

func TestAnalyticsService_GetRevenueStats_InvalidPeriod(t *testing.T) {
	bookings := new(mockAnalyticsBookingRepo)
	svc, _ := newAnalyticsService(bookings)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.GetRevenueStats(context.Background(), start, start)

	assert.Error(t, err)
	bookings.AssertNotCalled(t, "RevenueForPeriod")
}

func TestAnalyticsService_GetDashboardStats_CollectsQueues(t *testing.T) {
	bookings := new(mockAnalyticsBookingRepo)
	svc, counter := newAnalyticsService(bookings)
	ctx := context.Background()

	counter.On("CountByStatus", ctx).Return(map[string]int{"pending": 4}, nil)
	bookings.On("CountByStatus", ctx).Return(map[string]int{"active": 12, "completed": 30}, nil)

	stats, err := svc.GetDashboardStats(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 4, stats.Disputes["pending"])
	assert.Equal(t, 12, stats.Bookings["active"])
	assert.Equal(t, 30, stats.Bookings["completed"])
}
