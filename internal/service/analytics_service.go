package service

import (
	"context"
	"fmt"
	"time"

	"github.com/skladhub/admin-backend/internal/domain/valueobject"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
)

// AnalyticsBookingRepository — подмножество хранилища бронирований
// для расчёта оборота.
type AnalyticsBookingRepository interface {
	RevenueForPeriod(ctx context.Context, start, end time.Time) (float64, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// StatusCounter возвращает распределение записей по статусам.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// RevenueStats — показатели оборота за период со сравнением
// с предыдущим периодом той же длины.
type RevenueStats struct {
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	TotalVolume     float64   `json:"total_volume"`
	PlatformRevenue float64   `json:"platform_revenue"`
	HostPayouts     float64   `json:"host_payouts"`
	BookingCount    int       `json:"booking_count"`
	VolumeChange    float64   `json:"volume_change_percent"`
	BookingChange   float64   `json:"booking_change_percent"`
}

// DashboardStats — сводка очередей модерации для главного экрана.
type DashboardStats struct {
	Disputes      map[string]int `json:"disputes"`
	Reviews       map[string]int `json:"reviews"`
	Verifications map[string]int `json:"verifications"`
	Bookings      map[string]int `json:"bookings"`
}

// AnalyticsService считает показатели платформы с кэшированием.
type AnalyticsService struct {
	bookings      AnalyticsBookingRepository
	disputes      StatusCounter
	reviews       StatusCounter
	verifications StatusCounter
	cache         *CacheService
	cacheTTL      time.Duration
}

// NewAnalyticsService создаёт новый сервис аналитики.
func NewAnalyticsService(bookings AnalyticsBookingRepository, disputes, reviews, verifications StatusCounter, cache *CacheService, cacheTTL time.Duration) *AnalyticsService {
	return &AnalyticsService{
		bookings:      bookings,
		disputes:      disputes,
		reviews:       reviews,
		verifications: verifications,
		cache:         cache,
		cacheTTL:      cacheTTL,
	}
}

// GetRevenueStats возвращает оборот за период и сравнение с предыдущим
// периодом той же длины. Комиссия платформы считается от оборота по
// единой ставке.
func (s *AnalyticsService) GetRevenueStats(ctx context.Context, start, end time.Time) (*RevenueStats, error) {
	if !end.After(start) {
		return nil, apperror.New(apperror.ErrCodeValidation, "конец периода должен быть позже начала")
	}

	cacheKey := fmt.Sprintf("analytics:revenue:%d:%d", start.Unix(), end.Unix())
	if cached, ok := s.cache.Get(cacheKey); ok {
		if stats, ok := cached.(*RevenueStats); ok {
			return stats, nil
		}
	}

	volume, count, err := s.bookings.RevenueForPeriod(ctx, start, end)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка расчёта оборота")
	}

	// Предыдущий период той же длины, примыкающий к началу текущего.
	length := end.Sub(start)
	prevVolume, prevCount, err := s.bookings.RevenueForPeriod(ctx, start.Add(-length), start)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка расчёта оборота за предыдущий период")
	}

	stats := &RevenueStats{
		PeriodStart:     start,
		PeriodEnd:       end,
		TotalVolume:     volume,
		PlatformRevenue: valueobject.PlatformFee(volume),
		HostPayouts:     valueobject.NetAmount(volume),
		BookingCount:    count,
		VolumeChange:    valueobject.PercentChange(volume, prevVolume),
		BookingChange:   valueobject.PercentChange(float64(count), float64(prevCount)),
	}

	s.cache.Set(cacheKey, stats, s.cacheTTL)
	return stats, nil
}

// GetDashboardStats возвращает распределение дел по статусам для
// всех очередей модерации.
func (s *AnalyticsService) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	const cacheKey = "analytics:dashboard"
	if cached, ok := s.cache.Get(cacheKey); ok {
		if stats, ok := cached.(*DashboardStats); ok {
			return stats, nil
		}
	}

	disputes, err := s.disputes.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка подсчёта споров")
	}
	reviews, err := s.reviews.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка подсчёта отзывов")
	}
	verifications, err := s.verifications.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка подсчёта KYC заявок")
	}
	bookings, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка подсчёта бронирований")
	}

	stats := &DashboardStats{
		Disputes:      disputes,
		Reviews:       reviews,
		Verifications: verifications,
		Bookings:      bookings,
	}

	s.cache.Set(cacheKey, stats, s.cacheTTL)
	return stats, nil
}
