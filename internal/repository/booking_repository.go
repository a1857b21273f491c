package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository struct {
	db *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetByID возвращает бронирование по ID.
func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return common.GetByID[models.Booking](ctx, r.db, "bookings", id, ErrBookingNotFound)
}

// List возвращает бронирования, опционально фильтруя по статусу.
func (r *BookingRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Booking, error) {
	var bookings []models.Booking
	if status != "" {
		err := r.db.SelectContext(ctx, &bookings, `
			SELECT * FROM bookings WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
		return bookings, err
	}

	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return bookings, err
}

// ListCompletedPaidInPeriod возвращает завершённые и оплаченные
// бронирования, закрытые в заданном периоде. Это канонический вход
// для агрегации выплат.
func (r *BookingRepository) ListCompletedPaidInPeriod(ctx context.Context, start, end time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.SelectContext(ctx, &bookings, `
		SELECT * FROM bookings
		WHERE status = $1 AND payment_status = $2 AND completed_at >= $3 AND completed_at <= $4
		ORDER BY completed_at
	`, models.BookingStatusCompleted, models.BookingPaymentPaid, start, end)
	return bookings, err
}

// RevenueForPeriod возвращает оборот по завершённым и оплаченным
// бронированиям за период.
func (r *BookingRepository) RevenueForPeriod(ctx context.Context, start, end time.Time) (float64, int, error) {
	var result struct {
		Total float64 `db:"total"`
		Count int     `db:"count"`
	}
	err := r.db.GetContext(ctx, &result, `
		SELECT COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count
		FROM bookings
		WHERE status = $1 AND payment_status = $2 AND completed_at >= $3 AND completed_at <= $4
	`, models.BookingStatusCompleted, models.BookingPaymentPaid, start, end)
	if err != nil {
		return 0, 0, fmt.Errorf("booking repository: revenue for period: %w", err)
	}
	return result.Total, result.Count, nil
}

// CountByStatus возвращает количество бронирований в каждом статусе.
func (r *BookingRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) AS cnt FROM bookings GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var cnt int
		if err := rows.Scan(&status, &cnt); err != nil {
			return nil, err
		}
		counts[status] = cnt
	}
	return counts, rows.Err()
}
