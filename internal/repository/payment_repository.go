package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

var ErrPaymentNotFound = errors.New("payment not found")

type PaymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// GetByID возвращает платёж по ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	return common.GetByID[models.Payment](ctx, r.db, "payments", id, ErrPaymentNotFound)
}

// List возвращает платежи, опционально фильтруя по статусу.
func (r *PaymentRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Payment, error) {
	var payments []models.Payment
	if status != "" {
		err := r.db.SelectContext(ctx, &payments, `
			SELECT * FROM payments WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
		return payments, err
	}

	err := r.db.SelectContext(ctx, &payments, `
		SELECT * FROM payments ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return payments, err
}

// VerifyAtomic подтверждает платёж и, если он привязан к бронированию,
// отмечает бронирование оплаченным в той же транзакции.
func (r *PaymentRepository) VerifyAtomic(ctx context.Context, id, verifiedBy uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// Переход pending -> verified проверяется внутри UPDATE.
		if err := common.ExecConditional(ctx, tx, `
			UPDATE payments
			SET status = $2, verified_by = $3, verified_at = NOW()
			WHERE id = $1 AND status = $4
		`, id, models.PaymentStatusVerified, verifiedBy, models.PaymentStatusPending); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &payment, `SELECT * FROM payments WHERE id = $1`, id); err != nil {
			return err
		}

		if payment.BookingID != nil {
			if _, err := tx.ExecContext(ctx, `
				UPDATE bookings SET payment_status = $2, updated_at = NOW() WHERE id = $1
			`, *payment.BookingID, models.BookingPaymentPaid); err != nil {
				return fmt.Errorf("payment repository: mark booking paid: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// Reject отклоняет платёж с указанием причины.
func (r *PaymentRepository) Reject(ctx context.Context, id uuid.UUID, reason string) error {
	return common.ExecConditional(ctx, r.db, `
		UPDATE payments
		SET status = $2, rejection_reason = $3
		WHERE id = $1 AND status = $4
	`, id, models.PaymentStatusFailed, reason, models.PaymentStatusPending)
}
