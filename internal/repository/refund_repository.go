package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

var ErrRefundNotFound = errors.New("refund not found")

type RefundRepository struct {
	db *sqlx.DB
}

func NewRefundRepository(db *sqlx.DB) *RefundRepository {
	return &RefundRepository{db: db}
}

// GetByID возвращает возврат по ID.
func (r *RefundRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error) {
	return common.GetByID[models.Refund](ctx, r.db, "refunds", id, ErrRefundNotFound)
}

// ListByDispute возвращает возвраты, созданные при разрешении спора.
func (r *RefundRepository) ListByDispute(ctx context.Context, disputeID uuid.UUID) ([]models.Refund, error) {
	var refunds []models.Refund
	err := r.db.SelectContext(ctx, &refunds, `
		SELECT * FROM refunds WHERE dispute_id = $1 ORDER BY created_at
	`, disputeID)
	return refunds, err
}

// ListPending возвращает необработанные возвраты.
func (r *RefundRepository) ListPending(ctx context.Context, limit, offset int) ([]models.Refund, error) {
	var refunds []models.Refund
	err := r.db.SelectContext(ctx, &refunds, `
		SELECT * FROM refunds WHERE status = $1 ORDER BY created_at LIMIT $2 OFFSET $3
	`, models.RefundStatusPending, limit, offset)
	return refunds, err
}

// MarkProcessed отмечает возврат обработанным.
func (r *RefundRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return common.ExecConditional(ctx, r.db, `
		UPDATE refunds SET status = $2, processed_at = NOW() WHERE id = $1 AND status = $3
	`, id, models.RefundStatusProcessed, models.RefundStatusPending)
}
