package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

var ErrPayoutNotFound = errors.New("payout not found")

type PayoutRepository struct {
	db *sqlx.DB
}

func NewPayoutRepository(db *sqlx.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// CreateBatch сохраняет набор снимков выплат одной транзакцией.
func (r *PayoutRepository) CreateBatch(ctx context.Context, payouts []models.Payout) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		for i := range payouts {
			p := &payouts[i]
			err := tx.QueryRowxContext(ctx, `
				INSERT INTO payouts (host_id, period_start, period_end, total_amount,
					platform_fees, net_amount, booking_ids, status)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id, created_at
			`, p.HostID, p.PeriodStart, p.PeriodEnd, p.TotalAmount,
				p.PlatformFees, p.NetAmount, p.BookingIDs, p.Status,
			).Scan(&p.ID, &p.CreatedAt)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GetByID возвращает выплату по ID.
func (r *PayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	return common.GetByID[models.Payout](ctx, r.db, "payouts", id, ErrPayoutNotFound)
}

// List возвращает выплаты, опционально фильтруя по статусу.
func (r *PayoutRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Payout, error) {
	var payouts []models.Payout
	if status != "" {
		err := r.db.SelectContext(ctx, &payouts, `
			SELECT * FROM payouts WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
		return payouts, err
	}

	err := r.db.SelectContext(ctx, &payouts, `
		SELECT * FROM payouts ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return payouts, err
}

// UpdateStatus переводит выплату в новый статус при условии, что текущий
// статус входит в допустимый список.
func (r *PayoutRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatuses []string, newStatus string, processed bool) error {
	if processed {
		return common.ExecConditional(ctx, r.db, `
			UPDATE payouts SET status = $2, processed_at = NOW() WHERE id = $1 AND status = ANY($3)
		`, id, newStatus, pq.Array(fromStatuses))
	}
	return common.ExecConditional(ctx, r.db, `
		UPDATE payouts SET status = $2 WHERE id = $1 AND status = ANY($3)
	`, id, newStatus, pq.Array(fromStatuses))
}
