package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

var ErrDisputeNotFound = errors.New("dispute not found")

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// timelineEntryJSON сериализует запись хронологии как одноэлементный
// JSONB массив для конкатенации `timeline || $n::jsonb`.
func timelineEntryJSON(entry models.TimelineEntry) ([]byte, error) {
	return json.Marshal(models.Timeline{entry})
}

// Create создаёт спор с первой записью в хронологии.
func (r *DisputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	query := `
		INSERT INTO disputes (type, booking_id, reporter_id, reporter_name, respondent_id,
			description, amount, is_urgent, priority, status, timeline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		d.Type, d.BookingID, d.ReporterID, d.ReporterName, d.RespondentID,
		d.Description, d.Amount, d.IsUrgent, d.Priority, d.Status, d.Timeline,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// GetByID возвращает спор по ID.
func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `SELECT * FROM disputes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// List возвращает споры, опционально фильтруя по статусу.
func (r *DisputeRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Dispute, error) {
	var disputes []models.Dispute
	if status != "" {
		err := r.db.SelectContext(ctx, &disputes, `
			SELECT * FROM disputes WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
		return disputes, err
	}

	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return disputes, err
}

// Assign назначает оператора на спор. Переход open -> in_progress
// проверяется в самом UPDATE: если спор уже не в статусе open,
// обновление не затронет ни одной строки.
func (r *DisputeRepository) Assign(ctx context.Context, id, adminID uuid.UUID, adminName string, entry models.TimelineEntry) error {
	entryJSON, err := timelineEntryJSON(entry)
	if err != nil {
		return fmt.Errorf("dispute repository: marshal timeline entry: %w", err)
	}

	return common.ExecConditional(ctx, r.db, `
		UPDATE disputes
		SET status = $2, assigned_to = $3, assigned_to_name = $4,
			timeline = timeline || $5::jsonb, updated_at = NOW()
		WHERE id = $1 AND status = $6
	`, id, models.DisputeStatusInProgress, adminID, adminName, entryJSON, models.DisputeStatusOpen)
}

// UpdateStatus переводит спор в новый статус при условии, что текущий
// статус входит в допустимый список fromStatuses.
func (r *DisputeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatuses []string, newStatus string, entry models.TimelineEntry) error {
	entryJSON, err := timelineEntryJSON(entry)
	if err != nil {
		return fmt.Errorf("dispute repository: marshal timeline entry: %w", err)
	}

	return common.ExecConditional(ctx, r.db, `
		UPDATE disputes
		SET status = $2, timeline = timeline || $3::jsonb, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
	`, id, newStatus, entryJSON, pq.Array(fromStatuses))
}

// ResolveParams описывает атомарный батч разрешения спора: изменение
// статуса дела и все побочные эффекты фиксируются одной транзакцией.
type ResolveParams struct {
	DisputeID          uuid.UUID
	Decision           string
	Explanation        string
	CompensationType   *string
	CompensationAmount *float64
	Entry              models.TimelineEntry
	Refunds            []models.Refund
	Suspensions        []UserSuspension
	Blocks             []ListingBlock
}

// UserSuspension — блокировка пользователя по итогам спора.
type UserSuspension struct {
	UserID uuid.UUID
	Reason string
	Until  *time.Time
}

// ListingBlock — блокировка объявления по итогам спора.
type ListingBlock struct {
	ListingID uuid.UUID
	Reason    string
}

// ResolveAtomic закрывает спор и применяет все действия решения одним
// атомарным батчем. Частичное применение эффектов невозможно: любая
// ошибка откатывает и статус дела, и все побочные записи.
func (r *DisputeRepository) ResolveAtomic(ctx context.Context, p ResolveParams) error {
	entryJSON, err := timelineEntryJSON(p.Entry)
	if err != nil {
		return fmt.Errorf("dispute repository: marshal timeline entry: %w", err)
	}

	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// Переход in_progress -> resolved проверяется внутри UPDATE.
		if err := common.ExecConditional(ctx, tx, `
			UPDATE disputes
			SET status = $2, resolution_decision = $3, resolution_explanation = $4,
				compensation_type = $5, compensation_amount = $6,
				timeline = timeline || $7::jsonb, resolved_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $8
		`, p.DisputeID, models.DisputeStatusResolved, p.Decision, p.Explanation,
			p.CompensationType, p.CompensationAmount, entryJSON, models.DisputeStatusInProgress); err != nil {
			return err
		}

		for _, refund := range p.Refunds {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO refunds (dispute_id, user_id, amount, reason, status)
				VALUES ($1, $2, $3, $4, $5)
			`, p.DisputeID, refund.UserID, refund.Amount, refund.Reason, models.RefundStatusPending); err != nil {
				return fmt.Errorf("dispute repository: create refund: %w", err)
			}
		}

		for _, susp := range p.Suspensions {
			if err := common.ExecConditional(ctx, tx, `
				UPDATE users
				SET status = $2, suspension_reason = $3, suspended_until = $4, updated_at = NOW()
				WHERE id = $1
			`, susp.UserID, models.UserStatusSuspended, susp.Reason, susp.Until); err != nil {
				if errors.Is(err, common.ErrStaleStatus) {
					return fmt.Errorf("dispute repository: suspend user %s: %w", susp.UserID, common.ErrNotFound)
				}
				return fmt.Errorf("dispute repository: suspend user %s: %w", susp.UserID, err)
			}
		}

		for _, block := range p.Blocks {
			if err := common.ExecConditional(ctx, tx, `
				UPDATE listings
				SET status = $2, block_reason = $3, updated_at = NOW()
				WHERE id = $1
			`, block.ListingID, models.ListingStatusBlocked, block.Reason); err != nil {
				if errors.Is(err, common.ErrStaleStatus) {
					return fmt.Errorf("dispute repository: block listing %s: %w", block.ListingID, common.ErrNotFound)
				}
				return fmt.Errorf("dispute repository: block listing %s: %w", block.ListingID, err)
			}
		}

		return nil
	})
}

// CountByStatus возвращает количество споров в каждом статусе.
func (r *DisputeRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) AS cnt FROM disputes GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: count by status: %w", err)
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
