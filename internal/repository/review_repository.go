package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

var ErrReviewNotFound = errors.New("review not found")

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// GetByID возвращает отзыв по ID.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	return common.GetByID[models.Review](ctx, r.db, "reviews", id, ErrReviewNotFound)
}

// List возвращает отзывы, опционально фильтруя по статусу.
func (r *ReviewRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Review, error) {
	var reviews []models.Review
	if status != "" {
		err := r.db.SelectContext(ctx, &reviews, `
			SELECT * FROM reviews WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
		return reviews, err
	}

	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return reviews, err
}

// ApproveAtomic одобряет отзыв и в той же транзакции пересчитывает
// агрегат рейтинга цели по полному актуальному набору одобренных отзывов.
func (r *ReviewRepository) ApproveAtomic(ctx context.Context, id uuid.UUID, fromStatuses []string) (*models.Review, error) {
	var review models.Review
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &review, `SELECT * FROM reviews WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReviewNotFound
			}
			return err
		}

		if err := common.ExecConditional(ctx, tx, `
			UPDATE reviews
			SET status = $2, approved_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = ANY($3)
		`, id, models.ReviewStatusApproved, pq.Array(fromStatuses)); err != nil {
			return err
		}

		if err := r.recomputeTarget(ctx, tx, review.TargetType, review.TargetID); err != nil {
			return err
		}

		return tx.GetContext(ctx, &review, `SELECT * FROM reviews WHERE id = $1`, id)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// Reject отклоняет отзыв с указанием причины.
func (r *ReviewRepository) Reject(ctx context.Context, id uuid.UUID, reason string, fromStatuses []string) error {
	return common.ExecConditional(ctx, r.db, `
		UPDATE reviews
		SET status = $2, rejection_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
	`, id, models.ReviewStatusRejected, reason, pq.Array(fromStatuses))
}

// Flag помечает отзыв как подозрительный.
func (r *ReviewRepository) Flag(ctx context.Context, id uuid.UUID, reason string, fromStatuses []string) error {
	return common.ExecConditional(ctx, r.db, `
		UPDATE reviews
		SET status = $2, flag_reason = $3, updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
	`, id, models.ReviewStatusFlagged, reason, pq.Array(fromStatuses))
}

// DeleteAtomic удаляет отзыв из любого статуса. Если удалён одобренный
// отзыв, агрегат рейтинга цели пересчитывается в той же транзакции.
func (r *ReviewRepository) DeleteAtomic(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	var review models.Review
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &review, `SELECT * FROM reviews WHERE id = $1 FOR UPDATE`, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrReviewNotFound
			}
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
			return fmt.Errorf("review repository: delete: %w", err)
		}

		if review.Status == models.ReviewStatusApproved {
			return r.recomputeTarget(ctx, tx, review.TargetType, review.TargetID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListApprovedByTarget возвращает все одобренные отзывы цели.
func (r *ReviewRepository) ListApprovedByTarget(ctx context.Context, targetType string, targetID uuid.UUID) ([]models.Review, error) {
	var reviews []models.Review
	err := r.db.SelectContext(ctx, &reviews, `
		SELECT * FROM reviews WHERE target_type = $1 AND target_id = $2 AND status = $3
		ORDER BY created_at
	`, targetType, targetID, models.ReviewStatusApproved)
	return reviews, err
}

// recomputeTarget перечитывает полный набор одобренных отзывов цели и
// перезаписывает агрегат рейтинга. Инкрементальные патчи агрегата
// запрещены: они могут разойтись с фактическим средним.
func (r *ReviewRepository) recomputeTarget(ctx context.Context, tx *sqlx.Tx, targetType string, targetID uuid.UUID) error {
	var approved []models.Review
	if err := tx.SelectContext(ctx, &approved, `
		SELECT * FROM reviews WHERE target_type = $1 AND target_id = $2 AND status = $3
	`, targetType, targetID, models.ReviewStatusApproved); err != nil {
		return fmt.Errorf("review repository: load approved reviews: %w", err)
	}

	summary := models.ComputeRatingSummary(approved)

	var table string
	switch targetType {
	case models.ReviewTargetListing:
		table = "listings"
	case models.ReviewTargetHost:
		table = "users"
	default:
		return fmt.Errorf("review repository: неизвестный тип цели %q", targetType)
	}

	query := fmt.Sprintf(`
		UPDATE %s SET rating = $2, review_count = $3, rating_distribution = $4, updated_at = NOW()
		WHERE id = $1
	`, table)
	if err := common.ExecConditional(ctx, tx, query, targetID, summary.Rating, summary.ReviewCount, summary.Distribution); err != nil {
		if errors.Is(err, common.ErrStaleStatus) {
			return fmt.Errorf("review repository: цель отзыва %s не найдена: %w", targetID, common.ErrNotFound)
		}
		return err
	}
	return nil
}

// CountByStatus возвращает количество отзывов в каждом статусе.
func (r *ReviewRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) AS cnt FROM reviews GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("review repository: count by status: %w", err)
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
