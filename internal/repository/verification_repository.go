package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

var ErrVerificationNotFound = errors.New("verification not found")

type VerificationRepository struct {
	db *sqlx.DB
}

func NewVerificationRepository(db *sqlx.DB) *VerificationRepository {
	return &VerificationRepository{db: db}
}

// Create создаёт KYC заявку.
func (r *VerificationRepository) Create(ctx context.Context, v *models.Verification) error {
	query := `
		INSERT INTO verifications (user_id, type, status, documents, timeline)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowxContext(ctx, query,
		v.UserID, v.Type, v.Status, v.Documents, v.Timeline,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
}

// GetByID возвращает заявку по ID.
func (r *VerificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Verification, error) {
	return common.GetByID[models.Verification](ctx, r.db, "verifications", id, ErrVerificationNotFound)
}

// List возвращает заявки, опционально фильтруя по статусу.
func (r *VerificationRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Verification, error) {
	var items []models.Verification
	if status != "" {
		err := r.db.SelectContext(ctx, &items, `
			SELECT * FROM verifications WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
		return items, err
	}

	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM verifications ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return items, err
}

// ApproveAtomic одобряет заявку и в той же транзакции выставляет
// пользователю статус verified с типом верификации.
func (r *VerificationRepository) ApproveAtomic(ctx context.Context, id, approvedBy uuid.UUID, notes *string, entry models.TimelineEntry) (*models.Verification, error) {
	entryJSON, err := timelineEntryJSON(entry)
	if err != nil {
		return nil, err
	}

	var v models.Verification
	err = common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		// Переход pending -> approved проверяется внутри UPDATE.
		if err := common.ExecConditional(ctx, tx, `
			UPDATE verifications
			SET status = $2, review_notes = $3, approved_by = $4,
				timeline = timeline || $5::jsonb, approved_at = NOW(), updated_at = NOW()
			WHERE id = $1 AND status = $6
		`, id, models.VerificationStatusApproved, notes, approvedBy, entryJSON,
			models.VerificationStatusPending); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &v, `SELECT * FROM verifications WHERE id = $1`, id); err != nil {
			return err
		}

		if err := common.ExecConditional(ctx, tx, `
			UPDATE users SET verification_status = $2, verification_type = $3, updated_at = NOW()
			WHERE id = $1
		`, v.UserID, models.UserVerificationVerified, v.Type); err != nil {
			if errors.Is(err, common.ErrStaleStatus) {
				return common.ErrNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// RejectAtomic отклоняет заявку и выставляет пользователю статус rejected
// одним атомарным батчем.
func (r *VerificationRepository) RejectAtomic(ctx context.Context, id, rejectedBy uuid.UUID, reason string, entry models.TimelineEntry) (*models.Verification, error) {
	entryJSON, err := timelineEntryJSON(entry)
	if err != nil {
		return nil, err
	}

	var v models.Verification
	err = common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := common.ExecConditional(ctx, tx, `
			UPDATE verifications
			SET status = $2, rejection_reason = $3,
				timeline = timeline || $4::jsonb, updated_at = NOW()
			WHERE id = $1 AND status = $5
		`, id, models.VerificationStatusRejected, reason, entryJSON,
			models.VerificationStatusPending); err != nil {
			return err
		}

		if err := tx.GetContext(ctx, &v, `SELECT * FROM verifications WHERE id = $1`, id); err != nil {
			return err
		}

		if err := common.ExecConditional(ctx, tx, `
			UPDATE users SET verification_status = $2, updated_at = NOW() WHERE id = $1
		`, v.UserID, models.UserVerificationRejected); err != nil {
			if errors.Is(err, common.ErrStaleStatus) {
				return common.ErrNotFound
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// RequestDocuments переводит заявку в additional_docs_required и сохраняет
// список запрошенных документов с сообщением для пользователя.
func (r *VerificationRepository) RequestDocuments(ctx context.Context, id uuid.UUID, docs models.StringList, message string, entry models.TimelineEntry) error {
	entryJSON, err := timelineEntryJSON(entry)
	if err != nil {
		return err
	}

	return common.ExecConditional(ctx, r.db, `
		UPDATE verifications
		SET status = $2, requested_documents = $3, request_message = $4,
			timeline = timeline || $5::jsonb, updated_at = NOW()
		WHERE id = $1 AND status = $6
	`, id, models.VerificationStatusAdditionalDocs, docs, message, entryJSON,
		models.VerificationStatusPending)
}

// Resubmit возвращает заявку из additional_docs_required в pending,
// добавляя загруженные документы к существующим.
func (r *VerificationRepository) Resubmit(ctx context.Context, id uuid.UUID, docs models.DocumentList, entry models.TimelineEntry) error {
	entryJSON, err := timelineEntryJSON(entry)
	if err != nil {
		return err
	}

	return common.ExecConditional(ctx, r.db, `
		UPDATE verifications
		SET status = $2, documents = documents || $3::jsonb,
			timeline = timeline || $4::jsonb, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`, id, models.VerificationStatusPending, docs, entryJSON,
		models.VerificationStatusAdditionalDocs)
}

// CountByStatus возвращает количество заявок в каждом статусе.
func (r *VerificationRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) AS cnt FROM verifications GROUP BY status`)
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
