package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create сохраняет уведомление.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (target_user_id, type, title, message, priority, data, action_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		n.TargetUserID, n.Type, n.Title, n.Message, n.Priority, n.Data, n.ActionURL,
	).Scan(&n.ID, &n.CreatedAt)
}

// GetByID возвращает уведомление по ID.
func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	return common.GetByID[models.Notification](ctx, r.db, "notifications", id, ErrNotificationNotFound)
}

// List возвращает уведомления оператора.
func (r *NotificationRepository) List(ctx context.Context, targetUserID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	var items []models.Notification
	if unreadOnly {
		err := r.db.SelectContext(ctx, &items, `
			SELECT * FROM notifications WHERE target_user_id = $1 AND is_read = FALSE
			ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, targetUserID, limit, offset)
		return items, err
	}

	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM notifications WHERE target_user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, targetUserID, limit, offset)
	return items, err
}

// MarkAsRead отмечает уведомление как прочитанное.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	return err
}

// MarkAllAsRead отмечает все уведомления оператора как прочитанные.
func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, targetUserID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE target_user_id = $1 AND is_read = FALSE
	`, targetUserID)
	return err
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (r *NotificationRepository) CountUnread(ctx context.Context, targetUserID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications WHERE target_user_id = $1 AND is_read = FALSE
	`, targetUserID)
	return count, err
}
