package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrListingNotFound = errors.New("listing not found")
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID возвращает пользователя по ID.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return common.GetByID[models.User](ctx, r.db, "users", id, ErrUserNotFound)
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return common.GetByField[models.User](ctx, r.db, "users", "email", email, ErrUserNotFound)
}

// List возвращает пользователей, опционально фильтруя по статусу.
func (r *UserRepository) List(ctx context.Context, status string, limit, offset int) ([]models.User, error) {
	var users []models.User
	if status != "" {
		err := r.db.SelectContext(ctx, &users, `
			SELECT * FROM users WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
		return users, err
	}

	err := r.db.SelectContext(ctx, &users, `
		SELECT * FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return users, err
}

// Reinstate снимает блокировку с пользователя.
func (r *UserRepository) Reinstate(ctx context.Context, id uuid.UUID) error {
	return common.ExecConditional(ctx, r.db, `
		UPDATE users
		SET status = $2, suspension_reason = NULL, suspended_until = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, models.UserStatusActive, models.UserStatusSuspended)
}
