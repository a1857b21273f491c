package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

var ErrAdminNotFound = errors.New("admin not found")

type AdminRepository struct {
	db *sqlx.DB
}

func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Create создаёт оператора.
func (r *AdminRepository) Create(ctx context.Context, a *models.Admin) error {
	query := `
		INSERT INTO admins (email, name, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		a.Email, a.Name, a.PasswordHash, a.Role,
	).Scan(&a.ID, &a.CreatedAt)
}

// GetByID возвращает оператора по ID.
func (r *AdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Admin, error) {
	return common.GetByID[models.Admin](ctx, r.db, "admins", id, ErrAdminNotFound)
}

// GetByEmail возвращает оператора по email.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return common.GetByField[models.Admin](ctx, r.db, "admins", "email", email, ErrAdminNotFound)
}

// UpdateLastLoginAt обновляет время последнего входа.
func (r *AdminRepository) UpdateLastLoginAt(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE admins SET last_login_at = NOW() WHERE id = $1`, id)
	return err
}

// CreateSession сохраняет сессию оператора.
func (r *AdminRepository) CreateSession(ctx context.Context, s *models.Session) error {
	query := `
		INSERT INTO sessions (admin_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		s.AdminID, s.RefreshToken, s.UserAgent, s.IPAddress, s.ExpiresAt,
	).Scan(&s.ID, &s.CreatedAt)
}

// GetSessionByToken возвращает сессию по refresh токену.
func (r *AdminRepository) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	return common.GetByField[models.Session](ctx, r.db, "sessions", "refresh_token", refreshToken, common.ErrNotFound)
}

// DeleteSession удаляет сессию по refresh токену.
func (r *AdminRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, refreshToken)
	return err
}
