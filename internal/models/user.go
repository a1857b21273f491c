package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы пользователя маркетплейса.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// Статусы верификации пользователя.
const (
	UserVerificationUnverified = "unverified"
	UserVerificationPending    = "pending"
	UserVerificationVerified   = "verified"
	UserVerificationRejected   = "rejected"
)

// User описывает пользователя маркетплейса (хост или клиент).
// В админке пользователи выступают объектами модерации: их можно
// заблокировать по итогам спора или верифицировать по KYC заявке.
type User struct {
	ID                 uuid.UUID          `db:"id" json:"id"`
	Email              string             `db:"email" json:"email"`
	DisplayName        string             `db:"display_name" json:"display_name"`
	Role               string             `db:"role" json:"role"`
	Status             string             `db:"status" json:"status"`
	SuspensionReason   *string            `db:"suspension_reason" json:"suspension_reason,omitempty"`
	SuspendedUntil     *time.Time         `db:"suspended_until" json:"suspended_until,omitempty"`
	VerificationStatus string             `db:"verification_status" json:"verification_status"`
	VerificationType   *string            `db:"verification_type" json:"verification_type,omitempty"`
	Rating             float64            `db:"rating" json:"rating"`
	ReviewCount        int                `db:"review_count" json:"review_count"`
	RatingDistribution RatingDistribution `db:"rating_distribution" json:"rating_distribution"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}

// Роли операторов.
const (
	AdminRoleModerator  = "moderator"
	AdminRoleSuperadmin = "superadmin"
)

// Admin описывает оператора админки.
type Admin struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Session представляет сохранённую сессию оператора.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	AdminID      uuid.UUID `db:"admin_id" json:"admin_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
