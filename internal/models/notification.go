package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Приоритеты уведомлений.
const (
	NotificationPriorityLow    = "low"
	NotificationPriorityNormal = "normal"
	NotificationPriorityHigh   = "high"
)

// Типы уведомлений.
const (
	NotificationTypeDispute      = "dispute"
	NotificationTypeReview       = "review"
	NotificationTypeVerification = "verification"
	NotificationTypePayment      = "payment"
	NotificationTypePayout       = "payout"
)

// Notification — структурированное событие для оператора или пользователя.
type Notification struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	TargetUserID *uuid.UUID      `db:"target_user_id" json:"target_user_id,omitempty"`
	Type         string          `db:"type" json:"type"`
	Title        string          `db:"title" json:"title"`
	Message      string          `db:"message" json:"message"`
	Priority     string          `db:"priority" json:"priority"`
	Data         json.RawMessage `db:"data" json:"data,omitempty"`
	ActionURL    *string         `db:"action_url" json:"action_url,omitempty"`
	IsRead       bool            `db:"is_read" json:"is_read"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}
