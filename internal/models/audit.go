package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Категории аудита.
const (
	AuditCategoryDispute      = "dispute"
	AuditCategoryReview       = "review"
	AuditCategoryVerification = "verification"
	AuditCategoryPayment      = "payment"
	AuditCategoryPayout       = "payout"
	AuditCategoryAuth         = "auth"
)

// Уровни важности аудита.
const (
	AuditSeverityInfo     = "info"
	AuditSeverityWarning  = "warning"
	AuditSeverityCritical = "critical"
)

// AuditEntry — запись журнала аудита для комплаенса.
// Запись ведётся best-effort: ошибка записи не прерывает бизнес-операцию.
type AuditEntry struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	Category   string          `db:"category" json:"category"`
	Action     string          `db:"action" json:"action"`
	Severity   string          `db:"severity" json:"severity"`
	ActorID    *uuid.UUID      `db:"actor_id" json:"actor_id,omitempty"`
	ActorName  *string         `db:"actor_name" json:"actor_name,omitempty"`
	TargetType *string         `db:"target_type" json:"target_type,omitempty"`
	TargetID   *uuid.UUID      `db:"target_id" json:"target_id,omitempty"`
	Changes    json.RawMessage `db:"changes" json:"changes,omitempty"`
	Details    *string         `db:"details" json:"details,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
