package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Статусы спора.
const (
	DisputeStatusOpen        = "open"
	DisputeStatusInProgress  = "in_progress"
	DisputeStatusPendingInfo = "pending_info"
	DisputeStatusResolved    = "resolved"
)

// Типы споров.
const (
	DisputeTypePayment       = "payment"
	DisputeTypeDamage        = "damage"
	DisputeTypeCancellation  = "cancellation"
	DisputeTypeService       = "service"
	DisputeTypeCommunication = "communication"
	DisputeTypeOther         = "other"
)

// Решения по спору.
const (
	DecisionFavorReporter     = "favor_reporter"
	DecisionFavorRespondent   = "favor_respondent"
	DecisionPartialResolution = "partial_resolution"
	DecisionNoAction          = "no_action"
)

// Типы действий при разрешении спора.
const (
	ResolutionActionRefund       = "refund"
	ResolutionActionSuspendUser  = "suspend_user"
	ResolutionActionBlockListing = "block_listing"
)

// TimelineEntry — одна запись в хронологии дела.
type TimelineEntry struct {
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Notes       *string   `json:"notes,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	User        string    `json:"user"`
}

// Timeline — append-only хронология дела, хранится одним JSONB массивом.
// Записи никогда не редактируются и не удаляются, только добавляются.
type Timeline []TimelineEntry

// Value сериализует хронологию в JSONB.
func (t Timeline) Value() (driver.Value, error) {
	if t == nil {
		t = Timeline{}
	}
	return json.Marshal(t)
}

// Scan читает хронологию из JSONB.
func (t *Timeline) Scan(src interface{}) error {
	if src == nil {
		*t = Timeline{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("timeline: неожиданный тип %T", src)
	}
	return json.Unmarshal(b, t)
}

// Dispute описывает спор между участниками аренды.
// Приоритет вычисляется один раз при создании и далее не пересчитывается,
// даже если сумма или срочность были отредактированы.
type Dispute struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	Type                  string     `db:"type" json:"type"`
	BookingID             *uuid.UUID `db:"booking_id" json:"booking_id,omitempty"`
	ReporterID            uuid.UUID  `db:"reporter_id" json:"reporter_id"`
	ReporterName          string     `db:"reporter_name" json:"reporter_name"`
	RespondentID          *uuid.UUID `db:"respondent_id" json:"respondent_id,omitempty"`
	Description           string     `db:"description" json:"description"`
	Amount                *float64   `db:"amount" json:"amount,omitempty"`
	IsUrgent              bool       `db:"is_urgent" json:"is_urgent"`
	Priority              string     `db:"priority" json:"priority"`
	Status                string     `db:"status" json:"status"`
	AssignedTo            *uuid.UUID `db:"assigned_to" json:"assigned_to,omitempty"`
	AssignedToName        *string    `db:"assigned_to_name" json:"assigned_to_name,omitempty"`
	ResolutionDecision    *string    `db:"resolution_decision" json:"resolution_decision,omitempty"`
	ResolutionExplanation *string    `db:"resolution_explanation" json:"resolution_explanation,omitempty"`
	CompensationType      *string    `db:"compensation_type" json:"compensation_type,omitempty"`
	CompensationAmount    *float64   `db:"compensation_amount" json:"compensation_amount,omitempty"`
	Timeline              Timeline   `db:"timeline" json:"timeline"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
	ResolvedAt            *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// Compensation описывает компенсацию по итогам спора.
type Compensation struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// ResolutionAction — побочное действие, применяемое при разрешении спора.
type ResolutionAction struct {
	Type      string     `json:"type"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	ListingID *uuid.UUID `json:"listing_id,omitempty"`
	Amount    *float64   `json:"amount,omitempty"`
	Reason    *string    `json:"reason,omitempty"`
	Duration  *string    `json:"duration,omitempty"`
}

// Resolution — итоговое решение оператора по спору.
type Resolution struct {
	Decision     string             `json:"decision"`
	Explanation  string             `json:"explanation"`
	Compensation *Compensation      `json:"compensation,omitempty"`
	Actions      []ResolutionAction `json:"actions,omitempty"`
}
