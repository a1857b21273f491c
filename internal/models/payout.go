package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Статусы выплаты.
const (
	PayoutStatusPending    = "pending"
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
)

// UUIDList хранит список идентификаторов в JSONB.
type UUIDList []uuid.UUID

func (l UUIDList) Value() (driver.Value, error) {
	if l == nil {
		l = UUIDList{}
	}
	return json.Marshal(l)
}

func (l *UUIDList) Scan(src interface{}) error {
	if src == nil {
		*l = UUIDList{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("uuid list: неожиданный тип %T", src)
	}
	return json.Unmarshal(b, l)
}

// Payout — производный снимок выплат хосту за период.
// Пересчёт по тому же набору бронирований и периоду даёт те же суммы.
type Payout struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	HostID       uuid.UUID  `db:"host_id" json:"host_id"`
	PeriodStart  time.Time  `db:"period_start" json:"period_start"`
	PeriodEnd    time.Time  `db:"period_end" json:"period_end"`
	TotalAmount  float64    `db:"total_amount" json:"total_amount"`
	PlatformFees float64    `db:"platform_fees" json:"platform_fees"`
	NetAmount    float64    `db:"net_amount" json:"net_amount"`
	BookingIDs   UUIDList   `db:"booking_ids" json:"booking_ids"`
	Status       string     `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}
