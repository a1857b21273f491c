package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы платежа.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusVerified = "verified"
	PaymentStatusFailed   = "failed"
)

// Payment описывает платёж клиента, ожидающий ручной проверки оператором.
type Payment struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	BookingID       *uuid.UUID `db:"booking_id" json:"booking_id,omitempty"`
	UserID          uuid.UUID  `db:"user_id" json:"user_id"`
	Amount          float64    `db:"amount" json:"amount"`
	Method          string     `db:"method" json:"method"`
	ReferenceNumber string     `db:"reference_number" json:"reference_number"`
	Status          string     `db:"status" json:"status"`
	VerifiedAt      *time.Time `db:"verified_at" json:"verified_at,omitempty"`
	VerifiedBy      *uuid.UUID `db:"verified_by" json:"verified_by,omitempty"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// Статусы возврата средств.
const (
	RefundStatusPending   = "pending"
	RefundStatusProcessed = "processed"
)

// Refund создаётся как побочный эффект разрешения спора в пользу заявителя.
type Refund struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	DisputeID   uuid.UUID  `db:"dispute_id" json:"dispute_id"`
	UserID      uuid.UUID  `db:"user_id" json:"user_id"`
	Amount      float64    `db:"amount" json:"amount"`
	Reason      *string    `db:"reason" json:"reason,omitempty"`
	Status      string     `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ProcessedAt *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}
