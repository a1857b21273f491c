package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы бронирования.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusActive    = "active"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Статусы оплаты бронирования.
const (
	BookingPaymentUnpaid = "unpaid"
	BookingPaymentPaid   = "paid"
)

// Booking описывает аренду складского помещения.
// Комиссия платформы (9%) всегда вычисляется из суммы и не хранится отдельно.
type Booking struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	HostID        uuid.UUID  `db:"host_id" json:"host_id"`
	ClientID      uuid.UUID  `db:"client_id" json:"client_id"`
	ListingID     uuid.UUID  `db:"listing_id" json:"listing_id"`
	Amount        float64    `db:"amount" json:"amount"`
	Status        string     `db:"status" json:"status"`
	PaymentStatus string     `db:"payment_status" json:"payment_status"`
	StartDate     time.Time  `db:"start_date" json:"start_date"`
	EndDate       time.Time  `db:"end_date" json:"end_date"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}
