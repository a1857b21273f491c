package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы отзыва.
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
	ReviewStatusFlagged  = "flagged"
)

// Цели отзыва.
const (
	ReviewTargetListing = "listing"
	ReviewTargetHost    = "host"
)

// Типы отзывов.
const (
	ReviewTypeHost   = "host"
	ReviewTypeClient = "client"
)

// Review описывает отзыв, ожидающий модерации.
type Review struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Type            string     `db:"type" json:"type"`
	TargetType      string     `db:"target_type" json:"target_type"`
	TargetID        uuid.UUID  `db:"target_id" json:"target_id"`
	AuthorID        uuid.UUID  `db:"author_id" json:"author_id"`
	AuthorName      string     `db:"author_name" json:"author_name"`
	BookingID       *uuid.UUID `db:"booking_id" json:"booking_id,omitempty"`
	Rating          int        `db:"rating" json:"rating"`
	Comment         *string    `db:"comment" json:"comment,omitempty"`
	Status          string     `db:"status" json:"status"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	FlagReason      *string    `db:"flag_reason" json:"flag_reason,omitempty"`
	ApprovedAt      *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// RatingSummary — агрегат рейтинга цели, пересчитываемый целиком
// по текущему набору одобренных отзывов.
type RatingSummary struct {
	Rating       float64            `json:"rating"`
	ReviewCount  int                `json:"review_count"`
	Distribution RatingDistribution `json:"rating_distribution"`
}

// ComputeRatingSummary пересчитывает агрегат рейтинга целиком по набору
// одобренных отзывов цели. Агрегат всегда перезаписывается результатом
// этой функции и никогда не патчится инкрементально, чтобы исключить
// расхождение с фактическим средним.
func ComputeRatingSummary(approved []Review) RatingSummary {
	dist := RatingDistribution{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	total := 0
	for _, r := range approved {
		dist[r.Rating]++
		total += r.Rating
	}

	summary := RatingSummary{
		ReviewCount:  len(approved),
		Distribution: dist,
	}
	if summary.ReviewCount > 0 {
		summary.Rating = float64(total) / float64(summary.ReviewCount)
	}
	return summary
}
