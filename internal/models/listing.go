package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Статусы объявления.
const (
	ListingStatusActive  = "active"
	ListingStatusBlocked = "blocked"
)

// RatingDistribution хранит количество одобренных отзывов по звёздам (1-5).
type RatingDistribution map[int]int

// Value сериализует распределение в JSONB.
func (d RatingDistribution) Value() (driver.Value, error) {
	if d == nil {
		d = RatingDistribution{}
	}
	return json.Marshal(d)
}

// Scan читает распределение из JSONB.
func (d *RatingDistribution) Scan(src interface{}) error {
	if src == nil {
		*d = RatingDistribution{}
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("rating distribution: неожиданный тип %T", src)
	}
	return json.Unmarshal(b, d)
}

// Listing описывает объявление о сдаче складского помещения.
type Listing struct {
	ID                 uuid.UUID          `db:"id" json:"id"`
	HostID             uuid.UUID          `db:"host_id" json:"host_id"`
	Title              string             `db:"title" json:"title"`
	Address            *string            `db:"address" json:"address,omitempty"`
	AreaSqm            *float64           `db:"area_sqm" json:"area_sqm,omitempty"`
	PricePerMonth      float64            `db:"price_per_month" json:"price_per_month"`
	Status             string             `db:"status" json:"status"`
	BlockReason        *string            `db:"block_reason" json:"block_reason,omitempty"`
	Rating             float64            `db:"rating" json:"rating"`
	ReviewCount        int                `db:"review_count" json:"review_count"`
	RatingDistribution RatingDistribution `db:"rating_distribution" json:"rating_distribution"`
	CreatedAt          time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at" json:"updated_at"`
}
