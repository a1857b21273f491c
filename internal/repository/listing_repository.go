package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

type ListingRepository struct {
	db *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// GetByID возвращает объявление по ID.
func (r *ListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return common.GetByID[models.Listing](ctx, r.db, "listings", id, ErrListingNotFound)
}

// List возвращает объявления, опционально фильтруя по статусу.
func (r *ListingRepository) List(ctx context.Context, status string, limit, offset int) ([]models.Listing, error) {
	var listings []models.Listing
	if status != "" {
		err := r.db.SelectContext(ctx, &listings, `
			SELECT * FROM listings WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
		return listings, err
	}

	err := r.db.SelectContext(ctx, &listings, `
		SELECT * FROM listings ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	return listings, err
}

// Unblock снимает блокировку с объявления.
func (r *ListingRepository) Unblock(ctx context.Context, id uuid.UUID) error {
	return common.ExecConditional(ctx, r.db, `
		UPDATE listings
		SET status = $2, block_reason = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, models.ListingStatusActive, models.ListingStatusBlocked)
}
