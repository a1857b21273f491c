package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/skladhub/admin-backend/internal/models"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create сохраняет запись аудита.
func (r *AuditRepository) Create(ctx context.Context, e *models.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (category, action, severity, actor_id, actor_name,
			target_type, target_id, changes, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	return r.db.QueryRowxContext(ctx, query,
		e.Category, e.Action, e.Severity, e.ActorID, e.ActorName,
		e.TargetType, e.TargetID, e.Changes, e.Details,
	).Scan(&e.ID, &e.CreatedAt)
}

// List возвращает записи аудита с фильтрами по категории и действию.
func (r *AuditRepository) List(ctx context.Context, category, action string, limit, offset int) ([]models.AuditEntry, error) {
	query := `SELECT * FROM audit_entries`
	var conds []string
	var args []interface{}

	if category != "" {
		args = append(args, category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if action != "" {
		args = append(args, action)
		conds = append(conds, fmt.Sprintf("action = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	var entries []models.AuditEntry
	err := r.db.SelectContext(ctx, &entries, query, args...)
	return entries, err
}
