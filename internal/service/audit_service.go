package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/skladhub/admin-backend/internal/models"
)

// AuditRepository описывает хранилище журнала аудита.
type AuditRepository interface {
	Create(ctx context.Context, e *models.AuditEntry) error
	List(ctx context.Context, category, action string, limit, offset int) ([]models.AuditEntry, error)
}

// Auditor — порт записи журнала аудита для бизнес-сервисов.
// Вызывается best-effort: ошибки записи не прерывают операции.
type Auditor interface {
	Record(ctx context.Context, in AuditInput) error
}

// AuditInput описывает событие для записи в журнал аудита.
type AuditInput struct {
	Category   string
	Action     string
	Severity   string
	ActorID    *uuid.UUID
	ActorName  *string
	TargetType *string
	TargetID   *uuid.UUID
	Changes    interface{}
	Details    *string
}

// AuditService ведёт журнал действий операторов для комплаенса.
type AuditService struct {
	repo AuditRepository
}

// NewAuditService создаёт новый сервис аудита.
func NewAuditService(repo AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Record сохраняет запись аудита. Вызывается асинхронно: ошибка
// записи логируется вызывающей стороной и не прерывает операцию.
func (s *AuditService) Record(ctx context.Context, in AuditInput) error {
	if in.Severity == "" {
		in.Severity = models.AuditSeverityInfo
	}

	var changes json.RawMessage
	if in.Changes != nil {
		raw, err := json.Marshal(in.Changes)
		if err != nil {
			return err
		}
		changes = raw
	}

	entry := &models.AuditEntry{
		Category:   in.Category,
		Action:     in.Action,
		Severity:   in.Severity,
		ActorID:    in.ActorID,
		ActorName:  in.ActorName,
		TargetType: in.TargetType,
		TargetID:   in.TargetID,
		Changes:    changes,
		Details:    in.Details,
	}

	return s.repo.Create(ctx, entry)
}

// List возвращает записи журнала с фильтрами.
func (s *AuditService) List(ctx context.Context, category, action string, limit, offset int) ([]models.AuditEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, category, action, limit, offset)
}
