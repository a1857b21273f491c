package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/skladhub/admin-backend/internal/domain/valueobject"
	"github.com/skladhub/admin-backend/internal/goroutine"
	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
	"github.com/skladhub/admin-backend/internal/repository"
	"github.com/skladhub/admin-backend/internal/repository/common"
	"github.com/skladhub/admin-backend/internal/validation"
)

// Тайм-аут для фоновых побочных эффектов (уведомления, аудит).
const sideEffectTimeout = 5 * time.Second

// DisputeRepository описывает хранилище споров со стороны сервиса.
type DisputeRepository interface {
	Create(ctx context.Context, d *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Dispute, error)
	Assign(ctx context.Context, id, adminID uuid.UUID, adminName string, entry models.TimelineEntry) error
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatuses []string, newStatus string, entry models.TimelineEntry) error
	ResolveAtomic(ctx context.Context, p repository.ResolveParams) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// CreateDisputeInput — входные данные создания спора.
type CreateDisputeInput struct {
	Type         string
	BookingID    *uuid.UUID
	ReporterID   uuid.UUID
	ReporterName string
	RespondentID *uuid.UUID
	Description  string
	Amount       *float64
	IsUrgent     bool
}

// DisputeService содержит бизнес-логику работы со спорами.
type DisputeService struct {
	repo     DisputeRepository
	notifier Notifier
	auditor  Auditor
	log      *logrus.Logger
}

// NewDisputeService создаёт новый сервис споров.
func NewDisputeService(repo DisputeRepository, notifier Notifier, auditor Auditor, log *logrus.Logger) *DisputeService {
	return &DisputeService{
		repo:     repo,
		notifier: notifier,
		auditor:  auditor,
		log:      log,
	}
}

// CreateDispute создаёт спор. Приоритет вычисляется один раз здесь
// и далее не пересчитывается.
func (s *DisputeService) CreateDispute(ctx context.Context, in CreateDisputeInput) (*models.Dispute, error) {
	if !isValidDisputeType(in.Type) {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип спора")
	}
	if err := validation.ValidateNonEmpty("имя заявителя", in.ReporterName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	var amount float64
	if in.Amount != nil {
		if err := validation.ValidateAmount("сумма спора", *in.Amount); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
		amount = *in.Amount
	}

	score := valueobject.DisputePriorityScore(in.Type, amount, in.IsUrgent)
	priority := valueobject.DisputePriority(score)

	dispute := &models.Dispute{
		Type:         in.Type,
		BookingID:    in.BookingID,
		ReporterID:   in.ReporterID,
		ReporterName: in.ReporterName,
		RespondentID: in.RespondentID,
		Description:  in.Description,
		Amount:       in.Amount,
		IsUrgent:     in.IsUrgent,
		Priority:     priority,
		Status:       models.DisputeStatusOpen,
		Timeline: models.Timeline{{
			Action:      "dispute_created",
			Description: "Спор создан",
			Timestamp:   time.Now().UTC(),
			User:        in.ReporterName,
		}},
	}

	if err := s.repo.Create(ctx, dispute); err != nil {
		return nil, s.wrapRepoError(err)
	}

	notifyPriority := models.NotificationPriorityNormal
	if valueobject.IsEscalated(score) {
		notifyPriority = models.NotificationPriorityHigh
	}

	s.notifyAsync(NotificationInput{
		Type:     "dispute_created",
		Title:    "Новый спор",
		Message:  fmt.Sprintf("Создан спор типа %q с приоритетом %s", dispute.Type, dispute.Priority),
		Priority: notifyPriority,
		Data:     dispute,
	})
	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryDispute,
		Action:     "dispute_created",
		ActorName:  &dispute.ReporterName,
		TargetType: strPtr("dispute"),
		TargetID:   &dispute.ID,
	})

	return dispute, nil
}

// GetDispute возвращает спор по ID.
func (s *DisputeService) GetDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return dispute, nil
}

// ListDisputes возвращает список споров с фильтром по статусу.
func (s *DisputeService) ListDisputes(ctx context.Context, status string, limit, offset int) ([]models.Dispute, error) {
	if status != "" {
		if _, err := valueobject.NewDisputeStatus(status); err != nil {
			return nil, err
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	disputes, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return disputes, nil
}

// AssignDispute назначает оператора на спор и переводит его в работу.
func (s *DisputeService) AssignDispute(ctx context.Context, id, adminID uuid.UUID, adminName string) (*models.Dispute, error) {
	if err := validation.ValidateNonEmpty("имя оператора", adminName); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	current := valueobject.DisputeStatus(dispute.Status)
	if !current.CanTransitionTo(valueobject.DisputeInProgress) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("назначить оператора нельзя: спор в статусе %q", dispute.Status))
	}

	entry := models.TimelineEntry{
		Action:      "dispute_assigned",
		Description: fmt.Sprintf("Спор взят в работу оператором %s", adminName),
		Timestamp:   time.Now().UTC(),
		User:        adminName,
	}

	if err := s.repo.Assign(ctx, id, adminID, adminName, entry); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryDispute,
		Action:     "dispute_assigned",
		ActorID:    &adminID,
		ActorName:  &adminName,
		TargetType: strPtr("dispute"),
		TargetID:   &id,
	})

	return s.GetDispute(ctx, id)
}

// UpdateDisputeStatus переводит спор между промежуточными статусами.
// Допустимые источники перехода выводятся из таблицы переходов,
// конечный статус resolved достижим только через ResolveDispute.
func (s *DisputeService) UpdateDisputeStatus(ctx context.Context, id uuid.UUID, newStatus string, notes *string, actorID uuid.UUID, actorName string) (*models.Dispute, error) {
	target, err := valueobject.NewDisputeStatus(newStatus)
	if err != nil {
		return nil, err
	}
	if target != valueobject.DisputeInProgress && target != valueobject.DisputePendingInfo {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("статус %q нельзя установить напрямую", newStatus))
	}
	if notes != nil {
		if err := validation.ValidateLength("заметки", *notes, 0, validation.MaxNotesLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	current := valueobject.DisputeStatus(dispute.Status)
	if !current.CanTransitionTo(target) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("переход %q -> %q недопустим", dispute.Status, newStatus))
	}

	entry := models.TimelineEntry{
		Action:      "status_changed",
		Description: fmt.Sprintf("Статус изменён на %q", newStatus),
		Notes:       notes,
		Timestamp:   time.Now().UTC(),
		User:        actorName,
	}

	if err := s.repo.UpdateStatus(ctx, id, disputeSourcesFor(target), string(target), entry); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryDispute,
		Action:     "dispute_status_changed",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("dispute"),
		TargetID:   &id,
		Changes: map[string]interface{}{
			"status": map[string]string{"before": dispute.Status, "after": newStatus},
		},
	})

	return s.GetDispute(ctx, id)
}

// ResolveDispute закрывает спор с решением. Все действия решения
// валидируются заранее и применяются одним атомарным батчем вместе
// со сменой статуса.
func (s *DisputeService) ResolveDispute(ctx context.Context, id uuid.UUID, resolution models.Resolution, actorID uuid.UUID, actorName string) (*models.Dispute, error) {
	if !isValidDecision(resolution.Decision) {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректное решение по спору")
	}
	if err := validation.ValidateReason("формулировка решения", resolution.Explanation); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if resolution.Compensation != nil {
		if err := validation.ValidateAmount("сумма компенсации", resolution.Compensation.Amount); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	refunds, suspensions, blocks, err := buildResolutionEffects(resolution.Actions)
	if err != nil {
		return nil, err
	}

	dispute, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	current := valueobject.DisputeStatus(dispute.Status)
	if !current.CanTransitionTo(valueobject.DisputeResolved) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("разрешить можно только спор в работе, текущий статус %q", dispute.Status))
	}

	params := repository.ResolveParams{
		DisputeID:   id,
		Decision:    resolution.Decision,
		Explanation: resolution.Explanation,
		Entry: models.TimelineEntry{
			Action:      "dispute_resolved",
			Description: fmt.Sprintf("Спор разрешён: %s", resolution.Decision),
			Timestamp:   time.Now().UTC(),
			User:        actorName,
		},
		Refunds:     refunds,
		Suspensions: suspensions,
		Blocks:      blocks,
	}
	if resolution.Compensation != nil {
		params.CompensationType = &resolution.Compensation.Type
		params.CompensationAmount = &resolution.Compensation.Amount
	}

	if err := s.repo.ResolveAtomic(ctx, params); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.notifyAsync(NotificationInput{
		Type:    "dispute_resolved",
		Title:   "Спор разрешён",
		Message: fmt.Sprintf("Спор %s закрыт с решением %q", id, resolution.Decision),
		Data:    resolution,
	})
	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryDispute,
		Action:     "dispute_resolved",
		Severity:   models.AuditSeverityWarning,
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("dispute"),
		TargetID:   &id,
		Changes: map[string]interface{}{
			"status":   map[string]string{"before": dispute.Status, "after": models.DisputeStatusResolved},
			"decision": resolution.Decision,
		},
	})

	return s.GetDispute(ctx, id)
}

// CountByStatus возвращает количество споров по статусам.
func (s *DisputeService) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return counts, nil
}

// buildResolutionEffects валидирует действия решения и собирает
// параметры побочных эффектов. Ошибка любого действия означает,
// что ни одно из них не будет применено.
func buildResolutionEffects(actions []models.ResolutionAction) ([]models.Refund, []repository.UserSuspension, []repository.ListingBlock, error) {
	var refunds []models.Refund
	var suspensions []repository.UserSuspension
	var blocks []repository.ListingBlock

	for i, action := range actions {
		switch action.Type {
		case models.ResolutionActionRefund:
			if action.UserID == nil || action.Amount == nil {
				return nil, nil, nil, apperror.New(apperror.ErrCodeValidation,
					fmt.Sprintf("действие %d: для возврата нужны получатель и сумма", i+1))
			}
			if err := validation.ValidateAmount("сумма возврата", *action.Amount); err != nil {
				return nil, nil, nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
			}
			if *action.Amount == 0 {
				return nil, nil, nil, apperror.New(apperror.ErrCodeValidation, "сумма возврата должна быть больше нуля")
			}
			reason := derefOr(action.Reason, "возврат по решению спора")
			refunds = append(refunds, models.Refund{
				UserID: *action.UserID,
				Amount: *action.Amount,
				Reason: &reason,
			})

		case models.ResolutionActionSuspendUser:
			if action.UserID == nil {
				return nil, nil, nil, apperror.New(apperror.ErrCodeValidation,
					fmt.Sprintf("действие %d: для блокировки нужен пользователь", i+1))
			}
			var until *time.Time
			if action.Duration != nil {
				d, err := time.ParseDuration(*action.Duration)
				if err != nil || d <= 0 {
					return nil, nil, nil, apperror.New(apperror.ErrCodeValidation,
						fmt.Sprintf("действие %d: некорректный срок блокировки", i+1))
				}
				t := time.Now().UTC().Add(d)
				until = &t
			}
			suspensions = append(suspensions, repository.UserSuspension{
				UserID: *action.UserID,
				Reason: derefOr(action.Reason, "блокировка по решению спора"),
				Until:  until,
			})

		case models.ResolutionActionBlockListing:
			if action.ListingID == nil {
				return nil, nil, nil, apperror.New(apperror.ErrCodeValidation,
					fmt.Sprintf("действие %d: для блокировки нужно объявление", i+1))
			}
			blocks = append(blocks, repository.ListingBlock{
				ListingID: *action.ListingID,
				Reason:    derefOr(action.Reason, "блокировка по решению спора"),
			})

		default:
			return nil, nil, nil, apperror.New(apperror.ErrCodeValidation,
				fmt.Sprintf("действие %d: неизвестный тип %q", i+1, action.Type))
		}
	}

	return refunds, suspensions, blocks, nil
}

// disputeSourcesFor выводит из таблицы переходов список статусов,
// из которых достижим target.
func disputeSourcesFor(target valueobject.DisputeStatus) []string {
	all := []valueobject.DisputeStatus{
		valueobject.DisputeOpen,
		valueobject.DisputeInProgress,
		valueobject.DisputePendingInfo,
		valueobject.DisputeResolved,
	}

	var sources []string
	for _, s := range all {
		if s.CanTransitionTo(target) {
			sources = append(sources, string(s))
		}
	}
	return sources
}

func isValidDisputeType(t string) bool {
	switch t {
	case models.DisputeTypePayment, models.DisputeTypeDamage, models.DisputeTypeCancellation,
		models.DisputeTypeService, models.DisputeTypeCommunication, models.DisputeTypeOther:
		return true
	}
	return false
}

func isValidDecision(d string) bool {
	switch d {
	case models.DecisionFavorReporter, models.DecisionFavorRespondent,
		models.DecisionPartialResolution, models.DecisionNoAction:
		return true
	}
	return false
}

func (s *DisputeService) wrapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDisputeNotFound):
		return apperror.ErrDisputeNotFound
	case errors.Is(err, common.ErrStaleStatus):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "статус спора изменился, обновите данные и повторите")
	case errors.Is(err, common.ErrNotFound):
		return apperror.Wrap(err, apperror.ErrCodeNotFound, "целевая запись решения не найдена")
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка хранилища при работе со спором")
	}
}

func (s *DisputeService) notifyAsync(in NotificationInput) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if _, err := s.notifier.Notify(ctx, in); err != nil {
			s.log.Errorf("dispute service: отправка уведомления: %v", err)
		}
	})
}

func (s *DisputeService) auditAsync(in AuditInput) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.auditor.Record(ctx, in); err != nil {
			s.log.Errorf("dispute service: запись аудита: %v", err)
		}
	})
}

func strPtr(s string) *string {
	return &s
}

func derefOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}
