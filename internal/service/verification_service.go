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

// VerificationRepository описывает хранилище KYC заявок со стороны сервиса.
type VerificationRepository interface {
	Create(ctx context.Context, v *models.Verification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Verification, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Verification, error)
	ApproveAtomic(ctx context.Context, id, approvedBy uuid.UUID, notes *string, entry models.TimelineEntry) (*models.Verification, error)
	RejectAtomic(ctx context.Context, id, rejectedBy uuid.UUID, reason string, entry models.TimelineEntry) (*models.Verification, error)
	RequestDocuments(ctx context.Context, id uuid.UUID, docs models.StringList, message string, entry models.TimelineEntry) error
	Resubmit(ctx context.Context, id uuid.UUID, docs models.DocumentList, entry models.TimelineEntry) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// SubmitVerificationInput — входные данные подачи KYC заявки.
type SubmitVerificationInput struct {
	UserID    uuid.UUID
	Type      string
	Documents models.DocumentList
}

// VerificationService содержит бизнес-логику обработки KYC заявок.
type VerificationService struct {
	repo     VerificationRepository
	notifier Notifier
	auditor  Auditor
	log      *logrus.Logger
}

// NewVerificationService создаёт новый сервис KYC.
func NewVerificationService(repo VerificationRepository, notifier Notifier, auditor Auditor, log *logrus.Logger) *VerificationService {
	return &VerificationService{
		repo:     repo,
		notifier: notifier,
		auditor:  auditor,
		log:      log,
	}
}

// SubmitVerification создаёт новую KYC заявку со статусом pending.
func (s *VerificationService) SubmitVerification(ctx context.Context, in SubmitVerificationInput) (*models.Verification, error) {
	if in.Type != models.VerificationTypeHost && in.Type != models.VerificationTypePremiumClient {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный тип верификации")
	}
	if len(in.Documents) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "заявка должна содержать хотя бы один документ")
	}

	verification := &models.Verification{
		UserID:    in.UserID,
		Type:      in.Type,
		Status:    models.VerificationStatusPending,
		Documents: in.Documents,
		Timeline: models.Timeline{{
			Action:      "verification_submitted",
			Description: "Заявка на верификацию подана",
			Timestamp:   time.Now().UTC(),
			User:        in.UserID.String(),
		}},
	}

	if err := s.repo.Create(ctx, verification); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.notifyAsync(NotificationInput{
		Type:    "verification_submitted",
		Title:   "Новая KYC заявка",
		Message: fmt.Sprintf("Подана заявка на верификацию типа %q", in.Type),
		Data:    verification,
	})

	return verification, nil
}

// GetVerification возвращает заявку по ID.
func (s *VerificationService) GetVerification(ctx context.Context, id uuid.UUID) (*models.Verification, error) {
	verification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return verification, nil
}

// ListVerifications возвращает заявки с фильтром по статусу.
func (s *VerificationService) ListVerifications(ctx context.Context, status string, limit, offset int) ([]models.Verification, error) {
	if status != "" && !valueobject.VerificationStatus(status).IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return items, nil
}

// ApproveVerification одобряет заявку. Статус пользователя меняется на
// verified в той же транзакции, что и статус заявки.
func (s *VerificationService) ApproveVerification(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorName string, notes *string) (*models.Verification, error) {
	if notes != nil {
		if err := validation.ValidateLength("заметки", *notes, 0, validation.MaxNotesLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	verification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	current := valueobject.VerificationStatus(verification.Status)
	if !current.CanTransitionTo(valueobject.VerificationApproved) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("одобрить нельзя: заявка в статусе %q", verification.Status))
	}

	entry := models.TimelineEntry{
		Action:      "verification_approved",
		Description: "Заявка одобрена",
		Notes:       notes,
		Timestamp:   time.Now().UTC(),
		User:        actorName,
	}

	approved, err := s.repo.ApproveAtomic(ctx, id, actorID, notes, entry)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.notifyAsync(NotificationInput{
		Type:    "verification_approved",
		Title:   "Верификация одобрена",
		Message: fmt.Sprintf("Заявка пользователя %s одобрена", approved.UserID),
	})
	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryVerification,
		Action:     "verification_approved",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("verification"),
		TargetID:   &id,
		Changes: map[string]interface{}{
			"status": map[string]string{"before": verification.Status, "after": models.VerificationStatusApproved},
		},
	})

	return approved, nil
}

// RejectVerification отклоняет заявку с обязательной причиной. Статус
// пользователя меняется на rejected в той же транзакции.
func (s *VerificationService) RejectVerification(ctx context.Context, id uuid.UUID, reason string, actorID uuid.UUID, actorName string) (*models.Verification, error) {
	if err := validation.ValidateReason("причина отклонения", reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	verification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	current := valueobject.VerificationStatus(verification.Status)
	if !current.CanTransitionTo(valueobject.VerificationRejected) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("отклонить нельзя: заявка в статусе %q", verification.Status))
	}

	entry := models.TimelineEntry{
		Action:      "verification_rejected",
		Description: fmt.Sprintf("Заявка отклонена: %s", reason),
		Timestamp:   time.Now().UTC(),
		User:        actorName,
	}

	rejected, err := s.repo.RejectAtomic(ctx, id, actorID, reason, entry)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.notifyAsync(NotificationInput{
		Type:    "verification_rejected",
		Title:   "Верификация отклонена",
		Message: fmt.Sprintf("Заявка пользователя %s отклонена: %s", rejected.UserID, reason),
	})
	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryVerification,
		Action:     "verification_rejected",
		Severity:   models.AuditSeverityWarning,
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("verification"),
		TargetID:   &id,
		Details:    &reason,
	})

	return rejected, nil
}

// RequestAdditionalDocuments запрашивает у пользователя дополнительные
// документы и переводит заявку в additional_docs_required.
func (s *VerificationService) RequestAdditionalDocuments(ctx context.Context, id uuid.UUID, docs []string, message string, actorID uuid.UUID, actorName string) (*models.Verification, error) {
	if len(docs) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "нужно указать хотя бы один документ")
	}
	for _, doc := range docs {
		if err := validation.ValidateNonEmpty("название документа", doc); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}
	if err := validation.ValidateReason("сообщение пользователю", message); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	verification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	current := valueobject.VerificationStatus(verification.Status)
	if !current.CanTransitionTo(valueobject.VerificationAdditionalDocs) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("запросить документы нельзя: заявка в статусе %q", verification.Status))
	}

	entry := models.TimelineEntry{
		Action:      "documents_requested",
		Description: fmt.Sprintf("Запрошены документы: %d шт.", len(docs)),
		Timestamp:   time.Now().UTC(),
		User:        actorName,
	}

	if err := s.repo.RequestDocuments(ctx, id, models.StringList(docs), message, entry); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.notifyAsync(NotificationInput{
		Type:    "verification_docs_requested",
		Title:   "Запрошены документы",
		Message: fmt.Sprintf("По заявке %s запрошены дополнительные документы", id),
	})
	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryVerification,
		Action:     "documents_requested",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("verification"),
		TargetID:   &id,
		Changes:    map[string]interface{}{"requested_documents": docs},
	})

	return s.GetVerification(ctx, id)
}

// ResubmitDocuments принимает повторно загруженные документы и
// возвращает заявку в очередь модерации.
func (s *VerificationService) ResubmitDocuments(ctx context.Context, id uuid.UUID, docs models.DocumentList) (*models.Verification, error) {
	if len(docs) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "нужно загрузить хотя бы один документ")
	}

	verification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	current := valueobject.VerificationStatus(verification.Status)
	if !current.CanTransitionTo(valueobject.VerificationPending) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("повторная подача невозможна: заявка в статусе %q", verification.Status))
	}

	entry := models.TimelineEntry{
		Action:      "documents_resubmitted",
		Description: fmt.Sprintf("Загружены документы: %d шт.", len(docs)),
		Timestamp:   time.Now().UTC(),
		User:        verification.UserID.String(),
	}

	if err := s.repo.Resubmit(ctx, id, docs, entry); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.notifyAsync(NotificationInput{
		Type:    "verification_resubmitted",
		Title:   "Документы загружены",
		Message: fmt.Sprintf("Заявка %s вернулась в очередь модерации", id),
	})

	return s.GetVerification(ctx, id)
}

// CountByStatus возвращает количество заявок по статусам.
func (s *VerificationService) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return counts, nil
}

func (s *VerificationService) wrapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrVerificationNotFound):
		return apperror.ErrVerificationNotFound
	case errors.Is(err, common.ErrStaleStatus):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "статус заявки изменился, обновите данные и повторите")
	case errors.Is(err, common.ErrNotFound):
		return apperror.Wrap(err, apperror.ErrCodeNotFound, "пользователь заявки не найден")
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка хранилища при работе с заявкой")
	}
}

func (s *VerificationService) notifyAsync(in NotificationInput) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if _, err := s.notifier.Notify(ctx, in); err != nil {
			s.log.Errorf("verification service: отправка уведомления: %v", err)
		}
	})
}

func (s *VerificationService) auditAsync(in AuditInput) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.auditor.Record(ctx, in); err != nil {
			s.log.Errorf("verification service: запись аудита: %v", err)
		}
	})
}
