package service

import (
	"context"
	"errors"
	"fmt"

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

// ReviewRepository описывает хранилище отзывов со стороны сервиса.
type ReviewRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Review, error)
	ApproveAtomic(ctx context.Context, id uuid.UUID, fromStatuses []string) (*models.Review, error)
	Reject(ctx context.Context, id uuid.UUID, reason string, fromStatuses []string) error
	Flag(ctx context.Context, id uuid.UUID, reason string, fromStatuses []string) error
	DeleteAtomic(ctx context.Context, id uuid.UUID) (*models.Review, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// ReviewService содержит бизнес-логику модерации отзывов.
type ReviewService struct {
	repo     ReviewRepository
	notifier Notifier
	auditor  Auditor
	log      *logrus.Logger
}

// NewReviewService создаёт новый сервис модерации отзывов.
func NewReviewService(repo ReviewRepository, notifier Notifier, auditor Auditor, log *logrus.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		notifier: notifier,
		auditor:  auditor,
		log:      log,
	}
}

// GetReview возвращает отзыв по ID.
func (s *ReviewService) GetReview(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return review, nil
}

// ListReviews возвращает отзывы с фильтром по статусу.
func (s *ReviewService) ListReviews(ctx context.Context, status string, limit, offset int) ([]models.Review, error) {
	if status != "" && !valueobject.ReviewStatus(status).IsValid() {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус отзыва")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return reviews, nil
}

// ApproveReview одобряет отзыв. Агрегат рейтинга цели пересчитывается
// в той же транзакции, что и смена статуса.
func (s *ReviewService) ApproveReview(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorName string) (*models.Review, error) {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	current := valueobject.ReviewStatus(review.Status)
	if !current.CanTransitionTo(valueobject.ReviewApproved) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("одобрить нельзя: отзыв в статусе %q", review.Status))
	}

	approved, err := s.repo.ApproveAtomic(ctx, id, reviewSourcesFor(valueobject.ReviewApproved))
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryReview,
		Action:     "review_approved",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("review"),
		TargetID:   &id,
		Changes: map[string]interface{}{
			"status": map[string]string{"before": review.Status, "after": models.ReviewStatusApproved},
		},
	})

	return approved, nil
}

// RejectReview отклоняет отзыв с обязательной причиной.
func (s *ReviewService) RejectReview(ctx context.Context, id uuid.UUID, reason string, actorID uuid.UUID, actorName string) (*models.Review, error) {
	if err := validation.ValidateReason("причина отклонения", reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	current := valueobject.ReviewStatus(review.Status)
	if !current.CanTransitionTo(valueobject.ReviewRejected) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("отклонить нельзя: отзыв в статусе %q", review.Status))
	}

	if err := s.repo.Reject(ctx, id, reason, reviewSourcesFor(valueobject.ReviewRejected)); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryReview,
		Action:     "review_rejected",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("review"),
		TargetID:   &id,
		Details:    &reason,
	})

	return s.GetReview(ctx, id)
}

// FlagReview помечает отзыв как подозрительный. Помеченный отзыв
// остаётся доступным для повторного одобрения или отклонения.
func (s *ReviewService) FlagReview(ctx context.Context, id uuid.UUID, reason string, actorID uuid.UUID, actorName string) (*models.Review, error) {
	if err := validation.ValidateReason("причина пометки", reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	current := valueobject.ReviewStatus(review.Status)
	if !current.CanTransitionTo(valueobject.ReviewFlagged) {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("пометить нельзя: отзыв в статусе %q", review.Status))
	}

	if err := s.repo.Flag(ctx, id, reason, reviewSourcesFor(valueobject.ReviewFlagged)); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.notifyAsync(NotificationInput{
		Type:     "review_flagged",
		Title:    "Отзыв помечен",
		Message:  fmt.Sprintf("Отзыв %s помечен как подозрительный: %s", id, reason),
		Priority: models.NotificationPriorityHigh,
	})
	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryReview,
		Action:     "review_flagged",
		Severity:   models.AuditSeverityWarning,
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("review"),
		TargetID:   &id,
		Details:    &reason,
	})

	return s.GetReview(ctx, id)
}

// DeleteReview безвозвратно удаляет отзыв. Если удалён одобренный
// отзыв, агрегат рейтинга цели пересчитывается в той же транзакции.
func (s *ReviewService) DeleteReview(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorName string) error {
	deleted, err := s.repo.DeleteAtomic(ctx, id)
	if err != nil {
		return s.wrapRepoError(err)
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryReview,
		Action:     "review_deleted",
		Severity:   models.AuditSeverityCritical,
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("review"),
		TargetID:   &id,
		Changes: map[string]interface{}{
			"deleted_status": deleted.Status,
			"target_type":    deleted.TargetType,
			"target_id":      deleted.TargetID,
		},
	})

	return nil
}

// CountByStatus возвращает количество отзывов по статусам.
func (s *ReviewService) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return counts, nil
}

// reviewSourcesFor выводит из таблицы переходов список статусов,
// из которых достижим target.
func reviewSourcesFor(target valueobject.ReviewStatus) []string {
	all := []valueobject.ReviewStatus{
		valueobject.ReviewPending,
		valueobject.ReviewApproved,
		valueobject.ReviewRejected,
		valueobject.ReviewFlagged,
	}

	var sources []string
	for _, s := range all {
		if s.CanTransitionTo(target) {
			sources = append(sources, string(s))
		}
	}
	return sources
}

func (s *ReviewService) wrapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrReviewNotFound):
		return apperror.ErrReviewNotFound
	case errors.Is(err, common.ErrStaleStatus):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "статус отзыва изменился, обновите данные и повторите")
	case errors.Is(err, common.ErrNotFound):
		return apperror.Wrap(err, apperror.ErrCodeNotFound, "цель отзыва не найдена")
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка хранилища при работе с отзывом")
	}
}

func (s *ReviewService) notifyAsync(in NotificationInput) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if _, err := s.notifier.Notify(ctx, in); err != nil {
			s.log.Errorf("review service: отправка уведомления: %v", err)
		}
	})
}

func (s *ReviewService) auditAsync(in AuditInput) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.auditor.Record(ctx, in); err != nil {
			s.log.Errorf("review service: запись аудита: %v", err)
		}
	})
}
