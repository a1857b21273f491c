package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/skladhub/admin-backend/internal/goroutine"
	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
	"github.com/skladhub/admin-backend/internal/repository"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

// UserRepository описывает хранилище пользователей со стороны сервиса.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.User, error)
	Reinstate(ctx context.Context, id uuid.UUID) error
}

// ListingRepository описывает хранилище объявлений со стороны сервиса.
type ListingRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Listing, error)
	Unblock(ctx context.Context, id uuid.UUID) error
}

// RefundRepository описывает хранилище возвратов со стороны сервиса.
type RefundRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Refund, error)
	ListByDispute(ctx context.Context, disputeID uuid.UUID) ([]models.Refund, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.Refund, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

// ModerationService объединяет вспомогательные операции модерации:
// снятие блокировок и обработку возвратов, созданных спорами.
type ModerationService struct {
	users    UserRepository
	listings ListingRepository
	refunds  RefundRepository
	auditor  Auditor
	log      *logrus.Logger
}

// NewModerationService создаёт новый сервис модерации.
func NewModerationService(users UserRepository, listings ListingRepository, refunds RefundRepository, auditor Auditor, log *logrus.Logger) *ModerationService {
	return &ModerationService{
		users:    users,
		listings: listings,
		refunds:  refunds,
		auditor:  auditor,
		log:      log,
	}
}

// GetUser возвращает пользователя по ID.
func (s *ModerationService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка загрузки пользователя")
	}
	return user, nil
}

// ListUsers возвращает пользователей с фильтром по статусу.
func (s *ModerationService) ListUsers(ctx context.Context, status string, limit, offset int) ([]models.User, error) {
	if status != "" && status != models.UserStatusActive && status != models.UserStatusSuspended {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус пользователя")
	}
	limit, offset = normalizePage(limit, offset)

	users, err := s.users.List(ctx, status, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка загрузки пользователей")
	}
	return users, nil
}

// ReinstateUser снимает блокировку с пользователя.
func (s *ModerationService) ReinstateUser(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorName string) (*models.User, error) {
	if err := s.users.Reinstate(ctx, id); err != nil {
		if errors.Is(err, common.ErrStaleStatus) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "пользователь не заблокирован")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка снятия блокировки")
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryDispute,
		Action:     "user_reinstated",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("user"),
		TargetID:   &id,
	})

	return s.GetUser(ctx, id)
}

// GetListing возвращает объявление по ID.
func (s *ModerationService) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, apperror.ErrListingNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка загрузки объявления")
	}
	return listing, nil
}

// ListListings возвращает объявления с фильтром по статусу.
func (s *ModerationService) ListListings(ctx context.Context, status string, limit, offset int) ([]models.Listing, error) {
	limit, offset = normalizePage(limit, offset)

	listings, err := s.listings.List(ctx, status, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка загрузки объявлений")
	}
	return listings, nil
}

// UnblockListing снимает блокировку с объявления.
func (s *ModerationService) UnblockListing(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorName string) (*models.Listing, error) {
	if err := s.listings.Unblock(ctx, id); err != nil {
		if errors.Is(err, common.ErrStaleStatus) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "объявление не заблокировано")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка снятия блокировки")
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryDispute,
		Action:     "listing_unblocked",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("listing"),
		TargetID:   &id,
	})

	return s.GetListing(ctx, id)
}

// ListPendingRefunds возвращает необработанные возвраты.
func (s *ModerationService) ListPendingRefunds(ctx context.Context, limit, offset int) ([]models.Refund, error) {
	limit, offset = normalizePage(limit, offset)

	refunds, err := s.refunds.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка загрузки возвратов")
	}
	return refunds, nil
}

// ListDisputeRefunds возвращает возвраты, созданные при разрешении спора.
func (s *ModerationService) ListDisputeRefunds(ctx context.Context, disputeID uuid.UUID) ([]models.Refund, error) {
	refunds, err := s.refunds.ListByDispute(ctx, disputeID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка загрузки возвратов")
	}
	return refunds, nil
}

// ProcessRefund отмечает возврат обработанным.
func (s *ModerationService) ProcessRefund(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorName string) (*models.Refund, error) {
	if err := s.refunds.MarkProcessed(ctx, id); err != nil {
		if errors.Is(err, common.ErrStaleStatus) {
			return nil, apperror.New(apperror.ErrCodeInvalidTransition, "возврат уже обработан")
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка обработки возврата")
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryPayment,
		Action:     "refund_processed",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("refund"),
		TargetID:   &id,
	})

	refund, err := s.refunds.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка загрузки возврата")
	}
	return refund, nil
}

func (s *ModerationService) auditAsync(in AuditInput) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.auditor.Record(ctx, in); err != nil {
			s.log.Errorf("moderation service: запись аудита: %v", err)
		}
	})
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
