package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/skladhub/admin-backend/internal/goroutine"
	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
	"github.com/skladhub/admin-backend/internal/repository"
	"github.com/skladhub/admin-backend/internal/repository/common"
	"github.com/skladhub/admin-backend/internal/validation"
)

// PaymentRepository описывает хранилище платежей со стороны сервиса.
type PaymentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Payment, error)
	VerifyAtomic(ctx context.Context, id, verifiedBy uuid.UUID) (*models.Payment, error)
	Reject(ctx context.Context, id uuid.UUID, reason string) error
}

// PaymentService содержит бизнес-логику ручной проверки платежей.
type PaymentService struct {
	repo    PaymentRepository
	auditor Auditor
	log     *logrus.Logger
}

// NewPaymentService создаёт новый сервис проверки платежей.
func NewPaymentService(repo PaymentRepository, auditor Auditor, log *logrus.Logger) *PaymentService {
	return &PaymentService{
		repo:    repo,
		auditor: auditor,
		log:     log,
	}
}

// GetPayment возвращает платёж по ID.
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return payment, nil
}

// ListPayments возвращает платежи с фильтром по статусу.
func (s *PaymentService) ListPayments(ctx context.Context, status string, limit, offset int) ([]models.Payment, error) {
	if status != "" && status != models.PaymentStatusPending &&
		status != models.PaymentStatusVerified && status != models.PaymentStatusFailed {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус платежа")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	payments, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return payments, nil
}

// VerifyPayment подтверждает платёж. Привязанное бронирование
// отмечается оплаченным в той же транзакции.
func (s *PaymentService) VerifyPayment(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorName string) (*models.Payment, error) {
	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("подтвердить нельзя: платёж в статусе %q", payment.Status))
	}

	verified, err := s.repo.VerifyAtomic(ctx, id, actorID)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryPayment,
		Action:     "payment_verified",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("payment"),
		TargetID:   &id,
	})

	return verified, nil
}

// RejectPayment отклоняет платёж с обязательной причиной.
func (s *PaymentService) RejectPayment(ctx context.Context, id uuid.UUID, reason string, actorID uuid.UUID, actorName string) (*models.Payment, error) {
	if err := validation.ValidateReason("причина отклонения", reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	if payment.Status != models.PaymentStatusPending {
		return nil, apperror.New(apperror.ErrCodeInvalidTransition,
			fmt.Sprintf("отклонить нельзя: платёж в статусе %q", payment.Status))
	}

	if err := s.repo.Reject(ctx, id, reason); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryPayment,
		Action:     "payment_rejected",
		Severity:   models.AuditSeverityWarning,
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("payment"),
		TargetID:   &id,
		Details:    &reason,
	})

	return s.GetPayment(ctx, id)
}

func (s *PaymentService) wrapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrPaymentNotFound):
		return apperror.ErrPaymentNotFound
	case errors.Is(err, common.ErrStaleStatus):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "статус платежа изменился, обновите данные и повторите")
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка хранилища при работе с платежом")
	}
}

func (s *PaymentService) auditAsync(in AuditInput) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.auditor.Record(ctx, in); err != nil {
			s.log.Errorf("payment service: запись аудита: %v", err)
		}
	})
}
