package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/skladhub/admin-backend/internal/domain/valueobject"
	"github.com/skladhub/admin-backend/internal/goroutine"
	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
	"github.com/skladhub/admin-backend/internal/repository"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

// PayoutRepository описывает хранилище выплат со стороны сервиса.
type PayoutRepository interface {
	CreateBatch(ctx context.Context, payouts []models.Payout) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.Payout, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatuses []string, newStatus string, processed bool) error
}

// PayoutBookingRepository — подмножество хранилища бронирований,
// необходимое для агрегации выплат.
type PayoutBookingRepository interface {
	ListCompletedPaidInPeriod(ctx context.Context, start, end time.Time) ([]models.Booking, error)
}

// PayoutService содержит бизнес-логику агрегации выплат хостам.
type PayoutService struct {
	repo     PayoutRepository
	bookings PayoutBookingRepository
	auditor  Auditor
	log      *logrus.Logger
}

// NewPayoutService создаёт новый сервис выплат.
func NewPayoutService(repo PayoutRepository, bookings PayoutBookingRepository, auditor Auditor, log *logrus.Logger) *PayoutService {
	return &PayoutService{
		repo:     repo,
		bookings: bookings,
		auditor:  auditor,
		log:      log,
	}
}

// AggregatePayoutsForPeriod группирует завершённые оплаченные бронирования
// по хостам и считает суммы выплат за период. Функция чистая и
// детерминированная: на одном наборе бронирований и периоде результат
// всегда одинаков, выплаты отсортированы по ID хоста.
func AggregatePayoutsForPeriod(bookings []models.Booking, start, end time.Time) []models.Payout {
	byHost := make(map[uuid.UUID]*models.Payout)

	for _, b := range bookings {
		if b.Status != models.BookingStatusCompleted || b.PaymentStatus != models.BookingPaymentPaid {
			continue
		}
		if b.CompletedAt == nil || b.CompletedAt.Before(start) || b.CompletedAt.After(end) {
			continue
		}

		p, ok := byHost[b.HostID]
		if !ok {
			p = &models.Payout{
				HostID:      b.HostID,
				PeriodStart: start,
				PeriodEnd:   end,
				Status:      models.PayoutStatusPending,
			}
			byHost[b.HostID] = p
		}

		p.TotalAmount += b.Amount
		p.PlatformFees += valueobject.PlatformFee(b.Amount)
		p.NetAmount += valueobject.NetAmount(b.Amount)
		p.BookingIDs = append(p.BookingIDs, b.ID)
	}

	payouts := make([]models.Payout, 0, len(byHost))
	for _, p := range byHost {
		payouts = append(payouts, *p)
	}
	sort.Slice(payouts, func(i, j int) bool {
		return payouts[i].HostID.String() < payouts[j].HostID.String()
	})
	return payouts
}

// GeneratePayouts собирает выплаты за период и сохраняет их одним батчем.
func (s *PayoutService) GeneratePayouts(ctx context.Context, start, end time.Time, actorID uuid.UUID, actorName string) ([]models.Payout, error) {
	if !end.After(start) {
		return nil, apperror.New(apperror.ErrCodeValidation, "конец периода должен быть позже начала")
	}

	bookings, err := s.bookings.ListCompletedPaidInPeriod(ctx, start, end)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}

	payouts := AggregatePayoutsForPeriod(bookings, start, end)
	if len(payouts) == 0 {
		return []models.Payout{}, nil
	}

	if err := s.repo.CreateBatch(ctx, payouts); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.auditAsync(AuditInput{
		Category:  models.AuditCategoryPayout,
		Action:    "payouts_generated",
		ActorID:   &actorID,
		ActorName: &actorName,
		Changes: map[string]interface{}{
			"period_start": start,
			"period_end":   end,
			"count":        len(payouts),
		},
	})

	return payouts, nil
}

// GetPayout возвращает выплату по ID.
func (s *PayoutService) GetPayout(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	payout, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return payout, nil
}

// ListPayouts возвращает выплаты с фильтром по статусу.
func (s *PayoutService) ListPayouts(ctx context.Context, status string, limit, offset int) ([]models.Payout, error) {
	if status != "" && status != models.PayoutStatusPending &&
		status != models.PayoutStatusProcessing && status != models.PayoutStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeValidation, "некорректный статус выплаты")
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	payouts, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		return nil, s.wrapRepoError(err)
	}
	return payouts, nil
}

// MarkProcessing переводит выплату pending -> processing.
func (s *PayoutService) MarkProcessing(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorName string) (*models.Payout, error) {
	if err := s.repo.UpdateStatus(ctx, id, []string{models.PayoutStatusPending}, models.PayoutStatusProcessing, false); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryPayout,
		Action:     "payout_processing",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("payout"),
		TargetID:   &id,
	})

	return s.GetPayout(ctx, id)
}

// MarkCompleted переводит выплату processing -> completed с отметкой
// времени обработки.
func (s *PayoutService) MarkCompleted(ctx context.Context, id uuid.UUID, actorID uuid.UUID, actorName string) (*models.Payout, error) {
	if err := s.repo.UpdateStatus(ctx, id, []string{models.PayoutStatusProcessing}, models.PayoutStatusCompleted, true); err != nil {
		return nil, s.wrapRepoError(err)
	}

	s.auditAsync(AuditInput{
		Category:   models.AuditCategoryPayout,
		Action:     "payout_completed",
		ActorID:    &actorID,
		ActorName:  &actorName,
		TargetType: strPtr("payout"),
		TargetID:   &id,
	})

	return s.GetPayout(ctx, id)
}

func (s *PayoutService) wrapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrPayoutNotFound):
		return apperror.ErrPayoutNotFound
	case errors.Is(err, common.ErrStaleStatus):
		return apperror.Wrap(err, apperror.ErrCodeConflict, "статус выплаты изменился, обновите данные и повторите")
	default:
		return apperror.Wrap(err, apperror.ErrCodeDatabaseError, "ошибка хранилища при работе с выплатой")
	}
}

func (s *PayoutService) auditAsync(in AuditInput) {
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.auditor.Record(ctx, in); err != nil {
			s.log.Errorf("payout service: запись аудита: %v", err)
		}
	})
}
