package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
	"github.com/skladhub/admin-backend/internal/repository"
	"github.com/skladhub/admin-backend/internal/repository/common"
)

// Побочные эффекты (уведомления, аудит) уходят в фоновые горутины,
// поэтому в тестах сервисов используются безусловные заглушки.
type stubNotifier struct{}

func (stubNotifier) Notify(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	return &models.Notification{}, nil
}

type stubAuditor struct{}

func (stubAuditor) Record(ctx context.Context, in AuditInput) error {
	return nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

type mockDisputeRepo struct {
	mock.Mock
}

func (m *mockDisputeRepo) Create(ctx context.Context, d *models.Dispute) error {
	args := m.Called(ctx, d)
	if args.Error(0) == nil {
		d.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockDisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) List(ctx context.Context, status string, limit, offset int) ([]models.Dispute, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) Assign(ctx context.Context, id, adminID uuid.UUID, adminName string, entry models.TimelineEntry) error {
	args := m.Called(ctx, id, adminID, adminName, entry)
	return args.Error(0)
}

func (m *mockDisputeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatuses []string, newStatus string, entry models.TimelineEntry) error {
	args := m.Called(ctx, id, fromStatuses, newStatus, entry)
	return args.Error(0)
}

func (m *mockDisputeRepo) ResolveAtomic(ctx context.Context, p repository.ResolveParams) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockDisputeRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]int), args.Error(1)
}

func newDisputeService(repo *mockDisputeRepo) *DisputeService {
	return NewDisputeService(repo, stubNotifier{}, stubAuditor{}, testLogger())
}

func TestDisputeService_CreateDispute_Success(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Dispute")).Return(nil)

	amount := 6000.0
	dispute, err := svc.CreateDispute(ctx, CreateDisputeInput{
		Type:         models.DisputeTypeDamage,
		ReporterID:   uuid.New(),
		ReporterName: "Иван Петров",
		Description:  "Повреждена стена в арендованном боксе",
		Amount:       &amount,
		IsUrgent:     true,
	})

	assert.NoError(t, err)
	assert.NotNil(t, dispute)
	// damage (3) + сумма >5000 (2) + срочный (2) = 7 баллов
	assert.Equal(t, "high", dispute.Priority)
	assert.Equal(t, models.DisputeStatusOpen, dispute.Status)
	assert.Len(t, dispute.Timeline, 1)
	assert.Equal(t, "dispute_created", dispute.Timeline[0].Action)
}

func TestDisputeService_CreateDispute_InvalidType(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)

	_, err := svc.CreateDispute(context.Background(), CreateDisputeInput{
		Type:         "vandalism",
		ReporterName: "Иван",
		Description:  "Достаточно длинное описание спора",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create")
}

func TestDisputeService_CreateDispute_ShortDescription(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)

	_, err := svc.CreateDispute(context.Background(), CreateDisputeInput{
		Type:         models.DisputeTypePayment,
		ReporterName: "Иван",
		Description:  "коротко",
	})

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create")
}

func TestDisputeService_AssignDispute_AlreadyResolved(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.Dispute{
		ID:     id,
		Status: models.DisputeStatusResolved,
	}, nil)

	_, err := svc.AssignDispute(ctx, id, uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
	repo.AssertNotCalled(t, "Assign")
}

func TestDisputeService_AssignDispute_StaleStatus(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)
	ctx := context.Background()

	id := uuid.New()
	adminID := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.Dispute{
		ID:     id,
		Status: models.DisputeStatusOpen,
	}, nil)
	repo.On("Assign", ctx, id, adminID, "Оператор", mock.AnythingOfType("models.TimelineEntry")).
		Return(common.ErrStaleStatus)

	_, err := svc.AssignDispute(ctx, id, adminID, "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
}

func TestDisputeService_UpdateDisputeStatus_DirectResolveForbidden(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)

	_, err := svc.UpdateDisputeStatus(context.Background(), uuid.New(),
		models.DisputeStatusResolved, nil, uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
	repo.AssertNotCalled(t, "UpdateStatus")
}

func TestDisputeService_UpdateDisputeStatus_PendingInfoRecovery(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)
	ctx := context.Background()

	id := uuid.New()
	dispute := &models.Dispute{ID: id, Status: models.DisputeStatusPendingInfo}
	repo.On("GetByID", ctx, id).Return(dispute, nil)
	// Источники перехода выводятся из таблицы: in_progress достижим
	// из open и pending_info.
	repo.On("UpdateStatus", ctx, id, mock.MatchedBy(func(sources []string) bool {
		return len(sources) == 2
	}), models.DisputeStatusInProgress, mock.AnythingOfType("models.TimelineEntry")).Return(nil)

	_, err := svc.UpdateDisputeStatus(ctx, id, models.DisputeStatusInProgress, nil, uuid.New(), "Оператор")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDisputeService_ResolveDispute_FromOpenForbidden(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.Dispute{
		ID:     id,
		Status: models.DisputeStatusOpen,
	}, nil)

	_, err := svc.ResolveDispute(ctx, id, models.Resolution{
		Decision:    models.DecisionNoAction,
		Explanation: "Нарушений не обнаружено",
	}, uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsInvalidTransition(err))
	repo.AssertNotCalled(t, "ResolveAtomic")
}

func TestDisputeService_ResolveDispute_BuildsRefund(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)
	ctx := context.Background()

	id := uuid.New()
	userID := uuid.New()
	amount := 2500.0

	dispute := &models.Dispute{ID: id, Status: models.DisputeStatusInProgress}
	repo.On("GetByID", ctx, id).Return(dispute, nil)
	repo.On("ResolveAtomic", ctx, mock.MatchedBy(func(p repository.ResolveParams) bool {
		return p.DisputeID == id &&
			p.Decision == models.DecisionFavorReporter &&
			len(p.Refunds) == 1 &&
			p.Refunds[0].UserID == userID &&
			p.Refunds[0].Amount == amount
	})).Return(nil)

	_, err := svc.ResolveDispute(ctx, id, models.Resolution{
		Decision:    models.DecisionFavorReporter,
		Explanation: "Ущерб подтверждён фотографиями",
		Actions: []models.ResolutionAction{{
			Type:   models.ResolutionActionRefund,
			UserID: &userID,
			Amount: &amount,
		}},
	}, uuid.New(), "Оператор")

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestDisputeService_ResolveDispute_RefundWithoutAmount(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)

	userID := uuid.New()
	_, err := svc.ResolveDispute(context.Background(), uuid.New(), models.Resolution{
		Decision:    models.DecisionFavorReporter,
		Explanation: "Возврат без суммы",
		Actions: []models.ResolutionAction{{
			Type:   models.ResolutionActionRefund,
			UserID: &userID,
		}},
	}, uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	// Действия валидируются до любого обращения к хранилищу.
	repo.AssertNotCalled(t, "GetByID")
	repo.AssertNotCalled(t, "ResolveAtomic")
}

func TestDisputeService_ResolveDispute_UnknownAction(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)

	_, err := svc.ResolveDispute(context.Background(), uuid.New(), models.Resolution{
		Decision:    models.DecisionNoAction,
		Explanation: "Решение с неизвестным действием",
		Actions:     []models.ResolutionAction{{Type: "ban_forever"}},
	}, uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestDisputeService_ResolveDispute_BadSuspendDuration(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)

	userID := uuid.New()
	duration := "forever"
	_, err := svc.ResolveDispute(context.Background(), uuid.New(), models.Resolution{
		Decision:    models.DecisionFavorReporter,
		Explanation: "Блокировка с некорректным сроком",
		Actions: []models.ResolutionAction{{
			Type:     models.ResolutionActionSuspendUser,
			UserID:   &userID,
			Duration: &duration,
		}},
	}, uuid.New(), "Оператор")

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
}

func TestDisputeService_GetDispute_NotFound(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(nil, repository.ErrDisputeNotFound)

	_, err := svc.GetDispute(ctx, id)

	assert.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDisputeService_ListDisputes_InvalidStatus(t *testing.T) {
	repo := new(mockDisputeRepo)
	svc := newDisputeService(repo)

	_, err := svc.ListDisputes(context.Background(), "closed", 20, 0)

	assert.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "List")
}
