package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
)

type mockNotificationRepo struct {
	mock.Mock
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	args := m.Called(ctx, notification)
	if args.Error(0) == nil {
		notification.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockNotificationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) List(ctx context.Context, targetUserID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	args := m.Called(ctx, targetUserID, limit, offset, unreadOnly)
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *mockNotificationRepo) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockNotificationRepo) MarkAllAsRead(ctx context.Context, targetUserID uuid.UUID) error {
	args := m.Called(ctx, targetUserID)
	return args.Error(0)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, targetUserID uuid.UUID) (int, error) {
	args := m.Called(ctx, targetUserID)
	return args.Int(0), args.Error(1)
}

type recordingPusher struct {
	pushed []string
}

func (p *recordingPusher) Push(targetUserID *uuid.UUID, event string, data interface{}) {
	p.pushed = append(p.pushed, event)
}

func TestNotificationService_Notify_PersistsBeforePush(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	pusher := &recordingPusher{}
	svc.SetPusher(pusher)
	ctx := context.Background()

	targetID := uuid.New()
	repo.On("Create", ctx, mock.MatchedBy(func(n *models.Notification) bool {
		return n.Type == "dispute_assigned" && n.Priority == models.NotificationPriorityNormal
	})).Return(nil)

	notification, err := svc.Notify(ctx, NotificationInput{
		Type:         "dispute_assigned",
		Title:        "Вам назначен спор",
		Message:      "Спор по бронированию ожидает решения",
		TargetUserID: &targetID,
	})

	assert.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, notification.ID)
	assert.Equal(t, []string{"dispute_assigned"}, pusher.pushed)
}

func TestNotificationService_Notify_CreateFailsNoPush(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	pusher := &recordingPusher{}
	svc.SetPusher(pusher)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*models.Notification")).
		Return(assert.AnError)

	_, err := svc.Notify(ctx, NotificationInput{
		Type:    "review_flagged",
		Title:   "Отзыв помечен",
		Message: "Требуется повторная модерация",
	})

	assert.Error(t, err)
	// Недоставленное в БД уведомление не уходит в realtime канал.
	assert.Empty(t, pusher.pushed)
}

func TestNotificationService_MarkAsRead_ForeignNotification(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()

	id := uuid.New()
	ownerID := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.Notification{
		ID:           id,
		TargetUserID: &ownerID,
	}, nil)

	err := svc.MarkAsRead(ctx, id, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrForbidden)
	repo.AssertNotCalled(t, "MarkAsRead")
}

func TestNotificationService_MarkAsRead_Broadcast(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()

	id := uuid.New()
	// Широковещательное уведомление не принадлежит никому.
	repo.On("GetByID", ctx, id).Return(&models.Notification{ID: id}, nil)

	err := svc.MarkAsRead(ctx, id, uuid.New())

	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestNotificationService_MarkAsRead_Owner(t *testing.T) {
	repo := new(mockNotificationRepo)
	svc := NewNotificationService(repo)
	ctx := context.Background()

	id := uuid.New()
	ownerID := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.Notification{
		ID:           id,
		TargetUserID: &ownerID,
	}, nil)
	repo.On("MarkAsRead", ctx, id).Return(nil)

	err := svc.MarkAsRead(ctx, id, ownerID)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
