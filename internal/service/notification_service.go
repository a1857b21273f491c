package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/skladhub/admin-backend/internal/models"
	"github.com/skladhub/admin-backend/internal/pkg/apperror"
)

// NotificationRepository описывает взаимодействие сервиса с хранилищем уведомлений.
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	List(ctx context.Context, targetUserID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, targetUserID uuid.UUID) error
	CountUnread(ctx context.Context, targetUserID uuid.UUID) (int, error)
}

// NotificationPusher доставляет уведомления подключённым операторам
// в реальном времени (WebSocket hub).
type NotificationPusher interface {
	Push(targetUserID *uuid.UUID, event string, data interface{})
}

// Notifier — порт отправки уведомлений для бизнес-сервисов.
// Вызывается best-effort: ошибки отправки не прерывают операции.
type Notifier interface {
	Notify(ctx context.Context, in NotificationInput) (*models.Notification, error)
}

// NotificationInput описывает структурированное событие для отправки.
type NotificationInput struct {
	Type         string
	Title        string
	Message      string
	Priority     string
	Data         interface{}
	ActionURL    *string
	TargetUserID *uuid.UUID
}

// NotificationService содержит бизнес-логику работы с уведомлениями.
type NotificationService struct {
	repo   NotificationRepository
	pusher NotificationPusher
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// SetPusher устанавливает канал realtime доставки.
func (s *NotificationService) SetPusher(pusher NotificationPusher) {
	s.pusher = pusher
}

// Notify сохраняет уведомление и отправляет его в realtime канал.
// Вызывающие бизнес-операции не должны прерываться из-за ошибок здесь:
// они вызывают Notify асинхронно и только логируют ошибку.
func (s *NotificationService) Notify(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	if in.Priority == "" {
		in.Priority = models.NotificationPriorityNormal
	}

	var payload json.RawMessage
	if in.Data != nil {
		raw, err := json.Marshal(in.Data)
		if err != nil {
			return nil, fmt.Errorf("notification service: marshal payload %w", err)
		}
		payload = raw
	}

	notification := &models.Notification{
		TargetUserID: in.TargetUserID,
		Type:         in.Type,
		Title:        in.Title,
		Message:      in.Message,
		Priority:     in.Priority,
		Data:         payload,
		ActionURL:    in.ActionURL,
		IsRead:       false,
	}

	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	if s.pusher != nil {
		s.pusher.Push(in.TargetUserID, in.Type, notification)
	}

	return notification, nil
}

// ListNotifications возвращает список уведомлений оператора.
func (s *NotificationService) ListNotifications(ctx context.Context, targetUserID uuid.UUID, limit, offset int, unreadOnly bool) ([]models.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return s.repo.List(ctx, targetUserID, limit, offset, unreadOnly)
}

// MarkAsRead отмечает уведомление как прочитанное.
func (s *NotificationService) MarkAsRead(ctx context.Context, id uuid.UUID, targetUserID uuid.UUID) error {
	notification, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if notification.TargetUserID == nil || *notification.TargetUserID != targetUserID {
		return apperror.ErrForbidden
	}

	return s.repo.MarkAsRead(ctx, id)
}

// MarkAllAsRead отмечает все уведомления оператора как прочитанные.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, targetUserID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, targetUserID)
}

// CountUnread возвращает количество непрочитанных уведомлений.
func (s *NotificationService) CountUnread(ctx context.Context, targetUserID uuid.UUID) (int, error) {
	return s.repo.CountUnread(ctx, targetUserID)
}
