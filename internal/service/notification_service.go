package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/civicgrid/be-civic-works/internal/repository"
)

// NotificationService exposes the in-app notification inbox.
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	log              zerolog.Logger
}

// NewNotificationService creates a new notification service.
func NewNotificationService(notificationRepo *repository.NotificationRepository, log zerolog.Logger) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo, log: log}
}

// ListNotifications returns a recipient's notifications newest-first.
func (s *NotificationService) ListNotifications(ctx context.Context, recipientID string, unreadOnly bool, limit int) ([]*repository.Notification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return s.notificationRepo.ListForRecipient(ctx, recipientID, unreadOnly, limit)
}

// MarkRead flags one of the recipient's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, id, recipientID string) error {
	return s.notificationRepo.MarkRead(ctx, id, recipientID)
}
