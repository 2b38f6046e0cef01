package services

import (
	"log/slog"

	"huddle/domain"
	"huddle/repositories"
)

type INotificationService interface {
	List(userID string, limit int) ([]domain.Notification, error)
	MarkAllRead(userID string) error
}

// NotificationService is the pull side of notifications: whatever the live
// push missed is recovered here.
type NotificationService struct {
	log           *slog.Logger
	notifications repositories.INotificationRepository
}

func NewNotificationService(log *slog.Logger, notifications repositories.INotificationRepository) *NotificationService {
	return &NotificationService{log: log, notifications: notifications}
}

func (s *NotificationService) List(userID string, limit int) ([]domain.Notification, error) {
	return s.notifications.ListDescending(userID, limit)
}

func (s *NotificationService) MarkAllRead(userID string) error {
	return s.notifications.MarkAllRead(userID)
}
