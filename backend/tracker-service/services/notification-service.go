package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/repositories"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

type NotificationService struct {
	Repo   repositories.NotificationRepository
	Logger logrus.FieldLogger
	now    func() time.Time
}

// Notify records a message for recipient. Nobody is notified about their
// own actions, and a failed write is logged rather than returned.
func (s *NotificationService) Notify(ctx context.Context, actor Actor, recipient, message string) {
	if recipient == "" || recipient == actor.Username {
		return
	}
	notification := &models.Notification{
		Username:  recipient,
		Message:   message,
		CreatedAt: s.now(),
	}
	if err := s.Repo.CreateNotification(ctx, notification); err != nil {
		s.Logger.Errorf("Event ID: NOTIFICATION_FAILED, Description: Failed to notify %s: %v", recipient, err)
		return
	}
	s.Logger.Infof("Event ID: NOTIFICATION_CREATED, Description: Notification %s created for %s", notification.ID, recipient)
}

func (s *NotificationService) List(ctx context.Context, actor Actor) ([]models.Notification, error) {
	notifications, err := s.Repo.GetNotificationsByUsername(ctx, actor.Username)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

// Rename moves the notifications of a renamed user.
func (s *NotificationService) Rename(ctx context.Context, from, to string) error {
	return s.Repo.MoveNotifications(ctx, from, to)
}

func (s *NotificationService) MarkRead(ctx context.Context, actor Actor, id string) error {
	err := s.Repo.MarkNotificationAsRead(ctx, actor.Username, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotificationNotFound
	}
	return err
}
