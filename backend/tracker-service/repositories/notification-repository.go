package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

type MemoryNotificationRepo struct {
	mu            sync.RWMutex
	notifications map[string][]models.Notification
}

func NewMemoryNotificationRepo() *MemoryNotificationRepo {
	return &MemoryNotificationRepo{notifications: make(map[string][]models.Notification)}
}

func (nr *MemoryNotificationRepo) CreateNotification(_ context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.NewString()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	nr.mu.Lock()
	defer nr.mu.Unlock()
	list := nr.notifications[notification.Username]
	nr.notifications[notification.Username] = append([]models.Notification{*notification}, list...)
	return nil
}

func (nr *MemoryNotificationRepo) GetNotificationsByUsername(_ context.Context, username string) ([]models.Notification, error) {
	nr.mu.RLock()
	defer nr.mu.RUnlock()
	return append([]models.Notification{}, nr.notifications[username]...), nil
}

func (nr *MemoryNotificationRepo) MarkNotificationAsRead(_ context.Context, username, id string) error {
	nr.mu.Lock()
	defer nr.mu.Unlock()
	for i := range nr.notifications[username] {
		if nr.notifications[username][i].ID == id {
			nr.notifications[username][i].IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %q: %w", id, ErrNotFound)
}

func (nr *MemoryNotificationRepo) MoveNotifications(_ context.Context, from, to string) error {
	nr.mu.Lock()
	defer nr.mu.Unlock()
	moved := nr.notifications[from]
	if len(moved) == 0 {
		return nil
	}
	for i := range moved {
		moved[i].Username = to
	}
	merged := append(moved, nr.notifications[to]...)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.After(merged[j].CreatedAt)
	})
	nr.notifications[to] = merged
	delete(nr.notifications, from)
	return nil
}
