package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type UserRepository interface {
	FindUser(ctx context.Context, username string) (*models.Account, error)
	ListUsers(ctx context.Context) ([]models.Account, error)
	InsertUser(ctx context.Context, account models.Account) error
	// ReplaceUser stores account under its (possibly new) username in place
	// of the user currently called username.
	ReplaceUser(ctx context.Context, username string, account models.Account) error
	DeleteUser(ctx context.Context, username string) error
}

// ProjectRepository stores projects together with their module and issue
// collections, keyed by project key.
type ProjectRepository interface {
	ListProjects(ctx context.Context) ([]models.ProjectInfo, error)
	FindProject(ctx context.Context, key string) (*models.ProjectInfo, error)
	// InsertProject also creates empty module and issue collections.
	InsertProject(ctx context.Context, project models.ProjectInfo) error
	ReplaceProject(ctx context.Context, project models.ProjectInfo) error
	// DeleteProject also drops the module and issue collections.
	DeleteProject(ctx context.Context, key string) error
	GetModules(ctx context.Context, key string) ([]models.ModuleInfo, error)
	SetModules(ctx context.Context, key string, modules []models.ModuleInfo) error
	GetIssues(ctx context.Context, key string) ([]models.IssueInfo, error)
	SetIssues(ctx context.Context, key string, issues []models.IssueInfo) error
}

// TokenStore remembers refresh tokens that were already exchanged.
type TokenStore interface {
	// Consume marks the token id as used until the given time and reports
	// whether this was its first use.
	Consume(ctx context.Context, id string, until time.Time) (bool, error)
	// Purge forgets entries that expired before now.
	Purge(ctx context.Context, now time.Time) (int, error)
}

type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	// GetNotificationsByUsername returns newest first.
	GetNotificationsByUsername(ctx context.Context, username string) ([]models.Notification, error)
	MarkNotificationAsRead(ctx context.Context, username, id string) error
	// MoveNotifications re-keys every notification of from to to.
	MoveNotifications(ctx context.Context, from, to string) error
}

func cloneModules(modules []models.ModuleInfo) []models.ModuleInfo {
	out := make([]models.ModuleInfo, len(modules))
	for i, m := range modules {
		out[i] = models.ModuleInfo{Name: m.Name, Features: append([]models.FeatureInfo{}, m.Features...)}
	}
	return out
}

func cloneIssues(issues []models.IssueInfo) []models.IssueInfo {
	return append([]models.IssueInfo{}, issues...)
}
