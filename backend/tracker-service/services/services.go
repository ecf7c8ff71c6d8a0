package services

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/repositories"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	Username string
	Role     models.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// Services bundles the tracker services. Account and project mutations
// share one lock because renaming a user rewrites project references.
type Services struct {
	Tokens        *TokenService
	Accounts      *AccountService
	Projects      *ProjectService
	Notifications *NotificationService
}

type Deps struct {
	Users         repositories.UserRepository
	Projects      repositories.ProjectRepository
	Notifications repositories.NotificationRepository
	Tokens        *TokenService
	Hasher        PasswordHasher
	Logger        logrus.FieldLogger
	Now           func() time.Time
}

func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	lock := &sync.Mutex{}
	notifications := &NotificationService{Repo: d.Notifications, Logger: d.Logger, now: d.Now}
	return &Services{
		Tokens: d.Tokens,
		Accounts: &AccountService{
			Users:    d.Users,
			Projects: d.Projects,
			Tokens:   d.Tokens,
			Notifier: notifications,
			Hasher:   d.Hasher,
			Logger:   d.Logger,
			lock:     lock,
		},
		Projects: &ProjectService{
			Projects: d.Projects,
			Users:    d.Users,
			Notifier: notifications,
			Logger:   d.Logger,
			lock:     lock,
			now:      d.Now,
		},
		Notifications: notifications,
	}
}
