package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/repositories"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

type AccountService struct {
	Users    repositories.UserRepository
	Projects repositories.ProjectRepository
	Tokens   *TokenService
	Notifier *NotificationService
	Hasher   PasswordHasher
	Logger   logrus.FieldLogger
	lock     *sync.Mutex
}

func (s *AccountService) findUser(ctx context.Context, username string) (*models.Account, error) {
	account, err := s.Users.FindUser(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return account, err
}

func (s *AccountService) Login(ctx context.Context, req models.LoginReq) (models.LoginRes, error) {
	account, err := s.findUser(ctx, req.Username)
	if err != nil {
		return models.LoginRes{}, err
	}
	if !s.Hasher.Compare(account.PasswordHash, req.Password) {
		return models.LoginRes{}, ErrWrongPassword
	}
	token, err := s.Tokens.Issue(account.Username, account.Role)
	if err != nil {
		return models.LoginRes{}, err
	}
	s.Logger.Infof("Event ID: LOGIN_SUCCESS, Description: User %s logged in", account.Username)
	return models.LoginRes{Role: account.Role, Token: token}, nil
}

// Refresh exchanges a refresh token for a new pair carrying the user's
// current role.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	claims, err := s.Tokens.Redeem(ctx, refreshToken)
	if err != nil {
		return models.TokenPair{}, err
	}
	account, err := s.findUser(ctx, claims.Username)
	if errors.Is(err, ErrUserNotFound) {
		return models.TokenPair{}, fmt.Errorf("%w: user %s no longer exists", ErrInvalidToken, claims.Username)
	}
	if err != nil {
		return models.TokenPair{}, err
	}
	return s.Tokens.Issue(account.Username, account.Role)
}

// GetUser returns a user's info; only admins may read other users.
func (s *AccountService) GetUser(ctx context.Context, actor Actor, username string) (models.UserInfo, error) {
	if username != actor.Username && !actor.IsAdmin() {
		return models.UserInfo{}, ErrForbidden
	}
	account, err := s.findUser(ctx, username)
	if err != nil {
		return models.UserInfo{}, err
	}
	return account.UserInfo, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, actor Actor, req models.ChangePasswordReq) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	account, err := s.findUser(ctx, actor.Username)
	if err != nil {
		return err
	}
	if !s.Hasher.Compare(account.PasswordHash, req.OldPassword) {
		return ErrOldPasswordIncorrect
	}
	if err := models.CheckPassword(req.NewPassword); err != nil {
		return err
	}
	if account.PasswordHash, err = s.Hasher.Hash(req.NewPassword); err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}
	if err := s.Users.ReplaceUser(ctx, account.Username, *account); err != nil {
		return err
	}
	s.Logger.Infof("Event ID: PASSWORD_CHANGED, Description: User %s changed the password", account.Username)
	return nil
}

// EditUser replaces a user's info. A new username must satisfy the form
// rules and be free; references in projects follow the rename.
func (s *AccountService) EditUser(ctx context.Context, username string, info models.UserInfo) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	account, err := s.findUser(ctx, username)
	if err != nil {
		return err
	}
	if info.Username != username {
		if err := models.CheckUsername(info.Username); err != nil {
			return err
		}
	}
	if err := models.CheckEmail(info.Email); err != nil {
		return err
	}

	account.UserInfo = info
	err = s.Users.ReplaceUser(ctx, username, *account)
	if errors.Is(err, repositories.ErrDuplicate) {
		return ErrUserExists
	}
	if err != nil {
		return err
	}

	if info.Username != username {
		if err := s.renameReferences(ctx, username, info.Username); err != nil {
			return fmt.Errorf("user renamed but references were not updated: %w", err)
		}
		s.Logger.Infof("Event ID: USER_RENAMED, Description: User %s renamed to %s", username, info.Username)
	}
	return nil
}

func (s *AccountService) renameReferences(ctx context.Context, from, to string) error {
	rename := func(v *string) bool {
		if *v == from {
			*v = to
			return true
		}
		return false
	}

	projects, err := s.Projects.ListProjects(ctx)
	if err != nil {
		return err
	}
	for _, project := range projects {
		if rename(&project.OwnerUsername) {
			if err := s.Projects.ReplaceProject(ctx, project); err != nil {
				return err
			}
		}

		modules, err := s.Projects.GetModules(ctx, project.Key)
		if err != nil {
			return err
		}
		changed := false
		for i := range modules {
			for j := range modules[i].Features {
				changed = rename(&modules[i].Features[j].DevUsername) || changed
			}
		}
		if changed {
			if err := s.Projects.SetModules(ctx, project.Key, modules); err != nil {
				return err
			}
		}

		issues, err := s.Projects.GetIssues(ctx, project.Key)
		if err != nil {
			return err
		}
		changed = false
		for i := range issues {
			changed = rename(&issues[i].CreatorUsername) || changed
			changed = rename(&issues[i].DevUsername) || changed
		}
		if changed {
			if err := s.Projects.SetIssues(ctx, project.Key, issues); err != nil {
				return err
			}
		}
	}
	return s.Notifier.Rename(ctx, from, to)
}

// SearchUsers applies case-sensitive substring filters on the text fields
// and an exact filter on role.
func (s *AccountService) SearchUsers(ctx context.Context, req models.SearchUserReq) ([]models.UserInfo, error) {
	accounts, err := s.Users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	users := []models.UserInfo{}
	for _, a := range accounts {
		if !strings.Contains(a.Username, req.Username) ||
			!strings.Contains(a.FullName, req.FullName) ||
			!strings.Contains(a.Email, req.Email) ||
			(req.Role != "" && a.Role != req.Role) {
			continue
		}
		users = append(users, a.UserInfo)
	}
	return users, nil
}

// DeleteUser refuses to remove the owner of any project.
func (s *AccountService) DeleteUser(ctx context.Context, username string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, err := s.findUser(ctx, username); err != nil {
		return err
	}
	projects, err := s.Projects.ListProjects(ctx)
	if err != nil {
		return err
	}
	for _, p := range projects {
		if p.OwnerUsername == username {
			return fmt.Errorf("%w: %s owns project %s", ErrUserOwnsProjects, username, p.Key)
		}
	}
	if err := s.Users.DeleteUser(ctx, username); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.Logger.Infof("Event ID: USER_DELETED, Description: User %s deleted", username)
	return nil
}

func (s *AccountService) Register(ctx context.Context, req models.RegisterReq) error {
	if err := models.CheckUsername(req.Info.Username); err != nil {
		return err
	}
	if err := models.CheckPassword(req.Password); err != nil {
		return err
	}
	if err := models.CheckEmail(req.Info.Email); err != nil {
		return err
	}
	hash, err := s.Hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	err = s.Users.InsertUser(ctx, models.Account{UserInfo: req.Info, PasswordHash: hash})
	if errors.Is(err, repositories.ErrDuplicate) {
		return ErrUserExists
	}
	if err != nil {
		return err
	}
	s.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered with role %s", req.Info.Username, req.Info.Role)
	return nil
}
