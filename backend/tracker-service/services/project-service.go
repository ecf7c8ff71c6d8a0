package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/repositories"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

// ProjectService owns projects, their modules and issues, and keeps the
// derived counters of each project in sync with them.
type ProjectService struct {
	Projects repositories.ProjectRepository
	Users    repositories.UserRepository
	Notifier *NotificationService
	Logger   logrus.FieldLogger
	lock     *sync.Mutex
	now      func() time.Time
}

func (s *ProjectService) findProject(ctx context.Context, key string) (*models.ProjectInfo, error) {
	project, err := s.Projects.FindProject(ctx, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, key)
	}
	return project, err
}

func (s *ProjectService) ensureUser(ctx context.Context, username string) error {
	_, err := s.Users.FindUser(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrOwnerNotFound, username)
	}
	return err
}

func canManage(actor Actor, project *models.ProjectInfo) bool {
	return actor.IsAdmin() || project.OwnerUsername == actor.Username
}

// SearchProjects matches name against project name or key, ignoring case.
func (s *ProjectService) SearchProjects(ctx context.Context, name string) ([]models.ProjectInfo, error) {
	all, err := s.Projects.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(name)
	projects := []models.ProjectInfo{}
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), needle) || strings.Contains(strings.ToLower(p.Key), needle) {
			projects = append(projects, p)
		}
	}
	return projects, nil
}

func (s *ProjectService) GetProject(ctx context.Context, key string) (models.ProjectInfo, error) {
	project, err := s.findProject(ctx, key)
	if err != nil {
		return models.ProjectInfo{}, err
	}
	return *project, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, key string, req models.CreateProjectReq) (models.ProjectInfo, error) {
	if err := models.CheckProjectKey(key); err != nil {
		return models.ProjectInfo{}, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.ensureUser(ctx, req.OwnerUsername); err != nil {
		return models.ProjectInfo{}, err
	}
	project := models.ProjectInfo{
		Key:           key,
		Name:          req.Name,
		Description:   req.Description,
		OwnerUsername: req.OwnerUsername,
		Date:          req.Date,
	}
	err := s.Projects.InsertProject(ctx, project)
	if errors.Is(err, repositories.ErrDuplicate) {
		return models.ProjectInfo{}, fmt.Errorf("%w: %s", ErrProjectExists, key)
	}
	if err != nil {
		return models.ProjectInfo{}, err
	}
	s.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created with owner %s", key, req.OwnerUsername)
	return project, nil
}

// UpdateProject replaces the descriptive fields; key and counters stay.
func (s *ProjectService) UpdateProject(ctx context.Context, actor Actor, key string, req models.CreateProjectReq) (models.ProjectInfo, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	project, err := s.findProject(ctx, key)
	if err != nil {
		return models.ProjectInfo{}, err
	}
	if !canManage(actor, project) {
		return models.ProjectInfo{}, ErrForbidden
	}
	if req.OwnerUsername != project.OwnerUsername {
		if err := s.ensureUser(ctx, req.OwnerUsername); err != nil {
			return models.ProjectInfo{}, err
		}
	}
	project.Name = req.Name
	project.Description = req.Description
	project.Date = req.Date
	project.OwnerUsername = req.OwnerUsername
	if err := s.Projects.ReplaceProject(ctx, *project); err != nil {
		return models.ProjectInfo{}, err
	}
	return *project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	err := s.Projects.DeleteProject(ctx, key)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, key)
	}
	if err != nil {
		return err
	}
	s.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s deleted", key)
	return nil
}

func (s *ProjectService) GetModules(ctx context.Context, key string) (models.ModuleList, error) {
	if _, err := s.findProject(ctx, key); err != nil {
		return models.ModuleList{}, err
	}
	modules, err := s.Projects.GetModules(ctx, key)
	if err != nil {
		return models.ModuleList{}, err
	}
	return models.ModuleList{ProjectKey: key, Modules: modules}, nil
}

// UpdateModules replaces the module list. Module names are unique within a
// project and feature names within a module.
func (s *ProjectService) UpdateModules(ctx context.Context, actor Actor, key string, modules []models.ModuleInfo) error {
	if err := checkModuleNames(modules); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	project, err := s.findProject(ctx, key)
	if err != nil {
		return err
	}
	if !canManage(actor, project) {
		return ErrForbidden
	}
	if modules == nil {
		modules = []models.ModuleInfo{}
	}
	previous, err := s.Projects.GetModules(ctx, key)
	if err != nil {
		return err
	}
	if err := s.Projects.SetModules(ctx, key, modules); err != nil {
		return err
	}
	if err := s.recount(ctx, project); err != nil {
		if restoreErr := s.Projects.SetModules(ctx, key, previous); restoreErr != nil {
			s.Logger.Errorf("Event ID: MODULES_RESTORE_FAILED, Description: Modules of %s left without counters: %v", key, restoreErr)
		}
		return err
	}
	return nil
}

// storeIssues writes issues and recounts; when the counters cannot be
// stored the previous list is written back.
func (s *ProjectService) storeIssues(ctx context.Context, project *models.ProjectInfo, previous, issues []models.IssueInfo) error {
	if err := s.Projects.SetIssues(ctx, project.Key, issues); err != nil {
		return err
	}
	if err := s.recount(ctx, project); err != nil {
		if restoreErr := s.Projects.SetIssues(ctx, project.Key, previous); restoreErr != nil {
			s.Logger.Errorf("Event ID: ISSUES_RESTORE_FAILED, Description: Issues of %s left without counters: %v", project.Key, restoreErr)
		}
		return err
	}
	return nil
}

func checkModuleNames(modules []models.ModuleInfo) error {
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if seen[m.Name] {
			return fmt.Errorf("%w: module %s", ErrDuplicateName, m.Name)
		}
		seen[m.Name] = true
		features := make(map[string]bool, len(m.Features))
		for _, f := range m.Features {
			if features[f.Name] {
				return fmt.Errorf("%w: feature %s in module %s", ErrDuplicateName, f.Name, m.Name)
			}
			features[f.Name] = true
		}
	}
	return nil
}

// recount refreshes the derived counters of project. The caller holds the
// lock.
func (s *ProjectService) recount(ctx context.Context, project *models.ProjectInfo) error {
	modules, err := s.Projects.GetModules(ctx, project.Key)
	if err != nil {
		return err
	}
	issues, err := s.Projects.GetIssues(ctx, project.Key)
	if err != nil {
		return err
	}
	project.NumDevelopers, project.NumFeatures, project.NumIssues = models.Counters(modules, issues)
	if err := s.Projects.ReplaceProject(ctx, *project); err != nil {
		return fmt.Errorf("failed to update counters of %s: %w", project.Key, err)
	}
	s.Logger.WithFields(logrus.Fields{
		"project":       project.Key,
		"numDevelopers": project.NumDevelopers,
		"numFeatures":   project.NumFeatures,
		"numIssues":     project.NumIssues,
	}).Debug("Event ID: PROJECT_RECOUNT, Description: Counters updated")
	return nil
}
