package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

// MemoryRepository keeps users and projects in process memory, in
// insertion order.
type MemoryRepository struct {
	mu       sync.RWMutex
	users    []models.Account
	projects []models.ProjectInfo
	modules  map[string][]models.ModuleInfo
	issues   map[string][]models.IssueInfo
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		modules: make(map[string][]models.ModuleInfo),
		issues:  make(map[string][]models.IssueInfo),
	}
}

func (r *MemoryRepository) userIndex(username string) int {
	for i, u := range r.users {
		if u.Username == username {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) projectIndex(key string) int {
	for i, p := range r.projects {
		if p.Key == key {
			return i
		}
	}
	return -1
}

func (r *MemoryRepository) FindUser(_ context.Context, username string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.userIndex(username)
	if i == -1 {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	account := r.users[i]
	return &account, nil
}

func (r *MemoryRepository) ListUsers(_ context.Context) ([]models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Account{}, r.users...), nil
}

func (r *MemoryRepository) InsertUser(_ context.Context, account models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.userIndex(account.Username) != -1 {
		return fmt.Errorf("user %q: %w", account.Username, ErrDuplicate)
	}
	r.users = append(r.users, account)
	return nil
}

func (r *MemoryRepository) ReplaceUser(_ context.Context, username string, account models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.userIndex(username)
	if i == -1 {
		return fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if account.Username != username && r.userIndex(account.Username) != -1 {
		return fmt.Errorf("user %q: %w", account.Username, ErrDuplicate)
	}
	r.users[i] = account
	return nil
}

func (r *MemoryRepository) DeleteUser(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.userIndex(username)
	if i == -1 {
		return fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	r.users = append(r.users[:i], r.users[i+1:]...)
	return nil
}

func (r *MemoryRepository) ListProjects(_ context.Context) ([]models.ProjectInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.ProjectInfo{}, r.projects...), nil
}

func (r *MemoryRepository) FindProject(_ context.Context, key string) (*models.ProjectInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.projectIndex(key)
	if i == -1 {
		return nil, fmt.Errorf("project %q: %w", key, ErrNotFound)
	}
	project := r.projects[i]
	return &project, nil
}

func (r *MemoryRepository) InsertProject(_ context.Context, project models.ProjectInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.projectIndex(project.Key) != -1 {
		return fmt.Errorf("project %q: %w", project.Key, ErrDuplicate)
	}
	r.projects = append(r.projects, project)
	r.modules[project.Key] = []models.ModuleInfo{}
	r.issues[project.Key] = []models.IssueInfo{}
	return nil
}

func (r *MemoryRepository) ReplaceProject(_ context.Context, project models.ProjectInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.projectIndex(project.Key)
	if i == -1 {
		return fmt.Errorf("project %q: %w", project.Key, ErrNotFound)
	}
	r.projects[i] = project
	return nil
}

func (r *MemoryRepository) DeleteProject(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.projectIndex(key)
	if i == -1 {
		return fmt.Errorf("project %q: %w", key, ErrNotFound)
	}
	r.projects = append(r.projects[:i], r.projects[i+1:]...)
	delete(r.modules, key)
	delete(r.issues, key)
	return nil
}

func (r *MemoryRepository) GetModules(_ context.Context, key string) ([]models.ModuleInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	modules, ok := r.modules[key]
	if !ok {
		return nil, fmt.Errorf("modules of %q: %w", key, ErrNotFound)
	}
	return cloneModules(modules), nil
}

func (r *MemoryRepository) SetModules(_ context.Context, key string, modules []models.ModuleInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[key]; !ok {
		return fmt.Errorf("modules of %q: %w", key, ErrNotFound)
	}
	r.modules[key] = cloneModules(modules)
	return nil
}

func (r *MemoryRepository) GetIssues(_ context.Context, key string) ([]models.IssueInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	issues, ok := r.issues[key]
	if !ok {
		return nil, fmt.Errorf("issues of %q: %w", key, ErrNotFound)
	}
	return cloneIssues(issues), nil
}

func (r *MemoryRepository) SetIssues(_ context.Context, key string, issues []models.IssueInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.issues[key]; !ok {
		return fmt.Errorf("issues of %q: %w", key, ErrNotFound)
	}
	r.issues[key] = cloneIssues(issues)
	return nil
}
