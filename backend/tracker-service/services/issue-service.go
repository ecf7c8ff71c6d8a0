package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

func (s *ProjectService) GetIssues(ctx context.Context, key string, search models.SearchIssueReq) ([]models.IssueInfo, error) {
	if _, err := s.findProject(ctx, key); err != nil {
		return nil, err
	}
	all, err := s.Projects.GetIssues(ctx, key)
	if err != nil {
		return nil, err
	}
	issues := []models.IssueInfo{}
	for _, issue := range all {
		if search.Match(issue) {
			issues = append(issues, issue)
		}
	}
	return issues, nil
}

// CreateIssue files a new issue. The id is assigned by the server when it
// is empty or already taken.
func (s *ProjectService) CreateIssue(ctx context.Context, actor Actor, key string, issue models.IssueInfo) (models.IssueInfo, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	project, err := s.findProject(ctx, key)
	if err != nil {
		return models.IssueInfo{}, err
	}
	if err := s.checkFeature(ctx, key, issue); err != nil {
		return models.IssueInfo{}, err
	}
	issues, err := s.Projects.GetIssues(ctx, key)
	if err != nil {
		return models.IssueInfo{}, err
	}

	if issue.ID == "" || issueIndex(issues, issue.ID) != -1 {
		issue.ID = nextIssueID(issues)
	}
	if issue.CreatorUsername == "" || !actor.IsAdmin() {
		issue.CreatorUsername = actor.Username
	}
	if issue.CreateTime == "" {
		issue.CreateTime = s.now().Format(models.TimeLayout)
	}
	if issue.Status == "" {
		issue.Status = models.StatusOpen
	}
	if issue.Status == models.StatusSolved && issue.SolveTime == "" {
		issue.SolveTime = s.now().Format(models.TimeLayout)
	}

	created := append(slices.Clone(issues), issue)
	if err := s.storeIssues(ctx, project, issues, created); err != nil {
		return models.IssueInfo{}, err
	}
	s.Logger.Infof("Event ID: ISSUE_CREATED, Description: Issue %s created in project %s by %s", issue.ID, key, actor.Username)
	if issue.DevUsername != "" {
		s.Notifier.Notify(ctx, actor, issue.DevUsername,
			fmt.Sprintf("You have been assigned to issue #%s %q in project %s", issue.ID, issue.Title, key))
	}
	return issue, nil
}

// UpdateIssue replaces the issue with the given id. Admins, the project
// owner, the creator and the assigned developer may update it.
func (s *ProjectService) UpdateIssue(ctx context.Context, actor Actor, key, id string, issue models.IssueInfo) (models.IssueInfo, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	project, err := s.findProject(ctx, key)
	if err != nil {
		return models.IssueInfo{}, err
	}
	issues, err := s.Projects.GetIssues(ctx, key)
	if err != nil {
		return models.IssueInfo{}, err
	}
	i := issueIndex(issues, id)
	if i == -1 {
		return models.IssueInfo{}, fmt.Errorf("%w: #%s in project %s", ErrIssueNotFound, id, key)
	}
	old := issues[i]
	if !canManage(actor, project) && old.CreatorUsername != actor.Username && old.DevUsername != actor.Username {
		return models.IssueInfo{}, ErrForbidden
	}
	if err := s.checkFeature(ctx, key, issue); err != nil {
		return models.IssueInfo{}, err
	}

	issue.ID = id
	// Only admins and the owner may reassign the creator, since the creator
	// may delete the issue.
	if issue.CreatorUsername == "" || !canManage(actor, project) {
		issue.CreatorUsername = old.CreatorUsername
	}
	if issue.CreateTime == "" {
		issue.CreateTime = old.CreateTime
	}
	if issue.Status == "" {
		issue.Status = old.Status
	}
	if issue.Status == models.StatusSolved && issue.SolveTime == "" {
		issue.SolveTime = s.now().Format(models.TimeLayout)
	}
	updated := slices.Clone(issues)
	updated[i] = issue

	if err := s.storeIssues(ctx, project, issues, updated); err != nil {
		return models.IssueInfo{}, err
	}

	if issue.DevUsername != "" && issue.DevUsername != old.DevUsername {
		s.Notifier.Notify(ctx, actor, issue.DevUsername,
			fmt.Sprintf("You have been assigned to issue #%s %q in project %s", id, issue.Title, key))
	}
	if issue.Status == models.StatusSolved && old.Status != models.StatusSolved {
		s.Notifier.Notify(ctx, actor, issue.CreatorUsername,
			fmt.Sprintf("Issue #%s %q in project %s has been solved", id, issue.Title, key))
	}
	return issue, nil
}

// DeleteIssue removes an issue; the assigned developer alone may not.
func (s *ProjectService) DeleteIssue(ctx context.Context, actor Actor, key, id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	project, err := s.findProject(ctx, key)
	if err != nil {
		return err
	}
	issues, err := s.Projects.GetIssues(ctx, key)
	if err != nil {
		return err
	}
	i := issueIndex(issues, id)
	if i == -1 {
		return fmt.Errorf("%w: #%s in project %s", ErrIssueNotFound, id, key)
	}
	if !canManage(actor, project) && issues[i].CreatorUsername != actor.Username {
		return ErrForbidden
	}
	if err := s.storeIssues(ctx, project, issues, slices.Delete(slices.Clone(issues), i, i+1)); err != nil {
		return err
	}
	s.Logger.Infof("Event ID: ISSUE_DELETED, Description: Issue %s deleted from project %s by %s", id, key, actor.Username)
	return nil
}

// ReplaceIssues swaps the whole issue list. Ids must be unique; empty ids
// are assigned.
func (s *ProjectService) ReplaceIssues(ctx context.Context, actor Actor, key string, issues []models.IssueInfo) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	project, err := s.findProject(ctx, key)
	if err != nil {
		return err
	}
	if !canManage(actor, project) {
		return ErrForbidden
	}

	seen := make(map[string]bool, len(issues))
	for _, issue := range issues {
		if issue.ID == "" {
			continue
		}
		if seen[issue.ID] {
			return fmt.Errorf("%w: #%s", ErrDuplicateIssueID, issue.ID)
		}
		seen[issue.ID] = true
	}
	next, _ := strconv.Atoi(nextIssueID(issues))
	replaced := make([]models.IssueInfo, 0, len(issues))
	for _, issue := range issues {
		if issue.ID == "" {
			issue.ID = strconv.Itoa(next)
			next++
		}
		if issue.Status == "" {
			issue.Status = models.StatusOpen
		}
		replaced = append(replaced, issue)
	}

	previous, err := s.Projects.GetIssues(ctx, key)
	if err != nil {
		return err
	}
	return s.storeIssues(ctx, project, previous, replaced)
}

func (s *ProjectService) checkFeature(ctx context.Context, key string, issue models.IssueInfo) error {
	modules, err := s.Projects.GetModules(ctx, key)
	if err != nil {
		return err
	}
	for _, m := range modules {
		if m.Name != issue.ModuleName {
			continue
		}
		for _, f := range m.Features {
			if f.Name == issue.FeatureName {
				return nil
			}
		}
		return fmt.Errorf("%w: %s in module %s", ErrFeatureNotFound, issue.FeatureName, issue.ModuleName)
	}
	return fmt.Errorf("%w: %s", ErrModuleNotFound, issue.ModuleName)
}

func issueIndex(issues []models.IssueInfo, id string) int {
	for i, issue := range issues {
		if issue.ID == id {
			return i
		}
	}
	return -1
}

// nextIssueID is one past the largest numeric id; non-numeric ids are
// ignored.
func nextIssueID(issues []models.IssueInfo) string {
	next := 1
	for _, issue := range issues {
		if n, err := strconv.Atoi(issue.ID); err == nil && n >= next {
			next = n + 1
		}
	}
	return strconv.Itoa(next)
}
