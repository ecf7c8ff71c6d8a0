package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yyhhenry/sdu--neu-bug/models"
)

// SearchProjects lists projects whose name or key contains name; an empty
// name lists all.
func (c *Client) SearchProjects(ctx context.Context, name string) ([]models.ProjectInfo, error) {
	query := url.Values{}
	if name != "" {
		query.Set("name", name)
	}
	res, err := call[models.ProjectList](ctx, c, request{method: http.MethodGet, path: "/api/search-project", query: query, auth: true})
	return res.Projects, err
}

func (c *Client) CreateProject(ctx context.Context, key string, req models.CreateProjectReq) (models.ProjectInfo, error) {
	return call[models.ProjectInfo](ctx, c, request{method: http.MethodPost, path: pathf("/api/project/%s", key), body: req, auth: true})
}

func (c *Client) UpdateProject(ctx context.Context, key string, req models.CreateProjectReq) (models.ProjectInfo, error) {
	return call[models.ProjectInfo](ctx, c, request{method: http.MethodPut, path: pathf("/api/project/%s", key), body: req, auth: true})
}

func (c *Client) DeleteProject(ctx context.Context, key string) (string, error) {
	return c.callMsg(ctx, request{method: http.MethodDelete, path: pathf("/api/project/%s", key), auth: true})
}

func (c *Client) GetModules(ctx context.Context, key string) (models.ModuleList, error) {
	return call[models.ModuleList](ctx, c, request{method: http.MethodGet, path: pathf("/api/project/%s/modules", key), auth: true})
}

func (c *Client) UpdateModules(ctx context.Context, key string, modules []models.ModuleInfo) (string, error) {
	return c.callMsg(ctx, request{
		method: http.MethodPut,
		path:   pathf("/api/project/%s/modules", key),
		body:   models.ModuleList{Modules: modules},
		auth:   true,
	})
}

func (c *Client) GetIssues(ctx context.Context, key string, search models.SearchIssueReq) ([]models.IssueInfo, error) {
	res, err := call[models.IssueList](ctx, c, request{method: http.MethodGet, path: pathf("/api/project/%s/issue", key), query: search.Values(), auth: true})
	return res.Issues, err
}

func (c *Client) CreateIssue(ctx context.Context, key string, issue models.IssueInfo) (string, error) {
	return c.callMsg(ctx, request{method: http.MethodPost, path: pathf("/api/project/%s/issue", key), body: issue, auth: true})
}

// UpdateIssue replaces the issue identified by issue.ID.
func (c *Client) UpdateIssue(ctx context.Context, key string, issue models.IssueInfo) (string, error) {
	return c.callMsg(ctx, request{method: http.MethodPut, path: pathf("/api/project/%s/issue/%s", key, issue.ID), body: issue, auth: true})
}

func (c *Client) DeleteIssue(ctx context.Context, key, id string) (string, error) {
	return c.callMsg(ctx, request{method: http.MethodDelete, path: pathf("/api/project/%s/issue/%s", key, id), auth: true})
}

func (c *Client) ReplaceIssues(ctx context.Context, key string, issues []models.IssueInfo) (string, error) {
	return c.callMsg(ctx, request{
		method: http.MethodPut,
		path:   pathf("/api/project/%s/issue", key),
		body:   models.IssueList{Issues: issues},
		auth:   true,
	})
}

func (c *Client) Notifications(ctx context.Context) ([]models.Notification, error) {
	res, err := call[models.NotificationList](ctx, c, request{method: http.MethodGet, path: "/api/notifications", auth: true})
	return res.Notifications, err
}

func (c *Client) MarkNotificationRead(ctx context.Context, id string) (string, error) {
	return c.callMsg(ctx, request{method: http.MethodPut, path: pathf("/api/notifications/%s/read", id), auth: true})
}
