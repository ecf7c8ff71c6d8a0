package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/middleware"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/repositories"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/services"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hasher := services.PasswordHasher{Cost: bcrypt.MinCost}
	repo := repositories.NewMemoryRepository()
	seed, err := repositories.LoadSeed("")
	require.NoError(t, err)
	require.NoError(t, seed.Apply(context.Background(), repo, repo, hasher.Hash))

	logger, _ := test.NewNullLogger()
	svc := services.New(services.Deps{
		Users:         repo,
		Projects:      repo,
		Notifications: repositories.NewMemoryNotificationRepo(),
		Tokens:        services.NewTokenService("test-secret", 5*time.Minute, time.Hour, repositories.NewMemoryTokenStore()),
		Hasher:        hasher,
		Logger:        logger,
	})
	srv := httptest.NewServer(NewRouter(svc, RouterOptions{LoginLimiter: middleware.NewIPRateLimiter(100, 100)}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(res.Body)
	require.NoError(t, err)
	return res.StatusCode, buf.Bytes()
}

func login(t *testing.T, srv *httptest.Server, username string) models.LoginRes {
	t.Helper()
	status, body := do(t, srv, http.MethodPost, "/api/login", "", models.LoginReq{Username: username, Password: "123456"})
	require.Equal(t, http.StatusOK, status, string(body))
	res, err := models.Decode[models.LoginRes](body)
	require.NoError(t, err)
	return res
}

func message(t *testing.T, body []byte) models.MsgRes {
	t.Helper()
	msg, ok := models.AsMessage(body)
	require.True(t, ok, "not a message: %s", body)
	return msg
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	status, body := do(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))
}

func TestLoginAndRefresh(t *testing.T) {
	srv := newTestServer(t)

	status, body := do(t, srv, http.MethodPost, "/api/login", "", models.LoginReq{Username: "ghost", Password: "123456"})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, models.Failure("user does not exist"), message(t, body))

	status, body = do(t, srv, http.MethodPost, "/api/login", "", models.LoginReq{Username: "admin", Password: "000000"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "wrong password", message(t, body).Msg)

	status, body = do(t, srv, http.MethodPost, "/api/login", "", map[string]string{"username": "admin", "password": "123456", "extra": "x"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, models.MsgError, message(t, body).Type)

	res := login(t, srv, "admin")
	assert.Equal(t, models.RoleAdmin, res.Role)

	status, body = do(t, srv, http.MethodPost, "/api/refresh", "", models.RefreshReq{RefreshToken: res.Token.RefreshToken})
	require.Equal(t, http.StatusOK, status, string(body))
	pair, err := models.Decode[models.TokenPair](body)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	status, _ = do(t, srv, http.MethodPost, "/api/refresh", "", models.RefreshReq{RefreshToken: res.Token.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestUserRoutes(t *testing.T) {
	srv := newTestServer(t)
	adminToken := login(t, srv, "admin").Token.AccessToken
	studentToken := login(t, srv, "student").Token.AccessToken

	status, _ := do(t, srv, http.MethodGet, "/api/user/student", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := do(t, srv, http.MethodGet, "/api/user/student", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	info, err := models.Decode[models.UserInfo](body)
	require.NoError(t, err)
	assert.Equal(t, "student@example.com", info.Email)

	status, _ = do(t, srv, http.MethodGet, "/api/user/admin", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = do(t, srv, http.MethodGet, "/api/search-user?username=user", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = do(t, srv, http.MethodGet, "/api/search-user?username=user&role=user", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	users, err := models.Decode[models.SearchUserRes](body)
	require.NoError(t, err)
	assert.Len(t, users.Users, 2)

	status, _ = do(t, srv, http.MethodGet, "/api/search-user?nickname=x", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	register := models.RegisterReq{
		Info:     models.UserInfo{Username: "tester", FullName: "Tester", Role: models.RoleUser, Email: "tester@example.com"},
		Password: "secret1",
	}
	status, body = do(t, srv, http.MethodPost, "/api/register", adminToken, register)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.MsgSuccess, message(t, body).Type)

	status, body = do(t, srv, http.MethodPost, "/api/register", adminToken, register)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "username already exists", message(t, body).Msg)

	register.Info.Username = "bad"
	status, body = do(t, srv, http.MethodPost, "/api/register", adminToken, register)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "username length must be between 5 and 30", message(t, body).Msg)

	status, _ = do(t, srv, http.MethodPost, "/api/change-password", studentToken,
		models.ChangePasswordReq{OldPassword: "123456", NewPassword: "654321"})
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, srv, http.MethodDelete, "/api/user/userC1", adminToken, nil)
	assert.Equal(t, http.StatusConflict, status)
	status, _ = do(t, srv, http.MethodDelete, "/api/user/tester", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestProjectRoutes(t *testing.T) {
	srv := newTestServer(t)
	adminToken := login(t, srv, "admin").Token.AccessToken
	studentToken := login(t, srv, "student").Token.AccessToken

	status, body := do(t, srv, http.MethodGet, "/api/search-project?name=Blog", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	list, err := models.Decode[models.ProjectList](body)
	require.NoError(t, err)
	require.Len(t, list.Projects, 1)
	assert.Equal(t, 2, list.Projects[0].NumIssues)

	req := models.CreateProjectReq{Name: "Tracker", Date: "2024-05-01", OwnerUsername: "student"}
	status, _ = do(t, srv, http.MethodPost, "/api/project/tracker", studentToken, req)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = do(t, srv, http.MethodPost, "/api/project/tracker", adminToken, req)
	require.Equal(t, http.StatusCreated, status, string(body))
	project, err := models.Decode[models.ProjectInfo](body)
	require.NoError(t, err)
	assert.Equal(t, "tracker", project.Key)

	req.Date = "01/05/2024"
	status, _ = do(t, srv, http.MethodPut, "/api/project/tracker", studentToken, req)
	assert.Equal(t, http.StatusBadRequest, status)

	modules := models.ModuleList{Modules: []models.ModuleInfo{{Name: "Core", Features: []models.FeatureInfo{
		{Name: "Parser", DevHours: 3, DevUsername: "student"},
		{Name: "Printer", DevHours: 1, DevUsername: "cUser3"},
	}}}}
	status, _ = do(t, srv, http.MethodPut, "/api/project/tracker/modules", studentToken, modules)
	assert.Equal(t, http.StatusOK, status)

	status, body = do(t, srv, http.MethodGet, "/api/project/tracker/modules", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	got, err := models.Decode[models.ModuleList](body)
	require.NoError(t, err)
	assert.Equal(t, "tracker", got.ProjectKey)
	assert.Equal(t, modules.Modules, got.Modules)

	status, body = do(t, srv, http.MethodGet, "/api/search-project?name=tracker", studentToken, nil)
	require.Equal(t, http.StatusOK, status)
	list, err = models.Decode[models.ProjectList](body)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Projects[0].NumDevelopers)
	assert.Equal(t, 2, list.Projects[0].NumFeatures)

	status, _ = do(t, srv, http.MethodDelete, "/api/project/tracker", adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = do(t, srv, http.MethodGet, "/api/project/tracker/modules", studentToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestIssueRoutes(t *testing.T) {
	srv := newTestServer(t)
	creator := login(t, srv, "cUser3").Token.AccessToken
	developer := login(t, srv, "student").Token.AccessToken

	issue := models.IssueInfo{
		ModuleName:  "Home",
		FeatureName: "Navigation bar",
		Title:       "Menu overlaps logo",
		Level:       models.LevelNormal,
		DevUsername: "student",
	}
	status, body := do(t, srv, http.MethodPost, "/api/project/blog/issue", creator, issue)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "Issue #3 created", message(t, body).Msg)

	issue.Level = "blocker"
	status, _ = do(t, srv, http.MethodPost, "/api/project/blog/issue", creator, issue)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, srv, http.MethodGet, "/api/project/blog/issue?devUsername=STUDENT&status=open", developer, nil)
	require.Equal(t, http.StatusOK, status)
	issues, err := models.Decode[models.IssueList](body)
	require.NoError(t, err)
	require.Len(t, issues.Issues, 1)
	created := issues.Issues[0]
	assert.Equal(t, "3", created.ID)
	assert.Equal(t, "cUser3", created.CreatorUsername)

	status, _ = do(t, srv, http.MethodGet, "/api/project/blog/issue?level=huge", developer, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, srv, http.MethodGet, "/api/notifications", developer, nil)
	require.Equal(t, http.StatusOK, status)
	notifications, err := models.Decode[models.NotificationList](body)
	require.NoError(t, err)
	require.Len(t, notifications.Notifications, 1)

	status, _ = do(t, srv, http.MethodPut, "/api/notifications/"+notifications.Notifications[0].ID+"/read", developer, nil)
	assert.Equal(t, http.StatusOK, status)

	created.Status = models.StatusSolved
	status, _ = do(t, srv, http.MethodPut, "/api/project/blog/issue/3", developer, created)
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, srv, http.MethodDelete, "/api/project/blog/issue/3", developer, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = do(t, srv, http.MethodDelete, "/api/project/blog/issue/3", creator, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = do(t, srv, http.MethodPut, "/api/project/blog/issue", creator, models.IssueList{})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestIssueUpdateKeepsCreator(t *testing.T) {
	srv := newTestServer(t)
	developer := login(t, srv, "student").Token.AccessToken

	status, body := do(t, srv, http.MethodGet, "/api/project/blog/issue", developer, nil)
	require.Equal(t, http.StatusOK, status)
	issues, err := models.Decode[models.IssueList](body)
	require.NoError(t, err)
	var first models.IssueInfo
	for _, issue := range issues.Issues {
		if issue.ID == "1" {
			first = issue
		}
	}
	require.Equal(t, "userC1", first.CreatorUsername)
	require.Equal(t, "student", first.DevUsername)

	status, _ = do(t, srv, http.MethodDelete, "/api/project/blog/issue/1", developer, nil)
	assert.Equal(t, http.StatusForbidden, status)

	first.CreatorUsername = "student"
	first.Feedback = "Adjusted again"
	status, body = do(t, srv, http.MethodPut, "/api/project/blog/issue/1", developer, first)
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = do(t, srv, http.MethodDelete, "/api/project/blog/issue/1", developer, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = do(t, srv, http.MethodGet, "/api/project/blog/issue?creatorUsername=userC1", developer, nil)
	require.Equal(t, http.StatusOK, status)
	issues, err = models.Decode[models.IssueList](body)
	require.NoError(t, err)
	require.Len(t, issues.Issues, 2)
	for _, issue := range issues.Issues {
		if issue.ID == "1" {
			assert.Equal(t, "Adjusted again", issue.Feedback)
		}
	}
}

func TestUnknownRoutesAnswerWithMessage(t *testing.T) {
	srv := newTestServer(t)
	token := login(t, srv, "admin").Token.AccessToken

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{"unknown api path", http.MethodGet, "/api/nope", http.StatusNotFound},
		{"unknown root path", http.MethodGet, "/nope", http.StatusNotFound},
		{"wrong method", http.MethodPatch, "/api/project/blog", http.StatusMethodNotAllowed},
		{"wrong method on login", http.MethodGet, "/api/login", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, srv, tt.method, tt.path, token, nil)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, models.MsgError, message(t, body).Type)
		})
	}

	status, body := do(t, srv, http.MethodGet, "/api/project/blog/issue/1", token, nil)
	assert.GreaterOrEqual(t, status, http.StatusBadRequest)
	assert.Equal(t, models.MsgError, message(t, body).Type)
}
