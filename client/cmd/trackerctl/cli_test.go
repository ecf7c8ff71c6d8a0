package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/handlers"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/repositories"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/services"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

type cli struct {
	t       *testing.T
	server  string
	session string
}

func newCLI(t *testing.T) *cli {
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
	srv := httptest.NewServer(handlers.NewRouter(svc, handlers.RouterOptions{}))
	t.Cleanup(srv.Close)
	return &cli{t: t, server: srv.URL, session: filepath.Join(t.TempDir(), "account.json")}
}

func (c *cli) run(stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(&out, strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", c.server, "--session", c.session}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) mustRun(args ...string) string {
	c.t.Helper()
	out, err := c.run("", args...)
	require.NoError(c.t, err, out)
	return out
}

func TestLoginWhoamiLogout(t *testing.T) {
	c := newCLI(t)

	out := c.mustRun("whoami")
	assert.Equal(t, "Not logged in\n", out)

	_, err := c.run("", "login", "admin", "-p", "nope")
	assert.EqualError(t, err, "wrong password")

	out, err = c.run("123456\n", "login", "admin")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin (Administrator)")

	data, err := os.ReadFile(c.session)
	require.NoError(t, err)
	account, err := models.Decode[models.AccountStorage](data)
	require.NoError(t, err)
	assert.Equal(t, "admin", account.Username)

	out = c.mustRun("whoami")
	assert.Contains(t, out, "admin@example.com")

	c.mustRun("logout")
	out = c.mustRun("whoami")
	assert.Equal(t, "Not logged in\n", out)
}

func TestProjectWorkflow(t *testing.T) {
	c := newCLI(t)
	c.mustRun("login", "admin", "-p", "123456")

	out := c.mustRun("project", "list")
	assert.Contains(t, out, "Personal blog system")
	assert.Contains(t, out, "User management system")

	c.mustRun("project", "create", "wiki", "--name", "Wiki", "--owner", "student", "--date", "2024-01-01")
	c.mustRun("project", "update", "wiki", "--description", "Team wiki")

	modulesFile := filepath.Join(t.TempDir(), "modules.json")
	require.NoError(t, os.WriteFile(modulesFile, []byte(`{"modules":[{"name":"Pages","features":[{"name":"Editor","devHours":5,"devUsername":"student"}]}]}`), 0600))
	c.mustRun("module", "set", "wiki", "-f", modulesFile)

	out = c.mustRun("module", "list", "wiki")
	assert.Contains(t, out, "Editor")

	out = c.mustRun("issue", "create", "wiki", "--module", "Pages", "--feature", "Editor", "--title", "Undo is broken", "--level", "urgent")
	assert.Equal(t, "Issue #1 created\n", out)

	c.mustRun("issue", "update", "wiki", "1", "--status", "solved", "--tag", "solved")

	out = c.mustRun("--json", "issue", "list", "wiki", "--status", "solved")
	list, err := models.Decode[models.IssueList]([]byte(out))
	require.NoError(t, err)
	require.Len(t, list.Issues, 1)
	assert.NotEmpty(t, list.Issues[0].SolveTime)

	out = c.mustRun("--json", "project", "list", "wiki")
	projects, err := models.Decode[models.ProjectList]([]byte(out))
	require.NoError(t, err)
	require.Len(t, projects.Projects, 1)
	assert.Equal(t, "Team wiki", projects.Projects[0].Description)
	assert.Equal(t, 1, projects.Projects[0].NumIssues)

	_, err = c.run("", "issue", "create", "wiki", "--module", "Pages", "--feature", "Editor", "--title", "x", "--level", "huge")
	assert.ErrorIs(t, err, models.ErrInvalidPayload)

	c.mustRun("issue", "delete", "wiki", "1")
	c.mustRun("project", "delete", "wiki")
}

func TestUserCommands(t *testing.T) {
	c := newCLI(t)
	c.mustRun("login", "admin", "-p", "123456")

	_, err := c.run("", "user", "register", "abc", "-p", "secret1", "--email", "abc@example.com")
	assert.EqualError(t, err, "username length must be between 5 and 30")

	c.mustRun("user", "register", "tester", "-p", "secret1", "--email", "tester@example.com", "--full-name", "Tester")
	out := c.mustRun("user", "search", "--full-name", "Test")
	assert.Contains(t, out, "tester@example.com")

	c.mustRun("user", "edit", "tester", "--full-name", "Renamed")
	out = c.mustRun("--json", "user", "get", "tester")
	info, err := models.Decode[models.UserInfo]([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "Renamed", info.FullName)

	c.mustRun("user", "delete", "tester")

	c.mustRun("login", "student", "-p", "123456")
	c.mustRun("passwd", "--old", "123456", "--new", "abcdef")
	_, err = c.run("", "user", "search")
	assert.EqualError(t, err, "permission denied")

	out = c.mustRun("notification", "list")
	assert.Contains(t, out, "MESSAGE")
}

func TestNotificationWatchRejectsInterval(t *testing.T) {
	c := newCLI(t)
	c.mustRun("login", "student", "-p", "123456")

	for _, interval := range []string{"0s", "-1s"} {
		_, err := c.run("", "notification", "watch", "--interval="+interval)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--interval must be positive")
	}
}
