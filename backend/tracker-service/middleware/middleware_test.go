package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/repositories"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/services"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

func actorEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if ok {
			w.Write([]byte(actor.Username + "/" + string(actor.Role)))
		}
	})
}

func decodeFailure(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	msg, ok := models.AsMessage(rec.Body.Bytes())
	require.True(t, ok, "body %q is not a message", rec.Body.String())
	assert.Equal(t, models.MsgError, msg.Type)
	return msg.Msg
}

func TestJWTAuthMiddleware(t *testing.T) {
	tokens := services.NewTokenService("secret", time.Minute, time.Hour, repositories.NewMemoryTokenStore())
	pair, err := tokens.Issue("student", models.RoleUser)
	require.NoError(t, err)
	handler := JWTAuthMiddleware(tokens)(actorEcho())

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, ""},
		{"no bearer prefix", pair.AccessToken, http.StatusUnauthorized, ""},
		{"refresh token", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, ""},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized, ""},
		{"valid", "Bearer " + pair.AccessToken, http.StatusOK, "student/user"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/search-project", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
			} else {
				assert.NotEmpty(t, decodeFailure(t, rec))
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(models.RoleAdmin)(actorEcho())

	req := httptest.NewRequest(http.MethodPost, "/api/register", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = req.WithContext(WithActor(req.Context(), services.Actor{Username: "student", Role: models.RoleUser}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "permission denied", decodeFailure(t, rec))

	req = req.WithContext(WithActor(req.Context(), services.Actor{Username: "admin", Role: models.RoleAdmin}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin/admin", rec.Body.String())
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 2)
	handler := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1001"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2:1000"))

	now := time.Now()
	limiter.now = func() time.Time { return now.Add(3 * time.Hour) }
	assert.Equal(t, 2, limiter.Cleanup(2*time.Hour))
	assert.Equal(t, http.StatusOK, send("10.0.0.1:1003"))
}

func TestEnableCORS(t *testing.T) {
	called := false
	handler := EnableCORS("http://localhost:5173")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.False(t, called)

	rec = httptest.NewRecorder()
	LogRequests(handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, called)
}
