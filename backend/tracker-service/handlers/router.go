package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/middleware"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/services"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

type RouterOptions struct {
	// LoginLimiter throttles /api/login; nil disables throttling.
	LoginLimiter *middleware.IPRateLimiter
	CORSOrigin   string
}

// NewRouter wires every tracker endpoint.
func NewRouter(svc *services.Services, opts RouterOptions) http.Handler {
	users := NewUserHandler(svc.Accounts)
	projects := NewProjectHandler(svc.Projects)
	notifications := NewNotificationHandler(svc.Notifications)

	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = r.NotFoundHandler
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler

	var login http.Handler = http.HandlerFunc(users.Login)
	if opts.LoginLimiter != nil {
		login = opts.LoginLimiter.Middleware(login)
	}
	api.Handle("/login", login).Methods(http.MethodPost)
	api.HandleFunc("/refresh", users.Refresh).Methods(http.MethodPost)

	auth := api.NewRoute().Subrouter()
	auth.Use(middleware.JWTAuthMiddleware(svc.Tokens))

	auth.HandleFunc("/user/{username}", users.GetUser).Methods(http.MethodGet)
	auth.HandleFunc("/change-password", users.ChangePassword).Methods(http.MethodPost)
	auth.HandleFunc("/search-project", projects.SearchProjects).Methods(http.MethodGet)
	auth.HandleFunc("/project/{key}", projects.UpdateProject).Methods(http.MethodPut)
	auth.HandleFunc("/project/{key}/modules", projects.GetModules).Methods(http.MethodGet)
	auth.HandleFunc("/project/{key}/modules", projects.UpdateModules).Methods(http.MethodPut)
	auth.HandleFunc("/project/{key}/issue", projects.GetIssues).Methods(http.MethodGet)
	auth.HandleFunc("/project/{key}/issue", projects.CreateIssue).Methods(http.MethodPost)
	auth.HandleFunc("/project/{key}/issue", projects.ReplaceIssues).Methods(http.MethodPut)
	auth.HandleFunc("/project/{key}/issue/{id}", projects.UpdateIssue).Methods(http.MethodPut)
	auth.HandleFunc("/project/{key}/issue/{id}", projects.DeleteIssue).Methods(http.MethodDelete)
	auth.HandleFunc("/notifications", notifications.GetNotifications).Methods(http.MethodGet)
	auth.HandleFunc("/notifications/{id}/read", notifications.MarkAsRead).Methods(http.MethodPut)

	admin := auth.NewRoute().Subrouter()
	admin.Use(middleware.RequireRole(models.RoleAdmin))

	admin.HandleFunc("/user/{username}", users.EditUser).Methods(http.MethodPost)
	admin.HandleFunc("/user/{username}", users.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/search-user", users.SearchUsers).Methods(http.MethodGet)
	admin.HandleFunc("/register", users.Register).Methods(http.MethodPost)
	admin.HandleFunc("/project/{key}", projects.CreateProject).Methods(http.MethodPost)
	admin.HandleFunc("/project/{key}", projects.DeleteProject).Methods(http.MethodDelete)

	origin := opts.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	return middleware.EnableCORS(origin)(middleware.LogRequests(r))
}
