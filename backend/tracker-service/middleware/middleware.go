package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/logging"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/services"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

type contextKey string

const actorKey contextKey = "actor"

// TokenParser validates access tokens.
type TokenParser interface {
	ParseAccess(token string) (*services.Claims, error)
}

func WithActor(ctx context.Context, actor services.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext returns the caller stored by JWTAuthMiddleware.
func ActorFromContext(ctx context.Context) (services.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(services.Actor)
	return actor, ok
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(models.Failure(msg)); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_WRITE_FAILED, Description: Failed to write response: %v", err)
	}
}

// JWTAuthMiddleware requires a valid bearer access token and stores its
// user as the request actor.
func JWTAuthMiddleware(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
				writeFailure(w, http.StatusUnauthorized, "not logged in")
				return
			}

			tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found {
				logging.Logger.Warnf("Event ID: JWT_AUTH_BEARER_PREFIX_MISSING, Description: Bearer prefix missing in Authorization header for request to %s %s", r.Method, r.URL.Path)
				writeFailure(w, http.StatusUnauthorized, "not logged in")
				return
			}

			claims, err := tokens.ParseAccess(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
				writeFailure(w, http.StatusUnauthorized, "login expired, please log in again")
				return
			}

			logging.Logger.Debugf("Event ID: JWT_AUTH_SUCCESS, Description: Token of %s validated for request to %s %s", claims.Username, r.Method, r.URL.Path)
			actor := services.Actor{Username: claims.Username, Role: claims.Role}
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

// RequireRole lets only actors with one of the roles through. It must run
// after JWTAuthMiddleware.
func RequireRole(allowedRoles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				writeFailure(w, http.StatusUnauthorized, "not logged in")
				return
			}
			for _, role := range allowedRoles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			logging.Logger.Warnf("Event ID: ACCESS_FORBIDDEN, Description: User %s with role %s denied access to %s %s", actor.Username, actor.Role, r.Method, r.URL.Path)
			writeFailure(w, http.StatusForbidden, services.ErrForbidden.Error())
		})
	}
}
