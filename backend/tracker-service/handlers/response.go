package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/logging"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/middleware"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/services"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

const maxBodyBytes = 1 << 20

var errorStatuses = []struct {
	err    error
	status int
}{
	{models.ErrInvalidPayload, http.StatusBadRequest},
	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrWrongPassword, http.StatusUnauthorized},
	{services.ErrOldPasswordIncorrect, http.StatusBadRequest},
	{services.ErrUserExists, http.StatusConflict},
	{services.ErrUserOwnsProjects, http.StatusConflict},
	{services.ErrInvalidToken, http.StatusUnauthorized},
	{services.ErrForbidden, http.StatusForbidden},
	{services.ErrProjectNotFound, http.StatusNotFound},
	{services.ErrProjectExists, http.StatusConflict},
	{services.ErrOwnerNotFound, http.StatusBadRequest},
	{services.ErrModuleNotFound, http.StatusBadRequest},
	{services.ErrFeatureNotFound, http.StatusBadRequest},
	{services.ErrDuplicateName, http.StatusBadRequest},
	{services.ErrIssueNotFound, http.StatusNotFound},
	{services.ErrDuplicateIssueID, http.StatusBadRequest},
	{services.ErrNotificationNotFound, http.StatusNotFound},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Logger.Errorf("Event ID: RESPONSE_WRITE_FAILED, Description: Failed to write response: %v", err)
	}
}

func writeSuccess(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, models.Success(msg))
}

func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, models.Failure("no such endpoint: "+r.URL.Path))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, models.Failure(r.Method+" is not allowed on "+r.URL.Path))
}

// writeError answers with an error envelope. Known errors keep their
// message; anything else is logged and reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ruleErr *models.RuleError
	if errors.As(err, &ruleErr) {
		writeJSON(w, http.StatusBadRequest, models.Failure(ruleErr.Msg))
		return
	}
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, models.Failure(err.Error()))
			return
		}
	}
	logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %s %s failed: %v", r.Method, r.URL.Path, err)
	writeJSON(w, http.StatusInternalServerError, models.Failure("internal server error"))
}

// decodeBody reads and validates a JSON body of type T, answering the
// request itself when that fails.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var zero T
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, models.Failure("request body too large"))
		return zero, false
	}
	v, err := models.Decode[T](data)
	if err != nil {
		logging.Logger.Warnf("Event ID: INVALID_REQUEST_BODY, Description: Invalid body for %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, r, err)
		return zero, false
	}
	return v, true
}

// actor returns the caller set by the auth middleware. Routes without
// authentication get the zero Actor.
func actor(r *http.Request) services.Actor {
	a, _ := middleware.ActorFromContext(r.Context())
	return a
}
