package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/logging"
	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/services"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

type UserHandler struct {
	Service *services.AccountService
}

func NewUserHandler(service *services.AccountService) *UserHandler {
	return &UserHandler{Service: service}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[models.LoginReq](w, r)
	if !ok {
		return
	}
	res, err := h.Service.Login(r.Context(), req)
	if err != nil {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Login failed for %s: %v", req.Username, err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[models.RefreshReq](w, r)
	if !ok {
		return
	}
	pair, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		logging.Logger.Warnf("Event ID: TOKEN_REFRESH_FAILED, Description: Refresh rejected: %v", err)
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	info, err := h.Service.GetUser(r.Context(), actor(r), mux.Vars(r)["username"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *UserHandler) EditUser(w http.ResponseWriter, r *http.Request) {
	info, ok := decodeBody[models.UserInfo](w, r)
	if !ok {
		return
	}
	if err := h.Service.EditUser(r.Context(), mux.Vars(r)["username"], info); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "User updated")
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteUser(r.Context(), mux.Vars(r)["username"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "User deleted")
}

func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	req, err := models.ParseSearchUserReq(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := h.Service.SearchUsers(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.SearchUserRes{Users: users})
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[models.RegisterReq](w, r)
	if !ok {
		return
	}
	if err := h.Service.Register(r.Context(), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "Registration successful")
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeBody[models.ChangePasswordReq](w, r)
	if !ok {
		return
	}
	if err := h.Service.ChangePassword(r.Context(), actor(r), req); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "Password changed")
}
