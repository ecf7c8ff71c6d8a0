package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/yyhhenry/sdu--neu-bug/backend/tracker-service/services"
	"github.com/yyhhenry/sdu--neu-bug/models"
)

type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := h.Service.List(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, models.NotificationList{Notifications: notifications})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.MarkRead(r.Context(), actor(r), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, "Notification marked as read")
}
