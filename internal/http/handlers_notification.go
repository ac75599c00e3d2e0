package http

import (
	"errors"
	"net/http"

	"budgetiq/internal/log"
	"budgetiq/internal/storage"
)

const notificationLimit = 50

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	items, err := s.store.ListNotifications(r.Context(), user.ID, notificationLimit)
	if err != nil {
		log.FromContext(r.Context()).Error("notification listing failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toNotificationViews(items))
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	id, ok := pathID(r.PathValue("id"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Notification not found")
		return
	}

	if err := s.store.MarkNotificationRead(r.Context(), user.ID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeDetail(w, http.StatusNotFound, "Notification not found")
			return
		}
		log.FromContext(r.Context()).Error("notification update failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeMessage(w, "Notification marked as read")
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r.Context())

	if err := s.store.MarkAllNotificationsRead(r.Context(), user.ID); err != nil {
		log.FromContext(r.Context()).Error("notification bulk update failed", log.FieldError, err, log.FieldUserID, user.ID)
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeMessage(w, "All notifications marked as read")
}
