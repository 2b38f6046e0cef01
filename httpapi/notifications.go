package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "huddle/errors"
)

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, fmt.Errorf("%w: malformed limit", apperrors.ErrInvalidPayload))
			return
		}
		limit = parsed
	}
	notifications, err := s.notifications.List(userID(r.Context()), limit)
	if err != nil {
		s.log.Error("list notifications", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDTO(notifications, toNotificationDTO))
}

func (s *Server) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	if err := s.notifications.MarkAllRead(userID(r.Context())); err != nil {
		s.log.Error("mark notifications read", "error", err)
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
