package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gofrs/uuid"

	"github.com/storefront-go/storefront/internal/notification"
	"github.com/storefront-go/storefront/internal/user"
)

type NotificationHandler struct {
	notifications notification.Repository
}

func NewNotificationHandler(notifications notification.Repository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// channelFor picks the notification channel the session reads from. Admins
// read the shared admin channel, everyone else their own.
func channelFor(sess *user.Session) string {
	if sess.IsAdmin {
		return notification.ChannelAdmin
	}
	return sess.UserID.String()
}

func (h *NotificationHandler) handleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	channel := channelFor(sess)
	notifications, err := h.notifications.ListByUser(r.Context(), channel, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	unread, err := h.notifications.UnreadCount(r.Context(), channel)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"notifications": notifications,
		"unread_count":  unread,
	})
}

type markReadRequest struct {
	NotificationID string `json:"notificationId"`
}

func (h *NotificationHandler) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	var req markReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	id, err := uuid.FromString(req.NotificationID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	channel := channelFor(sess)
	if err := h.notifications.MarkRead(r.Context(), id, channel); err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Notification marked as read"})
}

func (h *NotificationHandler) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	sess, ok := SessionFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authorized, please log in")
		return
	}

	channel := channelFor(sess)
	if err := h.notifications.MarkAllRead(r.Context(), channel); err != nil {
		respondDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "message": "All notifications marked as read"})
}
