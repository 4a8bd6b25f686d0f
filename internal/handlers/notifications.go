package handlers

import (
	"github.com/gin-gonic/gin"

	"attendance-app-server/internal/messaging"
	"attendance-app-server/internal/utils"
)

// NotificationHandler serves the unread feed derived from messages.
type NotificationHandler struct {
	Service *messaging.Service
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(svc *messaging.Service) *NotificationHandler {
	return &NotificationHandler{Service: svc}
}

// GetNotifications lists the caller's unread messages, newest first.
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	feed, err := h.Service.Notifications(user.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	utils.Success(c, "Notifications fetched successfully", feed)
}

// GetNotificationCount returns the caller's unread message count.
func (h *NotificationHandler) GetNotificationCount(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	count, err := h.Service.UnreadCount(user.ID)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	utils.Success(c, "Unread count fetched successfully", gin.H{"unreadCount": count})
}
