package handler

import (
	"strconv"

	"clinic-booking-backend/internal/service"
	"clinic-booking-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /doctor/notifications?unread=true
func (h *NotificationHandler) List(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	notifications, err := h.notificationService.List(currentActor(c), unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, notifications)
}

// MarkRead handles PATCH /doctor/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	notification, err := h.notificationService.MarkRead(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, notification)
}
