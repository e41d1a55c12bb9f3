package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travelhub/internal/middleware"
	"travelhub/internal/repository"
	"travelhub/pkg/response"
)

type NotificationHandler struct {
	notifications repository.NotificationRepository
}

func NewNotificationHandler(notifications repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/api/notifications")
	notifications.Use(middleware.RequireAuth())
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.PUT("/:id/read", h.MarkRead)
		notifications.PUT("/read-all", h.MarkAllRead)
	}
}

// List returns the caller's notifications, newest first
func (h *NotificationHandler) List(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	rows, err := h.notifications.ListByRecipient(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success("Notifications retrieved successfully", rows))
}

// UnreadCount returns the number of unread notifications for the caller
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	count, err := h.notifications.CountUnread(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success("Unread count retrieved successfully", gin.H{"count": count}))
}

// MarkRead marks a single notification belonging to the caller as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error("invalid notification id"))
		return
	}

	updated, err := h.notifications.MarkRead(c.Request.Context(), id, actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !updated {
		c.JSON(http.StatusNotFound, response.Error("Notification not found"))
		return
	}

	c.JSON(http.StatusOK, response.Success("Notification marked as read", nil))
}

// MarkAllRead marks every unread notification for the caller as read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, _ := middleware.CurrentActor(c)

	if err := h.notifications.MarkAllRead(c.Request.Context(), actor.ID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success("All notifications marked as read", nil))
}
