package notification

import (
	"errors"
	"strconv"

	"github.com/g-rown/UAct-BackEnd/services"
	"github.com/g-rown/UAct-BackEnd/utils/middleware"
	"github.com/g-rown/UAct-BackEnd/utils/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// NotificationHandler handles in-app notification requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{
		notifications: services.NewNotificationService(db),
	}
}

// ListNotifications handles GET /api/v1/notifications
func (h *NotificationHandler) ListNotifications(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	unreadOnly := c.Query("unread", "") == "true"

	offset := (page - 1) * limit
	notifications, total, err := h.notifications.ListForUser(c.Context(), userID, limit, offset, unreadOnly)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch notifications")
	}

	pagination := response.CalculatePagination(page, limit, total)
	return response.Paginated(c, notifications, pagination)
}

// MarkRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.notifications.MarkRead(c.Context(), userID, uint(id)); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to mark notification as read")
	}

	return response.SuccessWithMessage(c, "Notification marked as read", nil)
}

// MarkAllRead handles POST /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "User not authenticated")
	}

	if err := h.notifications.MarkAllRead(c.Context(), userID); err != nil {
		return response.InternalServerError(c, "Failed to mark notifications as read")
	}

	return response.SuccessWithMessage(c, "All notifications marked as read", nil)
}
