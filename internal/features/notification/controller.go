package notification

import (
	"github.com/gofiber/fiber/v2"
)

type NotificationController struct {
	Repo NotificationRepository
}

func NewNotificationController(repo NotificationRepository) *NotificationController {
	return &NotificationController{Repo: repo}
}

// ListNotifications godoc
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Success 200 {array} Notification
// @Router /api/notifications [get]
func (ctrl *NotificationController) ListNotifications(c *fiber.Ctx) error {
	page := int64(c.QueryInt("page", 1))
	limit := int64(c.QueryInt("limit", 20))
	if page < 1 {
		page = 1
	}

	notifications, err := ctrl.Repo.List(c.UserContext(), c.Query("unread") == "true", limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(notifications)
}

// MarkRead godoc
// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/notifications/{id}/read [post]
func (ctrl *NotificationController) MarkRead(c *fiber.Ctx) error {
	if err := ctrl.Repo.MarkRead(c.UserContext(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Notification not found"})
	}
	return c.JSON(fiber.Map{"message": "marked read"})
}
