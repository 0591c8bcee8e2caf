package notification

import (
	"clientdesk/internal/config"
	"clientdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type NotificationApi struct {
	Controller *NotificationController
	Config     *config.Config
}

func NewNotificationApi(controller *NotificationController, config *config.Config) *NotificationApi {
	return &NotificationApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *NotificationApi) Setup(app *fiber.App) {
	group := app.Group("/api/notifications", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.Controller.ListNotifications)
	group.Post("/:id/read", api.Controller.MarkRead)
}
