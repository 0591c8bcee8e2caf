package reminder

import (
	"clientdesk/internal/config"
	"clientdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ReminderApi struct {
	Controller *ReminderController
	Config     *config.Config
}

func NewReminderApi(controller *ReminderController, config *config.Config) *ReminderApi {
	return &ReminderApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *ReminderApi) Setup(app *fiber.App) {
	group := app.Group("/api/reminders", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Post("/run", middleware.RequireRole("admin"), api.Controller.RunScan)
	group.Get("/upcoming", api.Controller.Upcoming)
}
