package service

import (
	"clientdesk/internal/config"
	"clientdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ServiceApi struct {
	Controller *ServiceController
	Config     *config.Config
}

func NewServiceApi(controller *ServiceController, config *config.Config) *ServiceApi {
	return &ServiceApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *ServiceApi) Setup(app *fiber.App) {
	group := app.Group("/api/services", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.Controller.ListServices)
	group.Get("/:id", api.Controller.GetService)
}
