package servicerequest

import (
	"clientdesk/internal/config"
	"clientdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ServiceRequestApi struct {
	Controller *ServiceRequestController
	Config     *config.Config
}

func NewServiceRequestApi(controller *ServiceRequestController, config *config.Config) *ServiceRequestApi {
	return &ServiceRequestApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *ServiceRequestApi) Setup(app *fiber.App) {
	group := app.Group("/api/service-requests", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.Controller.ListRequests)
	group.Get("/:id", api.Controller.GetRequest)
}
