package client

import (
	"clientdesk/internal/config"
	"clientdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ClientApi struct {
	Controller *ClientController
	Config     *config.Config
}

func NewClientApi(controller *ClientController, config *config.Config) *ClientApi {
	return &ClientApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *ClientApi) Setup(app *fiber.App) {
	group := app.Group("/api/clients", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.Controller.ListClients)
	group.Get("/:id", api.Controller.GetClient)
}
