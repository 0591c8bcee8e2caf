package company

import (
	"clientdesk/internal/config"
	"clientdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type CompanyApi struct {
	Controller *CompanyController
	Config     *config.Config
}

func NewCompanyApi(controller *CompanyController, config *config.Config) *CompanyApi {
	return &CompanyApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *CompanyApi) Setup(app *fiber.App) {
	group := app.Group("/api/companies", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.Controller.ListCompanies)
	group.Get("/:id", api.Controller.GetCompany)
}
