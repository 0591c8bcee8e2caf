package import_feature

import (
	"clientdesk/internal/config"
	"clientdesk/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type ImportApi struct {
	ImportController *ImportController
	Config           *config.Config
}

func NewImportApi(importController *ImportController, config *config.Config) *ImportApi {
	return &ImportApi{
		ImportController: importController,
		Config:           config,
	}
}

func (api *ImportApi) Setup(app *fiber.App) {
	group := app.Group("/api/import", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/types", api.ImportController.GetTypes)
	group.Get("/templates/:kind", api.ImportController.GetTemplate)
	group.Get("/logs", api.ImportController.ListLogs)
	group.Get("/logs/:id", api.ImportController.GetLog)
	group.Post("/:kind", api.ImportController.RunImport)
}
