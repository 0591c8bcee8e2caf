package import_feature

import (
	"errors"

	"clientdesk/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ImportController struct {
	ImportService ImportService
}

func NewImportController(importService ImportService) *ImportController {
	return &ImportController{ImportService: importService}
}

// GetTypes godoc
// @Summary List importable entity kinds
// @Description Kinds the current user may bulk import
// @Tags import
// @Produce json
// @Success 200 {array} string
// @Router /api/import/types [get]
func (c *ImportController) GetTypes(ctx *fiber.Ctx) error {
	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}

	return ctx.JSON(c.ImportService.AvailableKinds(claims.HasRole("admin")))
}

// GetTemplate godoc
// @Summary Get import template
// @Description Expected column layout for an entity kind
// @Tags import
// @Produce json
// @Param kind path string true "Entity Kind"
// @Success 200 {object} ImportTemplate
// @Failure 404 {object} map[string]interface{}
// @Router /api/import/templates/{kind} [get]
func (c *ImportController) GetTemplate(ctx *fiber.Ctx) error {
	tmpl, err := c.ImportService.TemplateFor(EntityKind(ctx.Params("kind")))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(tmpl)
}

// RunImport godoc
// @Summary Run a bulk import
// @Description Upload a CSV/Excel file and import it synchronously
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "Entity Kind"
// @Param file formData file true "Import File"
// @Param partial formData string false "Relax required-field checks"
// @Success 200 {object} ImportResult
// @Failure 400 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/import/{kind} [post]
func (c *ImportController) RunImport(ctx *fiber.Ctx) error {
	kind := EntityKind(ctx.Params("kind"))

	claims, ok := ctx.Locals(utils.UserClaimsKey).(*utils.UserClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
	}
	privileged := claims.HasRole("admin")

	if _, err := c.ImportService.TemplateFor(kind); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if !c.ImportService.KindAllowed(kind, privileged) {
		return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "kind not importable for this user"})
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to open file"})
	}
	defer file.Close()

	userID, _ := primitive.ObjectIDFromHex(claims.UserID)
	opts := Options{Partial: ctx.FormValue("partial") == "true"}

	result, err := c.ImportService.Execute(ctx.UserContext(), file, fileHeader.Filename, kind, userID, opts)
	if err != nil {
		if errors.Is(err, ErrUnknownEntityKind) || errors.Is(err, ErrUnsupportedFormat) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(result)
}

// ListLogs godoc
// @Summary List import logs
// @Tags import
// @Produce json
// @Success 200 {array} ImportLog
// @Router /api/import/logs [get]
func (c *ImportController) ListLogs(ctx *fiber.Ctx) error {
	page := int64(ctx.QueryInt("page", 1))
	limit := int64(ctx.QueryInt("limit", 20))

	logs, err := c.ImportService.ListLogs(ctx.UserContext(), ctx.Query("kind"), page, limit)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(logs)
}

// GetLog godoc
// @Summary Get import log
// @Tags import
// @Produce json
// @Param id path string true "Log ID"
// @Success 200 {object} ImportLog
// @Failure 404 {object} map[string]interface{}
// @Router /api/import/logs/{id} [get]
func (c *ImportController) GetLog(ctx *fiber.Ctx) error {
	log, err := c.ImportService.GetLog(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Log not found"})
	}
	return ctx.JSON(log)
}
