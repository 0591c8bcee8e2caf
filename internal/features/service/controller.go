package service

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type ServiceController struct {
	Repo ServiceRepository
}

func NewServiceController(repo ServiceRepository) *ServiceController {
	return &ServiceController{Repo: repo}
}

// ListServices godoc
// @Summary List catalog services
// @Tags services
// @Produce json
// @Success 200 {array} models.Service
// @Router /api/services [get]
func (ctrl *ServiceController) ListServices(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}

	services, err := ctrl.Repo.List(c.UserContext(), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(services)
}

// GetService godoc
// @Summary Get catalog service
// @Tags services
// @Produce json
// @Param id path string true "Service ID"
// @Success 200 {object} models.Service
// @Router /api/services/{id} [get]
func (ctrl *ServiceController) GetService(c *fiber.Ctx) error {
	svc, err := ctrl.Repo.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service not found"})
	}
	return c.JSON(svc)
}
