package client

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type ClientController struct {
	Repo ClientRepository
}

func NewClientController(repo ClientRepository) *ClientController {
	return &ClientController{Repo: repo}
}

// ListClients godoc
// @Summary List clients
// @Tags clients
// @Produce json
// @Success 200 {array} models.Client
// @Router /api/clients [get]
func (ctrl *ClientController) ListClients(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}

	clients, err := ctrl.Repo.List(c.UserContext(), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(clients)
}

// GetClient godoc
// @Summary Get client
// @Tags clients
// @Produce json
// @Param id path string true "Client ID"
// @Success 200 {object} models.Client
// @Router /api/clients/{id} [get]
func (ctrl *ClientController) GetClient(c *fiber.Ctx) error {
	client, err := ctrl.Repo.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Client not found"})
	}
	return c.JSON(client)
}
