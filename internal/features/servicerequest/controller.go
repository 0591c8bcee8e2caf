package servicerequest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type ServiceRequestController struct {
	Repo ServiceRequestRepository
}

func NewServiceRequestController(repo ServiceRequestRepository) *ServiceRequestController {
	return &ServiceRequestController{Repo: repo}
}

// ListRequests godoc
// @Summary List service requests
// @Tags service-requests
// @Produce json
// @Success 200 {array} models.ServiceRequest
// @Router /api/service-requests [get]
func (ctrl *ServiceRequestController) ListRequests(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}

	requests, err := ctrl.Repo.List(c.UserContext(), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(requests)
}

// GetRequest godoc
// @Summary Get service request
// @Tags service-requests
// @Produce json
// @Param id path string true "Service Request ID"
// @Success 200 {object} models.ServiceRequest
// @Router /api/service-requests/{id} [get]
func (ctrl *ServiceRequestController) GetRequest(c *fiber.Ctx) error {
	req, err := ctrl.Repo.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Service request not found"})
	}
	return c.JSON(req)
}
