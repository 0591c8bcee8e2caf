package reminder

import (
	"github.com/gofiber/fiber/v2"
)

type ReminderController struct {
	Service ReminderService
}

func NewReminderController(service ReminderService) *ReminderController {
	return &ReminderController{Service: service}
}

// RunScan godoc
// @Summary Trigger renewal reminder scan
// @Tags reminders
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/reminders/run [post]
func (ctrl *ReminderController) RunScan(c *fiber.Ctx) error {
	sent, err := ctrl.Service.RunScan(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"sent": sent})
}

// Upcoming godoc
// @Summary List upcoming renewals
// @Tags reminders
// @Produce json
// @Success 200 {array} models.ServiceRequest
// @Router /api/reminders/upcoming [get]
func (ctrl *ReminderController) Upcoming(c *fiber.Ctx) error {
	requests, err := ctrl.Service.Upcoming(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(requests)
}
