package company

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type CompanyController struct {
	Repo CompanyRepository
}

func NewCompanyController(repo CompanyRepository) *CompanyController {
	return &CompanyController{Repo: repo}
}

// ListCompanies godoc
// @Summary List companies
// @Tags companies
// @Produce json
// @Success 200 {array} models.Company
// @Router /api/companies [get]
func (ctrl *CompanyController) ListCompanies(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "20"), 10, 64)
	if page < 1 {
		page = 1
	}

	companies, err := ctrl.Repo.List(c.UserContext(), limit, (page-1)*limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(companies)
}

// GetCompany godoc
// @Summary Get company
// @Tags companies
// @Produce json
// @Param id path string true "Company ID"
// @Success 200 {object} models.Company
// @Router /api/companies/{id} [get]
func (ctrl *CompanyController) GetCompany(c *fiber.Ctx) error {
	company, err := ctrl.Repo.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Company not found"})
	}
	return c.JSON(company)
}
