package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FuelCore/Models"
)

// CompanyController handles fleet billing account endpoints
type CompanyController struct {
	DB *gorm.DB
}

func NewCompanyController(db *gorm.DB) *CompanyController {
	return &CompanyController{DB: db}
}

// GetCompanies lists billing accounts with attached customer counts
func (c *CompanyController) GetCompanies(ctx *fiber.Ctx) error {
	var companies []Models.Company
	if err := c.DB.Order("name").Find(&companies).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve companies"})
	}

	type companyRow struct {
		Models.Company
		DriverCount int64 `json:"driver_count"`
	}
	rows := make([]companyRow, 0, len(companies))
	for _, company := range companies {
		var count int64
		if err := c.DB.Model(&Models.Customer{}).
			Where("company_id = ?", company.ID).Count(&count).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count drivers"})
		}
		rows = append(rows, companyRow{Company: company, DriverCount: count})
	}
	return ctx.JSON(rows)
}

// CreateCompany adds a billing account. Admin only.
func (c *CompanyController) CreateCompany(ctx *fiber.Ctx) error {
	var input Models.Company
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Company name is required"})
	}

	company := Models.Company{Name: input.Name, CreditLimit: input.CreditLimit}
	if err := c.DB.Create(&company).Error; err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A company with this name already exists"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(company)
}

// UpdateCompany changes the name or credit limit. Admin only.
func (c *CompanyController) UpdateCompany(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid company ID"})
	}

	var company Models.Company
	if err := c.DB.First(&company, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Company not found"})
	}

	var input Models.Company
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{
		"name":         input.Name,
		"credit_limit": input.CreditLimit,
	}
	if err := c.DB.Model(&company).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update company"})
	}
	return ctx.JSON(company)
}

// DeleteCompany removes a billing account with no balance and no attached
// customers. Admin only.
func (c *CompanyController) DeleteCompany(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid company ID"})
	}

	var company Models.Company
	if err := c.DB.First(&company, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Company not found"})
	}
	if company.CurrentBalance > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Company has an outstanding balance"})
	}

	var count int64
	if err := c.DB.Model(&Models.Customer{}).
		Where("company_id = ?", company.ID).Count(&count).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count drivers"})
	}
	if count > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Company still has customers attached"})
	}

	if err := c.DB.Delete(&company).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete company"})
	}
	return ctx.JSON(fiber.Map{"message": "Company deleted"})
}
