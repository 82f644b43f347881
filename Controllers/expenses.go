package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FuelCore/Models"
	"FuelCore/middleware"
)

// ExpenseController handles station running-cost endpoints
type ExpenseController struct {
	DB *gorm.DB
}

func NewExpenseController(db *gorm.DB) *ExpenseController {
	return &ExpenseController{DB: db}
}

// GetExpenses lists expenses, newest first, optionally filtered by month
// (YYYY-MM) or category
func (c *ExpenseController) GetExpenses(ctx *fiber.Ctx) error {
	query := c.DB.Order("id DESC")
	if month := ctx.Query("month"); month != "" {
		query = query.Where("date LIKE ?", month+"%")
	}
	if category := ctx.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var expenses []Models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve expenses"})
	}

	var total float64
	for _, e := range expenses {
		total += e.Amount
	}
	return ctx.JSON(fiber.Map{
		"expenses": expenses,
		"total":    total,
	})
}

// CreateExpense records a running cost
func (c *ExpenseController) CreateExpense(ctx *fiber.Ctx) error {
	var input Models.Expense
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Title == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Expense title is required"})
	}
	if input.Amount <= 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount must be positive"})
	}
	if input.Date == "" {
		input.Date = Models.Today()
	}

	user := middleware.SessionUser(ctx)
	expense := Models.Expense{
		Title:    input.Title,
		Amount:   input.Amount,
		Category: input.Category,
		Date:     input.Date,
		UserID:   user.ID,
	}
	if err := c.DB.Create(&expense).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create expense"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(expense)
}

// DeleteExpense removes an expense entry. Admin only.
func (c *ExpenseController) DeleteExpense(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid expense ID"})
	}

	result := c.DB.Delete(&Models.Expense{}, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete expense"})
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Expense not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Expense deleted"})
}
