package Controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FuelCore/Credit"
	"FuelCore/Models"
	"FuelCore/middleware"
)

// PaymentController handles credit settlement payments
type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// RecordPayment settles part or all of a customer's outstanding balance
func (c *PaymentController) RecordPayment(ctx *fiber.Ctx) error {
	var input struct {
		CustomerID uint    `json:"customer_id"`
		Amount     float64 `json:"amount"`
		Method     string  `json:"method"`
		Note       string  `json:"note"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Method == "" {
		input.Method = Models.PaymentCash
	}

	user := middleware.SessionUser(ctx)
	payment, err := Credit.RecordPayment(c.DB, input.CustomerID, input.Amount, input.Method, input.Note, user.Username)
	if err != nil {
		switch {
		case errors.Is(err, Credit.ErrInvalidAmount):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Amount must be positive"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record payment"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(payment)
}

// GetPayments lists received payments, newest first
func (c *PaymentController) GetPayments(ctx *fiber.Ctx) error {
	query := c.DB.Order("id DESC")
	if custID, err := strconv.Atoi(ctx.Query("customer_id")); err == nil {
		query = query.Where("customer_id = ?", custID)
	}
	limit := 100
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	var payments []Models.Payment
	if err := query.Limit(limit).Find(&payments).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve payments"})
	}
	return ctx.JSON(payments)
}
