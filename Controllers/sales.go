package Controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FuelCore/Inventory"
	"FuelCore/Models"
	"FuelCore/Settlement"
	"FuelCore/middleware"
)

// SaleController exposes the settlement engine over HTTP
type SaleController struct {
	DB     *gorm.DB
	Engine *Settlement.Engine
}

func NewSaleController(db *gorm.DB, engine *Settlement.Engine) *SaleController {
	return &SaleController{DB: db, Engine: engine}
}

// CreateSale settles a sale. When fraud heuristics fire, the first call
// returns 409 with the warnings; the client resubmits with
// confirm_warnings=true to proceed.
func (c *SaleController) CreateSale(ctx *fiber.Ctx) error {
	var input Settlement.SaleInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user := middleware.SessionUser(ctx)
	input.OperatorID = user.ID
	input.OperatorName = user.Username

	result, err := c.Engine.SettleSale(input)
	if err != nil {
		return saleError(ctx, result, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(result)
}

// saleError maps settlement failures to HTTP responses
func saleError(ctx *fiber.Ctx, result *Settlement.SaleResult, err error) error {
	var validationErr *Settlement.ValidationError
	var creditErr *Settlement.CreditLimitError
	var marginErr *Settlement.ProfitMarginError

	switch {
	case errors.Is(err, Settlement.ErrConfirmationRequired):
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":                 "Sale flagged for review, confirm to proceed",
			"warnings":              result.Warnings,
			"confirmation_required": true,
		})
	case errors.Is(err, Settlement.ErrCustomerNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	case errors.Is(err, Settlement.ErrOfferNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Offer not found or inactive"})
	case errors.Is(err, Inventory.ErrUnknownFuelType):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown fuel type"})
	case errors.As(err, &validationErr):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
	case errors.As(err, &creditErr):
		return ctx.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error":       creditErr.Error(),
			"entity":      creditErr.Entity,
			"limit":       creditErr.Limit,
			"balance":     creditErr.Balance,
			"new_balance": creditErr.NewBalance,
		})
	case errors.As(err, &marginErr):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": marginErr.Error()})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to settle sale"})
}

// GetTransactions lists settled transactions, newest first
func (c *SaleController) GetTransactions(ctx *fiber.Ctx) error {
	query := c.DB.Order("id DESC")
	if date := ctx.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}
	if fuel := ctx.Query("fuel_type"); fuel != "" {
		query = query.Where("fuel_type = ?", fuel)
	}
	if mode := ctx.Query("payment_mode"); mode != "" {
		query = query.Where("payment_mode = ?", mode)
	}
	limit := 100
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 && l <= 1000 {
		limit = l
	}

	var transactions []Models.Transaction
	if err := query.Limit(limit).Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}
	return ctx.JSON(transactions)
}

// GetTransaction retrieves one transaction by ID
func (c *SaleController) GetTransaction(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var txn Models.Transaction
	if err := c.DB.First(&txn, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	}
	return ctx.JSON(txn)
}

// ReverseSale undoes one settled sale. Admin only.
func (c *SaleController) ReverseSale(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	user := middleware.SessionUser(ctx)
	if err := Settlement.ReverseTransaction(c.DB, uint(id), user.Username); err != nil {
		if errors.Is(err, Settlement.ErrTransactionNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reverse sale"})
	}
	return ctx.JSON(fiber.Map{"message": "Sale reversed"})
}

// ClearHistory reverses and wipes all transactions. Admin only.
func (c *SaleController) ClearHistory(ctx *fiber.Ctx) error {
	user := middleware.SessionUser(ctx)
	if err := Settlement.ClearAllHistory(c.DB, user.Username); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to clear history"})
	}
	return ctx.JSON(fiber.Map{"message": "Transaction history cleared"})
}

// RateSale records post-sale customer feedback on a transaction
func (c *SaleController) RateSale(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	var input struct {
		Rating       int    `json:"rating"`
		FeedbackNote string `json:"feedback_note"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Rating < 1 || input.Rating > 5 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Rating must be between 1 and 5"})
	}

	result := c.DB.Model(&Models.Transaction{}).Where("id = ?", id).
		Updates(map[string]interface{}{"rating": input.Rating, "feedback_note": input.FeedbackNote})
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save rating"})
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Transaction not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Rating saved"})
}
