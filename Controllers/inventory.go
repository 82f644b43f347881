package Controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FuelCore/Inventory"
	"FuelCore/Models"
	"FuelCore/middleware"
)

// InventoryController handles tank stock and pricing endpoints
type InventoryController struct {
	DB *gorm.DB
}

func NewInventoryController(db *gorm.DB) *InventoryController {
	return &InventoryController{DB: db}
}

// GetTanks lists all tanks with current levels and prices
func (c *InventoryController) GetTanks(ctx *fiber.Ctx) error {
	var tanks []Models.Tank
	if err := c.DB.Order("fuel_type").Find(&tanks).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tanks"})
	}
	return ctx.JSON(tanks)
}

// RecordArrival logs a tanker unload. Admin only.
func (c *InventoryController) RecordArrival(ctx *fiber.Ctx) error {
	var input Inventory.TankerArrivalInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user := middleware.SessionUser(ctx)
	if err := Inventory.RecordTankerArrival(c.DB, input, user.Username); err != nil {
		switch {
		case errors.Is(err, Inventory.ErrUnknownFuelType):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown fuel type"})
		case errors.Is(err, Inventory.ErrInvalidQuantity), errors.Is(err, Inventory.ErrInvalidPrice):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record arrival"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Tanker arrival recorded"})
}

// UpdatePrices changes the sell or buy price of a fuel. Admin only.
func (c *InventoryController) UpdatePrices(ctx *fiber.Ctx) error {
	var input struct {
		FuelType  string   `json:"fuel_type"`
		SellPrice *float64 `json:"sell_price"`
		BuyPrice  *float64 `json:"buy_price"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.SellPrice == nil && input.BuyPrice == nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Provide sell_price or buy_price"})
	}

	user := middleware.SessionUser(ctx)
	if input.SellPrice != nil {
		if err := Inventory.UpdateSellPrice(c.DB, input.FuelType, *input.SellPrice, user.Username); err != nil {
			return priceError(ctx, err)
		}
	}
	if input.BuyPrice != nil {
		if err := Inventory.UpdateBuyPrice(c.DB, input.FuelType, *input.BuyPrice, user.Username); err != nil {
			return priceError(ctx, err)
		}
	}

	var tank Models.Tank
	if err := c.DB.Where("fuel_type = ?", input.FuelType).First(&tank).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to reload tank"})
	}
	return ctx.JSON(tank)
}

func priceError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, Inventory.ErrUnknownFuelType):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown fuel type"})
	case errors.Is(err, Inventory.ErrInvalidPrice):
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update price"})
}

// GetTankerLogs lists stock arrivals, newest first
func (c *InventoryController) GetTankerLogs(ctx *fiber.Ctx) error {
	query := c.DB.Order("id DESC")
	if fuel := ctx.Query("fuel_type"); fuel != "" {
		query = query.Where("fuel_type = ?", fuel)
	}
	limit := 50
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}

	var logs []Models.TankerLog
	if err := query.Limit(limit).Find(&logs).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tanker logs"})
	}
	return ctx.JSON(logs)
}

// GetLowTanks lists tanks at or below their alert level
func (c *InventoryController) GetLowTanks(ctx *fiber.Ctx) error {
	tanks, err := Inventory.LowTanks(c.DB)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check tank levels"})
	}
	return ctx.JSON(tanks)
}
