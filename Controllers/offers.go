package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FuelCore/Models"
)

// OfferController handles promotional discount endpoints
type OfferController struct {
	DB *gorm.DB
}

func NewOfferController(db *gorm.DB) *OfferController {
	return &OfferController{DB: db}
}

// GetOffers lists offers; ?active=true narrows to usable ones
func (c *OfferController) GetOffers(ctx *fiber.Ctx) error {
	query := c.DB.Order("id DESC")
	if ctx.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var offers []Models.Offer
	if err := query.Find(&offers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve offers"})
	}
	return ctx.JSON(offers)
}

// CreateOffer adds a promotional discount. Admin only.
func (c *OfferController) CreateOffer(ctx *fiber.Ctx) error {
	var input Models.Offer
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Title == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Offer title is required"})
	}
	if input.DiscountValue < 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Discount cannot be negative"})
	}

	offer := Models.Offer{
		Title:         input.Title,
		Description:   input.Description,
		DiscountValue: input.DiscountValue,
		IsActive:      true,
	}
	if err := c.DB.Create(&offer).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create offer"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(offer)
}

// ToggleOffer flips an offer between active and inactive. Admin only.
func (c *OfferController) ToggleOffer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offer ID"})
	}

	var offer Models.Offer
	if err := c.DB.First(&offer, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Offer not found"})
	}

	if err := c.DB.Model(&offer).Update("is_active", !offer.IsActive).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update offer"})
	}
	offer.IsActive = !offer.IsActive
	return ctx.JSON(offer)
}

// DeleteOffer removes an offer. Past transactions keep their recorded
// discount amounts. Admin only.
func (c *OfferController) DeleteOffer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid offer ID"})
	}

	result := c.DB.Delete(&Models.Offer{}, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete offer"})
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Offer not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Offer deleted"})
}
