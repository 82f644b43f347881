package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FuelCore/Models"
	"FuelCore/middleware"
)

// AuditController exposes the audit trail. Admin only routes.
type AuditController struct {
	DB *gorm.DB
}

func NewAuditController(db *gorm.DB) *AuditController {
	return &AuditController{DB: db}
}

// GetAuditLog lists audit entries, newest first
func (c *AuditController) GetAuditLog(ctx *fiber.Ctx) error {
	query := c.DB.Order("id DESC")
	if action := ctx.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if userName := ctx.Query("user"); userName != "" {
		query = query.Where("user_name = ?", userName)
	}
	limit := 200
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 && l <= 2000 {
		limit = l
	}

	var entries []Models.AuditLog
	if err := query.Limit(limit).Find(&entries).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve audit log"})
	}
	return ctx.JSON(entries)
}

// ClearAuditLog wipes the trail, leaving a single entry recording the wipe
func (c *AuditController) ClearAuditLog(ctx *fiber.Ctx) error {
	user := middleware.SessionUser(ctx)

	if err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("1 = 1").Delete(&Models.AuditLog{}).Error; err != nil {
			return err
		}
		return Models.LogAudit(tx, user.Username, Models.ActionAuditCleared, "Audit log cleared")
	}); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to clear audit log"})
	}
	return ctx.JSON(fiber.Map{"message": "Audit log cleared"})
}
