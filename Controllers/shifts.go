package Controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FuelCore/Models"
	"FuelCore/Shifts"
	"FuelCore/middleware"
)

// ShiftController handles shift open/close and reconciliation
type ShiftController struct {
	DB *gorm.DB
}

func NewShiftController(db *gorm.DB) *ShiftController {
	return &ShiftController{DB: db}
}

// OpenShift starts a work session for the caller
func (c *ShiftController) OpenShift(ctx *fiber.Ctx) error {
	var input struct {
		OpeningCash float64  `json:"opening_cash"`
		StartMeter  *float64 `json:"start_meter"`
	}
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.OpeningCash < 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Opening cash cannot be negative"})
	}

	user := middleware.SessionUser(ctx)
	shift, err := Shifts.Open(c.DB, user, input.OpeningCash, input.StartMeter)
	if err != nil {
		if errors.Is(err, Shifts.ErrShiftAlreadyOpen) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "You already have an open shift"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to open shift"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(shift)
}

// CurrentShift returns the caller's open shift with live stats
func (c *ShiftController) CurrentShift(ctx *fiber.Ctx) error {
	user := middleware.SessionUser(ctx)
	shift, err := Shifts.Current(c.DB, user.ID)
	if err != nil {
		if errors.Is(err, Shifts.ErrNoOpenShift) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No open shift"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load shift"})
	}

	stats, err := Shifts.ShiftStats(c.DB, shift.ID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load shift stats"})
	}

	return ctx.JSON(fiber.Map{
		"shift": shift,
		"stats": stats,
	})
}

// CloseShift ends the caller's open shift and returns the reconciliation
func (c *ShiftController) CloseShift(ctx *fiber.Ctx) error {
	var input Shifts.CloseInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.ActualCash < 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Actual cash cannot be negative"})
	}

	user := middleware.SessionUser(ctx)
	result, err := Shifts.Close(c.DB, user, input)
	if err != nil {
		if errors.Is(err, Shifts.ErrNoOpenShift) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "No open shift to close"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to close shift"})
	}
	return ctx.JSON(result)
}

// GetShifts lists past shifts, newest first. Admin only.
func (c *ShiftController) GetShifts(ctx *fiber.Ctx) error {
	query := c.DB.Order("id DESC")
	if status := ctx.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	limit := 50
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 && l <= 500 {
		limit = l
	}

	var shifts []Models.Shift
	if err := query.Limit(limit).Find(&shifts).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve shifts"})
	}
	return ctx.JSON(shifts)
}

// GetShift returns one shift with its stats and reconciliation report
func (c *ShiftController) GetShift(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid shift ID"})
	}

	var shift Models.Shift
	if err := c.DB.First(&shift, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Shift not found"})
	}

	stats, err := Shifts.ShiftStats(c.DB, shift.ID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load shift stats"})
	}

	response := fiber.Map{
		"shift": shift,
		"stats": stats,
	}
	if shift.Status == Models.ShiftClosed {
		variance := shift.ActualCash - shift.ExpectedCash
		var fuelVariance *float64
		if shift.StartMeter != nil && shift.EndMeter != nil {
			physical := (*shift.EndMeter - *shift.StartMeter) - shift.TestingVol
			fv := physical - stats.TotalLiters
			fuelVariance = &fv
		}
		response["report"] = Shifts.ReconciliationReport(&shift, stats, variance, fuelVariance)
	}
	return ctx.JSON(response)
}
