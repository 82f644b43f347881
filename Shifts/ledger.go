package Shifts

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"FuelCore/Models"

	"gorm.io/gorm"
)

var (
	ErrShiftAlreadyOpen = errors.New("operator already has an open shift")
	ErrNoOpenShift      = errors.New("operator has no open shift")
)

// fuelVarianceThreshold is the tolerated gap in liters between the pump
// meters and the logged sales before the reconciliation report flags it.
const fuelVarianceThreshold = 1.0

// Stats aggregates the transactions attributed to one shift.
type Stats struct {
	TotalSales    float64 `json:"total_sales"`
	CashCollected float64 `json:"cash_collected"`
	CreditSales   float64 `json:"credit_sales"`
	UPICollected  float64 `json:"upi_collected"`
	TotalLiters   float64 `json:"total_liters"`
	SaleCount     int64   `json:"sale_count"`
}

// CloseInput carries the counts taken at shift end. EndMeter is optional;
// supplying it switches on meter reconciliation for shifts opened with a
// start reading.
type CloseInput struct {
	ActualCash float64  `json:"actual_cash"`
	EndMeter   *float64 `json:"end_meter"`
	TestingVol float64  `json:"testing_vol"`
	Notes      string   `json:"notes"`
}

// CloseResult is the reconciliation outcome handed back to the operator.
type CloseResult struct {
	Shift        *Models.Shift `json:"shift"`
	Stats        Stats         `json:"stats"`
	CashVariance float64       `json:"cash_variance"`
	FuelVariance *float64      `json:"fuel_variance,omitempty"`
	Report       string        `json:"report"`
}

// Open starts a work session for the operator. One open shift per operator;
// a second open attempt is a conflict, not an implicit close.
func Open(db *gorm.DB, user Models.User, openingCash float64, startMeter *float64) (*Models.Shift, error) {
	var existing Models.Shift
	err := db.Where("user_id = ? AND status = ?", user.ID, Models.ShiftOpen).First(&existing).Error
	if err == nil {
		return nil, ErrShiftAlreadyOpen
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check for open shift: %w", err)
	}

	shift := Models.Shift{
		UserID:       user.ID,
		OperatorName: user.Username,
		StartTime:    time.Now().Format("2006-01-02 3:04 PM"),
		OpeningCash:  openingCash,
		Status:       Models.ShiftOpen,
		StartMeter:   startMeter,
	}
	if err := db.Create(&shift).Error; err != nil {
		return nil, fmt.Errorf("failed to open shift: %w", err)
	}

	details := fmt.Sprintf("Opening cash: %.2f", openingCash)
	if startMeter != nil {
		details = fmt.Sprintf("%s, Start meter: %.2f", details, *startMeter)
	}
	if err := Models.LogAudit(db, user.Username, Models.ActionShiftOpen, details); err != nil {
		log.Printf("Failed to audit shift open: %v", err)
	}

	log.Printf("Shift %d opened by %s", shift.ID, user.Username)
	return &shift, nil
}

// Current returns the operator's open shift, if any.
func Current(db *gorm.DB, userID uint) (*Models.Shift, error) {
	var shift Models.Shift
	err := db.Where("user_id = ? AND status = ?", userID, Models.ShiftOpen).First(&shift).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenShift
		}
		return nil, fmt.Errorf("failed to load open shift: %w", err)
	}
	return &shift, nil
}

// ShiftStats sums the transactions linked to a shift, broken out by payment
// mode.
func ShiftStats(db *gorm.DB, shiftID uint) (Stats, error) {
	var stats Stats
	rows := []struct {
		PaymentMode string
		Amount      float64
		Liters      float64
		Count       int64
	}{}
	err := db.Model(&Models.Transaction{}).
		Select("payment_mode, SUM(total_amount) as amount, SUM(quantity) as liters, COUNT(*) as count").
		Where("shift_id = ?", shiftID).
		Group("payment_mode").Scan(&rows).Error
	if err != nil {
		return stats, fmt.Errorf("failed to aggregate shift %d: %w", shiftID, err)
	}
	for _, r := range rows {
		stats.TotalSales += r.Amount
		stats.TotalLiters += r.Liters
		stats.SaleCount += r.Count
		switch r.PaymentMode {
		case Models.PaymentCash:
			stats.CashCollected += r.Amount
		case Models.PaymentCredit:
			stats.CreditSales += r.Amount
		case Models.PaymentUPI:
			stats.UPICollected += r.Amount
		}
	}
	return stats, nil
}

// Close ends the operator's open shift and reconciles it. Expected cash is
// opening float plus cash collected; the variance is what the drawer count
// shows against that. Meter reconciliation runs only when both readings
// exist.
func Close(db *gorm.DB, user Models.User, input CloseInput) (*CloseResult, error) {
	shift, err := Current(db, user.ID)
	if err != nil {
		return nil, err
	}

	stats, err := ShiftStats(db, shift.ID)
	if err != nil {
		return nil, err
	}

	expected := shift.OpeningCash + stats.CashCollected
	variance := input.ActualCash - expected

	shift.EndTime = time.Now().Format("2006-01-02 3:04 PM")
	shift.ClosingCash = input.ActualCash
	shift.ExpectedCash = expected
	shift.ActualCash = input.ActualCash
	shift.Status = Models.ShiftClosed
	shift.EndMeter = input.EndMeter
	shift.TestingVol = input.TestingVol
	shift.Notes = input.Notes

	var fuelVariance *float64
	if shift.StartMeter != nil && input.EndMeter != nil {
		physical := (*input.EndMeter - *shift.StartMeter) - input.TestingVol
		fv := physical - stats.TotalLiters
		fuelVariance = &fv
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin shift close: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Shift close rolled back due to panic: %v", r)
		}
	}()

	if err := tx.Save(shift).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to close shift %d: %w", shift.ID, err)
	}

	details := fmt.Sprintf("Expected: %.2f, Actual: %.2f, Variance: %+.2f", expected, input.ActualCash, variance)
	if fuelVariance != nil {
		details = fmt.Sprintf("%s, Fuel variance: %+.2fL", details, *fuelVariance)
	}
	if err := Models.LogAudit(tx, user.Username, Models.ActionShiftClose, details); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit shift close: %w", err)
	}

	result := &CloseResult{
		Shift:        shift,
		Stats:        stats,
		CashVariance: variance,
		FuelVariance: fuelVariance,
	}
	result.Report = ReconciliationReport(shift, stats, variance, fuelVariance)
	log.Printf("Shift %d closed by %s, cash variance %+.2f", shift.ID, user.Username, variance)
	return result, nil
}

// ReconciliationReport renders the close summary as plain text for the
// operator handover slip.
func ReconciliationReport(shift *Models.Shift, stats Stats, cashVariance float64, fuelVariance *float64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shift #%d  %s\n", shift.ID, shift.OperatorName)
	fmt.Fprintf(&b, "%s -> %s\n", shift.StartTime, shift.EndTime)
	fmt.Fprintf(&b, "Sales: %d transactions, %.2f L, %.2f total\n", stats.SaleCount, stats.TotalLiters, stats.TotalSales)
	fmt.Fprintf(&b, "  Cash %.2f / Credit %.2f / UPI %.2f\n", stats.CashCollected, stats.CreditSales, stats.UPICollected)
	fmt.Fprintf(&b, "Cash: opening %.2f + collected %.2f = expected %.2f\n", shift.OpeningCash, stats.CashCollected, shift.ExpectedCash)
	fmt.Fprintf(&b, "Counted %.2f, variance %+.2f", shift.ActualCash, cashVariance)
	if cashVariance < 0 {
		b.WriteString(" (SHORT)")
	} else if cashVariance > 0 {
		b.WriteString(" (OVER)")
	}
	b.WriteString("\n")
	if fuelVariance != nil {
		fmt.Fprintf(&b, "Meter: %.2f -> %.2f, testing %.2f L, fuel variance %+.2f L",
			deref(shift.StartMeter), deref(shift.EndMeter), shift.TestingVol, *fuelVariance)
		if math.Abs(*fuelVariance) > fuelVarianceThreshold {
			b.WriteString(" (CHECK PUMPS)")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
