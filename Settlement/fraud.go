package Settlement

import (
	"errors"
	"fmt"
	"log"
	"time"

	"FuelCore/Models"

	"gorm.io/gorm"
)

// Thresholds for the fraud heuristics. Two-wheelers rarely take more than a
// full tank; anything past 15L on a Bike or Scooter is suspect. A vehicle
// back at the pump within 10 minutes usually means a plate typo or someone
// billing fuel to the wrong account.
const (
	twoWheelerVolumeLimit = 15.0
	refuelCooldown        = 10 * time.Minute
)

// Warning is a non-fatal fraud signal. Warnings never block a sale by
// themselves, but the operator must acknowledge them before commit, and the
// acknowledged sale is audit-logged as SUSPICIOUS_SALE.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EvaluateFraud runs the read-only heuristics against a candidate sale.
func EvaluateFraud(db *gorm.DB, input SaleInput, now time.Time) []Warning {
	var warnings []Warning

	if w := checkVolumeClass(input); w != nil {
		warnings = append(warnings, *w)
	}
	if w := checkRefuelFrequency(db, input.VehicleNo, now); w != nil {
		warnings = append(warnings, *w)
	}
	return warnings
}

func checkVolumeClass(input SaleInput) *Warning {
	if input.VehicleType != Models.VehicleBike && input.VehicleType != Models.VehicleScooter {
		return nil
	}
	if input.Quantity <= twoWheelerVolumeLimit {
		return nil
	}
	return &Warning{
		Code: "VOLUME_CLASS",
		Message: fmt.Sprintf("Suspicious volume for vehicle class: %.2fL on a %s (limit %.0fL)",
			input.Quantity, input.VehicleType, twoWheelerVolumeLimit),
	}
}

func checkRefuelFrequency(db *gorm.DB, vehicleNo string, now time.Time) *Warning {
	if vehicleNo == "" {
		return nil
	}

	var last Models.Transaction
	err := db.Where("vehicle_no = ?", vehicleNo).Order("created_at DESC").First(&last).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Error looking up last refuel for %s: %v", vehicleNo, err)
		}
		return nil
	}

	elapsed := now.Sub(last.CreatedAt)
	if elapsed < 0 || elapsed >= refuelCooldown {
		return nil
	}
	minutes := int(elapsed.Minutes())
	return &Warning{
		Code:    "REFUEL_FREQUENCY",
		Message: fmt.Sprintf("Vehicle %s was refueled %d minutes ago (invoice %s)", vehicleNo, minutes, last.InvoiceNo),
	}
}

// CheckMargin hard-blocks the sale when the combined discounts give away more
// than the margin on the fuel. Margin per liter is the charged price minus
// the tank's cost price at time of sale.
func CheckMargin(pricePerLiter, buyPrice, quantity, totalDiscount float64) error {
	margin := pricePerLiter - buyPrice
	if totalDiscount <= margin*quantity {
		return nil
	}
	return &ProfitMarginError{
		MarginPerLiter: margin,
		Quantity:       quantity,
		Discount:       totalDiscount,
	}
}
