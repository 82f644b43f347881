package Models

import "gorm.io/gorm"

// Shift states. A closed shift is terminal and immutable; the operator opens
// a fresh row for the next session.
const (
	ShiftOpen   = "OPEN"
	ShiftClosed = "CLOSED"
)

// Shift is one operator work session. The meter fields are optional: when the
// pump meters are read at open and close, shift close reconciles dispensed
// fuel against the app-logged liters in addition to the cash count.
type Shift struct {
	gorm.Model
	UserID       uint    `json:"user_id" gorm:"not null;index"`
	OperatorName string  `json:"operator_name"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	OpeningCash  float64 `json:"opening_cash"`
	ClosingCash  float64 `json:"closing_cash"`
	ExpectedCash float64 `json:"expected_cash"`
	ActualCash   float64 `json:"actual_cash"`
	Status       string  `json:"status" gorm:"not null;default:'OPEN';index"`

	StartMeter *float64 `json:"start_meter"`
	EndMeter   *float64 `json:"end_meter"`
	TestingVol float64  `json:"testing_vol" gorm:"default:0"` // calibration fuel, dispensed but not sold
	Notes      string   `json:"notes"`
}
