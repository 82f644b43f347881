package Models

import "gorm.io/gorm"

// Fuel types sold at the station. One tank row exists per fuel type.
const (
	FuelPetrol = "Petrol"
	FuelDiesel = "Diesel"
)

// Tank is keyed by fuel type, not a generated id. CurrentLevel is adjusted
// only by sale settlement (decrement) and tanker arrival (increment).
type Tank struct {
	FuelType      string  `json:"fuel_type" gorm:"primaryKey"`
	CurrentLevel  float64 `json:"current_level"`
	Capacity      float64 `json:"capacity"`
	LowAlertLevel float64 `json:"low_alert_level"`
	BuyPrice      float64 `json:"buy_price" gorm:"default:0"`
	SellPrice     float64 `json:"sell_price" gorm:"default:100"`
}

// TankerLog records a stock arrival with the manual dip readings. The dip
// figures are a paper cross-check against the invoice quantity; they are
// stored, not algorithmically enforced.
type TankerLog struct {
	gorm.Model
	FuelType    string  `json:"fuel_type" gorm:"not null;index"`
	Quantity    float64 `json:"quantity" gorm:"not null"`
	DipBefore   float64 `json:"dip_before"`
	DipAfter    float64 `json:"dip_after"`
	OldBuyPrice float64 `json:"old_buy_price"`
	NewBuyPrice float64 `json:"new_buy_price"`
	Date        string  `json:"date"`
}
