package Models

import "gorm.io/gorm"

// Customer account types.
const (
	CustomerRegular = "Regular"
	CustomerCredit  = "Credit"
	CustomerFleet   = "Fleet"
)

type Customer struct {
	gorm.Model
	Name    string `json:"name" gorm:"not null"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Type    string `json:"type" gorm:"not null;default:'Regular'"`
	// CreditLimit <= 0 means unlimited credit.
	CreditLimit    float64 `json:"credit_limit" gorm:"default:0"`
	CurrentBalance float64 `json:"current_balance" gorm:"default:0"` // positive = customer owes money
	LoyaltyPoints  int     `json:"loyalty_points" gorm:"default:0"`
	RegDate        string  `json:"reg_date"`
	CompanyID      *uint   `json:"company_id" gorm:"index"` // fleet billing: charges post to the company instead

	Vehicles []Vehicle `json:"vehicles,omitempty" gorm:"foreignKey:CustomerID"`
}

// Vehicle classes used by the fraud heuristics.
const (
	VehicleCar     = "Car"
	VehicleBike    = "Bike"
	VehicleScooter = "Scooter"
	VehicleTruck   = "Truck"
)

type Vehicle struct {
	gorm.Model
	CustomerID  uint    `json:"customer_id" gorm:"not null;index"`
	VehicleNo   string  `json:"vehicle_no" gorm:"not null;index"`
	VehicleType string  `json:"vehicle_type" gorm:"not null;default:'Car'"`
	FuelType    string  `json:"fuel_type" gorm:"not null;default:'Petrol'"`
	DailyLimit  float64 `json:"daily_limit" gorm:"default:0"`
}

// Company holds a fleet billing account. When a customer is affiliated with a
// company, credit charges post to the company balance, not the customer's.
type Company struct {
	gorm.Model
	Name           string  `json:"name" gorm:"not null;uniqueIndex"`
	CreditLimit    float64 `json:"credit_limit" gorm:"default:0"`
	CurrentBalance float64 `json:"current_balance" gorm:"default:0"`
}
