package Models

import (
	"fmt"

	"gorm.io/gorm"
)

// Payment modes. Anything that is not Cash counts toward the credit/online
// bucket in shift reconciliation.
const (
	PaymentCash   = "Cash"
	PaymentCredit = "Credit"
	PaymentUPI    = "UPI"
)

// Transaction is an immutable invoice record. The only supported correction
// is reversal, which must undo every side effect of the original sale.
type Transaction struct {
	gorm.Model
	InvoiceNo      string  `json:"invoice_no" gorm:"not null;index"`
	CustomerID     uint    `json:"customer_id" gorm:"not null;index"`
	VehicleNo      string  `json:"vehicle_no" gorm:"index"`
	VehicleType    string  `json:"vehicle_type"`
	OperatorName   string  `json:"operator_name"`
	FuelType       string  `json:"fuel_type" gorm:"not null"`
	Quantity       float64 `json:"quantity" gorm:"not null"`
	PricePerLiter  float64 `json:"price_per_liter" gorm:"not null"`
	TotalAmount    float64 `json:"total_amount" gorm:"not null"`
	DiscountAmount float64 `json:"discount_amount" gorm:"default:0"`
	PaymentMode    string  `json:"payment_mode" gorm:"not null;default:'Cash'"`
	PointsEarned   int     `json:"points_earned" gorm:"default:0"`
	PointsRedeemed int     `json:"points_redeemed" gorm:"default:0"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	Rating         int     `json:"rating" gorm:"default:0"`
	FeedbackNote   string  `json:"feedback_note"`
	// BuyPrice captures the tank cost price at time of sale so margin
	// reports stay correct after later price changes.
	BuyPrice float64 `json:"buy_price" gorm:"default:0"`
	ShiftID  *uint   `json:"shift_id" gorm:"index"`
}

// InvoiceCounter is a single-row sequence for invoice numbers.
type InvoiceCounter struct {
	ID   uint `gorm:"primaryKey"`
	Next uint `gorm:"not null;default:1"`
}

// NextInvoiceNo allocates the next human-readable invoice number inside the
// caller's transaction, e.g. "INV-000042".
func NextInvoiceNo(tx *gorm.DB) (string, error) {
	var counter InvoiceCounter
	if err := tx.FirstOrCreate(&counter, InvoiceCounter{ID: 1}).Error; err != nil {
		return "", fmt.Errorf("failed to load invoice counter: %w", err)
	}
	n := counter.Next
	if n == 0 {
		n = 1
	}
	if err := tx.Model(&InvoiceCounter{}).Where("id = ?", 1).Update("next", n+1).Error; err != nil {
		return "", fmt.Errorf("failed to advance invoice counter: %w", err)
	}
	return fmt.Sprintf("INV-%06d", n), nil
}
