package Models

import "gorm.io/gorm"

// Offer is a flat-discount promotion. At most one offer applies per sale.
type Offer struct {
	gorm.Model
	Title         string  `json:"title" gorm:"not null"`
	Description   string  `json:"description"`
	DiscountValue float64 `json:"discount_value" gorm:"not null"`
	IsActive      bool    `json:"is_active" gorm:"default:true"`
}
