package Models

import "gorm.io/gorm"

type Expense struct {
	gorm.Model
	Title    string  `json:"title" gorm:"not null"`
	Amount   float64 `json:"amount" gorm:"not null"`
	Category string  `json:"category" gorm:"default:'General'"`
	Date     string  `json:"date"`
	UserID   uint    `json:"user_id" gorm:"index"`
}

// Payment records money received against a customer's outstanding balance.
type Payment struct {
	gorm.Model
	CustomerID uint    `json:"customer_id" gorm:"not null;index"`
	Amount     float64 `json:"amount" gorm:"not null"`
	Date       string  `json:"date"`
	Method     string  `json:"method" gorm:"default:'Cash'"`
	Reference  string  `json:"reference"`
	Note       string  `json:"note"`
}
