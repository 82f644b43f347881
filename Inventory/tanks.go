package Inventory

import (
	"errors"
	"fmt"
	"log"
	"time"

	"FuelCore/Models"

	"gorm.io/gorm"
)

var (
	ErrUnknownFuelType = errors.New("unknown fuel type")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("price must be positive")
)

// TankerArrivalInput is the unload slip for a stock arrival. The dip readings
// are the manual before/after tank measurements from the delivery.
type TankerArrivalInput struct {
	FuelType    string  `json:"fuel_type"`
	Quantity    float64 `json:"quantity"`
	DipBefore   float64 `json:"dip_before"`
	DipAfter    float64 `json:"dip_after"`
	NewBuyPrice float64 `json:"new_buy_price"`
}

// RecordTankerArrival increments the tank level, overwrites the buy price and
// appends a tanker log entry capturing the old and new cost. The three writes
// commit or roll back together.
func RecordTankerArrival(db *gorm.DB, input TankerArrivalInput, actor string) error {
	if input.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if input.NewBuyPrice <= 0 {
		return ErrInvalidPrice
	}

	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Tanker arrival rolled back due to panic: %v", r)
		}
	}()

	var tank Models.Tank
	if err := tx.Where("fuel_type = ?", input.FuelType).First(&tank).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnknownFuelType
		}
		return fmt.Errorf("failed to load tank %s: %w", input.FuelType, err)
	}

	oldBuyPrice := tank.BuyPrice
	if err := tx.Model(&Models.Tank{}).Where("fuel_type = ?", input.FuelType).
		Updates(map[string]interface{}{
			"current_level": gorm.Expr("current_level + ?", input.Quantity),
			"buy_price":     input.NewBuyPrice,
		}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to update tank %s: %w", input.FuelType, err)
	}

	entry := Models.TankerLog{
		FuelType:    input.FuelType,
		Quantity:    input.Quantity,
		DipBefore:   input.DipBefore,
		DipAfter:    input.DipAfter,
		OldBuyPrice: oldBuyPrice,
		NewBuyPrice: input.NewBuyPrice,
		Date:        time.Now().Format("2006-01-02 15:04:05"),
	}
	if err := tx.Create(&entry).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to write tanker log: %w", err)
	}

	details := fmt.Sprintf("Added %.2fL %s @ %.2f (was %.2f), dip %.2f -> %.2f",
		input.Quantity, input.FuelType, input.NewBuyPrice, oldBuyPrice, input.DipBefore, input.DipAfter)
	if err := Models.LogAudit(tx, actor, Models.ActionTankerUnload, details); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit tanker arrival: %w", err)
	}
	log.Printf("Tanker arrival recorded: %s", details)
	return nil
}

// DeductForSale decrements the tank inside the caller's transaction. An empty
// or low tank does not block the sale; it surfaces as warnings the operator
// must acknowledge.
func DeductForSale(tx *gorm.DB, fuelType string, quantity float64) ([]string, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var tank Models.Tank
	if err := tx.Where("fuel_type = ?", fuelType).First(&tank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownFuelType
		}
		return nil, fmt.Errorf("failed to load tank %s: %w", fuelType, err)
	}

	var warnings []string
	remaining := tank.CurrentLevel - quantity
	if remaining < 0 {
		warnings = append(warnings, fmt.Sprintf(
			"Insufficient stock: %s tank holds %.2fL, sale needs %.2fL", fuelType, tank.CurrentLevel, quantity))
	} else if remaining < tank.LowAlertLevel {
		warnings = append(warnings, fmt.Sprintf(
			"Low stock: %s tank will drop to %.2fL (alert level %.0fL)", fuelType, remaining, tank.LowAlertLevel))
	}

	if err := tx.Model(&Models.Tank{}).Where("fuel_type = ?", fuelType).
		Update("current_level", gorm.Expr("current_level - ?", quantity)).Error; err != nil {
		return nil, fmt.Errorf("failed to deduct %s stock: %w", fuelType, err)
	}
	return warnings, nil
}

// Restore adds fuel back to a tank inside the caller's transaction. Used by
// transaction reversal.
func Restore(tx *gorm.DB, fuelType string, quantity float64) error {
	if quantity <= 0 {
		return nil
	}
	return tx.Model(&Models.Tank{}).Where("fuel_type = ?", fuelType).
		Update("current_level", gorm.Expr("current_level + ?", quantity)).Error
}

// UpdateSellPrice overwrites the posted pump price for a fuel type.
func UpdateSellPrice(db *gorm.DB, fuelType string, price float64, actor string) error {
	return updatePrice(db, fuelType, "sell_price", price, actor)
}

// UpdateBuyPrice overwrites the cost price directly, outside a tanker
// arrival. History beyond the audit trail is not kept.
func UpdateBuyPrice(db *gorm.DB, fuelType string, price float64, actor string) error {
	return updatePrice(db, fuelType, "buy_price", price, actor)
}

func updatePrice(db *gorm.DB, fuelType, column string, price float64, actor string) error {
	if price <= 0 {
		return ErrInvalidPrice
	}
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&Models.Tank{}).Where("fuel_type = ?", fuelType).Update(column, price)
		if result.Error != nil {
			return fmt.Errorf("failed to update %s for %s: %w", column, fuelType, result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrUnknownFuelType
		}
		return Models.LogAudit(tx, actor, Models.ActionPriceUpdate,
			fmt.Sprintf("%s %s = %.2f", fuelType, column, price))
	})
}

// LowTanks returns tanks at or below their alert level, for dashboard alerts
// and the scheduled stock watcher.
func LowTanks(db *gorm.DB) ([]Models.Tank, error) {
	var tanks []Models.Tank
	if err := db.Where("current_level <= low_alert_level").Find(&tanks).Error; err != nil {
		return nil, fmt.Errorf("failed to scan tank levels: %w", err)
	}
	return tanks, nil
}
