package Settlement

import (
	"errors"
	"fmt"
	"log"

	"FuelCore/Credit"
	"FuelCore/Inventory"
	"FuelCore/Models"

	"gorm.io/gorm"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// ReverseTransaction undoes one settled sale: the fuel goes back to the
// tank, a credit charge comes off the billing account, earned points are
// removed and the row is deleted. Redeemed points stay consumed.
func ReverseTransaction(db *gorm.DB, transactionID uint, actor string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin reversal transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Reversal rolled back due to panic: %v", r)
		}
	}()

	var txn Models.Transaction
	if err := tx.First(&txn, transactionID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTransactionNotFound
		}
		return fmt.Errorf("failed to load transaction %d: %w", transactionID, err)
	}

	if err := Inventory.Restore(tx, txn.FuelType, txn.Quantity); err != nil {
		tx.Rollback()
		return err
	}

	var customer Models.Customer
	if err := tx.First(&customer, txn.CustomerID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to load customer %d: %w", txn.CustomerID, err)
	}

	if creditMode(txn.PaymentMode, customer.Type) {
		entity, err := Credit.ResolveBillingEntity(tx, &customer)
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := Credit.ReverseCharge(tx, entity, txn.TotalAmount); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to reverse credit charge: %w", err)
		}
	}

	if txn.PointsEarned > 0 {
		if err := Credit.DeductPoints(tx, customer.ID, txn.PointsEarned); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Unscoped().Delete(&txn).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete transaction %d: %w", transactionID, err)
	}

	details := fmt.Sprintf("Inv: %s, Amt: %.2f, %s %.2fL restored", txn.InvoiceNo, txn.TotalAmount, txn.FuelType, txn.Quantity)
	if err := Models.LogAudit(tx, actor, Models.ActionSaleReversed, details); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit reversal: %w", err)
	}
	log.Printf("Sale reversed: %s by %s", txn.InvoiceNo, actor)
	return nil
}

// ClearAllHistory reverses every transaction on record in bulk: stock and
// balances are restored per aggregate, then all rows are wiped. The audit
// trail itself is kept.
func ClearAllHistory(db *gorm.DB, actor string) error {
	tx := db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin history wipe: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("History wipe rolled back due to panic: %v", r)
		}
	}()

	var count int64
	if err := tx.Model(&Models.Transaction{}).Count(&count).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to count transactions: %w", err)
	}

	// Fuel back to tanks, aggregated per type.
	type fuelAgg struct {
		FuelType string
		Total    float64
	}
	var fuels []fuelAgg
	if err := tx.Model(&Models.Transaction{}).
		Select("fuel_type, SUM(quantity) as total").
		Group("fuel_type").Scan(&fuels).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to aggregate fuel totals: %w", err)
	}
	for _, f := range fuels {
		if err := Inventory.Restore(tx, f.FuelType, f.Total); err != nil {
			tx.Rollback()
			return err
		}
	}

	// Balance charges back per customer, routed through the billing entity
	// so company accounts unwind the same way they were charged. The filter
	// mirrors creditMode: a sale posted a charge when its payment mode was
	// Credit or the customer is a Credit-type account.
	type custAgg struct {
		CustomerID uint
		Total      float64
	}
	var charges []custAgg
	if err := tx.Model(&Models.Transaction{}).
		Select("transactions.customer_id, SUM(transactions.total_amount) as total").
		Joins("JOIN customers ON customers.id = transactions.customer_id").
		Where("transactions.payment_mode = ? OR customers.type = ?", Models.PaymentCredit, Models.CustomerCredit).
		Group("transactions.customer_id").Scan(&charges).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to aggregate credit charges: %w", err)
	}
	for _, c := range charges {
		var customer Models.Customer
		if err := tx.First(&customer, c.CustomerID).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to load customer %d: %w", c.CustomerID, err)
		}
		entity, err := Credit.ResolveBillingEntity(tx, &customer)
		if err != nil {
			tx.Rollback()
			return err
		}
		if err := Credit.ReverseCharge(tx, entity, c.Total); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to reverse charges for customer %d: %w", c.CustomerID, err)
		}
	}

	var earned []custAgg
	if err := tx.Model(&Models.Transaction{}).
		Select("customer_id, SUM(points_earned) as total").
		Group("customer_id").Scan(&earned).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to aggregate earned points: %w", err)
	}
	for _, c := range earned {
		if c.Total <= 0 {
			continue
		}
		if err := Credit.DeductPoints(tx, c.CustomerID, int(c.Total)); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Unscoped().Where("1 = 1").Delete(&Models.Transaction{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to wipe transactions: %w", err)
	}

	details := fmt.Sprintf("%d transactions cleared", count)
	if err := Models.LogAudit(tx, actor, Models.ActionHistoryCleared, details); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit history wipe: %w", err)
	}
	log.Printf("Transaction history cleared by %s (%d rows)", actor, count)
	return nil
}
