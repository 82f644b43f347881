package Credit

import (
	"errors"
	"fmt"
	"math"
	"time"

	"FuelCore/Models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInvalidAmount = errors.New("amount must be positive")

// BillingEntity is whoever a credit charge posts to: the customer, or the
// customer's company when a fleet affiliation exists.
type BillingEntity struct {
	Company  *Models.Company
	Customer *Models.Customer
}

func (b BillingEntity) Name() string {
	if b.Company != nil {
		return b.Company.Name
	}
	return b.Customer.Name
}

func (b BillingEntity) CreditLimit() float64 {
	if b.Company != nil {
		return b.Company.CreditLimit
	}
	return b.Customer.CreditLimit
}

func (b BillingEntity) CurrentBalance() float64 {
	if b.Company != nil {
		return b.Company.CurrentBalance
	}
	return b.Customer.CurrentBalance
}

// ResolveBillingEntity loads the account a charge for this customer would
// post to. Company-level billing overrides customer-level balance.
func ResolveBillingEntity(tx *gorm.DB, customer *Models.Customer) (BillingEntity, error) {
	if customer.CompanyID != nil {
		var company Models.Company
		if err := tx.First(&company, *customer.CompanyID).Error; err != nil {
			return BillingEntity{}, fmt.Errorf("failed to load company %d: %w", *customer.CompanyID, err)
		}
		return BillingEntity{Company: &company, Customer: customer}, nil
	}
	return BillingEntity{Customer: customer}, nil
}

// CheckCreditLimit reports whether a further charge of proposedAmount is
// allowed. A credit limit of zero or less means unlimited credit.
func CheckCreditLimit(entity BillingEntity, proposedAmount float64) bool {
	limit := entity.CreditLimit()
	if limit <= 0 {
		return true
	}
	return entity.CurrentBalance()+proposedAmount <= limit
}

// ApplyCharge adds amount to the billed entity's outstanding balance inside
// the caller's transaction.
func ApplyCharge(tx *gorm.DB, entity BillingEntity, amount float64) error {
	if entity.Company != nil {
		return tx.Model(&Models.Company{}).Where("id = ?", entity.Company.ID).
			Update("current_balance", gorm.Expr("current_balance + ?", amount)).Error
	}
	return tx.Model(&Models.Customer{}).Where("id = ?", entity.Customer.ID).
		Update("current_balance", gorm.Expr("current_balance + ?", amount)).Error
}

// ReverseCharge subtracts a previously applied charge, used by transaction
// reversal.
func ReverseCharge(tx *gorm.DB, entity BillingEntity, amount float64) error {
	return ApplyCharge(tx, entity, -amount)
}

// RecordPayment subtracts amount from the customer's balance and stores the
// payment row. The balance may go negative, which simply represents money on
// account. Runs as its own transaction.
func RecordPayment(db *gorm.DB, customerID uint, amount float64, method, note, actor string) (*Models.Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	var customer Models.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("customer %d not found: %w", customerID, err)
	}

	entity, err := ResolveBillingEntity(tx, &customer)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := ApplyCharge(tx, entity, -amount); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	payment := Models.Payment{
		CustomerID: customerID,
		Amount:     amount,
		Date:       time.Now().Format("2006-01-02"),
		Method:     method,
		Reference:  "PAY-" + uuid.NewString()[:8],
		Note:       note,
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to store payment: %w", err)
	}

	details := fmt.Sprintf("%s: %.2f via %s from %s", payment.Reference, amount, method, entity.Name())
	if err := Models.LogAudit(tx, actor, Models.ActionPaymentReceived, details); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}
	return &payment, nil
}

// AccrueLoyalty converts sold liters to points: 1 liter = 1 point, fractions
// dropped.
func AccrueLoyalty(litersSold float64) int {
	if litersSold <= 0 {
		return 0
	}
	return int(math.Floor(litersSold))
}

// RedemptionValue is the discount a point balance buys: 10 points = 1 unit.
func RedemptionValue(points int) float64 {
	if points <= 0 {
		return 0
	}
	return math.Floor(float64(points) / 10)
}

// SettleLoyalty computes the post-sale point balance. Redemption consumes the
// customer's entire balance and replaces it with only the newly earned
// points; whatever the discount did not use is forfeited. Without redemption
// the earned points simply stack.
func SettleLoyalty(currentPoints, pointsEarned int, redeemed bool) int {
	if redeemed {
		return pointsEarned
	}
	return currentPoints + pointsEarned
}

// DeductPoints subtracts points from a customer, clamping at zero. Reversal
// uses this: the points may already have been spent elsewhere, and a negative
// balance would violate the loyalty invariant.
func DeductPoints(tx *gorm.DB, customerID uint, points int) error {
	if points <= 0 {
		return nil
	}
	var customer Models.Customer
	if err := tx.First(&customer, customerID).Error; err != nil {
		return fmt.Errorf("customer %d not found: %w", customerID, err)
	}
	remaining := customer.LoyaltyPoints - points
	if remaining < 0 {
		remaining = 0
	}
	return tx.Model(&Models.Customer{}).Where("id = ?", customerID).
		Update("loyalty_points", remaining).Error
}
