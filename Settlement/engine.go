package Settlement

import (
	"errors"
	"fmt"
	"log"
	"time"

	"FuelCore/Credit"
	"FuelCore/Inventory"
	"FuelCore/Models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Engine settles fuel sales: it validates a candidate sale, applies the
// discount and loyalty rules, runs the fraud heuristics and commits every
// side effect as one storage transaction.
type Engine struct {
	DB       *gorm.DB
	Validate *validator.Validate
	// Now is swappable for tests.
	Now func() time.Time
	// MarginCheck hard-blocks sales whose discounts exceed the fuel margin.
	MarginCheck bool
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{
		DB:          db,
		Validate:    validator.New(),
		Now:         time.Now,
		MarginCheck: true,
	}
}

// SaleInput is everything collected from the operator before commit begins.
type SaleInput struct {
	CustomerID    uint    `json:"customer_id" validate:"required"`
	VehicleNo     string  `json:"vehicle_no" validate:"required"`
	VehicleType   string  `json:"vehicle_type"`
	FuelType      string  `json:"fuel_type" validate:"required"`
	Quantity      float64 `json:"quantity" validate:"gt=0"`
	PricePerLiter float64 `json:"price_per_liter" validate:"gt=0"`
	PaymentMode   string  `json:"payment_mode"`
	OfferID       *uint   `json:"offer_id"`
	RedeemPoints  bool    `json:"redeem_points"`
	Rating        int     `json:"rating"`
	FeedbackNote  string  `json:"feedback_note"`
	// ConfirmWarnings acknowledges previously returned fraud warnings.
	ConfirmWarnings bool `json:"confirm_warnings"`

	// Filled in by the caller from the session, never from the request body.
	OperatorID   uint   `json:"-"`
	OperatorName string `json:"-"`
}

// SaleResult is what the UI needs for the receipt.
type SaleResult struct {
	TransactionID  uint      `json:"transaction_id"`
	InvoiceNo      string    `json:"invoice_no"`
	Subtotal       float64   `json:"subtotal"`
	Discount       float64   `json:"discount"`
	FinalAmount    float64   `json:"final_amount"`
	PointsEarned   int       `json:"points_earned"`
	PointsRedeemed int       `json:"points_redeemed"`
	Warnings       []Warning `json:"warnings,omitempty"`
}

// Totals is the money math for one sale, broken out so the UI can preview it
// before committing.
type Totals struct {
	Subtotal       float64
	OfferDiscount  float64
	PointsDiscount float64
	FinalAmount    float64
}

func (t Totals) TotalDiscount() float64 {
	return t.OfferDiscount + t.PointsDiscount
}

// ComputeTotals applies the pricing rules: subtotal = quantity x price,
// minus the flat offer discount and the loyalty redemption value, clamped at
// zero.
func ComputeTotals(quantity, pricePerLiter, offerDiscount float64, loyaltyPoints int, redeem bool) Totals {
	t := Totals{
		Subtotal:      quantity * pricePerLiter,
		OfferDiscount: offerDiscount,
	}
	if redeem && loyaltyPoints > 0 {
		t.PointsDiscount = Credit.RedemptionValue(loyaltyPoints)
	}
	t.FinalAmount = t.Subtotal - t.OfferDiscount - t.PointsDiscount
	if t.FinalAmount < 0 {
		t.FinalAmount = 0
	}
	return t
}

// creditMode reports whether the sale charges a credit account rather than
// collecting money on the spot.
func creditMode(paymentMode, customerType string) bool {
	return paymentMode == Models.PaymentCredit || customerType == Models.CustomerCredit
}

// SettleSale runs the full settlement workflow. On any error before or
// during commit, no state is mutated.
func (e *Engine) SettleSale(input SaleInput) (*SaleResult, error) {
	if err := e.Validate.Struct(input); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	now := e.Now()

	var customer Models.Customer
	if err := e.DB.First(&customer, input.CustomerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to load customer %d: %w", input.CustomerID, err)
	}

	offerDiscount := 0.0
	if input.OfferID != nil {
		var offer Models.Offer
		if err := e.DB.Where("id = ? AND is_active = ?", *input.OfferID, true).First(&offer).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOfferNotFound
			}
			return nil, fmt.Errorf("failed to load offer %d: %w", *input.OfferID, err)
		}
		offerDiscount = offer.DiscountValue
	}

	var tank Models.Tank
	if err := e.DB.Where("fuel_type = ?", input.FuelType).First(&tank).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Inventory.ErrUnknownFuelType
		}
		return nil, fmt.Errorf("failed to load tank %s: %w", input.FuelType, err)
	}

	if input.VehicleType == "" {
		input.VehicleType = lookupVehicleType(e.DB, customer.ID, input.VehicleNo)
	}

	totals := ComputeTotals(input.Quantity, input.PricePerLiter, offerDiscount, customer.LoyaltyPoints, input.RedeemPoints)

	// Credit gate: abort before any mutation so a rejected sale leaves no trace.
	if creditMode(input.PaymentMode, customer.Type) {
		entity, err := Credit.ResolveBillingEntity(e.DB, &customer)
		if err != nil {
			return nil, err
		}
		if !Credit.CheckCreditLimit(entity, totals.FinalAmount) {
			return nil, &CreditLimitError{
				Entity:     entity.Name(),
				Limit:      entity.CreditLimit(),
				Balance:    entity.CurrentBalance(),
				NewBalance: entity.CurrentBalance() + totals.FinalAmount,
			}
		}
	}

	if e.MarginCheck {
		if err := CheckMargin(input.PricePerLiter, tank.BuyPrice, input.Quantity, totals.TotalDiscount()); err != nil {
			return nil, err
		}
	}

	fraudWarnings := EvaluateFraud(e.DB, input, now)
	if len(fraudWarnings) > 0 && !input.ConfirmWarnings {
		return &SaleResult{Warnings: fraudWarnings}, ErrConfirmationRequired
	}

	return e.commit(input, customer, tank, totals, fraudWarnings, now)
}

// commit applies all six mutation steps as one storage transaction: invoice
// insert, tank deduction, balance charge, loyalty update, shift attribution
// and the audit entry. A failure at any step rolls everything back.
func (e *Engine) commit(input SaleInput, customer Models.Customer, tank Models.Tank,
	totals Totals, fraudWarnings []Warning, now time.Time) (*SaleResult, error) {

	tx := e.DB.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to begin settlement transaction: %w", tx.Error)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			log.Printf("Settlement rolled back due to panic: %v", r)
		}
	}()

	invoiceNo, err := Models.NextInvoiceNo(tx)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	pointsEarned := Credit.AccrueLoyalty(input.Quantity)
	pointsRedeemed := 0
	if input.RedeemPoints && customer.LoyaltyPoints > 0 {
		// Redemption consumes the entire balance, not just the spent tenth.
		pointsRedeemed = customer.LoyaltyPoints
	}

	var shiftID *uint
	var shift Models.Shift
	err = tx.Where("user_id = ? AND status = ?", input.OperatorID, Models.ShiftOpen).First(&shift).Error
	if err == nil {
		shiftID = &shift.ID
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		return nil, fmt.Errorf("failed to look up open shift: %w", err)
	}

	txn := Models.Transaction{
		InvoiceNo:      invoiceNo,
		CustomerID:     customer.ID,
		VehicleNo:      input.VehicleNo,
		VehicleType:    input.VehicleType,
		OperatorName:   input.OperatorName,
		FuelType:       input.FuelType,
		Quantity:       input.Quantity,
		PricePerLiter:  input.PricePerLiter,
		TotalAmount:    totals.FinalAmount,
		DiscountAmount: totals.TotalDiscount(),
		PaymentMode:    input.PaymentMode,
		PointsEarned:   pointsEarned,
		PointsRedeemed: pointsRedeemed,
		Date:           now.Format("2006-01-02"),
		Time:           now.Format("3:04 PM"),
		Rating:         input.Rating,
		FeedbackNote:   input.FeedbackNote,
		BuyPrice:       tank.BuyPrice,
		ShiftID:        shiftID,
	}
	if err := tx.Create(&txn).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	stockWarnings, err := Inventory.DeductForSale(tx, input.FuelType, input.Quantity)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if creditMode(input.PaymentMode, customer.Type) {
		entity, err := Credit.ResolveBillingEntity(tx, &customer)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if err := Credit.ApplyCharge(tx, entity, totals.FinalAmount); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to apply credit charge: %w", err)
		}
	}

	newPoints := Credit.SettleLoyalty(customer.LoyaltyPoints, pointsEarned, input.RedeemPoints && customer.LoyaltyPoints > 0)
	if err := tx.Model(&Models.Customer{}).Where("id = ?", customer.ID).
		Update("loyalty_points", newPoints).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update loyalty points: %w", err)
	}

	action := Models.ActionNewSale
	details := fmt.Sprintf("Inv: %s, Amt: %.2f", invoiceNo, totals.FinalAmount)
	if len(fraudWarnings) > 0 {
		action = Models.ActionSuspiciousSale
		details = fmt.Sprintf("%s, Flags: %d (operator confirmed)", details, len(fraudWarnings))
	}
	if err := Models.LogAudit(tx, input.OperatorName, action, details); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit settlement: %w", err)
	}

	result := &SaleResult{
		TransactionID:  txn.ID,
		InvoiceNo:      invoiceNo,
		Subtotal:       totals.Subtotal,
		Discount:       totals.TotalDiscount(),
		FinalAmount:    totals.FinalAmount,
		PointsEarned:   pointsEarned,
		PointsRedeemed: pointsRedeemed,
		Warnings:       fraudWarnings,
	}
	for _, msg := range stockWarnings {
		result.Warnings = append(result.Warnings, Warning{Code: "STOCK", Message: msg})
	}

	log.Printf("Sale settled: %s customer=%d %s %.2fL @ %.2f = %.2f (%s)",
		invoiceNo, customer.ID, input.FuelType, input.Quantity, input.PricePerLiter, totals.FinalAmount, input.PaymentMode)
	return result, nil
}

func lookupVehicleType(db *gorm.DB, customerID uint, vehicleNo string) string {
	var vehicle Models.Vehicle
	err := db.Where("customer_id = ? AND vehicle_no = ?", customerID, vehicleNo).First(&vehicle).Error
	if err != nil {
		return Models.VehicleCar
	}
	return vehicle.VehicleType
}
