package Settlement

import (
	"path/filepath"
	"testing"
	"time"

	"FuelCore/Models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, Models.Migrate(db))
	require.NoError(t, db.Create(&Models.Tank{
		FuelType: Models.FuelPetrol, CurrentLevel: 5000, Capacity: 10000,
		LowAlertLevel: 1000, BuyPrice: 92.0, SellPrice: 102.50,
	}).Error)
	require.NoError(t, db.Create(&Models.Tank{
		FuelType: Models.FuelDiesel, CurrentLevel: 8000, Capacity: 15000,
		LowAlertLevel: 1000, BuyPrice: 85.0, SellPrice: 94.20,
	}).Error)
	return db
}

func newTestEngine(db *gorm.DB) *Engine {
	engine := NewEngine(db)
	engine.Now = func() time.Time {
		return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	}
	return engine
}

func createCustomer(t *testing.T, db *gorm.DB, customer Models.Customer) Models.Customer {
	t.Helper()
	require.NoError(t, db.Create(&customer).Error)
	return customer
}

func TestSettleSaleCash(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi", Type: Models.CustomerRegular})

	result, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01AB1234",
		VehicleType:   Models.VehicleCar,
		FuelType:      Models.FuelPetrol,
		Quantity:      10,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCash,
		OperatorName:  "operator",
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", result.InvoiceNo)
	assert.InDelta(t, 1025.0, result.FinalAmount, 0.001)
	assert.Equal(t, 10, result.PointsEarned)
	assert.Equal(t, 0, result.PointsRedeemed)
	assert.Empty(t, result.Warnings)

	var tank Models.Tank
	require.NoError(t, db.Where("fuel_type = ?", Models.FuelPetrol).First(&tank).Error)
	assert.InDelta(t, 4990.0, tank.CurrentLevel, 0.001)

	require.NoError(t, db.First(&customer, customer.ID).Error)
	assert.Equal(t, 10, customer.LoyaltyPoints)
	assert.Zero(t, customer.CurrentBalance)

	var audit Models.AuditLog
	require.NoError(t, db.Where("action = ?", Models.ActionNewSale).First(&audit).Error)
	assert.Contains(t, audit.Details, "INV-000001")
}

func TestInvoiceNumbersAreSequential(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi"})

	input := SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01AB1234",
		VehicleType:   Models.VehicleCar,
		FuelType:      Models.FuelPetrol,
		Quantity:      5,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCash,
	}
	first, err := engine.SettleSale(input)
	require.NoError(t, err)
	second, err := engine.SettleSale(input)
	require.NoError(t, err)

	assert.Equal(t, "INV-000001", first.InvoiceNo)
	assert.Equal(t, "INV-000002", second.InvoiceNo)
}

func TestSettleSaleRejectsBadQuantity(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi"})

	for _, quantity := range []float64{0, -5} {
		_, err := engine.SettleSale(SaleInput{
			CustomerID:    customer.ID,
			VehicleNo:     "KA01AB1234",
			FuelType:      Models.FuelPetrol,
			Quantity:      quantity,
			PricePerLiter: 102.50,
			PaymentMode:   Models.PaymentCash,
		})
		var validationErr *ValidationError
		assert.ErrorAs(t, err, &validationErr)
	}

	var count int64
	db.Model(&Models.Transaction{}).Count(&count)
	assert.Zero(t, count)
}

func TestSettleSaleCreditLimit(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{
		Name: "Trucking Co Driver", Type: Models.CustomerCredit,
		CreditLimit: 5000, CurrentBalance: 4500,
	})

	// 10L at 102.50 would push the balance past the limit
	_, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA05TR9999",
		VehicleType:   Models.VehicleTruck,
		FuelType:      Models.FuelDiesel,
		Quantity:      10,
		PricePerLiter: 94.20,
		PaymentMode:   Models.PaymentCredit,
	})
	var creditErr *CreditLimitError
	require.ErrorAs(t, err, &creditErr)
	assert.InDelta(t, 5000.0, creditErr.Limit, 0.001)

	// tank untouched
	var tank Models.Tank
	require.NoError(t, db.Where("fuel_type = ?", Models.FuelDiesel).First(&tank).Error)
	assert.InDelta(t, 8000.0, tank.CurrentLevel, 0.001)

	// a small sale within the limit goes through and lands on the balance
	result, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA05TR9999",
		VehicleType:   Models.VehicleTruck,
		FuelType:      Models.FuelDiesel,
		Quantity:      5,
		PricePerLiter: 94.20,
		PaymentMode:   Models.PaymentCredit,
	})
	require.NoError(t, err)
	require.NoError(t, db.First(&customer, customer.ID).Error)
	assert.InDelta(t, 4500+result.FinalAmount, customer.CurrentBalance, 0.001)
}

func TestSettleSaleUnlimitedCredit(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{
		Name: "House Account", Type: Models.CustomerCredit,
		CreditLimit: 0, CurrentBalance: 100000,
	})

	_, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA02XX0001",
		VehicleType:   Models.VehicleCar,
		FuelType:      Models.FuelPetrol,
		Quantity:      10,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCredit,
	})
	assert.NoError(t, err)
}

func TestSettleSaleCompanyBilling(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)

	company := Models.Company{Name: "Swift Logistics", CreditLimit: 10000, CurrentBalance: 9900}
	require.NoError(t, db.Create(&company).Error)
	customer := createCustomer(t, db, Models.Customer{
		Name: "Fleet Driver", Type: Models.CustomerFleet,
		CreditLimit: 0, CompanyID: &company.ID,
	})

	// the company limit, not the driver's, blocks the sale
	_, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA09FL0007",
		VehicleType:   Models.VehicleTruck,
		FuelType:      Models.FuelDiesel,
		Quantity:      10,
		PricePerLiter: 94.20,
		PaymentMode:   Models.PaymentCredit,
	})
	var creditErr *CreditLimitError
	require.ErrorAs(t, err, &creditErr)
	assert.Equal(t, "Swift Logistics", creditErr.Entity)

	// within the company headroom, the charge lands on the company
	_, err = engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA09FL0007",
		VehicleType:   Models.VehicleTruck,
		FuelType:      Models.FuelDiesel,
		Quantity:      1,
		PricePerLiter: 94.20,
		PaymentMode:   Models.PaymentCredit,
	})
	require.NoError(t, err)

	require.NoError(t, db.First(&company, company.ID).Error)
	assert.InDelta(t, 9994.20, company.CurrentBalance, 0.001)
	require.NoError(t, db.First(&customer, customer.ID).Error)
	assert.Zero(t, customer.CurrentBalance)
}

func TestSettleSaleLoyaltyRedemption(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi", LoyaltyPoints: 55})

	result, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01AB1234",
		VehicleType:   Models.VehicleCar,
		FuelType:      Models.FuelPetrol,
		Quantity:      8,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCash,
		RedeemPoints:  true,
	})
	require.NoError(t, err)

	// 55 points buy a flat 5 off; the whole balance is consumed and the
	// customer keeps only what this sale earned
	assert.InDelta(t, 5.0, result.Discount, 0.001)
	assert.InDelta(t, 8*102.50-5, result.FinalAmount, 0.001)
	assert.Equal(t, 55, result.PointsRedeemed)
	assert.Equal(t, 8, result.PointsEarned)

	require.NoError(t, db.First(&customer, customer.ID).Error)
	assert.Equal(t, 8, customer.LoyaltyPoints)
}

func TestSettleSaleRedemptionWithEmptyBalance(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi", LoyaltyPoints: 0})

	result, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01AB1234",
		VehicleType:   Models.VehicleCar,
		FuelType:      Models.FuelPetrol,
		Quantity:      4,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCash,
		RedeemPoints:  true,
	})
	require.NoError(t, err)
	assert.Zero(t, result.Discount)
	assert.Equal(t, 0, result.PointsRedeemed)
	assert.Equal(t, 4, result.PointsEarned)
}

func TestSettleSaleFraudConfirmation(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi"})

	input := SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01BK5555",
		VehicleType:   Models.VehicleBike,
		FuelType:      Models.FuelPetrol,
		Quantity:      20,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCash,
	}

	// first attempt stops for confirmation, nothing is written
	result, err := engine.SettleSale(input)
	require.ErrorIs(t, err, ErrConfirmationRequired)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "VOLUME_CLASS", result.Warnings[0].Code)

	var count int64
	db.Model(&Models.Transaction{}).Count(&count)
	assert.Zero(t, count)

	// confirmed attempt commits and is flagged in the audit trail
	input.ConfirmWarnings = true
	result, err = engine.SettleSale(input)
	require.NoError(t, err)
	assert.NotEmpty(t, result.InvoiceNo)

	var audit Models.AuditLog
	require.NoError(t, db.Where("action = ?", Models.ActionSuspiciousSale).First(&audit).Error)
}

func TestSettleSaleRefuelFrequencyWarning(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi"})

	input := SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01AB1234",
		VehicleType:   Models.VehicleCar,
		FuelType:      Models.FuelPetrol,
		Quantity:      5,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCash,
	}
	_, err := engine.SettleSale(input)
	require.NoError(t, err)

	// same plate minutes later trips the frequency check
	engine.Now = func() time.Time { return time.Now().Add(5 * time.Minute) }
	result, err := engine.SettleSale(input)
	require.ErrorIs(t, err, ErrConfirmationRequired)
	require.NotEmpty(t, result.Warnings)
	assert.Equal(t, "REFUEL_FREQUENCY", result.Warnings[0].Code)
}

func TestSettleSaleMarginBlock(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi"})

	require.NoError(t, db.Create(&Models.Offer{
		Title: "Mega Discount", DiscountValue: 500, IsActive: true,
	}).Error)
	var offer Models.Offer
	require.NoError(t, db.First(&offer).Error)

	// petrol margin is 10.50/L; 500 off a 10L sale exceeds the 105 margin
	_, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01AB1234",
		VehicleType:   Models.VehicleCar,
		FuelType:      Models.FuelPetrol,
		Quantity:      10,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCash,
		OfferID:       &offer.ID,
	})
	var marginErr *ProfitMarginError
	require.ErrorAs(t, err, &marginErr)

	// disabling the check lets it through at a clamped total
	engine.MarginCheck = false
	result, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01AB1234",
		VehicleType:   Models.VehicleCar,
		FuelType:      Models.FuelPetrol,
		Quantity:      2,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCash,
		OfferID:       &offer.ID,
	})
	require.NoError(t, err)
	assert.Zero(t, result.FinalAmount)
}

func TestSettleSaleOversellWarning(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi"})

	require.NoError(t, db.Model(&Models.Tank{}).
		Where("fuel_type = ?", Models.FuelPetrol).
		Update("current_level", 3.0).Error)

	result, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01AB1234",
		VehicleType:   Models.VehicleCar,
		FuelType:      Models.FuelPetrol,
		Quantity:      5,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCash,
	})
	require.NoError(t, err)

	// sale commits, tank goes negative, operator gets a stock warning
	var found bool
	for _, w := range result.Warnings {
		if w.Code == "STOCK" {
			found = true
		}
	}
	assert.True(t, found, "expected a stock warning")

	var tank Models.Tank
	require.NoError(t, db.Where("fuel_type = ?", Models.FuelPetrol).First(&tank).Error)
	assert.InDelta(t, -2.0, tank.CurrentLevel, 0.001)
}

func TestSettleSaleUnknownFuel(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi"})

	_, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01AB1234",
		FuelType:      "Kerosene",
		Quantity:      5,
		PricePerLiter: 50,
		PaymentMode:   Models.PaymentCash,
	})
	assert.Error(t, err)
}

func TestSettleSaleAttachesOpenShift(t *testing.T) {
	db := newTestDB(t)
	engine := newTestEngine(db)
	customer := createCustomer(t, db, Models.Customer{Name: "Ravi"})

	shift := Models.Shift{UserID: 7, OperatorName: "operator", Status: Models.ShiftOpen}
	require.NoError(t, db.Create(&shift).Error)

	_, err := engine.SettleSale(SaleInput{
		CustomerID:    customer.ID,
		VehicleNo:     "KA01AB1234",
		VehicleType:   Models.VehicleCar,
		FuelType:      Models.FuelPetrol,
		Quantity:      5,
		PricePerLiter: 102.50,
		PaymentMode:   Models.PaymentCash,
		OperatorID:    7,
		OperatorName:  "operator",
	})
	require.NoError(t, err)

	var txn Models.Transaction
	require.NoError(t, db.First(&txn).Error)
	require.NotNil(t, txn.ShiftID)
	assert.Equal(t, shift.ID, *txn.ShiftID)
}

func TestComputeTotalsClampsAtZero(t *testing.T) {
	totals := ComputeTotals(1, 100, 90, 200, true)
	assert.InDelta(t, 100.0, totals.Subtotal, 0.001)
	assert.InDelta(t, 90.0, totals.OfferDiscount, 0.001)
	assert.InDelta(t, 20.0, totals.PointsDiscount, 0.001)
	assert.Zero(t, totals.FinalAmount)
}
