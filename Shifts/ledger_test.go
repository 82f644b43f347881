package Shifts

import (
	"path/filepath"
	"testing"

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
	return db
}

func testUser(t *testing.T, db *gorm.DB, username string) Models.User {
	t.Helper()
	user := Models.User{Username: username, Password: "x", Role: Models.RoleOperator}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func addSale(t *testing.T, db *gorm.DB, shiftID uint, mode string, amount, liters float64) {
	t.Helper()
	require.NoError(t, db.Create(&Models.Transaction{
		InvoiceNo:   "INV-TEST",
		PaymentMode: mode,
		TotalAmount: amount,
		Quantity:    liters,
		FuelType:    Models.FuelPetrol,
		ShiftID:     &shiftID,
	}).Error)
}

func TestOpenShift(t *testing.T) {
	db := newTestDB(t)
	user := testUser(t, db, "operator")

	shift, err := Open(db, user, 2000, nil)
	require.NoError(t, err)
	assert.Equal(t, Models.ShiftOpen, shift.Status)
	assert.InDelta(t, 2000.0, shift.OpeningCash, 0.001)

	var audit Models.AuditLog
	require.NoError(t, db.Where("action = ?", Models.ActionShiftOpen).First(&audit).Error)
}

func TestOpenShiftConflict(t *testing.T) {
	db := newTestDB(t)
	user := testUser(t, db, "operator")

	_, err := Open(db, user, 2000, nil)
	require.NoError(t, err)
	_, err = Open(db, user, 500, nil)
	assert.ErrorIs(t, err, ErrShiftAlreadyOpen)

	// a different operator may still open one
	other := testUser(t, db, "operator2")
	_, err = Open(db, other, 1000, nil)
	assert.NoError(t, err)
}

func TestCloseShiftCashReconciliation(t *testing.T) {
	db := newTestDB(t)
	user := testUser(t, db, "operator")

	shift, err := Open(db, user, 2000, nil)
	require.NoError(t, err)

	addSale(t, db, shift.ID, Models.PaymentCash, 1500, 15)
	addSale(t, db, shift.ID, Models.PaymentCredit, 800, 8)
	addSale(t, db, shift.ID, Models.PaymentUPI, 300, 3)

	result, err := Close(db, user, CloseInput{ActualCash: 3450})
	require.NoError(t, err)

	// expected = 2000 opening + 1500 cash; credit and UPI stay out of the drawer
	assert.InDelta(t, 3500.0, result.Shift.ExpectedCash, 0.001)
	assert.InDelta(t, -50.0, result.CashVariance, 0.001)
	assert.Nil(t, result.FuelVariance)
	assert.Equal(t, Models.ShiftClosed, result.Shift.Status)

	assert.InDelta(t, 2600.0, result.Stats.TotalSales, 0.001)
	assert.InDelta(t, 1500.0, result.Stats.CashCollected, 0.001)
	assert.InDelta(t, 800.0, result.Stats.CreditSales, 0.001)
	assert.InDelta(t, 26.0, result.Stats.TotalLiters, 0.001)

	assert.Contains(t, result.Report, "SHORT")

	var audit Models.AuditLog
	require.NoError(t, db.Where("action = ?", Models.ActionShiftClose).First(&audit).Error)
	assert.Contains(t, audit.Details, "-50.00")
}

func TestCloseShiftMeterReconciliation(t *testing.T) {
	db := newTestDB(t)
	user := testUser(t, db, "operator")

	start := 10000.0
	shift, err := Open(db, user, 1000, &start)
	require.NoError(t, err)

	addSale(t, db, shift.ID, Models.PaymentCash, 1025, 10)

	// meter moved 15L, 2L of that was pump testing, 10L was sold: 3L unexplained
	end := 10015.0
	result, err := Close(db, user, CloseInput{ActualCash: 2025, EndMeter: &end, TestingVol: 2})
	require.NoError(t, err)

	require.NotNil(t, result.FuelVariance)
	assert.InDelta(t, 3.0, *result.FuelVariance, 0.001)
	assert.Contains(t, result.Report, "CHECK PUMPS")
}

func TestCloseShiftMeterWithinTolerance(t *testing.T) {
	db := newTestDB(t)
	user := testUser(t, db, "operator")

	start := 500.0
	shift, err := Open(db, user, 0, &start)
	require.NoError(t, err)

	addSale(t, db, shift.ID, Models.PaymentCash, 1025, 10)

	end := 510.5
	result, err := Close(db, user, CloseInput{ActualCash: 1025, EndMeter: &end})
	require.NoError(t, err)

	require.NotNil(t, result.FuelVariance)
	assert.InDelta(t, 0.5, *result.FuelVariance, 0.001)
	assert.NotContains(t, result.Report, "CHECK PUMPS")
}

func TestCloseWithoutOpenShift(t *testing.T) {
	db := newTestDB(t)
	user := testUser(t, db, "operator")

	_, err := Close(db, user, CloseInput{ActualCash: 100})
	assert.ErrorIs(t, err, ErrNoOpenShift)
}

func TestClosedShiftIsTerminal(t *testing.T) {
	db := newTestDB(t)
	user := testUser(t, db, "operator")

	_, err := Open(db, user, 100, nil)
	require.NoError(t, err)
	_, err = Close(db, user, CloseInput{ActualCash: 100})
	require.NoError(t, err)

	// closing again fails, opening a fresh shift works
	_, err = Close(db, user, CloseInput{ActualCash: 100})
	assert.ErrorIs(t, err, ErrNoOpenShift)
	_, err = Open(db, user, 100, nil)
	assert.NoError(t, err)
}

func TestShiftStatsOnlyCountsOwnShift(t *testing.T) {
	db := newTestDB(t)
	userA := testUser(t, db, "alpha")
	userB := testUser(t, db, "bravo")

	shiftA, err := Open(db, userA, 0, nil)
	require.NoError(t, err)
	shiftB, err := Open(db, userB, 0, nil)
	require.NoError(t, err)

	addSale(t, db, shiftA.ID, Models.PaymentCash, 100, 1)
	addSale(t, db, shiftB.ID, Models.PaymentCash, 900, 9)

	stats, err := ShiftStats(db, shiftA.ID)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, stats.TotalSales, 0.001)
	assert.Equal(t, int64(1), stats.SaleCount)
}
