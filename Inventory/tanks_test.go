package Inventory

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
	require.NoError(t, db.Create(&Models.Tank{
		FuelType: Models.FuelPetrol, CurrentLevel: 5000, Capacity: 10000,
		LowAlertLevel: 1000, BuyPrice: 92.0, SellPrice: 102.50,
	}).Error)
	return db
}

func TestRecordTankerArrival(t *testing.T) {
	db := newTestDB(t)

	err := RecordTankerArrival(db, TankerArrivalInput{
		FuelType:    Models.FuelPetrol,
		Quantity:    3000,
		DipBefore:   5000,
		DipAfter:    8000,
		NewBuyPrice: 93.5,
	}, "admin")
	require.NoError(t, err)

	var tank Models.Tank
	require.NoError(t, db.Where("fuel_type = ?", Models.FuelPetrol).First(&tank).Error)
	assert.InDelta(t, 8000.0, tank.CurrentLevel, 0.001)
	assert.InDelta(t, 93.5, tank.BuyPrice, 0.001)

	var entry Models.TankerLog
	require.NoError(t, db.First(&entry).Error)
	assert.InDelta(t, 92.0, entry.OldBuyPrice, 0.001)
	assert.InDelta(t, 93.5, entry.NewBuyPrice, 0.001)

	var audit Models.AuditLog
	require.NoError(t, db.Where("action = ?", Models.ActionTankerUnload).First(&audit).Error)
}

func TestRecordTankerArrivalRejectsBadInput(t *testing.T) {
	db := newTestDB(t)

	err := RecordTankerArrival(db, TankerArrivalInput{
		FuelType: Models.FuelPetrol, Quantity: 0, NewBuyPrice: 93,
	}, "admin")
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	err = RecordTankerArrival(db, TankerArrivalInput{
		FuelType: Models.FuelPetrol, Quantity: 100, NewBuyPrice: -1,
	}, "admin")
	assert.ErrorIs(t, err, ErrInvalidPrice)

	err = RecordTankerArrival(db, TankerArrivalInput{
		FuelType: "Kerosene", Quantity: 100, NewBuyPrice: 93,
	}, "admin")
	assert.ErrorIs(t, err, ErrUnknownFuelType)
}

func TestDeductForSaleWarnings(t *testing.T) {
	db := newTestDB(t)

	// plenty of stock: no warnings
	warnings, err := DeductForSale(db, Models.FuelPetrol, 100)
	require.NoError(t, err)
	assert.Empty(t, warnings)

	// drop near the alert level: low stock warning
	require.NoError(t, db.Model(&Models.Tank{}).
		Where("fuel_type = ?", Models.FuelPetrol).
		Update("current_level", 1010.0).Error)
	warnings, err = DeductForSale(db, Models.FuelPetrol, 50)
	require.NoError(t, err)
	require.Len(t, warnings, 1)

	// past empty: sale still goes through with an oversell warning
	require.NoError(t, db.Model(&Models.Tank{}).
		Where("fuel_type = ?", Models.FuelPetrol).
		Update("current_level", 10.0).Error)
	warnings, err = DeductForSale(db, Models.FuelPetrol, 50)
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)

	var tank Models.Tank
	require.NoError(t, db.Where("fuel_type = ?", Models.FuelPetrol).First(&tank).Error)
	assert.InDelta(t, -40.0, tank.CurrentLevel, 0.001)
}

func TestRestore(t *testing.T) {
	db := newTestDB(t)

	_, err := DeductForSale(db, Models.FuelPetrol, 100)
	require.NoError(t, err)
	require.NoError(t, Restore(db, Models.FuelPetrol, 100))

	var tank Models.Tank
	require.NoError(t, db.Where("fuel_type = ?", Models.FuelPetrol).First(&tank).Error)
	assert.InDelta(t, 5000.0, tank.CurrentLevel, 0.001)
}

func TestUpdatePrices(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, UpdateSellPrice(db, Models.FuelPetrol, 105.0, "admin"))
	require.NoError(t, UpdateBuyPrice(db, Models.FuelPetrol, 94.0, "admin"))

	var tank Models.Tank
	require.NoError(t, db.Where("fuel_type = ?", Models.FuelPetrol).First(&tank).Error)
	assert.InDelta(t, 105.0, tank.SellPrice, 0.001)
	assert.InDelta(t, 94.0, tank.BuyPrice, 0.001)

	assert.ErrorIs(t, UpdateSellPrice(db, "Kerosene", 50, "admin"), ErrUnknownFuelType)
	assert.ErrorIs(t, UpdateSellPrice(db, Models.FuelPetrol, 0, "admin"), ErrInvalidPrice)

	// only the two successful updates left audit entries; the failed ones
	// rolled back without a trace
	var count int64
	db.Model(&Models.AuditLog{}).Where("action = ?", Models.ActionPriceUpdate).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestLowTanks(t *testing.T) {
	db := newTestDB(t)

	tanks, err := LowTanks(db)
	require.NoError(t, err)
	assert.Empty(t, tanks)

	// exactly at the alert level counts as low
	require.NoError(t, db.Model(&Models.Tank{}).
		Where("fuel_type = ?", Models.FuelPetrol).
		Update("current_level", 1000.0).Error)
	tanks, err = LowTanks(db)
	require.NoError(t, err)
	require.Len(t, tanks, 1)
	assert.Equal(t, Models.FuelPetrol, tanks[0].FuelType)

	require.NoError(t, db.Model(&Models.Tank{}).
		Where("fuel_type = ?", Models.FuelPetrol).
		Update("current_level", 1000.01).Error)
	tanks, err = LowTanks(db)
	require.NoError(t, err)
	assert.Empty(t, tanks)
}
