package Models

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
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
	require.NoError(t, Migrate(db))
	return db
}

func TestNextInvoiceNo(t *testing.T) {
	db := newTestDB(t)

	for i := 1; i <= 3; i++ {
		invoiceNo, err := NextInvoiceNo(db)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV-%06d", i), invoiceNo)
	}
}

func TestSeedDefaults(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, SeedDefaults(db))

	var tanks []Tank
	require.NoError(t, db.Order("fuel_type").Find(&tanks).Error)
	require.Len(t, tanks, 2)
	assert.Equal(t, FuelDiesel, tanks[0].FuelType)
	assert.InDelta(t, 94.20, tanks[0].SellPrice, 0.001)
	assert.Equal(t, FuelPetrol, tanks[1].FuelType)
	assert.InDelta(t, 102.50, tanks[1].SellPrice, 0.001)

	var admin User
	require.NoError(t, db.Where("username = ?", "admin").First(&admin).Error)
	assert.Equal(t, RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte("changeme")))

	// seeding twice does not duplicate anything
	require.NoError(t, SeedDefaults(db))
	var tankCount, userCount int64
	db.Model(&Tank{}).Count(&tankCount)
	db.Model(&User{}).Count(&userCount)
	assert.Equal(t, int64(2), tankCount)
	assert.Equal(t, int64(2), userCount)
}

func TestPermissionLevel(t *testing.T) {
	assert.Equal(t, PermissionAdmin, User{Role: RoleAdmin}.PermissionLevel())
	assert.Equal(t, PermissionOperator, User{Role: RoleOperator}.PermissionLevel())
	assert.Equal(t, PermissionOperator, User{Role: "unknown"}.PermissionLevel())
}

func TestLogAudit(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, LogAudit(db, "admin", ActionLogin, "Logged in"))

	var entry AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Equal(t, "admin", entry.UserName)
	assert.Equal(t, ActionLogin, entry.Action)
	assert.NotEmpty(t, entry.Timestamp)
}
