package Models

import (
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	dbPath := os.Getenv("FUELCORE_DB")
	if dbPath == "" {
		dbPath = "fuelcore.db"
	}

	connection, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to open database %s: %v", dbPath, err)
	}
	DB = connection

	if err := Migrate(DB); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := SeedDefaults(DB); err != nil {
		log.Printf("Error seeding defaults: %v", err)
	}
	log.Printf("Database ready (%s)", dbPath)
}

// Migrate runs the schema migrations in dependency order. AutoMigrate is
// idempotent: it introspects existing columns instead of failing on re-run.
func Migrate(db *gorm.DB) error {
	// 1. Base tables with no dependencies
	if err := db.AutoMigrate(
		&User{},
		&Company{},
		&Tank{},
		&Offer{},
		&AuditLog{},
		&InvoiceCounter{},
	); err != nil {
		return err
	}

	// 2. Tables with simple foreign keys
	if err := db.AutoMigrate(
		&Customer{}, // references Company
		&Vehicle{},  // references Customer
		&Shift{},    // references User
		&Expense{},
		&Payment{},
		&TankerLog{},
	); err != nil {
		return err
	}

	// 3. Transactions reference customers and shifts
	return db.AutoMigrate(&Transaction{})
}

// SeedDefaults installs the two default tanks and the default admin/operator
// accounts on a fresh database. Passwords are stored as bcrypt hashes.
func SeedDefaults(db *gorm.DB) error {
	var tankCount int64
	if err := db.Model(&Tank{}).Count(&tankCount).Error; err != nil {
		return err
	}
	if tankCount == 0 {
		tanks := []Tank{
			{FuelType: FuelPetrol, CurrentLevel: 5000, Capacity: 10000, LowAlertLevel: 1000, BuyPrice: 92.0, SellPrice: 102.50},
			{FuelType: FuelDiesel, CurrentLevel: 8000, Capacity: 15000, LowAlertLevel: 1000, BuyPrice: 85.0, SellPrice: 94.20},
		}
		if err := db.Create(&tanks).Error; err != nil {
			return err
		}
		log.Println("Seeded default tanks")
	}

	var userCount int64
	if err := db.Model(&User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		defaultPassword := os.Getenv("FUELCORE_DEFAULT_PASSWORD")
		if defaultPassword == "" {
			defaultPassword = "changeme"
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		users := []User{
			{Username: "admin", Password: string(hash), Role: RoleAdmin},
			{Username: "operator", Password: string(hash), Role: RoleOperator},
		}
		if err := db.Create(&users).Error; err != nil {
			return err
		}
		log.Println("Seeded default users (admin, operator)")
	}

	return nil
}

// Today returns the date key used throughout the transaction tables.
func Today() string {
	return time.Now().Format("2006-01-02")
}
