package FiberConfig

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"FuelCore/Controllers"
	"FuelCore/Models"
	"FuelCore/Settlement"
	"FuelCore/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	engine := Settlement.NewEngine(db)
	if os.Getenv("MARGIN_CHECK") == "off" {
		engine.MarginCheck = false
	}

	authController := Controllers.NewAuthController(db)
	customerController := Controllers.NewCustomerController(db)
	saleController := Controllers.NewSaleController(db, engine)
	shiftController := Controllers.NewShiftController(db)
	inventoryController := Controllers.NewInventoryController(db)
	offerController := Controllers.NewOfferController(db)
	expenseController := Controllers.NewExpenseController(db)
	paymentController := Controllers.NewPaymentController(db)
	companyController := Controllers.NewCompanyController(db)
	reportController := Controllers.NewReportController(db)
	auditController := Controllers.NewAuditController(db)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	// Auth routes
	api.Post("/Login", authController.Login)
	api.Post("/Logout", authController.Logout)
	api.Get("/User", middleware.Verify(Models.PermissionOperator), authController.User)
	api.Post("/RegisterUser", middleware.Verify(Models.PermissionAdmin), authController.RegisterUser)
	api.Post("/ChangePassword", middleware.Verify(Models.PermissionOperator), authController.ChangePassword)

	// Customer routes
	customers := api.Group("/customers", middleware.Verify(Models.PermissionOperator))
	customers.Get("/", customerController.GetCustomers)
	customers.Post("/", customerController.CreateCustomer)
	customers.Get("/lookup", customerController.LookupVehicle)
	customers.Get("/:id", customerController.GetCustomer)
	customers.Put("/:id", customerController.UpdateCustomer)
	customers.Delete("/:id", middleware.Verify(Models.PermissionAdmin), customerController.DeleteCustomer)
	customers.Post("/:id/vehicles", customerController.AddVehicle)
	customers.Delete("/:id/vehicles/:vehicleId", customerController.DeleteVehicle)

	// Sale routes
	sales := api.Group("/sales", middleware.Verify(Models.PermissionOperator))
	sales.Post("/", saleController.CreateSale)
	sales.Get("/", saleController.GetTransactions)
	sales.Get("/:id", saleController.GetTransaction)
	sales.Post("/:id/rating", saleController.RateSale)
	sales.Delete("/:id", middleware.Verify(Models.PermissionAdmin), saleController.ReverseSale)
	api.Delete("/history", middleware.Verify(Models.PermissionAdmin), saleController.ClearHistory)

	// Shift routes
	shifts := api.Group("/shifts", middleware.Verify(Models.PermissionOperator))
	shifts.Post("/open", shiftController.OpenShift)
	shifts.Post("/close", shiftController.CloseShift)
	shifts.Get("/current", shiftController.CurrentShift)
	shifts.Get("/", middleware.Verify(Models.PermissionAdmin), shiftController.GetShifts)
	shifts.Get("/:id", middleware.Verify(Models.PermissionAdmin), shiftController.GetShift)

	// Inventory routes
	inventory := api.Group("/inventory", middleware.Verify(Models.PermissionOperator))
	inventory.Get("/tanks", inventoryController.GetTanks)
	inventory.Get("/tanks/low", inventoryController.GetLowTanks)
	inventory.Get("/tanker-logs", inventoryController.GetTankerLogs)
	inventory.Post("/arrival", middleware.Verify(Models.PermissionAdmin), inventoryController.RecordArrival)
	inventory.Put("/prices", middleware.Verify(Models.PermissionAdmin), inventoryController.UpdatePrices)

	// Offer routes
	offers := api.Group("/offers", middleware.Verify(Models.PermissionOperator))
	offers.Get("/", offerController.GetOffers)
	offers.Post("/", middleware.Verify(Models.PermissionAdmin), offerController.CreateOffer)
	offers.Patch("/:id/toggle", middleware.Verify(Models.PermissionAdmin), offerController.ToggleOffer)
	offers.Delete("/:id", middleware.Verify(Models.PermissionAdmin), offerController.DeleteOffer)

	// Expense routes
	expenses := api.Group("/expenses", middleware.Verify(Models.PermissionOperator))
	expenses.Get("/", expenseController.GetExpenses)
	expenses.Post("/", expenseController.CreateExpense)
	expenses.Delete("/:id", middleware.Verify(Models.PermissionAdmin), expenseController.DeleteExpense)

	// Payment routes
	payments := api.Group("/payments", middleware.Verify(Models.PermissionOperator))
	payments.Get("/", paymentController.GetPayments)
	payments.Post("/", paymentController.RecordPayment)

	// Company routes
	companies := api.Group("/companies", middleware.Verify(Models.PermissionOperator))
	companies.Get("/", companyController.GetCompanies)
	companies.Post("/", middleware.Verify(Models.PermissionAdmin), companyController.CreateCompany)
	companies.Put("/:id", middleware.Verify(Models.PermissionAdmin), companyController.UpdateCompany)
	companies.Delete("/:id", middleware.Verify(Models.PermissionAdmin), companyController.DeleteCompany)

	// Report routes
	reports := api.Group("/reports", middleware.Verify(Models.PermissionOperator))
	reports.Get("/dashboard", reportController.Dashboard)
	reports.Get("/daily", reportController.DailySummary)
	reports.Get("/monthly", reportController.MonthlySummary)
	reports.Get("/top-customers", reportController.TopCustomers)
	reports.Get("/credit", reportController.CreditOutstanding)
	reports.Get("/demand", reportController.DemandPrediction)
	reports.Get("/export", middleware.Verify(Models.PermissionAdmin), reportController.ExportTransactions)

	// Audit routes
	audit := api.Group("/audit", middleware.Verify(Models.PermissionAdmin))
	audit.Get("/", auditController.GetAuditLog)
	audit.Delete("/", auditController.ClearAuditLog)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	app := fiber.New(fiber.Config{
		AppName: "FuelCore",
	})
	app.Use(middleware.RequestLogger())
	app.Use(middleware.ErrorLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB)

	port := os.Getenv("FUELCORE_PORT")
	if port == "" {
		port = "3000"
	}
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
