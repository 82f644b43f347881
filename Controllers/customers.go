package Controllers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FuelCore/Models"
)

// CustomerController handles customer and vehicle endpoints
type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

// GetCustomers retrieves all customers, optionally filtered by name or phone
func (c *CustomerController) GetCustomers(ctx *fiber.Ctx) error {
	query := c.DB.Preload("Vehicles").Order("name")
	if search := ctx.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ?", like, like)
	}
	if custType := ctx.Query("type"); custType != "" {
		query = query.Where("type = ?", custType)
	}

	var customers []Models.Customer
	if err := query.Find(&customers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve customers"})
	}
	return ctx.JSON(customers)
}

// GetCustomer retrieves one customer with vehicles and recent transactions
func (c *CustomerController) GetCustomer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var customer Models.Customer
	if err := c.DB.Preload("Vehicles").First(&customer, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}

	var transactions []Models.Transaction
	if err := c.DB.Where("customer_id = ?", customer.ID).
		Order("id DESC").Limit(50).Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}

	return ctx.JSON(fiber.Map{
		"customer":     customer,
		"transactions": transactions,
	})
}

// CreateCustomer registers a customer
func (c *CustomerController) CreateCustomer(ctx *fiber.Ctx) error {
	var input Models.Customer
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.Name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Customer name is required"})
	}
	if input.Type == "" {
		input.Type = Models.CustomerRegular
	}
	if input.RegDate == "" {
		input.RegDate = Models.Today()
	}

	customer := Models.Customer{
		Name:        input.Name,
		Phone:       input.Phone,
		Address:     input.Address,
		Type:        input.Type,
		CreditLimit: input.CreditLimit,
		RegDate:     input.RegDate,
		CompanyID:   input.CompanyID,
	}
	if err := c.DB.Create(&customer).Error; err != nil {
		if strings.Contains(err.Error(), "UNIQUE") || strings.Contains(err.Error(), "unique constraint") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A customer with this phone already exists"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create customer"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(customer)
}

// UpdateCustomer updates profile fields. Balance and points move only
// through sales and payments.
func (c *CustomerController) UpdateCustomer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var customer Models.Customer
	if err := c.DB.First(&customer, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}

	var input Models.Customer
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updates := map[string]interface{}{
		"name":         input.Name,
		"phone":        input.Phone,
		"address":      input.Address,
		"type":         input.Type,
		"credit_limit": input.CreditLimit,
		"company_id":   input.CompanyID,
	}
	if err := c.DB.Model(&customer).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update customer"})
	}

	return ctx.JSON(customer)
}

// DeleteCustomer removes a customer with no outstanding balance
func (c *CustomerController) DeleteCustomer(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var customer Models.Customer
	if err := c.DB.First(&customer, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}
	if customer.CurrentBalance > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Customer has an outstanding balance"})
	}

	if err := c.DB.Delete(&customer).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete customer"})
	}
	return ctx.JSON(fiber.Map{"message": "Customer deleted"})
}

// AddVehicle attaches a vehicle to a customer
func (c *CustomerController) AddVehicle(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid customer ID"})
	}

	var customer Models.Customer
	if err := c.DB.First(&customer, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Customer not found"})
	}

	var input Models.Vehicle
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if input.VehicleNo == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Vehicle number is required"})
	}
	if input.VehicleType == "" {
		input.VehicleType = Models.VehicleCar
	}

	vehicle := Models.Vehicle{
		CustomerID:  customer.ID,
		VehicleNo:   strings.ToUpper(strings.TrimSpace(input.VehicleNo)),
		VehicleType: input.VehicleType,
		FuelType:    input.FuelType,
		DailyLimit:  input.DailyLimit,
	}
	if err := c.DB.Create(&vehicle).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to add vehicle"})
	}

	return ctx.Status(fiber.StatusCreated).JSON(vehicle)
}

// DeleteVehicle detaches a vehicle
func (c *CustomerController) DeleteVehicle(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("vehicleId"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid vehicle ID"})
	}

	result := c.DB.Delete(&Models.Vehicle{}, id)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete vehicle"})
	}
	if result.RowsAffected == 0 {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
	}
	return ctx.JSON(fiber.Map{"message": "Vehicle deleted"})
}

// LookupVehicle finds a vehicle (and its owner) by plate number, for the
// sale screen's plate prefill
func (c *CustomerController) LookupVehicle(ctx *fiber.Ctx) error {
	plate := strings.ToUpper(strings.TrimSpace(ctx.Query("vehicle_no")))
	if plate == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "vehicle_no is required"})
	}

	var vehicle Models.Vehicle
	if err := c.DB.Where("vehicle_no = ?", plate).First(&vehicle).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Vehicle not found"})
	}

	var customer Models.Customer
	if err := c.DB.First(&customer, vehicle.CustomerID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Owner not found"})
	}

	return ctx.JSON(fiber.Map{
		"vehicle":  vehicle,
		"customer": customer,
	})
}
