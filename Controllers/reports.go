package Controllers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"FuelCore/Models"
)

// ReportController handles sales, profit and demand reporting
type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

// fuelBreakdown is the per-fuel slice of a summary
type fuelBreakdown struct {
	FuelType string  `json:"fuel_type"`
	Liters   float64 `json:"liters"`
	Revenue  float64 `json:"revenue"`
	Profit   float64 `json:"profit"`
}

// DailySummary returns one day's sales, split by fuel and payment mode.
// Profit is margin over recorded buy price, net of discounts.
func (c *ReportController) DailySummary(ctx *fiber.Ctx) error {
	date := ctx.Query("date")
	if date == "" {
		date = Models.Today()
	}

	var transactions []Models.Transaction
	if err := c.DB.Where("date = ?", date).Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}

	summary := summarize(transactions)

	var expenseTotal float64
	if err := c.DB.Model(&Models.Expense{}).Where("date = ?", date).
		Select("COALESCE(SUM(amount), 0)").Scan(&expenseTotal).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sum expenses"})
	}
	summary["date"] = date
	summary["expenses"] = expenseTotal
	summary["net_profit"] = summary["gross_profit"].(float64) - expenseTotal

	return ctx.JSON(summary)
}

// MonthlySummary returns per-day totals for one month (YYYY-MM)
func (c *ReportController) MonthlySummary(ctx *fiber.Ctx) error {
	month := ctx.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	var transactions []Models.Transaction
	if err := c.DB.Where("date LIKE ?", month+"%").Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}

	type dayRow struct {
		Date    string  `json:"date"`
		Sales   float64 `json:"sales"`
		Liters  float64 `json:"liters"`
		Profit  float64 `json:"profit"`
		Count   int     `json:"count"`
	}
	byDay := make(map[string]*dayRow)
	for _, txn := range transactions {
		row, ok := byDay[txn.Date]
		if !ok {
			row = &dayRow{Date: txn.Date}
			byDay[txn.Date] = row
		}
		row.Sales += txn.TotalAmount
		row.Liters += txn.Quantity
		row.Profit += (txn.PricePerLiter-txn.BuyPrice)*txn.Quantity - txn.DiscountAmount
		row.Count++
	}

	var days []dayRow
	for _, row := range byDay {
		days = append(days, *row)
	}
	for i := 0; i < len(days); i++ {
		for j := i + 1; j < len(days); j++ {
			if days[j].Date < days[i].Date {
				days[i], days[j] = days[j], days[i]
			}
		}
	}

	var expenseTotal float64
	if err := c.DB.Model(&Models.Expense{}).Where("date LIKE ?", month+"%").
		Select("COALESCE(SUM(amount), 0)").Scan(&expenseTotal).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sum expenses"})
	}

	summary := summarize(transactions)
	summary["month"] = month
	summary["days"] = days
	summary["expenses"] = expenseTotal
	summary["net_profit"] = summary["gross_profit"].(float64) - expenseTotal
	return ctx.JSON(summary)
}

// summarize rolls a transaction set into totals, fuel and payment splits
func summarize(transactions []Models.Transaction) fiber.Map {
	var totalSales, totalLiters, totalDiscount, grossProfit float64
	byMode := make(map[string]float64)
	byFuel := make(map[string]*fuelBreakdown)

	for _, txn := range transactions {
		totalSales += txn.TotalAmount
		totalLiters += txn.Quantity
		totalDiscount += txn.DiscountAmount
		profit := (txn.PricePerLiter-txn.BuyPrice)*txn.Quantity - txn.DiscountAmount
		grossProfit += profit
		byMode[txn.PaymentMode] += txn.TotalAmount

		fb, ok := byFuel[txn.FuelType]
		if !ok {
			fb = &fuelBreakdown{FuelType: txn.FuelType}
			byFuel[txn.FuelType] = fb
		}
		fb.Liters += txn.Quantity
		fb.Revenue += txn.TotalAmount
		fb.Profit += profit
	}

	var fuels []fuelBreakdown
	for _, fb := range byFuel {
		fuels = append(fuels, *fb)
	}

	return fiber.Map{
		"total_sales":    totalSales,
		"total_liters":   totalLiters,
		"total_discount": totalDiscount,
		"gross_profit":   grossProfit,
		"sale_count":     len(transactions),
		"by_payment":     byMode,
		"by_fuel":        fuels,
	}
}

// TopCustomers segments customers by value and risk. VIP means high spend,
// RISK means the credit balance is at 80% of the limit or more.
func (c *ReportController) TopCustomers(ctx *fiber.Ctx) error {
	type customerRow struct {
		ID          uint    `json:"id"`
		Name        string  `json:"name"`
		Type        string  `json:"type"`
		TotalSpend  float64 `json:"total_spend"`
		VisitCount  int64   `json:"visit_count"`
		Balance     float64 `json:"balance"`
		CreditLimit float64 `json:"credit_limit"`
		Points      int     `json:"points"`
		Segment     string  `json:"segment"`
	}

	var rows []customerRow
	err := c.DB.Model(&Models.Customer{}).
		Select(`customers.id, customers.name, customers.type,
			COALESCE(SUM(transactions.total_amount), 0) as total_spend,
			COUNT(transactions.id) as visit_count,
			customers.current_balance as balance,
			customers.credit_limit,
			customers.loyalty_points as points`).
		Joins("LEFT JOIN transactions ON transactions.customer_id = customers.id AND transactions.deleted_at IS NULL").
		Group("customers.id").
		Order("total_spend DESC").
		Limit(50).
		Scan(&rows).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to rank customers"})
	}

	for i := range rows {
		switch {
		case rows[i].CreditLimit > 0 && rows[i].Balance >= 0.8*rows[i].CreditLimit:
			rows[i].Segment = "RISK"
		case i < 10 && rows[i].TotalSpend > 0:
			rows[i].Segment = "VIP"
		default:
			rows[i].Segment = "REGULAR"
		}
	}
	return ctx.JSON(rows)
}

// CreditOutstanding lists everyone carrying a balance, largest first
func (c *ReportController) CreditOutstanding(ctx *fiber.Ctx) error {
	var customers []Models.Customer
	if err := c.DB.Where("current_balance > 0").
		Order("current_balance DESC").Find(&customers).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve balances"})
	}

	var companies []Models.Company
	if err := c.DB.Where("current_balance > 0").
		Order("current_balance DESC").Find(&companies).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve company balances"})
	}

	var total float64
	for _, cust := range customers {
		total += cust.CurrentBalance
	}
	for _, comp := range companies {
		total += comp.CurrentBalance
	}

	return ctx.JSON(fiber.Map{
		"customers": customers,
		"companies": companies,
		"total":     total,
	})
}

// DemandPrediction projects days of stock left per tank from the trailing
// two weeks of sales
func (c *ReportController) DemandPrediction(ctx *fiber.Ctx) error {
	const window = 14
	since := time.Now().AddDate(0, 0, -window).Format("2006-01-02")

	type fuelAvg struct {
		FuelType string
		Total    float64
	}
	var totals []fuelAvg
	if err := c.DB.Model(&Models.Transaction{}).
		Select("fuel_type, COALESCE(SUM(quantity), 0) as total").
		Where("date >= ?", since).
		Group("fuel_type").Scan(&totals).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to aggregate demand"})
	}
	dailyAvg := make(map[string]float64)
	for _, t := range totals {
		dailyAvg[t.FuelType] = t.Total / window
	}

	var tanks []Models.Tank
	if err := c.DB.Find(&tanks).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tanks"})
	}

	type prediction struct {
		FuelType      string   `json:"fuel_type"`
		CurrentLevel  float64  `json:"current_level"`
		DailyAvg      float64  `json:"daily_avg_liters"`
		DaysRemaining *float64 `json:"days_remaining"`
	}
	var predictions []prediction
	for _, tank := range tanks {
		p := prediction{
			FuelType:     tank.FuelType,
			CurrentLevel: tank.CurrentLevel,
			DailyAvg:     dailyAvg[tank.FuelType],
		}
		if p.DailyAvg > 0 {
			days := tank.CurrentLevel / p.DailyAvg
			p.DaysRemaining = &days
		}
		predictions = append(predictions, p)
	}
	return ctx.JSON(predictions)
}

// ExportTransactions streams an Excel workbook of transactions for a date
// range (from/to, inclusive, YYYY-MM-DD)
func (c *ReportController) ExportTransactions(ctx *fiber.Ctx) error {
	from := ctx.Query("from")
	to := ctx.Query("to")
	if from == "" {
		from = Models.Today()
	}
	if to == "" {
		to = from
	}

	var transactions []Models.Transaction
	if err := c.DB.Where("date BETWEEN ? AND ?", from, to).
		Order("id").Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}

	buf, err := transactionsWorkbook(transactions)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to build workbook"})
	}

	filename := fmt.Sprintf("sales_%s_%s.xlsx", from, to)
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	return ctx.Send(buf.Bytes())
}

func transactionsWorkbook(transactions []Models.Transaction) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	sheetName := "Sales"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{
		"Invoice", "Date", "Time", "Customer ID", "Vehicle", "Fuel",
		"Liters", "Price/L", "Buy Price", "Discount", "Total",
		"Payment", "Points Earned", "Points Redeemed", "Operator",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, txn := range transactions {
		row := rowIndex + 2
		values := []interface{}{
			txn.InvoiceNo,
			txn.Date,
			txn.Time,
			txn.CustomerID,
			txn.VehicleNo,
			txn.FuelType,
			txn.Quantity,
			txn.PricePerLiter,
			txn.BuyPrice,
			txn.DiscountAmount,
			txn.TotalAmount,
			txn.PaymentMode,
			txn.PointsEarned,
			txn.PointsRedeemed,
			txn.OperatorName,
		}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := 0; i < len(headers); i++ {
		col := string('A' + rune(i))
		f.SetColWidth(sheetName, col, col, 14)
	}
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, fmt.Errorf("error writing workbook: %v", err)
	}
	return buf, nil
}

// Dashboard returns the landing-screen snapshot: today's numbers, tank
// levels and open shift count
func (c *ReportController) Dashboard(ctx *fiber.Ctx) error {
	today := Models.Today()

	var transactions []Models.Transaction
	if err := c.DB.Where("date = ?", today).Find(&transactions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve transactions"})
	}
	summary := summarize(transactions)

	var tanks []Models.Tank
	if err := c.DB.Order("fuel_type").Find(&tanks).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to retrieve tanks"})
	}

	var openShifts int64
	if err := c.DB.Model(&Models.Shift{}).
		Where("status = ?", Models.ShiftOpen).Count(&openShifts).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count shifts"})
	}

	var outstanding float64
	if err := c.DB.Model(&Models.Customer{}).Where("current_balance > 0").
		Select("COALESCE(SUM(current_balance), 0)").Scan(&outstanding).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sum balances"})
	}

	return ctx.JSON(fiber.Map{
		"date":               today,
		"today":              summary,
		"tanks":              tanks,
		"open_shifts":        openShifts,
		"credit_outstanding": outstanding,
	})
}
