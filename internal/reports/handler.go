package reports

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

// financialSummary: gelir (iptal edilmemiş sipariş toplamları), gider ve net.
func financialSummary() (income, expenses, net decimal.Decimal, err error) {
	var orders []models.Order
	if err = database.DB.
		Where("status <> ?", models.OrderCancelled).
		Find(&orders).Error; err != nil {
		return
	}
	for _, o := range orders {
		income = income.Add(o.Total)
	}

	var expenseRows []models.Expense
	if err = database.DB.Find(&expenseRows).Error; err != nil {
		return
	}
	for _, e := range expenseRows {
		expenses = expenses.Add(e.Amount)
	}

	net = income.Sub(expenses)
	return
}

// GET /api/admin/reports/financial
// Gelir/gider özeti ve son hareketler.
func FinancialReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		income, expenses, net, err := financialSummary()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Finansal rapor oluşturulamadı")
		}

		var lastOrders []models.Order
		database.DB.Order("id desc").Limit(5).Find(&lastOrders)

		var lastExpenses []models.Expense
		database.DB.Order("id desc").Limit(5).Find(&lastExpenses)

		recentOrders := make([]fiber.Map, 0, len(lastOrders))
		for _, o := range lastOrders {
			recentOrders = append(recentOrders, fiber.Map{
				"id":         o.ID,
				"reference":  o.Reference,
				"status":     string(o.Status),
				"total":      o.Total.StringFixed(2),
				"created_at": o.CreatedAt.Format("2006-01-02 15:04"),
			})
		}

		recentExpenses := make([]fiber.Map, 0, len(lastExpenses))
		for _, e := range lastExpenses {
			recentExpenses = append(recentExpenses, fiber.Map{
				"id":          e.ID,
				"description": e.Description,
				"amount":      e.Amount.StringFixed(2),
				"date":        e.Date.Format("2006-01-02"),
			})
		}

		return c.JSON(fiber.Map{
			"total_income":    income.StringFixed(2),
			"total_expenses":  expenses.StringFixed(2),
			"net":             net.StringFixed(2),
			"recent_orders":   recentOrders,
			"recent_expenses": recentExpenses,
		})
	}
}

// GET /api/admin/reports/stock
// Tüm ürünler stok artan sırada, düşük stok
// işaretiyle.
func StockReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.Order("stock asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Stok raporu oluşturulamadı")
		}

		res := make([]fiber.Map, 0, len(products))
		for _, p := range products {
			res = append(res, fiber.Map{
				"id":        p.ID,
				"name":      p.Name,
				"stock":     p.Stock,
				"stock_min": p.StockMin,
				"low":       p.Stock <= p.StockMin,
			})
		}
		return c.JSON(res)
	}
}

// GET /api/admin/reports/stock/export
// Finansal özet ve stok durumunu tek Excel dosyasında dışa aktarır.
func ExportXLSXHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		income, expenses, net, err := financialSummary()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor oluşturulamadı")
		}

		var products []models.Product
		if err := database.DB.Order("stock asc").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor oluşturulamadı")
		}

		f := excelize.NewFile()
		defer f.Close()

		// Finansal sayfa
		finSheet := "Finansal"
		f.SetSheetName("Sheet1", finSheet)
		f.SetCellValue(finSheet, "A1", "Toplam Gelir")
		f.SetCellValue(finSheet, "B1", income.InexactFloat64())
		f.SetCellValue(finSheet, "A2", "Toplam Gider")
		f.SetCellValue(finSheet, "B2", expenses.InexactFloat64())
		f.SetCellValue(finSheet, "A3", "Net")
		f.SetCellValue(finSheet, "B3", net.InexactFloat64())

		// Stok sayfası
		stockSheet := "Stok"
		if _, err := f.NewSheet(stockSheet); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Rapor oluşturulamadı")
		}
		headers := []string{"ID", "Ürün", "Stok", "Minimum", "Düşük"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(stockSheet, cell, h)
		}
		for row, p := range products {
			values := []any{p.ID, p.Name, p.Stock, p.StockMin, p.Stock <= p.StockMin}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(stockSheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Excel dosyası yazılamadı")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="rapor.xlsx"`)
		return c.Send(buf.Bytes())
	}
}
