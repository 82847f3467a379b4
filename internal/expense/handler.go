package expense

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"butik-backend/internal/audit"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

type ExpenseRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"` // "2006-01-02", boşsa bugün
}

func (r *ExpenseRequest) parse() (*models.Expense, error) {
	if r.Description == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Açıklama zorunlu")
	}
	if r.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Tutar pozitif olmalı")
	}

	date := time.Now()
	if r.Date != "" {
		parsed, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return nil, fiber.NewError(fiber.StatusBadRequest, "Tarih formatı geçersiz (YYYY-MM-DD)")
		}
		date = parsed
	}

	return &models.Expense{
		Description: r.Description,
		Amount:      r.Amount.Round(2),
		Date:        date,
	}, nil
}

// GET /api/admin/expenses
func ListExpensesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var expenses []models.Expense
		if err := database.DB.Order("date desc, id desc").Find(&expenses).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Giderler listelenemedi")
		}

		res := make([]fiber.Map, 0, len(expenses))
		for _, e := range expenses {
			res = append(res, fiber.Map{
				"id":          e.ID,
				"description": e.Description,
				"amount":      e.Amount.StringFixed(2),
				"date":        e.Date.Format("2006-01-02"),
			})
		}
		return c.JSON(res)
	}
}

// POST /api/admin/expenses
func CreateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var body ExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		exp, err := body.parse()
		if err != nil {
			return err
		}

		if err := database.DB.Create(exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider kaydedilemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    exp.ID,
			Action:      models.AuditActionCreate,
			Description: "Gider eklendi",
			After:       exp,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": exp.ID})
	}
}

// PUT /api/admin/expenses/:id
func UpdateExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var exp models.Expense
		if err := database.DB.First(&exp, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}
		before := exp

		var body ExpenseRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		parsed, err := body.parse()
		if err != nil {
			return err
		}

		exp.Description = parsed.Description
		exp.Amount = parsed.Amount
		exp.Date = parsed.Date
		if err := database.DB.Save(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    exp.ID,
			Action:      models.AuditActionUpdate,
			Description: "Gider güncellendi",
			Before:      before,
			After:       exp,
		})

		return c.JSON(fiber.Map{"message": "Gider güncellendi"})
	}
}

// DELETE /api/admin/expenses/:id
func DeleteExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var exp models.Expense
		if err := database.DB.First(&exp, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Gider bulunamadı")
		}

		if err := database.DB.Delete(&exp).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Gider silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "expense",
			EntityID:    exp.ID,
			Action:      models.AuditActionDelete,
			Description: "Gider silindi",
			Before:      exp,
		})

		return c.JSON(fiber.Map{"message": "Gider silindi"})
	}
}
