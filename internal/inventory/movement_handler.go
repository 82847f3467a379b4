package inventory

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"butik-backend/internal/audit"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

type CreateMovementRequest struct {
	ProductID uint   `json:"product_id"`
	Quantity  uint   `json:"quantity"`
	Type      string `json:"type"` // "in" / "out"
}

type MovementResponse struct {
	ID          uint   `json:"id"`
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    uint   `json:"quantity"`
	Type        string `json:"type"`
	CreatedAt   string `json:"created_at"`
}

// POST /api/admin/stock-movements
func CreateMovementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var body CreateMovementRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.ProductID == 0 || body.Quantity == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id ve quantity zorunlu")
		}

		typ := models.MovementType(body.Type)
		if typ != models.MovementIn && typ != models.MovementOut {
			return fiber.NewError(fiber.StatusBadRequest, "type 'in' veya 'out' olmalı")
		}

		m := models.StockMovement{
			ProductID: body.ProductID,
			Quantity:  body.Quantity,
			Type:      typ,
		}

		if err := ApplyStockMovement(database.DB, &m); err != nil {
			var stockErr *InsufficientStockError
			if errors.As(err, &stockErr) {
				return fiber.NewError(fiber.StatusBadRequest, stockErr.Error())
			}
			return fiber.NewError(fiber.StatusBadRequest, "Stok hareketi uygulanamadı: "+err.Error())
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "stock_movement",
			EntityID:    m.ID,
			Action:      models.AuditActionCreate,
			Description: "Stok hareketi kaydedildi",
			After:       m,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": m.ID})
	}
}

// GET /api/admin/stock-movements?product_id=1
func ListMovementsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.StockMovement{}).Preload("Product")

		if pid := c.Query("product_id"); pid != "" {
			dbq = dbq.Where("product_id = ?", pid)
		}

		var movements []models.StockMovement
		if err := dbq.Order("id desc").Limit(100).Find(&movements).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}

		res := make([]MovementResponse, 0, len(movements))
		for _, m := range movements {
			name := ""
			if m.Product != nil {
				name = m.Product.Name
			}
			res = append(res, MovementResponse{
				ID:          m.ID,
				ProductID:   m.ProductID,
				ProductName: name,
				Quantity:    m.Quantity,
				Type:        string(m.Type),
				CreatedAt:   m.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		return c.JSON(res)
	}
}
