package orders

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"butik-backend/internal/audit"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

var validStatuses = map[models.OrderStatus]bool{
	models.OrderPending:   true,
	models.OrderEnRoute:   true,
	models.OrderDelivered: true,
	models.OrderCancelled: true,
	models.OrderArchived:  true,
}

// GET /api/admin/orders?status=PENDING
// Tüm siparişler, kullanıcı bilgisiyle.
func AdminListOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Order{}).
			Preload("User").
			Preload("Lines").
			Preload("Lines.Product")

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var orders []models.Order
		if err := dbq.Order("id desc").Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		res := make([]fiber.Map, 0, len(orders))
		for _, o := range orders {
			item := fiber.Map{
				"order":          toOrderView(o),
				"recipient_name": o.RecipientName,
				"phone":          o.Phone,
				"province":       o.Province,
				"canton":         o.Canton,
				"address":        o.Address,
				"map_link":       o.MapLink,
				"is_pos":         o.Address == models.POSAddress,
			}
			if o.User != nil {
				item["customer_email"] = o.User.Email
			}
			res = append(res, item)
		}
		return c.JSON(res)
	}
}

type AdminUpdateOrderRequest struct {
	Status       *string          `json:"status"`
	ShippingCost *decimal.Decimal `json:"shipping_cost"`
}

// PUT /api/admin/orders/:id
// Durum ve/veya kargo ücreti günceller. Kargo
// ücreti değişince toplam yeniden hesaplanır.
func AdminUpdateOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var order models.Order
		if err := database.DB.First(&order, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
		}
		before := order

		var body AdminUpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		updates := map[string]any{}
		if body.Status != nil {
			status := models.OrderStatus(*body.Status)
			if !validStatuses[status] {
				return fiber.NewError(fiber.StatusBadRequest, "Geçersiz sipariş durumu")
			}
			updates["status"] = status
		}
		if body.ShippingCost != nil {
			if body.ShippingCost.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Kargo ücreti negatif olamaz")
			}
			updates["shipping_cost"] = body.ShippingCost.Round(2)
		}
		if len(updates) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Güncellenecek alan yok")
		}

		if err := database.DB.Model(&order).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş güncellenemedi")
		}

		if body.ShippingCost != nil {
			if err := RecalcTotal(database.DB, order.ID); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Toplam yeniden hesaplanamadı")
			}
		}

		database.DB.First(&order, order.ID)

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionUpdate,
			Description: "Sipariş güncellendi",
			Before:      before,
			After:       order,
		})

		return c.JSON(fiber.Map{"message": "Sipariş güncellendi", "total": order.Total.StringFixed(2)})
	}
}

type AdminUpdateLineRequest struct {
	Quantity  *int             `json:"quantity"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// PUT /api/admin/orders/:id/lines/:lineID
// Satır adedini ve/veya birim
// fiyatını düzeltir, toplamı yeniden hesaplar. Stok düzeltmesi ayrıca stok
// hareketiyle yapılır.
func AdminUpdateOrderLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var line models.OrderLine
		if err := database.DB.
			Where("id = ? AND order_id = ?", c.Params("lineID"), c.Params("id")).
			First(&line).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş satırı bulunamadı")
		}
		before := line

		var body AdminUpdateLineRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		updates := map[string]any{}
		if body.Quantity != nil {
			if *body.Quantity < 1 {
				return fiber.NewError(fiber.StatusBadRequest, "Adet en az 1 olmalı")
			}
			updates["quantity"] = *body.Quantity
		}
		if body.UnitPrice != nil {
			if body.UnitPrice.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Birim fiyat negatif olamaz")
			}
			updates["unit_price"] = body.UnitPrice.Round(2)
		}
		if len(updates) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Güncellenecek alan yok")
		}

		if err := database.DB.Model(&line).Updates(updates).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satır güncellenemedi")
		}
		if err := RecalcTotal(database.DB, line.OrderID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Toplam yeniden hesaplanamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order_line",
			EntityID:    line.ID,
			Action:      models.AuditActionUpdate,
			Description: "Sipariş satırı güncellendi",
			Before:      before,
			After:       line,
		})

		return c.JSON(fiber.Map{"message": "Satır güncellendi"})
	}
}

type MarkDeliveredRequest struct {
	IDs []uint `json:"ids"`
}

// POST /api/admin/orders/mark-delivered
// Seçili siparişleri topluca teslim
// edildi olarak işaretler. Yalnızca PENDING ve EN_ROUTE durumları etkilenir.
func AdminMarkDeliveredHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var body MarkDeliveredRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if len(body.IDs) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "ids zorunlu")
		}

		result := database.DB.Model(&models.Order{}).
			Where("id IN ? AND status IN ?", body.IDs,
				[]models.OrderStatus{models.OrderPending, models.OrderEnRoute}).
			UpdateColumn("status", models.OrderDelivered)
		if result.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			Action:      models.AuditActionUpdate,
			Description: "Siparişler topluca teslim edildi olarak işaretlendi",
			After:       body.IDs,
		})

		return c.JSON(fiber.Map{"updated": result.RowsAffected})
	}
}

// DELETE /api/admin/orders/:id/lines/:lineID
// Satırı siler ve siparişin
// toplamını kalan satırlardan yeniden hesaplar.
func AdminDeleteOrderLineHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var line models.OrderLine
		if err := database.DB.
			Where("id = ? AND order_id = ?", c.Params("lineID"), c.Params("id")).
			First(&line).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Sipariş satırı bulunamadı")
		}

		if err := database.DB.Delete(&line).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Satır silinemedi")
		}
		if err := RecalcTotal(database.DB, line.OrderID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Toplam yeniden hesaplanamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order_line",
			EntityID:    line.ID,
			Action:      models.AuditActionDelete,
			Description: "Sipariş satırı silindi",
			Before:      line,
		})

		return c.JSON(fiber.Map{"message": "Satır silindi"})
	}
}
