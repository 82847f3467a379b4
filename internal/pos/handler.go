package pos

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/shopspring/decimal"

	"butik-backend/internal/audit"
	"butik-backend/internal/database"
	"butik-backend/internal/inventory"
	"butik-backend/internal/models"
)

// todayLocalSales: bugünün kasa satışları toplamı (yerel saat gün başından beri).
func todayLocalSales() decimal.Decimal {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var orders []models.Order
	database.DB.
		Where("address = ? AND created_at >= ?", models.POSAddress, startOfDay).
		Find(&orders)

	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return total
}

// GET /api/admin/pos
// Kasa görünümü. Kasa kapalıysa günün satış toplamı
// gizlenir (null döner), satırlar yine listelenir.
func ViewHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oturum açılamadı")
		}
		reg := FromSession(sess)

		res := fiber.Map{
			"items":       reg.Lines(),
			"total":       reg.Total().StringFixed(2),
			"till_closed": reg.TillClosed,
			"today_sales": nil,
		}
		if !reg.TillClosed {
			res["today_sales"] = todayLocalSales().StringFixed(2)
		}
		return c.JSON(res)
	}
}

type AddItemRequest struct {
	ProductID uint  `json:"product_id"`
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// POST /api/admin/pos/items
// Kasaya ürün ekler. Ekleme anındaki doğrulama
// Register.Add içindedir: istek reddedilirse satır değişmeden kalır.
func AddItemHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oturum açılamadı")
		}

		var body AddItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id zorunlu")
		}
		if body.Quantity < 1 {
			body.Quantity = 1
		}

		var p models.Product
		if err := database.DB.Preload("Variants").First(&p, body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var v *models.Variant
		if body.VariantID != nil && *body.VariantID != 0 {
			for i := range p.Variants {
				if p.Variants[i].ID == *body.VariantID {
					v = &p.Variants[i]
					break
				}
			}
			if v == nil {
				return fiber.NewError(fiber.StatusNotFound, "Varyant bulunamadı")
			}
		} else if len(p.Variants) > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu ürün için varyant seçilmelidir")
		}

		available := p.Stock
		if v != nil {
			available = v.Stock
		}

		reg := FromSession(sess)
		if err := reg.Add(&p, v, body.Quantity, available); err != nil {
			var conflict *StockConflictError
			if errors.As(err, &conflict) {
				return fiber.NewError(fiber.StatusConflict, conflict.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Kasaya eklenemedi")
		}
		if err := reg.Save(sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa kaydedilemedi")
		}

		return c.JSON(fiber.Map{
			"items": reg.Lines(),
			"total": reg.Total().StringFixed(2),
		})
	}
}

// DELETE /api/admin/pos/items/:key
// Satırı kasadan çıkarır.
func RemoveItemHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oturum açılamadı")
		}

		reg := FromSession(sess)
		reg.Remove(c.Params("key"))
		if err := reg.Save(sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa kaydedilemedi")
		}

		return c.JSON(fiber.Map{
			"items": reg.Lines(),
			"total": reg.Total().StringFixed(2),
		})
	}
}

// POST /api/admin/pos/charge
// Kasadaki satışı tahsil eder; başarılı olursa
// kasa temizlenir.
func ChargeHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oturum açılamadı")
		}
		reg := FromSession(sess)

		order, err := Charge(database.DB, reg, userID)
		if err != nil {
			if errors.Is(err, ErrEmptyRegister) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			var stockErr *inventory.InsufficientStockError
			if errors.As(err, &stockErr) {
				return fiber.NewError(fiber.StatusConflict, stockErr.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Satış tamamlanamadı")
		}

		reg.Clear()
		if err := reg.Save(sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa kaydedilemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "order",
			EntityID:    order.ID,
			Action:      models.AuditActionCreate,
			Description: "Kasa satışı tahsil edildi",
			After:       order,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"order_id":  order.ID,
			"reference": order.Reference,
			"total":     order.Total.StringFixed(2),
		})
	}
}

// POST /api/admin/pos/close-till
// Gün sonu kapanışı: günün satış toplamı
// gizlenir. Kasaya yeni ürün eklenince kasa tekrar açılır.
func CloseTillHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Oturum açılamadı")
		}

		reg := FromSession(sess)
		reg.TillClosed = true
		if err := reg.Save(sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa kaydedilemedi")
		}

		return c.JSON(fiber.Map{"message": "Kasa kapatıldı"})
	}
}
