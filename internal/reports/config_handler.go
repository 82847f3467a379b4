package reports

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"butik-backend/internal/audit"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

// adminDefaultShipping: yönetici ekranı ilk açıldığında oluşturulan satırın
// varsayılan kargo ücreti.
var adminDefaultShipping = decimal.NewFromFloat(5.00)

// GET /api/admin/config/shipping
// Tek satırlık ayarı okur, yoksa varsayılanla
// oluşturur. Checkout tarafı satır yokken oluşturmaz, yalnızca burası yaratır.
func GetShippingConfigHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cfg models.ShippingConfig
		if err := database.DB.First(&cfg).Error; err != nil {
			cfg = models.ShippingConfig{ShippingCost: adminDefaultShipping}
			if err := database.DB.Create(&cfg).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Kargo ayarı oluşturulamadı")
			}
		}

		return c.JSON(fiber.Map{
			"id":            cfg.ID,
			"shipping_cost": cfg.ShippingCost.StringFixed(2),
		})
	}
}

type UpdateShippingConfigRequest struct {
	ShippingCost decimal.Decimal `json:"shipping_cost"`
}

// PUT /api/admin/config/shipping
func UpdateShippingConfigHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var body UpdateShippingConfigRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.ShippingCost.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Kargo ücreti negatif olamaz")
		}

		var cfg models.ShippingConfig
		if err := database.DB.First(&cfg).Error; err != nil {
			cfg = models.ShippingConfig{ShippingCost: body.ShippingCost.Round(2)}
			if err := database.DB.Create(&cfg).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Kargo ayarı oluşturulamadı")
			}
		} else {
			before := cfg
			if err := database.DB.Model(&cfg).
				UpdateColumn("shipping_cost", body.ShippingCost.Round(2)).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Kargo ayarı güncellenemedi")
			}
			_ = audit.WriteLog(audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "shipping_config",
				EntityID:    cfg.ID,
				Action:      models.AuditActionUpdate,
				Description: "Kargo ücreti güncellendi",
				Before:      before,
				After:       cfg,
			})
		}

		return c.JSON(fiber.Map{"shipping_cost": body.ShippingCost.Round(2).StringFixed(2)})
	}
}
