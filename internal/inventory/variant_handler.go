package inventory

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"butik-backend/internal/audit"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

type VariantResponse struct {
	ID        uint   `json:"id"`
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	ImageURL  string `json:"image_url"`
}

type CreateVariantRequest struct {
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	ImageURL string `json:"image_url"`
}

type UpdateVariantRequest struct {
	Name     *string `json:"name"`
	Stock    *int    `json:"stock"`
	ImageURL *string `json:"image_url"`
}

func toVariantResponse(v models.Variant) VariantResponse {
	return VariantResponse{
		ID:        v.ID,
		ProductID: v.ProductID,
		Name:      v.Name,
		Stock:     v.Stock,
		ImageURL:  v.ImageURL,
	}
}

// POST /api/admin/products/:id/variants
func CreateVariantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		productID := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", productID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var body CreateVariantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Varyant adı zorunlu")
		}
		if body.Stock < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Stok negatif olamaz")
		}

		v := models.Variant{
			ProductID: p.ID,
			Name:      body.Name,
			Stock:     body.Stock,
			ImageURL:  body.ImageURL,
		}

		if err := CreateVariant(database.DB, &v); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Varyant oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "variant",
			EntityID:    v.ID,
			Action:      models.AuditActionCreate,
			Description: "Varyant oluşturuldu: " + p.Name + " / " + v.Name,
			After:       v,
		})

		return c.Status(fiber.StatusCreated).JSON(toVariantResponse(v))
	}
}

// PUT /api/admin/variants/:id
func UpdateVariantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var v models.Variant
		if err := database.DB.First(&v, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Varyant bulunamadı")
		}
		before := v

		var body UpdateVariantRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Varyant adı boş olamaz")
			}
			v.Name = name
		}
		if body.Stock != nil {
			if *body.Stock < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Stok negatif olamaz")
			}
			v.Stock = *body.Stock
		}
		if body.ImageURL != nil {
			v.ImageURL = *body.ImageURL
		}

		if err := UpdateVariant(database.DB, &v); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Varyant güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "variant",
			EntityID:    v.ID,
			Action:      models.AuditActionUpdate,
			Description: "Varyant güncellendi: " + v.Name,
			Before:      before,
			After:       v,
		})

		return c.JSON(toVariantResponse(v))
	}
}

// DELETE /api/admin/variants/:id
func DeleteVariantHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var v models.Variant
		if err := database.DB.First(&v, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Varyant bulunamadı")
		}

		if err := DeleteVariant(database.DB, v.ID); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Varyant silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "variant",
			EntityID:    v.ID,
			Action:      models.AuditActionDelete,
			Description: "Varyant silindi: " + v.Name,
			Before:      v,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}
