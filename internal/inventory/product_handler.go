package inventory

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"butik-backend/internal/audit"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

type ProductResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	BrandID     *uint           `json:"brand_id"`
	TypeID      *uint           `json:"type_id"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	StockMin    int             `json:"stock_min"`
	ImageURL    string          `json:"image_url"`
	Description string          `json:"description"`
	Active      bool            `json:"active"`
}

type CreateProductRequest struct {
	Name        string          `json:"name"`
	BrandID     *uint           `json:"brand_id"`
	TypeID      *uint           `json:"type_id"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	StockMin    *int            `json:"stock_min"`
	ImageURL    string          `json:"image_url"`
	Description string          `json:"description"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	BrandID     *uint            `json:"brand_id"`
	TypeID      *uint            `json:"type_id"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	StockMin    *int             `json:"stock_min"`
	ImageURL    *string          `json:"image_url"`
	Description *string          `json:"description"`
	Active      *bool            `json:"active"`
}

func toProductResponse(p models.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		BrandID:     p.BrandID,
		TypeID:      p.TypeID,
		Price:       p.Price,
		Stock:       p.Stock,
		StockMin:    p.StockMin,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		Active:      p.Active,
	}
}

// POST /api/admin/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Ürün adı zorunlu")
		}
		if body.Price.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
		}

		p := models.Product{
			Name:        body.Name,
			BrandID:     body.BrandID,
			TypeID:      body.TypeID,
			Price:       body.Price.Round(2),
			Stock:       body.Stock,
			StockMin:    5,
			ImageURL:    body.ImageURL,
			Description: body.Description,
			Active:      true,
		}
		if body.StockMin != nil {
			p.StockMin = *body.StockMin
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: "Ürün oluşturuldu: " + p.Name,
			After:       p,
		})

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(p))
	}
}

// PUT /api/admin/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}
		before := p

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "Ürün adı boş olamaz")
			}
			p.Name = name
		}
		if body.BrandID != nil {
			p.BrandID = body.BrandID
		}
		if body.TypeID != nil {
			p.TypeID = body.TypeID
		}
		if body.Price != nil {
			if body.Price.IsNegative() {
				return fiber.NewError(fiber.StatusBadRequest, "Fiyat negatif olamaz")
			}
			p.Price = body.Price.Round(2)
		}
		if body.Stock != nil {
			// Varyantlı üründe stok doğrudan yazılmaz
			var variantCount int64
			database.DB.Model(&models.Variant{}).Where("product_id = ?", p.ID).Count(&variantCount)
			if variantCount > 0 {
				return fiber.NewError(fiber.StatusBadRequest, "Varyantlı ürünün stoğu varyantlar üzerinden yönetilir")
			}
			p.Stock = *body.Stock
		}
		if body.StockMin != nil {
			p.StockMin = *body.StockMin
		}
		if body.ImageURL != nil {
			p.ImageURL = *body.ImageURL
		}
		if body.Description != nil {
			p.Description = *body.Description
		}
		if body.Active != nil {
			p.Active = *body.Active
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün güncellenemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      models.AuditActionUpdate,
			Description: "Ürün güncellendi: " + p.Name,
			Before:      before,
			After:       p,
		})

		return c.JSON(toProductResponse(p))
	}
}

// DELETE /api/admin/products/:id
func DeleteProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		if err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Delete(&models.Variant{}, "product_id = ?", p.ID).Error; err != nil {
				return err
			}
			return tx.Delete(&models.Product{}, "id = ?", p.ID).Error
		}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      models.AuditActionDelete,
			Description: "Ürün silindi: " + p.Name,
			Before:      p,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/admin/products/low-stock
// Stok eşiğinin altına düşen ürünler (stock <= stock_min).
func LowStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var products []models.Product
		if err := database.DB.
			Where("stock <= stock_min").
			Order("stock asc").
			Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, toProductResponse(p))
		}
		return c.JSON(res)
	}
}
