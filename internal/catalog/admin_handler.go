package catalog

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"butik-backend/internal/audit"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

type BrandRequest struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// POST /api/admin/brands
func CreateBrandHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var body BrandRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Marka adı zorunlu")
		}

		brand := models.Brand{Name: body.Name, ImageURL: body.ImageURL}
		if err := database.DB.Create(&brand).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Marka oluşturulamadı (ad benzersiz olmalı)")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "brand",
			EntityID:    brand.ID,
			Action:      models.AuditActionCreate,
			Description: "Marka oluşturuldu",
			After:       brand,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": brand.ID})
	}
}

// DELETE /api/admin/brands/:id
// Marka silinir, ürünlerin brand_id alanı
// NULL'a düşer (SET NULL FK davranışı).
func DeleteBrandHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var brand models.Brand
		if err := database.DB.First(&brand, "id = ?", c.Params("id")).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Marka bulunamadı")
		}

		if err := database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Product{}).
				Where("brand_id = ?", brand.ID).
				UpdateColumn("brand_id", nil).Error; err != nil {
				return err
			}
			return tx.Delete(&brand).Error
		}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Marka silinemedi")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "brand",
			EntityID:    brand.ID,
			Action:      models.AuditActionDelete,
			Description: "Marka silindi",
			Before:      brand,
		})

		return c.JSON(fiber.Map{"message": "Marka silindi"})
	}
}

type CategoryRequest struct {
	Name string `json:"name"`
}

// POST /api/admin/categories
func CreateCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var body CategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kategori adı zorunlu")
		}

		cat := models.Category{Name: body.Name}
		if err := database.DB.Create(&cat).Error; err != nil {
			return fiber.NewError(fiber.StatusConflict, "Kategori oluşturulamadı (ad benzersiz olmalı)")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "category",
			EntityID:    cat.ID,
			Action:      models.AuditActionCreate,
			Description: "Kategori oluşturuldu",
			After:       cat,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": cat.ID})
	}
}

type SubCategoryRequest struct {
	CategoryID uint   `json:"category_id"`
	Name       string `json:"name"`
}

// POST /api/admin/sub-categories
func CreateSubCategoryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var body SubCategoryRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.CategoryID == 0 || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "category_id ve name zorunlu")
		}

		var cat models.Category
		if err := database.DB.First(&cat, body.CategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kategori bulunamadı")
		}

		sub := models.SubCategory{CategoryID: cat.ID, Name: body.Name}
		if err := database.DB.Create(&sub).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Alt kategori oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "sub_category",
			EntityID:    sub.ID,
			Action:      models.AuditActionCreate,
			Description: "Alt kategori oluşturuldu",
			After:       sub,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": sub.ID})
	}
}

type ProductTypeRequest struct {
	SubCategoryID uint   `json:"sub_category_id"`
	Name          string `json:"name"`
}

// POST /api/admin/product-types
func CreateProductTypeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := audit.UserInfo(c)
		if err != nil {
			return err
		}

		var body ProductTypeRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.SubCategoryID == 0 || body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "sub_category_id ve name zorunlu")
		}

		var sub models.SubCategory
		if err := database.DB.First(&sub, body.SubCategoryID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Alt kategori bulunamadı")
		}

		typ := models.ProductType{SubCategoryID: sub.ID, Name: body.Name}
		if err := database.DB.Create(&typ).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürün tipi oluşturulamadı")
		}

		_ = audit.WriteLog(audit.LogOptions{
			UserID:      userID,
			UserName:    userName,
			EntityType:  "product_type",
			EntityID:    typ.ID,
			Action:      models.AuditActionCreate,
			Description: "Ürün tipi oluşturuldu",
			After:       typ,
		})

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": typ.ID})
	}
}
