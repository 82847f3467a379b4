package catalog

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"butik-backend/internal/auth"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

type ProductListItem struct {
	ID        uint            `json:"id"`
	Name      string          `json:"name"`
	BrandID   *uint           `json:"brand_id"`
	BrandName string          `json:"brand_name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	ImageURL  string          `json:"image_url"`
}

type ProductListResponse struct {
	Products       []ProductListItem `json:"products"`
	PriceMinGlobal decimal.Decimal   `json:"price_min_global"`
	PriceMaxGlobal decimal.Decimal   `json:"price_max_global"`
}

// parseIDList: "1,2,3" -> [1 2 3]; bozuk parçalar atlanır.
func parseIDList(raw string) []uint {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		if id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32); err == nil && id > 0 {
			ids = append(ids, uint(id))
		}
	}
	return ids
}

// GET /api/products
// Filtreler: ?category=1,2&type=3&brand=4&min_price=10&max_price=50&q=ruj
// Sıralama: ?sort=price_asc|price_desc|newest
func ListProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Product{}).Where("active = ?", true)

		if catIDs := parseIDList(c.Query("category")); len(catIDs) > 0 {
			sub := database.DB.Model(&models.ProductType{}).
				Select("product_types.id").
				Joins("JOIN sub_categories ON sub_categories.id = product_types.sub_category_id").
				Where("sub_categories.category_id IN ?", catIDs)
			dbq = dbq.Where("type_id IN (?)", sub)
		}
		if typeIDs := parseIDList(c.Query("type")); len(typeIDs) > 0 {
			dbq = dbq.Where("type_id IN ?", typeIDs)
		}
		if brandIDs := parseIDList(c.Query("brand")); len(brandIDs) > 0 {
			dbq = dbq.Where("brand_id IN ?", brandIDs)
		}

		minPrice := c.Query("min_price")
		maxPrice := c.Query("max_price")
		if minPrice != "" && maxPrice != "" {
			dbq = dbq.Where("price >= ? AND price <= ?", minPrice, maxPrice)
		}

		if q := strings.TrimSpace(c.Query("q")); q != "" {
			pattern := "%" + strings.ToLower(q) + "%"
			dbq = dbq.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
		}

		switch c.Query("sort") {
		case "price_asc":
			dbq = dbq.Order("price asc")
		case "price_desc":
			dbq = dbq.Order("price desc")
		case "newest":
			dbq = dbq.Order("id desc")
		default:
			dbq = dbq.Order("name asc")
		}

		var products []models.Product
		if err := dbq.Preload("Brand").Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Ürünler listelenemedi")
		}

		items := make([]ProductListItem, 0, len(products))
		for _, p := range products {
			item := ProductListItem{
				ID:       p.ID,
				Name:     p.Name,
				BrandID:  p.BrandID,
				Price:    p.Price,
				Stock:    p.Stock,
				ImageURL: p.ImageURL,
			}
			if p.Brand != nil {
				item.BrandName = p.Brand.Name
			}
			items = append(items, item)
		}

		// Fiyat filtresi arayüzü için global aralık
		var priceRange struct {
			Min decimal.Decimal
			Max decimal.Decimal
		}
		database.DB.Model(&models.Product{}).
			Select("COALESCE(MIN(price), 0) as min, COALESCE(MAX(price), 100) as max").
			Scan(&priceRange)

		return c.JSON(ProductListResponse{
			Products:       items,
			PriceMinGlobal: priceRange.Min,
			PriceMaxGlobal: priceRange.Max,
		})
	}
}

// GET /api/products/:id
// Varyantlarıyla birlikte ürün detayı.
func ProductDetailHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.
			Preload("Brand").
			Preload("Type").
			Preload("Variants").
			First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		variants := make([]fiber.Map, 0, len(p.Variants))
		for _, v := range p.Variants {
			variants = append(variants, fiber.Map{
				"id":        v.ID,
				"name":      v.Name,
				"stock":     v.Stock,
				"image_url": v.ImageURL,
			})
		}

		res := fiber.Map{
			"id":          p.ID,
			"name":        p.Name,
			"price":       p.Price,
			"stock":       p.Stock,
			"image_url":   p.ImageURL,
			"description": p.Description,
			"active":      p.Active,
			"variants":    variants,
		}
		if p.Brand != nil {
			res["brand"] = fiber.Map{"id": p.Brand.ID, "name": p.Brand.Name}
		}
		if p.Type != nil {
			res["type"] = fiber.Map{"id": p.Type.ID, "name": p.Type.Name}
		}

		return c.JSON(res)
	}
}

// GET /api/categories
// Kategori > Alt Kategori > Tip ağacı.
func ListCategoriesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var categories []models.Category
		if err := database.DB.
			Preload("SubCategories").
			Preload("SubCategories.Types").
			Order("name asc").
			Find(&categories).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kategoriler listelenemedi")
		}
		return c.JSON(categories)
	}
}

// GET /api/brands
func ListBrandsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var brands []models.Brand
		if err := database.DB.Order("name asc").Find(&brands).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Markalar listelenemedi")
		}
		return c.JSON(brands)
	}
}

// POST /api/favorites/toggle/:productID
// Varsa siler, yoksa ekler.
func ToggleFavoriteHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		productID, err := strconv.ParseUint(c.Params("productID"), 10, 32)
		if err != nil || productID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün ID")
		}

		var p models.Product
		if err := database.DB.First(&p, productID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var fav models.Favorite
		err = database.DB.Where("user_id = ? AND product_id = ?", userID, p.ID).First(&fav).Error
		if err == nil {
			if err := database.DB.Delete(&fav).Error; err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "Favori kaldırılamadı")
			}
			return c.JSON(fiber.Map{"is_favorite": false})
		}

		fav = models.Favorite{UserID: userID, ProductID: p.ID}
		if err := database.DB.Create(&fav).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Favori eklenemedi")
		}
		return c.JSON(fiber.Map{"is_favorite": true})
	}
}

// GET /api/favorites
// Kullanıcının favori ürünleri.
func ListFavoritesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var favorites []models.Favorite
		if err := database.DB.
			Preload("Product").
			Where("user_id = ?", userID).
			Order("id desc").
			Find(&favorites).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Favoriler listelenemedi")
		}

		res := make([]fiber.Map, 0, len(favorites))
		for _, fav := range favorites {
			item := fiber.Map{"product_id": fav.ProductID}
			if fav.Product != nil {
				item["name"] = fav.Product.Name
				item["price"] = fav.Product.Price
				item["image_url"] = fav.Product.ImageURL
				item["stock"] = fav.Product.Stock
			}
			res = append(res, item)
		}
		return c.JSON(res)
	}
}
