package cart

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/shopspring/decimal"

	"butik-backend/internal/database"
	"butik-backend/internal/models"
	"butik-backend/internal/orders"
)

type AddRequest struct {
	VariantID *uint `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

type StockWarning struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

type CartResponse struct {
	Items             []Line          `json:"items"`
	Total             decimal.Decimal `json:"total"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	TotalWithShipping decimal.Decimal `json:"total_with_shipping"`
	ItemCount         int             `json:"item_count"`
	StockWarnings     []StockWarning  `json:"stock_warnings"`
}

func parseProductID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("productID"), 10, 32)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Geçersiz ürün ID")
	}
	return uint(id), nil
}

func parseVariantQuery(c *fiber.Ctx) *uint {
	raw := c.Query("variant_id")
	if raw == "" || raw == "0" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	vid := uint(id)
	return &vid
}

// liveStock: satırın işaret ettiği canlı stok değeri ve görünen adı.
// Varyant silinmişse stok 0 kabul edilir.
func liveStock(line Line) (int, string) {
	var p models.Product
	if err := database.DB.First(&p, line.ProductID).Error; err != nil {
		return 0, line.Name
	}

	if line.VariantID != nil {
		var v models.Variant
		if err := database.DB.First(&v, *line.VariantID).Error; err != nil {
			return 0, fmt.Sprintf("%s (varyant artık mevcut değil)", p.Name)
		}
		return v.Stock, fmt.Sprintf("%s (%s)", p.Name, v.Name)
	}
	return p.Stock, p.Name
}

// GET /api/cart
// Sepeti, kargo dahil toplamı ve satır bazında canlı stok uyarılarını döndürür.
// Uyarılar bilgilendirir, adetler asla kırpılmaz; kesin karar checkout'ta verilir.
func ViewHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Session açılamadı")
		}
		crt := FromSession(sess)

		warnings := make([]StockWarning, 0)
		for key, line := range crt.Lines {
			stock, name := liveStock(*line)
			if line.Quantity > stock {
				warnings = append(warnings, StockWarning{
					Key:       key,
					Name:      name,
					Remaining: stock,
					Message:   fmt.Sprintf("'%s' için stok yetersiz, sadece %d adet kaldı", name, stock),
				})
			}
		}

		shipping := orders.ShippingCost(database.DB)
		total := crt.Total()

		return c.JSON(CartResponse{
			Items:             crt.Items(),
			Total:             total,
			ShippingCost:      shipping,
			TotalWithShipping: total.Add(shipping),
			ItemCount:         crt.ItemCount(),
			StockWarnings:     warnings,
		})
	}
}

// POST /api/cart/add/:productID
// Anlık stok kontrolüyle ekler: istenen adet canlı stoğu aşıyorsa satır hiç
// oluşturulmadan reddedilir.
func AddHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := parseProductID(c)
		if err != nil {
			return err
		}

		var body AddRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Quantity < 1 {
			body.Quantity = 1
		}

		var p models.Product
		if err := database.DB.First(&p, "id = ? AND active = ?", productID, true).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var variant *models.Variant
		available := p.Stock
		name := p.Name
		if body.VariantID != nil && *body.VariantID != 0 {
			var v models.Variant
			if err := database.DB.First(&v, "id = ? AND product_id = ?", *body.VariantID, p.ID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Varyant bulunamadı")
			}
			variant = &v
			available = v.Stock
			name = fmt.Sprintf("%s (%s)", p.Name, v.Name)
		}

		if body.Quantity > available {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("'%s' için stok yetersiz, sadece %d adet kaldı", name, available))
		}

		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Session açılamadı")
		}
		crt := FromSession(sess)
		crt.Add(&p, variant, body.Quantity)
		if err := crt.Save(sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sepet kaydedilemedi")
		}

		return c.JSON(fiber.Map{"item_count": crt.ItemCount()})
	}
}

// POST /api/cart/increase/:productID?variant_id=
// Sepet sayfasındaki artı butonu: kontrolsüz +1 (doğrulama görüntülemede ve
// checkout'ta yapılır).
func IncreaseHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := parseProductID(c)
		if err != nil {
			return err
		}

		var p models.Product
		if err := database.DB.First(&p, productID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ürün bulunamadı")
		}

		var variant *models.Variant
		if vid := parseVariantQuery(c); vid != nil {
			var v models.Variant
			if err := database.DB.First(&v, "id = ? AND product_id = ?", *vid, p.ID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Varyant bulunamadı")
			}
			variant = &v
		}

		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Session açılamadı")
		}
		crt := FromSession(sess)
		crt.Add(&p, variant, 1)
		if err := crt.Save(sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sepet kaydedilemedi")
		}

		return c.JSON(fiber.Map{"item_count": crt.ItemCount()})
	}
}

// POST /api/cart/decrease/:productID?variant_id=
func DecreaseHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := parseProductID(c)
		if err != nil {
			return err
		}

		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Session açılamadı")
		}
		crt := FromSession(sess)
		crt.Subtract(productID, parseVariantQuery(c))
		if err := crt.Save(sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sepet kaydedilemedi")
		}

		return c.JSON(fiber.Map{"item_count": crt.ItemCount()})
	}
}

// DELETE /api/cart/items/:productID?variant_id=
func RemoveHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := parseProductID(c)
		if err != nil {
			return err
		}

		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Session açılamadı")
		}
		crt := FromSession(sess)
		crt.Remove(productID, parseVariantQuery(c))
		if err := crt.Save(sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sepet kaydedilemedi")
		}

		return c.JSON(fiber.Map{"item_count": crt.ItemCount()})
	}
}

// POST /api/cart/clear
func ClearHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Session açılamadı")
		}
		crt := FromSession(sess)
		crt.Clear()
		if err := crt.Save(sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sepet kaydedilemedi")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/cart/count
// Menüdeki sepet rozeti.
func CountHandler(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Session açılamadı")
		}
		crt := FromSession(sess)

		return c.JSON(fiber.Map{"item_count": crt.ItemCount()})
	}
}
