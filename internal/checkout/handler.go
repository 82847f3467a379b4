package checkout

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"gorm.io/gorm"

	"butik-backend/internal/auth"
	"butik-backend/internal/cart"
	"butik-backend/internal/database"
	"butik-backend/internal/inventory"
)

var validate = validator.New()

// POST /api/checkout
func PlaceOrderHandler(store *session.Store, notifier Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var form Form
		if err := c.BodyParser(&form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if err := validate.Struct(form); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Teslimat bilgileri eksik veya hatalı")
		}

		sess, err := store.Get(c)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Session açılamadı")
		}
		crt := cart.FromSession(sess)

		order, err := PlaceOrder(database.DB, crt, userID, form, notifier)
		if err != nil {
			if errors.Is(err, ErrEmptyCart) {
				return fiber.NewError(fiber.StatusBadRequest, "Sepet boş")
			}
			var stockErr *inventory.InsufficientStockError
			if errors.As(err, &stockErr) {
				return fiber.NewError(fiber.StatusConflict, stockErr.Error())
			}
			// Sepete eklendikten sonra silinen ürün/varyant: sepet görünümündeki
			// uyarıyla aynı dille reddedilir, 500'e düşmez.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusConflict, "Sepetinizdeki bir ürün ya da varyant artık mevcut değil")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş oluşturulamadı")
		}

		// Satış commit edildi, sepet temizlenir
		crt.Clear()
		if err := crt.Save(sess); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sepet temizlenemedi")
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"order_id":  order.ID,
			"reference": order.Reference,
			"total":     order.Total,
		})
	}
}
