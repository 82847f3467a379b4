package orders

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"butik-backend/internal/auth"
	"butik-backend/internal/database"
	"butik-backend/internal/models"
)

type OrderLineView struct {
	ID        uint   `json:"id"`
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Variant   string `json:"variant,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

type OrderView struct {
	ID            uint            `json:"id"`
	Reference     string          `json:"reference"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	ShippingCost  string          `json:"shipping_cost"`
	Total         string          `json:"total"`
	CreatedAt     string          `json:"created_at"`
	Lines         []OrderLineView `json:"lines"`
}

func toOrderView(o models.Order) OrderView {
	view := OrderView{
		ID:            o.ID,
		Reference:     o.Reference,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		ShippingCost:  o.ShippingCost.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		CreatedAt:     o.CreatedAt.Format("2006-01-02 15:04"),
		Lines:         make([]OrderLineView, 0, len(o.Lines)),
	}
	for _, line := range o.Lines {
		lv := OrderLineView{
			ID:        line.ID,
			ProductID: line.ProductID,
			Variant:   line.Variant,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.StringFixed(2),
			Subtotal:  line.Subtotal().StringFixed(2),
		}
		if line.Product != nil {
			lv.Name = line.Product.Name
		}
		view.Lines = append(view.Lines, lv)
	}
	return view
}

// GET /api/orders
// Kullanıcının kendi siparişleri. Arşivlenenler listede
// görünmez; müşteri tarafında arşiv "gizle" anlamına gelir.
func ListMyOrdersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.CurrentUserID(c)
		if err != nil {
			return err
		}

		var orders []models.Order
		if err := database.DB.
			Preload("Lines").
			Preload("Lines.Product").
			Where("user_id = ? AND status <> ?", userID, models.OrderArchived).
			Order("id desc").
			Find(&orders).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Siparişler listelenemedi")
		}

		res := make([]OrderView, 0, len(orders))
		for _, o := range orders {
			res = append(res, toOrderView(o))
		}
		return c.JSON(res)
	}
}

// ownOrder: siparişi yükler ve oturumdaki kullanıcıya ait olduğunu doğrular.
func ownOrder(c *fiber.Ctx) (*models.Order, error) {
	userID, err := auth.CurrentUserID(c)
	if err != nil {
		return nil, err
	}

	var order models.Order
	if err := database.DB.First(&order, "id = ?", c.Params("id")).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
	}
	if order.UserID != userID {
		return nil, fiber.NewError(fiber.StatusNotFound, "Sipariş bulunamadı")
	}
	return &order, nil
}

// DELETE /api/orders/:id
// Müşteri yalnızca teslim edilmiş veya iptal edilmiş
// siparişini listesinden kaldırabilir. Stok iadesi yapılmaz.
func DeleteMyOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := ownOrder(c)
		if err != nil {
			return err
		}

		if order.Status != models.OrderDelivered && order.Status != models.OrderCancelled {
			return fiber.NewError(fiber.StatusBadRequest, "Yalnızca teslim edilmiş veya iptal edilmiş sipariş silinebilir")
		}

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderLine{}).Error; err != nil {
				return err
			}
			return tx.Delete(order).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş silinemedi")
		}

		return c.JSON(fiber.Map{"message": "Sipariş silindi"})
	}
}

// POST /api/orders/:id/archive
// Teslim edilmiş siparişi arşivler.
func ArchiveMyOrderHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		order, err := ownOrder(c)
		if err != nil {
			return err
		}

		if order.Status != models.OrderDelivered {
			return fiber.NewError(fiber.StatusBadRequest, "Yalnızca teslim edilmiş sipariş arşivlenebilir")
		}

		if err := database.DB.Model(order).UpdateColumn("status", models.OrderArchived).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Sipariş arşivlenemedi")
		}

		return c.JSON(fiber.Map{"message": "Sipariş arşivlendi"})
	}
}
