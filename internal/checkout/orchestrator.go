package checkout

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"butik-backend/internal/cart"
	"butik-backend/internal/inventory"
	"butik-backend/internal/models"
	"butik-backend/internal/orders"
)

// ErrEmptyCart: boş sepetle checkout denemesi.
var ErrEmptyCart = errors.New("sepet boş")

// Notifier: sipariş onayını ileten kanal. Gönderim hatası satışı asla geri almaz.
type Notifier interface {
	SendOrderConfirmation(toEmail string, order *models.Order) error
}

// Form: checkout gönderimi. Adres alanları tek blok halinde birleştirilir.
type Form struct {
	RecipientName string `json:"recipient_name" validate:"required,max=200"`
	IDNumber      string `json:"id_number" validate:"required,max=20"`
	Phone         string `json:"phone" validate:"required,max=20"`
	Province      string `json:"province" validate:"required,max=100"`
	Canton        string `json:"canton" validate:"required,max=100"`
	StreetMain    string `json:"street_main" validate:"required"`
	StreetSecond  string `json:"street_second"`
	Neighborhood  string `json:"neighborhood"`
	Notes         string `json:"notes"`
	MapLink       string `json:"map_link"`
}

func (f Form) addressBlock() string {
	return fmt.Sprintf("%s / %s, Mahalle: %s. Tarif: %s.",
		f.StreetMain, f.StreetSecond, f.Neighborhood, f.Notes)
}

// PlaceOrder: session sepetini kalıcı bir siparişe çevirir.
//
// Tek bir transaction içinde: kargo ücreti çözülür, sipariş başlığı PENDING
// olarak yazılır, her sepet satırı için hedef kayıt satır kilidiyle yeniden
// okunup stok doğrulanır ve düşülür, sipariş satırları toplu yazılır. Herhangi
// bir satırda stok yetersizse transaction'ın tamamı geri alınır; yarım sipariş
// ya da yarım stok düşümü asla gözlemlenemez.
//
// Commit'ten sonra onay bildirimi best-effort gönderilir; hata loglanıp yutulur.
// Sepeti temizlemek çağıranın işidir (session sınırında yapılır).
func PlaceOrder(db *gorm.DB, crt *cart.Cart, userID uint, form Form, notifier Notifier) (*models.Order, error) {
	if crt.IsEmpty() {
		return nil, ErrEmptyCart
	}

	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		shipping := orders.ShippingCost(tx)

		order = models.Order{
			Reference:     uuid.NewString(),
			UserID:        userID,
			Status:        models.OrderPending,
			RecipientName: form.RecipientName,
			IDNumber:      form.IDNumber,
			Phone:         form.Phone,
			Province:      form.Province,
			Canton:        form.Canton,
			Address:       form.addressBlock(),
			Notes:         form.Notes,
			MapLink:       form.MapLink,
			PaymentMethod: models.PaymentTransfer,
			ShippingCost:  shipping,
			Total:         crt.Total().Add(shipping),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		lines := make([]models.OrderLine, 0, len(crt.Lines))
		for _, item := range crt.Items() {
			if item.VariantID != nil {
				if err := inventory.DeductVariantStock(tx, *item.VariantID, item.Quantity); err != nil {
					return err
				}
			} else {
				if err := inventory.DeductProductStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}

			lines = append(lines, models.OrderLine{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Variant:   item.VariantName, // sipariş anında dondurulan etiket
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}

		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}

	notify(db, notifier, &order)

	return &order, nil
}

func notify(db *gorm.DB, notifier Notifier, order *models.Order) {
	if notifier == nil {
		return
	}

	var user models.User
	if err := db.First(&user, order.UserID).Error; err != nil || user.Email == "" {
		logrus.WithField("order_id", order.ID).Warn("Sipariş sahibinin e-postası bulunamadı, onay gönderilmedi")
		return
	}

	if err := notifier.SendOrderConfirmation(user.Email, order); err != nil {
		logrus.WithError(err).WithField("order_id", order.ID).
			Warn("Sipariş onay e-postası gönderilemedi")
	}
}
