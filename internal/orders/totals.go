package orders

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"butik-backend/internal/models"
)

// DefaultShippingCost: ShippingConfig satırı hiç yoksa kullanılan sabit değer.
var DefaultShippingCost = decimal.NewFromFloat(0.25)

// ShippingCost: mevcut kargo ücretini tek satırlık konfigürasyondan okur.
// Satır yoksa oluşturmadan varsayılana düşer; get-or-create yalnızca yönetici
// tarafındaki config ucunda yapılır.
func ShippingCost(db *gorm.DB) decimal.Decimal {
	var cfg models.ShippingConfig
	if err := db.First(&cfg).Error; err != nil {
		return DefaultShippingCost
	}
	return cfg.ShippingCost
}

// RecalcTotal: siparişin toplamını kalan satırların ara toplamları + kargo
// ücreti olarak yeniden hesaplar ve doğrudan kolon güncellemesiyle yazar
// (tam Save yapılmaz, ilgisiz yan etkiler tetiklenmez). Satır silme ve
// yönetici düzenlemelerinden sonra çağrılır; arka arkaya çağrılması sonucu
// değiştirmez.
func RecalcTotal(db *gorm.DB, orderID uint) error {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		return err
	}

	var lines []models.OrderLine
	if err := db.Where("order_id = ?", orderID).Find(&lines).Error; err != nil {
		return err
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Subtotal())
	}
	total = total.Add(order.ShippingCost)

	return db.Model(&models.Order{}).
		Where("id = ?", orderID).
		UpdateColumn("total", total).Error
}
