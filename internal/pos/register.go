package pos

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"butik-backend/internal/inventory"
	"butik-backend/internal/models"
)

const sessionKey = "pos_cart"

// ErrEmptyRegister: boş kasayla tahsilat denemesi.
var ErrEmptyRegister = errors.New("kasada satılacak ürün yok")

// StockConflictError: ekleme anında kasada bekleyen adet + istenen adet,
// canlı stoğu aşıyor. Satır değiştirilmeden reddedilir.
type StockConflictError struct {
	Name      string
	Pending   int
	Available int
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("'%s' için stok yetersiz: kasada %d adet bekliyor, stokta %d adet var",
		e.Name, e.Pending, e.Available)
}

// Item: kasadaki tek satış satırı. Varyantlı ürünler her zaman varyant
// üzerinden eklenir, varyantsızlar doğrudan ürün üzerinden.
type Item struct {
	ProductID uint            `json:"product_id"`
	VariantID *uint           `json:"variant_id"`
	Name      string          `json:"name"`
	Variant   string          `json:"variant"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

func (it *Item) Subtotal() decimal.Decimal {
	return it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2)
}

// Register: oturuma bağlı kasa durumu. TillClosed gün sonu kapanışını temsil
// eder; kapalıyken günün yerel satış toplamı gizlenir, yeni ürün eklenince
// kasa tekrar açılır.
type Register struct {
	Items      map[string]*Item `json:"items"`
	TillClosed bool             `json:"till_closed"`
}

func New() *Register {
	return &Register{Items: make(map[string]*Item)}
}

// ItemKey: varyant seçiliyse "var_<id>", değilse "prod_<id>". Aynı varyantın
// tekrar eklenmesi mevcut satırın adedini artırır.
func ItemKey(productID uint, variantID *uint) string {
	if variantID != nil && *variantID != 0 {
		return fmt.Sprintf("var_%d", *variantID)
	}
	return fmt.Sprintf("prod_%d", productID)
}

// Add: satırı oluşturur veya adedini artırır. Ekleme anında doğrular:
// kasada o satır için bekleyen adet + istenen adet canlı stoğu (available)
// aşıyorsa satıra dokunmadan StockConflictError döner. Başarılı ekleme
// kasayı yeniden açar.
func (r *Register) Add(p *models.Product, v *models.Variant, quantity, available int) error {
	var variantID *uint
	variantName := ""
	name := p.Name
	if v != nil && v.ID != 0 {
		variantID = &v.ID
		variantName = v.Name
		name = fmt.Sprintf("%s (%s)", p.Name, v.Name)
	}

	key := ItemKey(p.ID, variantID)

	pending := 0
	if item, ok := r.Items[key]; ok {
		pending = item.Quantity
	}
	if pending+quantity > available {
		return &StockConflictError{Name: name, Pending: pending, Available: available}
	}

	item, ok := r.Items[key]
	if !ok {
		item = &Item{
			ProductID: p.ID,
			VariantID: variantID,
			Name:      p.Name,
			Variant:   variantName,
			UnitPrice: p.Price,
		}
		r.Items[key] = item
	}
	item.Quantity += quantity
	r.TillClosed = false
	return nil
}

// QuantityOf: kasada o anahtar altında bekleyen adet.
func (r *Register) QuantityOf(productID uint, variantID *uint) int {
	if item, ok := r.Items[ItemKey(productID, variantID)]; ok {
		return item.Quantity
	}
	return 0
}

func (r *Register) Remove(key string) {
	delete(r.Items, key)
}

func (r *Register) Clear() {
	r.Items = make(map[string]*Item)
}

func (r *Register) IsEmpty() bool {
	return len(r.Items) == 0
}

func (r *Register) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

type LineView struct {
	Key       string `json:"key"`
	ProductID uint   `json:"product_id"`
	VariantID *uint  `json:"variant_id,omitempty"`
	Name      string `json:"name"`
	Variant   string `json:"variant,omitempty"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Subtotal  string `json:"subtotal"`
}

// Lines: anahtara göre sıralı satırlar, anahtar da cevaba dahil edilir.
func (r *Register) Lines() []LineView {
	keys := make([]string, 0, len(r.Items))
	for k := range r.Items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]LineView, 0, len(keys))
	for _, k := range keys {
		item := r.Items[k]
		lines = append(lines, LineView{
			Key:       k,
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Variant:   item.Variant,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal().StringFixed(2),
		})
	}
	return lines
}

// Charge: kasadaki satışı tek transaction içinde siparişe dönüştürür.
// Ekleme anındaki doğrulamadan bu yana stok değişmiş olabilir; düşümler
// kilitli olarak yeniden doğrulanır, tek satır bile yetersizse satışın
// tamamı geri alınır.
func Charge(db *gorm.DB, r *Register, userID uint) (*models.Order, error) {
	if r.IsEmpty() {
		return nil, ErrEmptyRegister
	}

	var order *models.Order
	err := db.Transaction(func(tx *gorm.DB) error {
		order = &models.Order{
			Reference:     uuid.NewString(),
			UserID:        userID,
			Status:        models.OrderPending,
			Address:       models.POSAddress,
			PaymentMethod: models.PaymentCash,
			ShippingCost:  decimal.Zero,
			Total:         r.Total().Round(2),
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		lines := make([]models.OrderLine, 0, len(r.Items))
		for _, item := range r.Items {
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
				Variant:   item.Variant,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
		return tx.Create(&lines).Error
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// FromSession: kasayı session'dan açar; yoksa veya bozuksa boş kasa döner.
func FromSession(sess *session.Session) *Register {
	raw, ok := sess.Get(sessionKey).([]byte)
	if !ok {
		return New()
	}

	var r Register
	if err := json.Unmarshal(raw, &r); err != nil || r.Items == nil {
		return New()
	}
	return &r
}

func (r *Register) Save(sess *session.Session) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	sess.Set(sessionKey, raw)
	return sess.Save()
}
