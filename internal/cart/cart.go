package cart

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/shopspring/decimal"

	"butik-backend/internal/models"
)

const sessionKey = "cart"

// Line: sepetteki tek bir (ürün, opsiyonel varyant) kaydı. Fiyat ekleme anında
// üründen kopyalanır; sonraki görüntülemelerde tekrar okunmaz, yalnızca stok
// doğrulamasında canlı değere bakılır.
type Line struct {
	ProductID   uint            `json:"product_id"`
	Name        string          `json:"name"`
	VariantID   *uint           `json:"variant_id"`
	VariantName string          `json:"variant_name"`
	ImageURL    string          `json:"image_url"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Cart struct {
	Lines map[string]*Line `json:"lines"`
}

func New() *Cart {
	return &Cart{Lines: make(map[string]*Line)}
}

// Key: "<productID>" veya varyant seçiliyse "<productID>-<variantID>".
func Key(productID uint, variantID *uint) string {
	if variantID == nil || *variantID == 0 {
		return strconv.FormatUint(uint64(productID), 10)
	}
	return fmt.Sprintf("%d-%d", productID, *variantID)
}

// normalizeVariant: 0 ID'li varyant "varyant yok" sayılır.
func normalizeVariant(variantID *uint) *uint {
	if variantID != nil && *variantID == 0 {
		return nil
	}
	return variantID
}

// Add: satırı yoksa fiyat kopyasıyla başlatır, adet ekler ve ara toplamı tek
// kanonik kuralla (Round(2)) yeniden hesaplar. Burada stok kontrolü YAPILMAZ;
// doğrulama çağıranın sorumluluğudur (bkz. handler ve checkout).
func (c *Cart) Add(p *models.Product, v *models.Variant, quantity int) {
	var variantID *uint
	variantName := ""
	imageURL := p.ImageURL
	if v != nil && v.ID != 0 {
		variantID = &v.ID
		variantName = v.Name
		if v.ImageURL != "" {
			imageURL = v.ImageURL
		}
	}

	key := Key(p.ID, variantID)
	line, ok := c.Lines[key]
	if !ok {
		line = &Line{
			ProductID:   p.ID,
			Name:        p.Name,
			VariantID:   variantID,
			VariantName: variantName,
			ImageURL:    imageURL,
			UnitPrice:   p.Price,
			Quantity:    0,
		}
		c.Lines[key] = line
	}

	line.Quantity += quantity
	line.Subtotal = subtotal(line.UnitPrice, line.Quantity)
}

// Subtract: adedi tam 1 azaltır; 1'in altına düşen satır tamamen silinir.
func (c *Cart) Subtract(productID uint, variantID *uint) {
	key := Key(productID, normalizeVariant(variantID))
	line, ok := c.Lines[key]
	if !ok {
		return
	}

	line.Quantity--
	if line.Quantity < 1 {
		delete(c.Lines, key)
		return
	}
	line.Subtotal = subtotal(line.UnitPrice, line.Quantity)
}

// Remove: satır varsa koşulsuz siler.
func (c *Cart) Remove(productID uint, variantID *uint) {
	delete(c.Lines, Key(productID, normalizeVariant(variantID)))
}

func (c *Cart) Clear() {
	c.Lines = make(map[string]*Line)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Total: her çağrıda taze hesaplanır, cache yok.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(subtotal(line.UnitPrice, line.Quantity))
	}
	return total
}

// ItemCount menüdeki sepet rozeti için adetlerin toplamını verir, satır sayısını değil.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// Items: anahtara göre sıralı, ara toplamları aynı kuralla yeniden hesaplanmış
// satırlar. Ekleme ve listeleme aynı yuvarlama yolunu kullanır.
func (c *Cart) Items() []Line {
	keys := make([]string, 0, len(c.Lines))
	for k := range c.Lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	items := make([]Line, 0, len(keys))
	for _, k := range keys {
		line := *c.Lines[k]
		line.Subtotal = subtotal(line.UnitPrice, line.Quantity)
		items = append(items, line)
	}
	return items
}

func subtotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// FromSession: sepeti session'dan açar; yoksa veya bozuksa boş sepet döner.
func FromSession(sess *session.Session) *Cart {
	raw, ok := sess.Get(sessionKey).([]byte)
	if !ok {
		return New()
	}

	var c Cart
	if err := json.Unmarshal(raw, &c); err != nil || c.Lines == nil {
		return New()
	}
	return &c
}

// Save: sepeti JSON olarak session'a yazar ve session'ı kaydeder.
func (c *Cart) Save(sess *session.Session) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	sess.Set(sessionKey, raw)
	return sess.Save()
}
