package checkout

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"butik-backend/internal/cart"
	"butik-backend/internal/database"
	"butik-backend/internal/inventory"
	"butik-backend/internal/models"
	"butik-backend/internal/orders"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{
		Name:         "Test Müşteri",
		Email:        "musteri@example.com",
		PasswordHash: "x",
		Role:         models.RoleCustomer,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, db.Create(p).Error)
	return p
}

func validForm() Form {
	return Form{
		RecipientName: "Ayşe Yılmaz",
		IDNumber:      "12345678",
		Phone:         "5551234567",
		Province:      "İstanbul",
		Canton:        "Kadıköy",
		StreetMain:    "Moda Cad. 1",
		Neighborhood:  "Moda",
		Notes:         "Kapıda ara",
	}
}

type recordingNotifier struct {
	sent []string
	err  error
}

func (n *recordingNotifier) SendOrderConfirmation(toEmail string, order *models.Order) error {
	n.sent = append(n.sent, toEmail)
	return n.err
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)

	_, err := PlaceOrder(db, cart.New(), u.ID, validForm(), nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestPlaceOrderSuccess(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	p := seedProduct(t, db, "Parfüm", "25.00", 10)
	pv := seedProduct(t, db, "Ruj", "8.50", 0)
	v := &models.Variant{ProductID: pv.ID, Name: "Ton 3", Stock: 5}
	require.NoError(t, inventory.CreateVariant(db, v))

	crt := cart.New()
	crt.Add(p, nil, 2)  // 50.00
	crt.Add(pv, v, 3)   // 25.50

	notifier := &recordingNotifier{}
	order, err := PlaceOrder(db, crt, u.ID, validForm(), notifier)
	require.NoError(t, err)

	// Sipariş başlığı
	assert.NotEmpty(t, order.Reference)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, models.PaymentTransfer, order.PaymentMethod)
	// ShippingConfig satırı yok: checkout 0.25 varsayılanına düşer, satır yaratmaz
	assert.True(t, order.ShippingCost.Equal(orders.DefaultShippingCost))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("75.75")))

	var cfgCount int64
	require.NoError(t, db.Model(&models.ShippingConfig{}).Count(&cfgCount).Error)
	assert.Zero(t, cfgCount)

	// Satırlar: dondurulmuş varyant etiketi ve fiyat kopyası
	var lines []models.OrderLine
	require.NoError(t, db.Where("order_id = ?", order.ID).Order("product_id").Find(&lines).Error)
	require.Len(t, lines, 2)
	assert.Equal(t, p.ID, lines[0].ProductID)
	assert.Empty(t, lines[0].Variant)
	assert.Equal(t, "Ton 3", lines[1].Variant)
	assert.True(t, lines[1].UnitPrice.Equal(decimal.RequireFromString("8.50")))

	// Stok düşümleri ve ana ürünün yeniden hesaplanması
	var reloadedP models.Product
	require.NoError(t, db.First(&reloadedP, p.ID).Error)
	assert.Equal(t, 8, reloadedP.Stock)

	var reloadedV models.Variant
	require.NoError(t, db.First(&reloadedV, v.ID).Error)
	assert.Equal(t, 2, reloadedV.Stock)

	var reloadedPV models.Product
	require.NoError(t, db.First(&reloadedPV, pv.ID).Error)
	assert.Equal(t, 2, reloadedPV.Stock)

	// Onay e-postası sipariş sahibine gitti
	assert.Equal(t, []string{"musteri@example.com"}, notifier.sent)
}

func TestPlaceOrderUsesConfiguredShipping(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	p := seedProduct(t, db, "Krem", "10.00", 5)
	require.NoError(t, db.Create(&models.ShippingConfig{
		ShippingCost: decimal.RequireFromString("5.00"),
	}).Error)

	crt := cart.New()
	crt.Add(p, nil, 1)

	order, err := PlaceOrder(db, crt, u.ID, validForm(), nil)
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(decimal.RequireFromString("15.00")))
}

func TestPlaceOrderInsufficientStockRollsBackEverything(t *testing.T) {
	// İlk satır düşülebilir, ikincisi düşülemez: sipariş, satırlar ve ilk
	// satırın stok düşümü dahil her şey geri alınır.
	db := newTestDB(t)
	u := seedUser(t, db)
	ok := seedProduct(t, db, "Parfüm", "25.00", 10)
	scarce := seedProduct(t, db, "Serum", "40.00", 1)

	crt := cart.New()
	crt.Add(ok, nil, 2)
	crt.Add(scarce, nil, 3)

	notifier := &recordingNotifier{}
	_, err := PlaceOrder(db, crt, u.ID, validForm(), notifier)

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Serum", stockErr.Name)
	assert.Equal(t, 1, stockErr.Remaining)

	var orderCount, lineCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, db.Model(&models.OrderLine{}).Count(&lineCount).Error)
	assert.Zero(t, orderCount)
	assert.Zero(t, lineCount)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, ok.ID).Error)
	assert.Equal(t, 10, reloaded.Stock)

	assert.Empty(t, notifier.sent)
}

func TestPlaceOrderDeletedVariantAbortsWithNotFound(t *testing.T) {
	// Varyant sepete eklendikten sonra silinmiş: checkout kayıt-yok hatasıyla
	// durur (handler bunu 409'a çevirir) ve hiçbir değişiklik kalmaz.
	db := newTestDB(t)
	u := seedUser(t, db)
	ok := seedProduct(t, db, "Parfüm", "25.00", 10)
	pv := seedProduct(t, db, "Ruj", "8.50", 0)
	v := &models.Variant{ProductID: pv.ID, Name: "Ton 1", Stock: 5}
	require.NoError(t, inventory.CreateVariant(db, v))

	crt := cart.New()
	crt.Add(ok, nil, 1)
	crt.Add(pv, v, 2)

	require.NoError(t, inventory.DeleteVariant(db, v.ID))

	_, err := PlaceOrder(db, crt, u.ID, validForm(), nil)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)

	var reloaded models.Product
	require.NoError(t, db.First(&reloaded, ok.ID).Error)
	assert.Equal(t, 10, reloaded.Stock)
}

func TestPlaceOrderSequentialLastUnit(t *testing.T) {
	// Son adedi iki müşteri peş peşe almaya çalışır: biri alır, diğeri
	// stok hatası görür.
	db := newTestDB(t)
	u := seedUser(t, db)
	p := seedProduct(t, db, "Limitli Parfüm", "99.99", 1)

	first := cart.New()
	first.Add(p, nil, 1)
	_, err := PlaceOrder(db, first, u.ID, validForm(), nil)
	require.NoError(t, err)

	second := cart.New()
	second.Add(p, nil, 1)
	_, err = PlaceOrder(db, second, u.ID, validForm(), nil)

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 0, stockErr.Remaining)
}

func TestPlaceOrderNotifierFailureDoesNotFailOrder(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db)
	p := seedProduct(t, db, "Krem", "10.00", 5)

	crt := cart.New()
	crt.Add(p, nil, 1)

	notifier := &recordingNotifier{err: errors.New("smtp kapalı")}
	order, err := PlaceOrder(db, crt, u.ID, validForm(), notifier)
	require.NoError(t, err)
	require.NotNil(t, order)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
