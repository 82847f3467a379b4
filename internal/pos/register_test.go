package pos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"butik-backend/internal/database"
	"butik-backend/internal/inventory"
	"butik-backend/internal/models"
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

func seedAdmin(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	u := &models.User{Name: "Kasiyer", Email: "kasa@example.com", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedProduct(t *testing.T, db *gorm.DB, name, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestItemKey(t *testing.T) {
	vid := uint(3)
	assert.Equal(t, "prod_7", ItemKey(7, nil))
	assert.Equal(t, "var_3", ItemKey(7, &vid))
}

func TestAddAccumulatesAndReopensTill(t *testing.T) {
	r := New()
	r.TillClosed = true

	p := &models.Product{ID: 1, Name: "Parfüm", Price: decimal.RequireFromString("25.00")}
	require.NoError(t, r.Add(p, nil, 1, 10))
	require.NoError(t, r.Add(p, nil, 2, 10))

	assert.False(t, r.TillClosed)
	assert.Equal(t, 3, r.QuantityOf(1, nil))
	assert.True(t, r.Total().Equal(decimal.RequireFromString("75.00")))
}

func TestAddRejectsBeyondLiveStock(t *testing.T) {
	// Stok 3: ilk 2 adet girer, ikinci 2 adet (2+2 > 3) satıra dokunmadan
	// reddedilir.
	r := New()
	p := &models.Product{ID: 1, Name: "Serum", Price: decimal.RequireFromString("40.00")}

	require.NoError(t, r.Add(p, nil, 2, 3))

	err := r.Add(p, nil, 2, 3)
	var conflict *StockConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Serum", conflict.Name)
	assert.Equal(t, 2, conflict.Pending)
	assert.Equal(t, 3, conflict.Available)

	assert.Equal(t, 2, r.QuantityOf(1, nil))
	assert.Len(t, r.Items, 1)
}

func TestAddRejectsNewLineBeyondLiveStock(t *testing.T) {
	r := New()
	p := &models.Product{ID: 2, Name: "Ruj", Price: decimal.RequireFromString("8.00")}
	v := &models.Variant{ID: 5, ProductID: 2, Name: "Ton 5"}

	err := r.Add(p, v, 4, 3)
	var conflict *StockConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "Ruj (Ton 5)", conflict.Name)
	assert.Equal(t, 0, conflict.Pending)
	assert.True(t, r.IsEmpty())
}

func TestAddRejectionKeepsTillClosed(t *testing.T) {
	r := New()
	r.TillClosed = true

	p := &models.Product{ID: 1, Name: "Serum", Price: decimal.RequireFromString("40.00")}
	require.Error(t, r.Add(p, nil, 2, 1))

	// Yalnızca başarılı ekleme kasayı yeniden açar
	assert.True(t, r.TillClosed)
}

func TestQuantityOfSeparatesVariantsFromProduct(t *testing.T) {
	r := New()
	p := &models.Product{ID: 1, Name: "Ruj", Price: decimal.RequireFromString("8.00")}
	v := &models.Variant{ID: 4, ProductID: 1, Name: "Ton 4"}

	require.NoError(t, r.Add(p, v, 2, 10))
	require.NoError(t, r.Add(p, nil, 1, 10))

	vid := uint(4)
	assert.Equal(t, 2, r.QuantityOf(1, &vid))
	assert.Equal(t, 1, r.QuantityOf(1, nil))
	assert.Len(t, r.Items, 2)
}

func TestRemoveAndClear(t *testing.T) {
	r := New()
	p := &models.Product{ID: 1, Name: "Krem", Price: decimal.RequireFromString("5.00")}
	require.NoError(t, r.Add(p, nil, 2, 10))

	r.Remove("prod_1")
	assert.True(t, r.IsEmpty())

	require.NoError(t, r.Add(p, nil, 1, 10))
	r.Clear()
	assert.True(t, r.IsEmpty())
	assert.True(t, r.Total().IsZero())
}

func TestChargeEmptyRegister(t *testing.T) {
	db := newTestDB(t)
	u := seedAdmin(t, db)

	_, err := Charge(db, New(), u.ID)
	assert.ErrorIs(t, err, ErrEmptyRegister)
}

func TestChargeCreatesLocalSaleOrder(t *testing.T) {
	db := newTestDB(t)
	u := seedAdmin(t, db)
	p := seedProduct(t, db, "Parfüm", "25.00", 10)
	pv := seedProduct(t, db, "Ruj", "8.50", 0)
	v := &models.Variant{ProductID: pv.ID, Name: "Ton 2", Stock: 4}
	require.NoError(t, inventory.CreateVariant(db, v))

	r := New()
	require.NoError(t, r.Add(p, nil, 2, p.Stock))

	var vp models.Product
	require.NoError(t, db.Preload("Variants").First(&vp, pv.ID).Error)
	require.NoError(t, r.Add(&vp, &vp.Variants[0], 3, vp.Variants[0].Stock))

	order, err := Charge(db, r, u.ID)
	require.NoError(t, err)

	assert.Equal(t, models.POSAddress, order.Address)
	assert.Equal(t, models.PaymentCash, order.PaymentMethod)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.True(t, order.ShippingCost.IsZero())
	assert.True(t, order.Total.Equal(decimal.RequireFromString("75.50")))

	var lines []models.OrderLine
	require.NoError(t, db.Where("order_id = ?", order.ID).Order("product_id").Find(&lines).Error)
	require.Len(t, lines, 2)
	assert.Equal(t, "Ton 2", lines[1].Variant)

	// Stoklar kilitli yoldan düşüldü, ana ürün yeniden hesaplandı
	var reloadedP models.Product
	require.NoError(t, db.First(&reloadedP, p.ID).Error)
	assert.Equal(t, 8, reloadedP.Stock)

	var reloadedPV models.Product
	require.NoError(t, db.First(&reloadedPV, pv.ID).Error)
	assert.Equal(t, 1, reloadedPV.Stock)
}

func TestChargeRevalidatesStock(t *testing.T) {
	// Ekleme anında stok yeterliydi; tahsilattan önce başka bir satış stoğu
	// düşürdü. Tahsilat kilitli yeniden doğrulamada reddedilir ve hiçbir
	// değişiklik kalmaz.
	db := newTestDB(t)
	u := seedAdmin(t, db)
	p := seedProduct(t, db, "Serum", "40.00", 3)

	r := New()
	require.NoError(t, r.Add(p, nil, 3, p.Stock))

	// Araya giren satış
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", p.ID).
		UpdateColumn("stock", 2).Error)

	_, err := Charge(db, r, u.ID)

	var stockErr *inventory.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Serum", stockErr.Name)
	assert.Equal(t, 2, stockErr.Remaining)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
}
