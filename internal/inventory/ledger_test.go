package inventory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"butik-backend/internal/database"
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

func seedProduct(t *testing.T, db *gorm.DB, name string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:  name,
		Price: decimal.RequireFromString("10.00"),
		Stock: stock,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedVariant(t *testing.T, db *gorm.DB, productID uint, name string, stock int) *models.Variant {
	t.Helper()
	v := &models.Variant{ProductID: productID, Name: name, Stock: stock}
	require.NoError(t, CreateVariant(db, v))
	return v
}

func productStock(t *testing.T, db *gorm.DB, id uint) int {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func TestCreateVariantRecomputesParentStock(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, "Ruj", 50) // elle girilmiş değer

	seedVariant(t, db, p.ID, "Ton 1", 4)
	assert.Equal(t, 4, productStock(t, db, p.ID))

	seedVariant(t, db, p.ID, "Ton 2", 6)
	assert.Equal(t, 10, productStock(t, db, p.ID))
}

func TestUpdateVariantRecomputesParentStock(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, "Ruj", 0)
	v := seedVariant(t, db, p.ID, "Ton 1", 4)
	seedVariant(t, db, p.ID, "Ton 2", 6)

	v.Stock = 9
	require.NoError(t, UpdateVariant(db, v))
	assert.Equal(t, 15, productStock(t, db, p.ID))
}

func TestDeleteVariantRecomputesFromSurvivors(t *testing.T) {
	// İki varyantlı üründe (4+6=10) stok 6 olan varyant silinince toplam
	// hemen 4'e iner; bekletilmiş eski değer kalmaz.
	db := newTestDB(t)
	p := seedProduct(t, db, "Ruj", 0)
	seedVariant(t, db, p.ID, "Ton 1", 4)
	v2 := seedVariant(t, db, p.ID, "Ton 2", 6)
	require.Equal(t, 10, productStock(t, db, p.ID))

	require.NoError(t, DeleteVariant(db, v2.ID))
	assert.Equal(t, 4, productStock(t, db, p.ID))
}

func TestDeleteLastVariantKeepsLastKnownStock(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, "Ruj", 0)
	v := seedVariant(t, db, p.ID, "Tek Ton", 7)
	require.Equal(t, 7, productStock(t, db, p.ID))

	require.NoError(t, DeleteVariant(db, v.ID))
	// Hiç varyant kalmadı: ürün stoğu son bilinen değerde bırakılır
	assert.Equal(t, 7, productStock(t, db, p.ID))
}

func TestDeductProductStock(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, "Parfüm", 5)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return DeductProductStock(tx, p.ID, 3)
	}))
	assert.Equal(t, 2, productStock(t, db, p.ID))
}

func TestDeductProductStockInsufficient(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, "Parfüm", 2)

	err := db.Transaction(func(tx *gorm.DB) error {
		return DeductProductStock(tx, p.ID, 3)
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Parfüm", stockErr.Name)
	assert.Equal(t, 2, stockErr.Remaining)

	// Başarısız düşüm stoğu değiştirmez
	assert.Equal(t, 2, productStock(t, db, p.ID))
}

func TestDeductVariantStockRecomputesParent(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, "Ruj", 0)
	v1 := seedVariant(t, db, p.ID, "Ton 1", 4)
	seedVariant(t, db, p.ID, "Ton 2", 6)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return DeductVariantStock(tx, v1.ID, 3)
	}))

	var reloaded models.Variant
	require.NoError(t, db.First(&reloaded, v1.ID).Error)
	assert.Equal(t, 1, reloaded.Stock)
	assert.Equal(t, 7, productStock(t, db, p.ID))
}

func TestDeductVariantStockInsufficientNamesVariant(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, "Ruj", 0)
	v := seedVariant(t, db, p.ID, "Ton 1", 1)

	err := db.Transaction(func(tx *gorm.DB) error {
		return DeductVariantStock(tx, v.ID, 2)
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Ruj (Ton 1)", stockErr.Name)
	assert.Equal(t, 1, stockErr.Remaining)
}

func TestApplyStockMovementInAndOut(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, "Krem", 10)

	in := &models.StockMovement{ProductID: p.ID, Quantity: 5, Type: models.MovementIn}
	require.NoError(t, ApplyStockMovement(db, in))
	assert.Equal(t, 15, productStock(t, db, p.ID))

	out := &models.StockMovement{ProductID: p.ID, Quantity: 4, Type: models.MovementOut}
	require.NoError(t, ApplyStockMovement(db, out))
	assert.Equal(t, 11, productStock(t, db, p.ID))

	var count int64
	require.NoError(t, db.Model(&models.StockMovement{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestApplyStockMovementOutInsufficient(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, "Krem", 3)

	out := &models.StockMovement{ProductID: p.ID, Quantity: 5, Type: models.MovementOut}
	err := ApplyStockMovement(db, out)

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 3, productStock(t, db, p.ID))

	// Hareket kaydı da yazılmamış olmalı
	var count int64
	require.NoError(t, db.Model(&models.StockMovement{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyStockMovementRejectedOnVariantTrackedProduct(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, "Ruj", 0)
	seedVariant(t, db, p.ID, "Ton 1", 5)

	in := &models.StockMovement{ProductID: p.ID, Quantity: 3, Type: models.MovementIn}
	err := ApplyStockMovement(db, in)
	require.Error(t, err)
	assert.Equal(t, 5, productStock(t, db, p.ID))
}
