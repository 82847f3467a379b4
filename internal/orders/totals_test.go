package orders

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

func seedOrderWithLines(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()

	u := &models.User{Name: "Müşteri", Email: "m@example.com", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, db.Create(u).Error)

	p := &models.Product{Name: "Ürün", Price: decimal.RequireFromString("10.00"), Stock: 100}
	require.NoError(t, db.Create(p).Error)

	order := &models.Order{
		Reference:     "test-ref-1",
		UserID:        u.ID,
		Status:        models.OrderPending,
		PaymentMethod: models.PaymentTransfer,
		ShippingCost:  decimal.RequireFromString("5.00"),
		Total:         decimal.RequireFromString("35.00"),
	}
	require.NoError(t, db.Create(order).Error)

	lines := []models.OrderLine{
		{OrderID: order.ID, ProductID: p.ID, Quantity: 2, UnitPrice: decimal.RequireFromString("10.00")}, // 20.00
		{OrderID: order.ID, ProductID: p.ID, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")}, // 10.00
	}
	require.NoError(t, db.Create(&lines).Error)
	return order
}

func orderTotal(t *testing.T, db *gorm.DB, id uint) decimal.Decimal {
	t.Helper()
	var o models.Order
	require.NoError(t, db.First(&o, id).Error)
	return o.Total
}

func TestShippingCostFallsBackWithoutCreating(t *testing.T) {
	db := newTestDB(t)

	cost := ShippingCost(db)
	assert.True(t, cost.Equal(DefaultShippingCost))

	var count int64
	require.NoError(t, db.Model(&models.ShippingConfig{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestShippingCostReadsConfiguredRow(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.ShippingConfig{
		ShippingCost: decimal.RequireFromString("7.50"),
	}).Error)

	assert.True(t, ShippingCost(db).Equal(decimal.RequireFromString("7.50")))
}

func TestRecalcTotalAfterLineDelete(t *testing.T) {
	db := newTestDB(t)
	order := seedOrderWithLines(t, db)

	var line models.OrderLine
	require.NoError(t, db.Where("order_id = ? AND quantity = ?", order.ID, 2).First(&line).Error)
	require.NoError(t, db.Delete(&line).Error)

	require.NoError(t, RecalcTotal(db, order.ID))
	// Kalan satır 10.00 + kargo 5.00
	assert.True(t, orderTotal(t, db, order.ID).Equal(decimal.RequireFromString("15.00")))
}

func TestRecalcTotalIdempotent(t *testing.T) {
	db := newTestDB(t)
	order := seedOrderWithLines(t, db)

	require.NoError(t, RecalcTotal(db, order.ID))
	first := orderTotal(t, db, order.ID)

	require.NoError(t, RecalcTotal(db, order.ID))
	second := orderTotal(t, db, order.ID)

	assert.True(t, first.Equal(second))
	assert.True(t, first.Equal(decimal.RequireFromString("35.00")))
}

func TestRecalcTotalNoLinesLeavesShippingOnly(t *testing.T) {
	db := newTestDB(t)
	order := seedOrderWithLines(t, db)

	require.NoError(t, db.Where("order_id = ?", order.ID).Delete(&models.OrderLine{}).Error)
	require.NoError(t, RecalcTotal(db, order.ID))

	assert.True(t, orderTotal(t, db, order.ID).Equal(decimal.RequireFromString("5.00")))
}
