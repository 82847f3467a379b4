package models

import "time"

type MovementType string

const (
	MovementIn  MovementType = "in"
	MovementOut MovementType = "out"
)

// StockMovement: elle yapılan stok giriş/çıkış kaydı. Kayıt oluşturulurken
// ürün stoğuna aynı transaction içinde uygulanır (bkz. inventory paketi).
type StockMovement struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index;not null"`
	Product   *Product
	Quantity  uint         `gorm:"not null"`
	Type      MovementType `gorm:"size:10;not null"`
	CreatedAt time.Time
}
