package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShippingConfig: tek satırlık sistem ayarı. Teklik, unique constraint ile
// değil get-or-create-first semantiğiyle korunur (bkz. reports/config handler).
type ShippingConfig struct {
	ID           uint            `gorm:"primaryKey"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
