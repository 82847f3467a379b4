package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID      uint  `gorm:"primaryKey"`
	BrandID *uint `gorm:"index"`
	Brand   *Brand
	TypeID  *uint `gorm:"index"`
	Type    *ProductType
	Name    string          `gorm:"size:200;not null"`
	Price   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// Stock: varyantı olmayan ürünlerde doğrudan düşülür; varyantlı ürünlerde
	// her varyant yazımında varyant stoklarının toplamından yeniden hesaplanır.
	Stock       int    `gorm:"not null;default:0"`
	StockMin    int    `gorm:"not null;default:5"` // düşük stok uyarı eşiği
	ImageURL    string `gorm:"size:255"`
	Description string `gorm:"type:text"`
	Active      bool   `gorm:"not null;default:true"`
	Variants    []Variant
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Variant: bir ürünün satılabilir alt seçeneği (ör. ton/renk), kendi stoğuyla.
type Variant struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"index;not null"`
	Product   *Product
	Name      string `gorm:"size:50;not null"`
	Stock     int    `gorm:"not null;default:0"`
	ImageURL  string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
