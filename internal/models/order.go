package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderEnRoute   OrderStatus = "EN_ROUTE"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderArchived  OrderStatus = "ARCHIVED" // teslim edilmiş siparişin arşiv hali
)

const (
	PaymentTransfer = "transfer"
	PaymentCash     = "cash"
)

// POSAddress: kasadan yapılan yerel satışları işaretleyen sabit adres değeri.
const POSAddress = "🏪 Mağaza Satışı"

type Order struct {
	ID        uint   `gorm:"primaryKey"`
	Reference string `gorm:"size:36;uniqueIndex;not null"` // müşteriye gösterilen takip kodu
	UserID    uint   `gorm:"index;not null"`
	User      *User
	Status    OrderStatus `gorm:"size:20;not null;default:'PENDING'"`

	// Teslimat bilgileri (checkout formundan)
	RecipientName string `gorm:"size:200"`
	IDNumber      string `gorm:"size:20"`
	Phone         string `gorm:"size:20"`
	Province      string `gorm:"size:100"`
	Canton        string `gorm:"size:100"`
	Address       string `gorm:"type:text"` // sokak/mahalle/referans tek blok halinde
	Notes         string `gorm:"type:text"`
	MapLink       string `gorm:"type:text"`

	PaymentMethod string          `gorm:"size:50;not null;default:'transfer'"`
	ShippingCost  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	// Total türetilmiş ama kalıcı bir alan: satır mutasyonlarından sonra
	// orders.RecalcTotal ile güncel tutulur, okuma anında hesaplanmaz.
	Total decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	Lines     []OrderLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderLine struct {
	ID        uint `gorm:"primaryKey"`
	OrderID   uint `gorm:"index;not null"`
	ProductID uint `gorm:"index;not null"`
	Product   *Product
	// Variant: sipariş anında dondurulmuş varyant etiketi. Bilerek foreign key
	// değil; varyant sonradan silinse bile sipariş satırı aynı kalır.
	Variant   string          `gorm:"size:100"`
	Quantity  int             `gorm:"not null;default:1"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time
}

// Subtotal her zaman hesaplanır, asla kolon olarak saklanmaz.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))).Round(2)
}
