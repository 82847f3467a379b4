package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Expense struct {
	ID          uint            `gorm:"primaryKey"`
	Description string          `gorm:"size:200;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Date        time.Time       `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
