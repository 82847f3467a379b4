package models

import "time"

type Favorite struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex:idx_fav_user_product;not null"`
	ProductID uint `gorm:"uniqueIndex:idx_fav_user_product;not null"`
	Product   *Product
	CreatedAt time.Time
}
