package models

import "time"

type Brand struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	ImageURL  string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Category struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:100;not null;unique"`
	SubCategories []SubCategory
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SubCategory struct {
	ID         uint   `gorm:"primaryKey"`
	CategoryID uint   `gorm:"index;not null"`
	Name       string `gorm:"size:100;not null"`
	Types      []ProductType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ProductType: kategori ağacının en alt seviyesi (Kategori > Alt Kategori > Tip)
type ProductType struct {
	ID            uint   `gorm:"primaryKey"`
	SubCategoryID uint   `gorm:"index;not null"`
	Name          string `gorm:"size:100;not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
