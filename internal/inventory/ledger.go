package inventory

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"butik-backend/internal/models"
)

// InsufficientStockError: istenen adet, kilitli satırdan okunan canlı stoğu aşıyor.
// Kullanıcıya ürün adı ve kalan adetle birlikte gösterilir, asla sessizce kırpılmaz.
type InsufficientStockError struct {
	Name      string
	Remaining int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("'%s' için stok yetersiz, sadece %d adet kaldı", e.Name, e.Remaining)
}

// lockForUpdate: satır bazlı exclusive kilit. SQLite (testler) FOR UPDATE
// desteklemediği için kilit yalnızca postgres'te uygulanır.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// RecomputeProductStock: ürünün stoğunu varyant stoklarının toplamından yeniden
// hesaplar. Her varyant yazım yolundan, transaction commit edilmeden önce
// çağrılır; ORM hook'u yok, atlanması mümkün değil.
//
// Hiç varyant kalmadıysa (ör. sonuncusu silindi) ürün stoğu olduğu gibi
// bırakılır: "son bilinen değer" politikası.
func RecomputeProductStock(tx *gorm.DB, productID uint) error {
	var count int64
	if err := tx.Model(&models.Variant{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	var total int64
	if err := tx.Model(&models.Variant{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(stock), 0)").
		Scan(&total).Error; err != nil {
		return err
	}

	return tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", total).Error
}

// DeductProductStock: varyantsız ürünün stoğunu kilitleyip doğrular ve düşer.
// Checkout ve POS aynı yolu kullanır; aynı satır için eşzamanlı iki satıştan
// yalnızca biri son adedi alabilir.
func DeductProductStock(tx *gorm.DB, productID uint, qty int) error {
	var p models.Product
	if err := lockForUpdate(tx).First(&p, productID).Error; err != nil {
		return err
	}
	if qty > p.Stock {
		return &InsufficientStockError{Name: p.Name, Remaining: p.Stock}
	}
	return tx.Model(&models.Product{}).
		Where("id = ?", p.ID).
		UpdateColumn("stock", p.Stock-qty).Error
}

// DeductVariantStock: varyant stoğunu kilitleyip doğrular, düşer ve ana ürünün
// toplam stoğunu aynı transaction içinde yeniden hesaplar.
func DeductVariantStock(tx *gorm.DB, variantID uint, qty int) error {
	var v models.Variant
	if err := lockForUpdate(tx).First(&v, variantID).Error; err != nil {
		return err
	}

	var p models.Product
	if err := tx.First(&p, v.ProductID).Error; err != nil {
		return err
	}

	if qty > v.Stock {
		return &InsufficientStockError{
			Name:      fmt.Sprintf("%s (%s)", p.Name, v.Name),
			Remaining: v.Stock,
		}
	}

	if err := tx.Model(&models.Variant{}).
		Where("id = ?", v.ID).
		UpdateColumn("stock", v.Stock-qty).Error; err != nil {
		return err
	}

	return RecomputeProductStock(tx, v.ProductID)
}

// CreateVariant / UpdateVariant / DeleteVariant: varyant yazımının tek kapısı.
// Üçü de commit'ten önce ana ürün stoğunu yeniden hesaplar.

func CreateVariant(db *gorm.DB, v *models.Variant) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(v).Error; err != nil {
			return err
		}
		return RecomputeProductStock(tx, v.ProductID)
	})
}

func UpdateVariant(db *gorm.DB, v *models.Variant) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(v).Error; err != nil {
			return err
		}
		return RecomputeProductStock(tx, v.ProductID)
	})
}

func DeleteVariant(db *gorm.DB, variantID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var v models.Variant
		if err := tx.First(&v, variantID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Variant{}, "id = ?", variantID).Error; err != nil {
			return err
		}
		return RecomputeProductStock(tx, v.ProductID)
	})
}

// ApplyStockMovement: elle stok giriş/çıkışı. Varyantla takip edilen ürünlerde
// reddedilir; toplam stok varyantlardan türetildiği için doğrudan yazım
// invariant'ı bozar.
func ApplyStockMovement(db *gorm.DB, m *models.StockMovement) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Variant{}).Where("product_id = ?", m.ProductID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("varyantlı ürünün stoğu varyantlar üzerinden yönetilir")
		}

		var p models.Product
		if err := lockForUpdate(tx).First(&p, m.ProductID).Error; err != nil {
			return err
		}

		newStock := p.Stock
		switch m.Type {
		case models.MovementIn:
			newStock += int(m.Quantity)
		case models.MovementOut:
			if int(m.Quantity) > p.Stock {
				return &InsufficientStockError{Name: p.Name, Remaining: p.Stock}
			}
			newStock -= int(m.Quantity)
		default:
			return fmt.Errorf("geçersiz hareket tipi: %s", m.Type)
		}

		if err := tx.Model(&models.Product{}).
			Where("id = ?", p.ID).
			UpdateColumn("stock", newStock).Error; err != nil {
			return err
		}

		return tx.Create(m).Error
	})
}
