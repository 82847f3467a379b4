package database

import (
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"butik-backend/internal/config"
	"butik-backend/internal/models"
)

var DB *gorm.DB

func Init(cfg *config.Config) {
	var err error

	DB, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Veritabanına bağlanılamadı: %v", err)
	}

	if err := Migrate(DB); err != nil {
		logrus.Fatalf("AutoMigrate hatası: %v", err)
	}

	logrus.Info("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
}

// Migrate tüm modelleri migrate eder. Testler aynı şemayı sqlite üzerinde kurar.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Brand{},
		&models.Category{},
		&models.SubCategory{},
		&models.ProductType{},
		&models.Product{},
		&models.Variant{},
		&models.StockMovement{},
		&models.ShippingConfig{},
		&models.Order{},
		&models.OrderLine{},
		&models.Favorite{},
		&models.Expense{},
		&models.AuditLog{},
	)
}
