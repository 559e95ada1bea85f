package database

import (
	"gorm.io/gorm"

	"mobilenest_back_end/internal/models"
)

// Migrate crée ou met à jour les tables relationnelles du cycle de commande.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Product{},
		&models.CartItem{},
		&models.Transaction{},
		&models.LineItem{},
		&models.ShippingRecord{},
	)
}
