package repositories

import "gorm.io/gorm"

// Migrate creates or updates every table owned by this package
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&DBUser{}, &DBCategory{}, &DBExpense{}, &DBIncome{})
}
