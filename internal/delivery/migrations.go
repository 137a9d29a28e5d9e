package delivery

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations performs auto-migration for the delivery job table
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&DeliveryJob{}); err != nil {
		return fmt.Errorf("failed to auto-migrate delivery tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates performance indexes for the delivery job table
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_delivery_jobs_status ON delivery_jobs(status)",
		"CREATE INDEX IF NOT EXISTS idx_delivery_jobs_next_attempt_at ON delivery_jobs(next_attempt_at)",
		"CREATE INDEX IF NOT EXISTS idx_delivery_jobs_status_next_attempt ON delivery_jobs(status, next_attempt_at)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create delivery index: %w", err)
		}
	}

	return nil
}

// DropTables drops all delivery-related tables (for testing cleanup)
func DropTables(db *gorm.DB) error {
	if err := db.Exec("DROP TABLE IF EXISTS delivery_jobs CASCADE").Error; err != nil {
		return fmt.Errorf("failed to drop table delivery_jobs: %w", err)
	}
	return nil
}
