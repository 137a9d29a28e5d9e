package carousel

import (
	"fmt"

	"gorm.io/gorm"
)

// RunMigrations performs auto-migration for all carousel-related tables
func RunMigrations(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Config{},
		&Timer{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate carousel tables: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// createIndexes creates performance indexes for carousel tables
func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_carousel_configs_chat_id ON carousel_configs(chat_id)",
		"CREATE INDEX IF NOT EXISTS idx_carousel_configs_is_active ON carousel_configs(is_active)",
		"CREATE INDEX IF NOT EXISTS idx_carousel_timers_config_id ON carousel_timers(config_id)",
		"CREATE INDEX IF NOT EXISTS idx_carousel_timers_next_run ON carousel_timers(next_run)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			return fmt.Errorf("failed to create carousel index: %w", err)
		}
	}

	return nil
}

// DropTables drops all carousel-related tables (for testing cleanup)
func DropTables(db *gorm.DB) error {
	tables := []string{
		"carousel_timers",
		"carousel_configs",
	}

	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}

	return nil
}
