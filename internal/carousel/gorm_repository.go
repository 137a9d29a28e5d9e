package carousel

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormRepository implements the Repository interface using GORM
type gormRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormRepository creates a new GORM-based carousel repository
func NewGormRepository(db *gorm.DB, logger *zap.Logger) Repository {
	return &gormRepository{
		db:     db,
		logger: logger,
	}
}

// Config operations

// Create creates a new carousel config
func (r *gormRepository) Create(config *Config) error {
	r.logger.Debug("Creating carousel config",
		zap.String("function_name", config.FunctionName),
		zap.Int64("chat_id", config.ChatID))

	if err := config.Validate(); err != nil {
		return err
	}

	now := time.Now()
	config.CreatedAt = now
	config.UpdatedAt = now

	if err := r.db.Create(config).Error; err != nil {
		return WrapPersistenceError(err, "create config")
	}

	r.logger.Info("Carousel config created",
		zap.Uint("config_id", config.ID),
		zap.String("function_name", config.FunctionName))
	return nil
}

// GetByID retrieves a config by its ID
func (r *gormRepository) GetByID(configID uint) (*Config, error) {
	var config Config
	err := r.db.Where("id = ?", configID).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, WrapPersistenceError(err, "get config by ID")
	}
	return &config, nil
}

// GetActiveByID retrieves a config by ID only if it is active
func (r *gormRepository) GetActiveByID(configID uint) (*Config, error) {
	var config Config
	err := r.db.Where("id = ? AND is_active = ?", configID, true).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, WrapPersistenceError(err, "get active config by ID")
	}
	return &config, nil
}

// GetActiveByFunctionName retrieves an active config by its function name
func (r *gormRepository) GetActiveByFunctionName(functionName string) (*Config, error) {
	var config Config
	err := r.db.Where("function_name = ? AND is_active = ?", functionName, true).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConfigNotFound
		}
		return nil, WrapPersistenceError(err, "get active config by function name")
	}
	return &config, nil
}

// List retrieves all configs
func (r *gormRepository) List() ([]*Config, error) {
	var configs []*Config
	if err := r.db.Order("id").Find(&configs).Error; err != nil {
		return nil, WrapPersistenceError(err, "list configs")
	}
	return configs, nil
}

// Update updates an existing config
func (r *gormRepository) Update(config *Config) error {
	r.logger.Debug("Updating carousel config", zap.Uint("config_id", config.ID))

	if err := config.Validate(); err != nil {
		return err
	}

	config.UpdatedAt = time.Now()

	result := r.db.Model(config).Where("id = ?", config.ID).Updates(map[string]interface{}{
		"name":            config.Name,
		"chat_id":         config.ChatID,
		"message_text":    config.MessageText,
		"interval":        config.Interval,
		"page_size":       config.PageSize,
		"delete_previous": config.DeletePrevious,
		"is_active":       config.IsActive,
		"is_pinned":       config.IsPinned,
		"function_name":   config.FunctionName,
		"data_fetcher":    config.DataFetcher,
		"buttons_json":    config.ButtonsJSON,
		"updated_at":      config.UpdatedAt,
	})
	if result.Error != nil {
		return WrapPersistenceError(result.Error, "update config")
	}
	if result.RowsAffected == 0 {
		return ErrConfigNotFound
	}

	r.logger.Info("Carousel config updated", zap.Uint("config_id", config.ID))
	return nil
}

// UpdateRuntimeState persists only the scheduler-owned runtime fields
func (r *gormRepository) UpdateRuntimeState(config *Config) error {
	result := r.db.Model(&Config{}).Where("id = ?", config.ID).Updates(map[string]interface{}{
		"last_message_id":  config.LastMessageID,
		"last_sent_at":     config.LastSentAt,
		"total_sent_count": config.TotalSentCount,
		"updated_at":       time.Now(),
	})
	if result.Error != nil {
		return WrapPersistenceError(result.Error, "update runtime state")
	}
	if result.RowsAffected == 0 {
		return ErrConfigNotFound
	}
	return nil
}

// Delete removes a config
func (r *gormRepository) Delete(configID uint) error {
	result := r.db.Delete(&Config{}, "id = ?", configID)
	if result.Error != nil {
		return WrapPersistenceError(result.Error, "delete config")
	}
	if result.RowsAffected == 0 {
		return ErrConfigNotFound
	}

	r.logger.Info("Carousel config deleted", zap.Uint("config_id", configID))
	return nil
}

// Timer operations

// ReplaceByName upserts the one-shot timer under its deterministic name.
// The unique index on name makes the last writer win under concurrent
// fires, which is the serialization point the scheduler relies on.
func (r *gormRepository) ReplaceByName(name string, configID uint, nextRun time.Time) error {
	now := time.Now()
	timer := Timer{
		Name:      name,
		ConfigID:  configID,
		NextRun:   nextRun,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"config_id":  configID,
			"next_run":   nextRun,
			"locked_at":  nil,
			"updated_at": now,
		}),
	}).Create(&timer).Error
	if err != nil {
		return WrapPersistenceError(err, "replace timer by name")
	}

	r.logger.Debug("Timer replaced",
		zap.String("timer_name", name),
		zap.Time("next_run", nextRun))
	return nil
}

// DeleteByName removes the timer with the given name, if any
func (r *gormRepository) DeleteByName(name string) error {
	if err := r.db.Delete(&Timer{}, "name = ?", name).Error; err != nil {
		return WrapPersistenceError(err, "delete timer by name")
	}
	return nil
}

// GetByName retrieves a timer by its deterministic name
func (r *gormRepository) GetByName(name string) (*Timer, error) {
	var timer Timer
	err := r.db.Where("name = ?", name).First(&timer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTimerNotFound
		}
		return nil, WrapPersistenceError(err, "get timer by name")
	}
	return &timer, nil
}

// ClaimDue atomically claims up to limit due timers. Claimed timers are
// deleted so a crashed worker cannot double-fire them; the fire path
// installs the replacement.
func (r *gormRepository) ClaimDue(now time.Time, limit int) ([]*Timer, error) {
	var claimed []*Timer

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var timers []*Timer
		err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("next_run <= ?", now).
			Order("next_run").
			Limit(limit).
			Find(&timers).Error
		if err != nil {
			return err
		}

		for _, timer := range timers {
			if err := tx.Delete(&Timer{}, "id = ?", timer.ID).Error; err != nil {
				return err
			}
		}

		claimed = timers
		return nil
	})

	if err != nil {
		return nil, WrapPersistenceError(err, "claim due timers")
	}

	return claimed, nil
}

// WithTransaction executes a function within a database transaction
func (r *gormRepository) WithTransaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &gormRepository{
			db:     tx,
			logger: r.logger,
		}
		return fn(txRepo)
	})
}
