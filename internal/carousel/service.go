package carousel

import (
	"fmt"
	"time"

	"carouselbot-api/internal/common"

	"go.uber.org/zap"
)

// InstallOrReplaceTimer rebuilds the config's timer to match its current
// state: an active config gets exactly one timer at its next send time, an
// inactive one gets none. Safe to call repeatedly.
func InstallOrReplaceTimer(timers TimerRepository, config *Config, now time.Time) error {
	if !config.IsActive {
		return timers.DeleteByName(config.TimerName())
	}
	return timers.ReplaceByName(config.TimerName(), config.ID, config.NextSendTime(now))
}

// RemoveConfigTimer removes the timer belonging to the config, if any
func RemoveConfigTimer(timers TimerRepository, configID uint) error {
	return timers.DeleteByName(TimerNameForConfig(configID))
}

// Service is the administrative lifecycle of carousel configs. Every save
// and delete runs its timer hook in the same transaction, so a committed
// config is always consistent with its timer.
type Service interface {
	CreateConfig(config *Config) error
	GetConfig(configID uint) (*Config, error)
	ListConfigs() ([]*Config, error)
	UpdateConfig(config *Config) error
	DeleteConfig(configID uint) error
}

// service implements the Service interface
type service struct {
	repository Repository
	registry   *Registry
	logger     *zap.Logger
	clock      common.Clock
}

// NewService creates a new carousel lifecycle service
func NewService(repository Repository, registry *Registry, logger *zap.Logger, clock common.Clock) Service {
	if clock == nil {
		clock = common.NewRealClock()
	}
	return &service{
		repository: repository,
		registry:   registry,
		logger:     logger,
		clock:      clock,
	}
}

// CreateConfig validates and persists a new config, probing its data
// fetcher once so a typo in the fetcher key fails the save instead of the
// first scheduled fire.
func (s *service) CreateConfig(config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := s.probeFetcher(config); err != nil {
		return err
	}

	err := s.repository.WithTransaction(func(tx Repository) error {
		if err := tx.Create(config); err != nil {
			return err
		}
		return InstallOrReplaceTimer(tx, config, s.clock.Now())
	})
	if err != nil {
		return err
	}

	s.logger.Info("Carousel config created with timer",
		zap.Uint("config_id", config.ID),
		zap.String("function_name", config.FunctionName))
	return nil
}

// GetConfig retrieves a config by ID
func (s *service) GetConfig(configID uint) (*Config, error) {
	return s.repository.GetByID(configID)
}

// ListConfigs retrieves all configs
func (s *service) ListConfigs() ([]*Config, error) {
	return s.repository.List()
}

// UpdateConfig validates and persists the administrator-supplied fields and
// rebuilds the timer. Runtime fields on the argument are ignored; the
// stored ones are preserved so an admin edit cannot reset the send history.
func (s *service) UpdateConfig(config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if err := s.probeFetcher(config); err != nil {
		return err
	}

	err := s.repository.WithTransaction(func(tx Repository) error {
		if err := tx.Update(config); err != nil {
			return err
		}

		stored, err := tx.GetByID(config.ID)
		if err != nil {
			return err
		}
		return InstallOrReplaceTimer(tx, stored, s.clock.Now())
	})
	if err != nil {
		return err
	}

	s.logger.Info("Carousel config updated with timer",
		zap.Uint("config_id", config.ID),
		zap.String("function_name", config.FunctionName))
	return nil
}

// DeleteConfig removes a config and its timer together
func (s *service) DeleteConfig(configID uint) error {
	err := s.repository.WithTransaction(func(tx Repository) error {
		if err := tx.Delete(configID); err != nil {
			return err
		}
		return RemoveConfigTimer(tx, configID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Carousel config deleted with timer", zap.Uint("config_id", configID))
	return nil
}

// probeFetcher verifies the config's fetcher key resolves and that the
// fetcher can produce the first page
func (s *service) probeFetcher(config *Config) error {
	fetcher, err := s.registry.Resolve(config.DataFetcher)
	if err != nil {
		return NewConfigValidationError("data_fetcher", config.DataFetcher,
			fmt.Sprintf("unknown fetcher key, registered keys: %v", s.registry.Keys()))
	}

	if _, _, err := fetcher(1, config.PageSize, config); err != nil {
		return NewConfigValidationError("data_fetcher", config.DataFetcher,
			fmt.Sprintf("fetcher probe failed: %v", err))
	}
	return nil
}
