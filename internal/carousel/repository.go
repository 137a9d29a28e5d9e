package carousel

import (
	"time"
)

// ConfigRepository defines the interface for carousel config persistence
type ConfigRepository interface {
	Create(config *Config) error
	GetByID(configID uint) (*Config, error)
	GetActiveByID(configID uint) (*Config, error)
	GetActiveByFunctionName(functionName string) (*Config, error)
	List() ([]*Config, error)
	Update(config *Config) error
	// UpdateRuntimeState persists only the scheduler-owned runtime fields
	// (last_message_id, last_sent_at, total_sent_count)
	UpdateRuntimeState(config *Config) error
	Delete(configID uint) error
}

// TimerRepository defines the interface for persisted one-shot timers.
// ReplaceByName must be an upsert keyed by the timer name: it is the
// serialization point that makes concurrent fires last-writer-wins safe.
// ClaimDue must provide at-most-once dequeue semantics.
type TimerRepository interface {
	ReplaceByName(name string, configID uint, nextRun time.Time) error
	DeleteByName(name string) error
	GetByName(name string) (*Timer, error)
	ClaimDue(now time.Time, limit int) ([]*Timer, error)
}

// Repository combines config and timer persistence with transaction support.
// Lifecycle hooks use WithTransaction so a config save and its timer rebuild
// commit or roll back together.
type Repository interface {
	ConfigRepository
	TimerRepository
	WithTransaction(fn func(Repository) error) error
}
