package carousel

import (
	"sort"
	"sync"
	"time"
)

// MockRepository provides an in-memory Repository implementation for testing
type MockRepository struct {
	mu sync.Mutex

	configs map[uint]*Config
	timers  map[string]*Timer

	nextConfigID uint
	nextTimerID  uint

	createError  error
	getError     error
	updateError  error
	deleteError  error
	replaceError error
	claimError   error
}

// NewMockRepository creates a new mock repository
func NewMockRepository() *MockRepository {
	return &MockRepository{
		configs:      make(map[uint]*Config),
		timers:       make(map[string]*Timer),
		nextConfigID: 1,
		nextTimerID:  1,
	}
}

// Config repository methods

func (m *MockRepository) Create(config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createError != nil {
		return m.createError
	}
	if err := config.Validate(); err != nil {
		return err
	}

	config.ID = m.nextConfigID
	m.nextConfigID++
	now := time.Now()
	config.CreatedAt = now
	config.UpdatedAt = now

	copied := *config
	m.configs[config.ID] = &copied
	return nil
}

func (m *MockRepository) GetByID(configID uint) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getError != nil {
		return nil, m.getError
	}
	config, exists := m.configs[configID]
	if !exists {
		return nil, ErrConfigNotFound
	}
	copied := *config
	return &copied, nil
}

func (m *MockRepository) GetActiveByID(configID uint) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getError != nil {
		return nil, m.getError
	}
	config, exists := m.configs[configID]
	if !exists || !config.IsActive {
		return nil, ErrConfigNotFound
	}
	copied := *config
	return &copied, nil
}

func (m *MockRepository) GetActiveByFunctionName(functionName string) (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getError != nil {
		return nil, m.getError
	}
	for _, config := range m.configs {
		if config.FunctionName == functionName && config.IsActive {
			copied := *config
			return &copied, nil
		}
	}
	return nil, ErrConfigNotFound
}

func (m *MockRepository) List() ([]*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getError != nil {
		return nil, m.getError
	}

	ids := make([]uint, 0, len(m.configs))
	for id := range m.configs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	configs := make([]*Config, 0, len(ids))
	for _, id := range ids {
		copied := *m.configs[id]
		configs = append(configs, &copied)
	}
	return configs, nil
}

func (m *MockRepository) Update(config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateError != nil {
		return m.updateError
	}
	if err := config.Validate(); err != nil {
		return err
	}
	stored, exists := m.configs[config.ID]
	if !exists {
		return ErrConfigNotFound
	}

	stored.Name = config.Name
	stored.ChatID = config.ChatID
	stored.MessageText = config.MessageText
	stored.Interval = config.Interval
	stored.PageSize = config.PageSize
	stored.DeletePrevious = config.DeletePrevious
	stored.IsActive = config.IsActive
	stored.IsPinned = config.IsPinned
	stored.FunctionName = config.FunctionName
	stored.DataFetcher = config.DataFetcher
	stored.ButtonsJSON = config.ButtonsJSON
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *MockRepository) UpdateRuntimeState(config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateError != nil {
		return m.updateError
	}
	stored, exists := m.configs[config.ID]
	if !exists {
		return ErrConfigNotFound
	}

	stored.LastMessageID = config.LastMessageID
	stored.LastSentAt = config.LastSentAt
	stored.TotalSentCount = config.TotalSentCount
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *MockRepository) Delete(configID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteError != nil {
		return m.deleteError
	}
	if _, exists := m.configs[configID]; !exists {
		return ErrConfigNotFound
	}
	delete(m.configs, configID)
	return nil
}

// Timer repository methods

func (m *MockRepository) ReplaceByName(name string, configID uint, nextRun time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.replaceError != nil {
		return m.replaceError
	}

	now := time.Now()
	if existing, exists := m.timers[name]; exists {
		existing.ConfigID = configID
		existing.NextRun = nextRun
		existing.LockedAt = nil
		existing.UpdatedAt = now
		return nil
	}

	m.timers[name] = &Timer{
		ID:        m.nextTimerID,
		Name:      name,
		ConfigID:  configID,
		NextRun:   nextRun,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.nextTimerID++
	return nil
}

func (m *MockRepository) DeleteByName(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteError != nil {
		return m.deleteError
	}
	delete(m.timers, name)
	return nil
}

func (m *MockRepository) GetByName(name string) (*Timer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getError != nil {
		return nil, m.getError
	}
	timer, exists := m.timers[name]
	if !exists {
		return nil, ErrTimerNotFound
	}
	copied := *timer
	return &copied, nil
}

func (m *MockRepository) ClaimDue(now time.Time, limit int) ([]*Timer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.claimError != nil {
		return nil, m.claimError
	}

	var due []*Timer
	for _, timer := range m.timers {
		if !timer.NextRun.After(now) {
			due = append(due, timer)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].NextRun.Before(due[j].NextRun) })
	if len(due) > limit {
		due = due[:limit]
	}

	claimed := make([]*Timer, 0, len(due))
	for _, timer := range due {
		delete(m.timers, timer.Name)
		copied := *timer
		claimed = append(claimed, &copied)
	}
	return claimed, nil
}

func (m *MockRepository) WithTransaction(fn func(Repository) error) error {
	return fn(m)
}

// Test helpers

// SetCreateError configures the mock to return an error on create operations
func (m *MockRepository) SetCreateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createError = err
}

// SetReplaceError configures the mock to return an error on timer upserts
func (m *MockRepository) SetReplaceError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaceError = err
}

// SetClaimError configures the mock to return an error on timer claims
func (m *MockRepository) SetClaimError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claimError = err
}

// TimerCount returns the number of stored timers
func (m *MockRepository) TimerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
