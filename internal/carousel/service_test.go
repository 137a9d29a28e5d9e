package carousel

import (
	"errors"
	"testing"
	"time"

	"carouselbot-api/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type serviceFixture struct {
	service Service
	repo    *MockRepository
	clock   *common.MockClock
}

func newServiceFixture(t *testing.T) *serviceFixture {
	repo := NewMockRepository()
	clock := common.NewMockClock(time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC))

	registry := NewRegistry()
	require.NoError(t, registry.Register("list", listFetcher(makeItems(12))))

	return &serviceFixture{
		service: NewService(repo, registry, zaptest.NewLogger(t), clock),
		repo:    repo,
		clock:   clock,
	}
}

func validConfig() *Config {
	return &Config{
		Name:         "News digest",
		ChatID:       -1001234,
		Interval:     30,
		PageSize:     5,
		IsActive:     true,
		FunctionName: "news_digest",
		DataFetcher:  "list",
	}
}

func TestService_CreateConfig_InstallsTimer(t *testing.T) {
	f := newServiceFixture(t)
	config := validConfig()

	require.NoError(t, f.service.CreateConfig(config))
	assert.NotZero(t, config.ID)

	timer, err := f.repo.GetByName(config.TimerName())
	require.NoError(t, err)
	assert.Equal(t, config.ID, timer.ConfigID)
	// Never-sent config fires after the first-run grace period
	assert.Equal(t, f.clock.Now().Add(FirstRunGraceMinutes*time.Minute), timer.NextRun)
}

func TestService_CreateConfig_InactiveGetsNoTimer(t *testing.T) {
	f := newServiceFixture(t)
	config := validConfig()
	config.IsActive = false

	require.NoError(t, f.service.CreateConfig(config))
	assert.Equal(t, 0, f.repo.TimerCount())
}

func TestService_CreateConfig_ValidationFailures(t *testing.T) {
	f := newServiceFixture(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"interval below minimum", func(c *Config) { c.Interval = 4 }},
		{"unknown fetcher key", func(c *Config) { c.DataFetcher = "nope" }},
		{"empty function name", func(c *Config) { c.FunctionName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			err := f.service.CreateConfig(config)
			require.Error(t, err)
			var validationErr *ConfigValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Equal(t, 0, f.repo.TimerCount())
		})
	}
}

func TestService_CreateConfig_FetcherProbeFailure(t *testing.T) {
	repo := NewMockRepository()
	registry := NewRegistry()
	require.NoError(t, registry.Register("broken", func(page, pageSize int, config *Config) (string, int, error) {
		return "", 0, errors.New("source misconfigured")
	}))
	service := NewService(repo, registry, zaptest.NewLogger(t), nil)

	config := validConfig()
	config.DataFetcher = "broken"

	err := service.CreateConfig(config)
	require.Error(t, err)
	var validationErr *ConfigValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestService_CreateConfig_TimerFailureRollsBack(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.SetReplaceError(errors.New("db down"))

	err := f.service.CreateConfig(validConfig())
	assert.Error(t, err)
}

func TestService_UpdateConfig_ReschedulesFromLastSend(t *testing.T) {
	f := newServiceFixture(t)
	config := validConfig()
	require.NoError(t, f.service.CreateConfig(config))

	// Simulate a completed fire
	lastSent := f.clock.Now().Add(-5 * time.Minute)
	messageID := 10
	config.LastMessageID = &messageID
	config.LastSentAt = &lastSent
	config.TotalSentCount = 1
	require.NoError(t, f.repo.UpdateRuntimeState(config))

	config.Interval = 60
	require.NoError(t, f.service.UpdateConfig(config))

	timer, err := f.repo.GetByName(config.TimerName())
	require.NoError(t, err)
	assert.Equal(t, lastSent.Add(60*time.Minute), timer.NextRun)
}

func TestService_UpdateConfig_DeactivationRemovesTimer(t *testing.T) {
	f := newServiceFixture(t)
	config := validConfig()
	require.NoError(t, f.service.CreateConfig(config))
	require.Equal(t, 1, f.repo.TimerCount())

	config.IsActive = false
	require.NoError(t, f.service.UpdateConfig(config))

	assert.Equal(t, 0, f.repo.TimerCount())
}

func TestService_UpdateConfig_PreservesRuntimeState(t *testing.T) {
	f := newServiceFixture(t)
	config := validConfig()
	require.NoError(t, f.service.CreateConfig(config))

	lastSent := f.clock.Now().Add(-5 * time.Minute)
	messageID := 10
	stored, err := f.repo.GetByID(config.ID)
	require.NoError(t, err)
	stored.LastMessageID = &messageID
	stored.LastSentAt = &lastSent
	stored.TotalSentCount = 7
	require.NoError(t, f.repo.UpdateRuntimeState(stored))

	// Admin update sends only admin fields; runtime fields zeroed on the DTO
	update := validConfig()
	update.ID = config.ID
	update.Name = "Renamed digest"
	require.NoError(t, f.service.UpdateConfig(update))

	after, err := f.repo.GetByID(config.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed digest", after.Name)
	assert.Equal(t, 7, after.TotalSentCount)
	require.NotNil(t, after.LastSentAt)
	assert.Equal(t, lastSent, *after.LastSentAt)
}

func TestService_UpdateConfig_NotFound(t *testing.T) {
	f := newServiceFixture(t)
	config := validConfig()
	config.ID = 999

	err := f.service.UpdateConfig(config)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestService_DeleteConfig_RemovesTimer(t *testing.T) {
	f := newServiceFixture(t)
	config := validConfig()
	require.NoError(t, f.service.CreateConfig(config))
	require.Equal(t, 1, f.repo.TimerCount())

	require.NoError(t, f.service.DeleteConfig(config.ID))

	assert.Equal(t, 0, f.repo.TimerCount())
	_, err := f.repo.GetByID(config.ID)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestService_DeleteConfig_NotFound(t *testing.T) {
	f := newServiceFixture(t)
	err := f.service.DeleteConfig(999)
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestInstallOrReplaceTimer_Idempotent(t *testing.T) {
	repo := NewMockRepository()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	config := validConfig()
	require.NoError(t, repo.Create(config))

	require.NoError(t, InstallOrReplaceTimer(repo, config, now))
	require.NoError(t, InstallOrReplaceTimer(repo, config, now.Add(time.Hour)))

	assert.Equal(t, 1, repo.TimerCount())
	timer, err := repo.GetByName(config.TimerName())
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour).Add(FirstRunGraceMinutes*time.Minute), timer.NextRun)
}
