package carousel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerName(t *testing.T) {
	config := &Config{ID: 42}
	assert.Equal(t, "carousel_function_42", config.TimerName())
	assert.Equal(t, config.TimerName(), TimerNameForConfig(42))
}

func TestNextSendTime(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("never sent uses grace period", func(t *testing.T) {
		config := &Config{Interval: 30}
		assert.Equal(t, now.Add(FirstRunGraceMinutes*time.Minute), config.NextSendTime(now))
	})

	t.Run("previously sent uses last send plus interval", func(t *testing.T) {
		lastSent := now.Add(-10 * time.Minute)
		config := &Config{Interval: 30, LastSentAt: &lastSent}
		assert.Equal(t, lastSent.Add(30*time.Minute), config.NextSendTime(now))
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Name:         "News digest",
			ChatID:       -1001234,
			Interval:     30,
			PageSize:     5,
			FunctionName: "news_digest",
			DataFetcher:  "static_message",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"minimum interval accepted", func(c *Config) { c.Interval = MinInterval }, false},
		{"empty name", func(c *Config) { c.Name = "" }, true},
		{"zero chat id", func(c *Config) { c.ChatID = 0 }, true},
		{"interval below minimum", func(c *Config) { c.Interval = MinInterval - 1 }, true},
		{"zero page size", func(c *Config) { c.PageSize = 0 }, true},
		{"empty function name", func(c *Config) { c.FunctionName = "" }, true},
		{"empty data fetcher", func(c *Config) { c.DataFetcher = "" }, true},
		{"valid extra buttons", func(c *Config) {
			c.ButtonsJSON = `{"inline_keyboard":[[{"text":"Open","url":"https://example.com"}]]}`
		}, false},
		{"corrupt extra buttons", func(c *Config) { c.ButtonsJSON = "{not json" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)
			err := config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				var validationErr *ConfigValidationError
				assert.ErrorAs(t, err, &validationErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodeCallbackData(t *testing.T) {
	assert.Equal(t, "news_digest_next_3", EncodeCallbackData("news_digest", ActionNext, 3))
	assert.Equal(t, "top_prev_1", EncodeCallbackData("top", ActionPrev, 1))
}

func TestParseCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected *CallbackData
		wantErr  bool
	}{
		{
			name:     "simple function name",
			data:     "top_next_2",
			expected: &CallbackData{FunctionName: "top", Action: ActionNext, Page: 2},
		},
		{
			name:     "function name with underscores",
			data:     "daily_news_digest_prev_7",
			expected: &CallbackData{FunctionName: "daily_news_digest", Action: ActionPrev, Page: 7},
		},
		{
			name:     "indicator action",
			data:     "top_indicator_1",
			expected: &CallbackData{FunctionName: "top", Action: ActionIndicator, Page: 1},
		},
		{name: "too few segments", data: "next_2", wantErr: true},
		{name: "non-numeric page", data: "top_next_abc", wantErr: true},
		{name: "unknown action", data: "top_jump_2", wantErr: true},
		{name: "empty data", data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseCallbackData(tt.data)
			if tt.wantErr {
				require.Error(t, err)
				var formatErr *CallbackFormatError
				assert.ErrorAs(t, err, &formatErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, parsed)
		})
	}
}

func TestCallbackDataRoundTrip(t *testing.T) {
	encoded := EncodeCallbackData("weekly_stats_report", ActionNext, 12)
	parsed, err := ParseCallbackData(encoded)
	require.NoError(t, err)
	assert.Equal(t, "weekly_stats_report", parsed.FunctionName)
	assert.Equal(t, ActionNext, parsed.Action)
	assert.Equal(t, 12, parsed.Page)
}
