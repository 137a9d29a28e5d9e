package carousel

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"carouselbot-api/internal/chatbot"
)

// Default scheduling constants, in minutes
const (
	// MinInterval is the smallest allowed broadcast interval
	MinInterval = 5
	// FirstRunGraceMinutes delays the first fire of a never-sent config so
	// it does not race the save transaction
	FirstRunGraceMinutes = 1
	// RetryDelayMinutes is the fixed backoff applied after a failed fire.
	// Deliberately not exponential and without a retry cutoff.
	RetryDelayMinutes = 10
)

// Config is one recurring broadcast definition. Runtime fields
// (LastMessageID, LastSentAt, TotalSentCount) are written only by the
// scheduler's fire path; the pager and lifecycle hooks never touch them.
type Config struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null;type:varchar(100)" json:"name"`
	ChatID      int64  `gorm:"not null" json:"chat_id"`
	MessageText string `gorm:"type:text" json:"message_text"`

	Interval       int  `gorm:"not null;default:30" json:"interval"`
	PageSize       int  `gorm:"not null;default:5" json:"page_size"`
	DeletePrevious bool `gorm:"not null;default:false" json:"delete_previous"`
	IsActive       bool `gorm:"not null;default:true" json:"is_active"`
	IsPinned       bool `gorm:"not null;default:false" json:"is_pinned"`

	LastMessageID  *int       `json:"last_message_id"`
	LastSentAt     *time.Time `json:"last_sent_at"`
	TotalSentCount int        `gorm:"not null;default:0" json:"total_sent_count"`

	// FunctionName is both the render-source lookup key and the
	// callback-data namespace for the pagination buttons
	FunctionName string `gorm:"not null;uniqueIndex;type:varchar(50)" json:"function_name"`
	// DataFetcher is the registry key of the content source
	DataFetcher string `gorm:"not null;type:varchar(200)" json:"data_fetcher"`
	// ButtonsJSON optionally holds static keyboard rows, serialized as a
	// chatbot.InlineKeyboard and appended below the navigation row
	ButtonsJSON string `gorm:"type:text" json:"buttons_json"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default GORM table name
func (Config) TableName() string {
	return "carousel_configs"
}

// TimerName derives the deterministic timer name for this config. Name
// uniqueness is what enforces at-most-one-timer-per-config.
func (c *Config) TimerName() string {
	return TimerNameForConfig(c.ID)
}

// TimerNameForConfig derives the deterministic timer name for a config id
func TimerNameForConfig(configID uint) string {
	return fmt.Sprintf("carousel_function_%d", configID)
}

// NextSendTime computes when this config should fire next: one interval
// after the last send, or a short grace period for a never-sent config.
func (c *Config) NextSendTime(now time.Time) time.Time {
	if c.LastSentAt != nil {
		return c.LastSentAt.Add(time.Duration(c.Interval) * time.Minute)
	}
	return now.Add(FirstRunGraceMinutes * time.Minute)
}

// Validate checks the administrator-supplied fields
func (c *Config) Validate() error {
	if c.Name == "" {
		return NewConfigValidationError("name", c.Name, "must not be empty")
	}
	if c.ChatID == 0 {
		return NewConfigValidationError("chat_id", c.ChatID, "must not be zero")
	}
	if c.Interval < MinInterval {
		return NewConfigValidationError("interval", c.Interval, fmt.Sprintf("must be at least %d minutes", MinInterval))
	}
	if c.PageSize <= 0 {
		return NewConfigValidationError("page_size", c.PageSize, "must be greater than 0")
	}
	if c.FunctionName == "" {
		return NewConfigValidationError("function_name", c.FunctionName, "must not be empty")
	}
	if c.DataFetcher == "" {
		return NewConfigValidationError("data_fetcher", c.DataFetcher, "must not be empty")
	}
	if _, err := c.ExtraKeyboard(); err != nil {
		return NewConfigValidationError("buttons_json", c.ButtonsJSON, "must be a valid inline keyboard")
	}
	return nil
}

// ExtraKeyboard decodes the config's optional static button rows. A config
// without extra buttons yields an empty keyboard.
func (c *Config) ExtraKeyboard() (chatbot.InlineKeyboard, error) {
	if c.ButtonsJSON == "" {
		return chatbot.InlineKeyboard{}, nil
	}

	var keyboard chatbot.InlineKeyboard
	if err := json.Unmarshal([]byte(c.ButtonsJSON), &keyboard); err != nil {
		return chatbot.InlineKeyboard{}, err
	}
	return keyboard, nil
}

// Timer is a persisted one-shot alarm keyed by a deterministic name.
// Exactly one exists per active config; it is replaced (upserted) by name
// after every firing and on every config save.
type Timer struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	Name     string     `gorm:"not null;uniqueIndex;type:varchar(100)" json:"name"`
	ConfigID uint       `gorm:"not null" json:"config_id"`
	NextRun  time.Time  `gorm:"not null;index" json:"next_run"`
	LockedAt *time.Time `json:"locked_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides the default GORM table name
func (Timer) TableName() string {
	return "carousel_timers"
}

// Pager actions carried in the callback wire data
const (
	ActionPrev      = "prev"
	ActionNext      = "next"
	ActionIndicator = "indicator"
)

// CallbackData is the decoded form of a pagination button press
type CallbackData struct {
	FunctionName string
	Action       string
	Page         int
}

// EncodeCallbackData builds the wire format {function_name}_{action}_{page}.
// This format is embedded in sent messages and must stay stable across
// releases: users may page through a broadcast days after it was sent.
func EncodeCallbackData(functionName, action string, page int) string {
	return fmt.Sprintf("%s_%s_%d", functionName, action, page)
}

// ParseCallbackData decodes the wire format. The page and action are taken
// from the right so that function names may themselves contain underscores.
func ParseCallbackData(data string) (*CallbackData, error) {
	parts := strings.Split(data, "_")
	if len(parts) < 3 {
		return nil, NewCallbackFormatError(data, "expected {function_name}_{action}_{page}")
	}

	page, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return nil, NewCallbackFormatError(data, "page is not a number")
	}

	action := parts[len(parts)-2]
	switch action {
	case ActionPrev, ActionNext, ActionIndicator:
	default:
		return nil, NewCallbackFormatError(data, "unknown action")
	}

	return &CallbackData{
		FunctionName: strings.Join(parts[:len(parts)-2], "_"),
		Action:       action,
		Page:         page,
	}, nil
}
