package delivery

import (
	"encoding/json"
	"time"

	"carouselbot-api/internal/chatbot"
	"carouselbot-api/internal/common"
)

// DeliveryJob is a durable outgoing-message record. Submission and execution
// are decoupled: callers enqueue a row and observe the outcome through the
// queue's completion hook.
type DeliveryJob struct {
	ID                common.JobID          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ChatID            int64                 `gorm:"not null;index" json:"chat_id"`
	Text              string                `gorm:"not null;type:text" json:"text"`
	ButtonsJSON       string                `gorm:"type:text" json:"buttons_json"`
	ParseMode         string                `gorm:"type:varchar(20)" json:"parse_mode"`
	DisableWebPreview bool                  `json:"disable_web_preview"`
	PinMessage        bool                  `json:"pin_message"`
	Status            common.DeliveryStatus `gorm:"not null;default:'queued';index" json:"status"`
	Attempts          int                   `gorm:"not null;default:0" json:"attempts"`
	NextAttemptAt     *time.Time            `gorm:"index" json:"next_attempt_at"`
	LockedAt          *time.Time            `json:"locked_at"`
	MessageID         *int                  `json:"message_id"`
	LastError         string                `gorm:"type:text" json:"last_error"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// TableName overrides the default GORM table name
func (DeliveryJob) TableName() string {
	return "delivery_jobs"
}

// Keyboard decodes the job's serialized inline keyboard. A job without
// buttons yields an empty keyboard.
func (j *DeliveryJob) Keyboard() (chatbot.InlineKeyboard, error) {
	if j.ButtonsJSON == "" {
		return chatbot.InlineKeyboard{}, nil
	}

	var keyboard chatbot.InlineKeyboard
	if err := json.Unmarshal([]byte(j.ButtonsJSON), &keyboard); err != nil {
		return chatbot.InlineKeyboard{}, err
	}
	return keyboard, nil
}

// SendRequest describes one message to be delivered asynchronously
type SendRequest struct {
	ChatID            int64
	Text              string
	Keyboard          chatbot.InlineKeyboard
	ParseMode         string
	DisableWebPreview bool
	PinMessage        bool
}

// NewJob materializes a SendRequest into a persistable DeliveryJob
func NewJob(req SendRequest) (*DeliveryJob, error) {
	job := &DeliveryJob{
		ID:                common.NewJobID(),
		ChatID:            req.ChatID,
		Text:              req.Text,
		ParseMode:         req.ParseMode,
		DisableWebPreview: req.DisableWebPreview,
		PinMessage:        req.PinMessage,
		Status:            common.DeliveryStatusQueued,
	}

	if !req.Keyboard.IsEmpty() {
		raw, err := json.Marshal(req.Keyboard)
		if err != nil {
			return nil, err
		}
		job.ButtonsJSON = string(raw)
	}

	return job, nil
}

// JobResult reports the outcome of one delivery job to the completion hook
type JobResult struct {
	JobID     common.JobID
	ChatID    int64
	Success   bool
	MessageID int
	Attempts  int
	Error     string
}
