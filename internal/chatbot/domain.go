package chatbot

// InlineKeyboard represents a Telegram inline keyboard
type InlineKeyboard struct {
	Buttons [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton represents a single button in an inline keyboard
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// NewRow builds a single-row keyboard from the given buttons
func NewRow(buttons ...InlineKeyboardButton) InlineKeyboard {
	return InlineKeyboard{Buttons: [][]InlineKeyboardButton{buttons}}
}

// IsEmpty reports whether the keyboard has no buttons
func (k InlineKeyboard) IsEmpty() bool {
	for _, row := range k.Buttons {
		if len(row) > 0 {
			return false
		}
	}
	return true
}

// CallbackQuery represents a button press on a previously sent message
type CallbackQuery struct {
	ID        string `json:"id"`
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
	UserID    int64  `json:"user_id"`
	Data      string `json:"data"`
}
