package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUpdate(t *testing.T) {
	parser := NewWebhookParser()

	t.Run("valid callback update", func(t *testing.T) {
		payload := []byte(`{
			"update_id": 1001,
			"callback_query": {
				"id": "cb-1",
				"from": {"id": 777},
				"message": {
					"message_id": 42,
					"chat": {"id": -1001234}
				},
				"data": "news_digest_next_1"
			}
		}`)

		update, err := parser.ParseUpdate(payload)
		require.NoError(t, err)
		assert.Equal(t, 1001, update.UpdateID)
		require.NotNil(t, update.CallbackQuery)
	})

	t.Run("empty payload", func(t *testing.T) {
		_, err := parser.ParseUpdate(nil)
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := parser.ParseUpdate([]byte("{not json"))
		assert.Error(t, err)
	})

	t.Run("missing update id", func(t *testing.T) {
		_, err := parser.ParseUpdate([]byte(`{"message": {}}`))
		assert.Error(t, err)
	})
}

func TestExtractCallbackQuery(t *testing.T) {
	parser := NewWebhookParser()

	t.Run("callback query extracted", func(t *testing.T) {
		update, err := parser.ParseUpdate([]byte(`{
			"update_id": 1001,
			"callback_query": {
				"id": "cb-1",
				"from": {"id": 777},
				"message": {
					"message_id": 42,
					"chat": {"id": -1001234}
				},
				"data": "news_digest_prev_3"
			}
		}`))
		require.NoError(t, err)

		query, err := parser.ExtractCallbackQuery(update)
		require.NoError(t, err)
		require.NotNil(t, query)
		assert.Equal(t, "cb-1", query.ID)
		assert.Equal(t, int64(-1001234), query.ChatID)
		assert.Equal(t, 42, query.MessageID)
		assert.Equal(t, int64(777), query.UserID)
		assert.Equal(t, "news_digest_prev_3", query.Data)
	})

	t.Run("plain message yields nil", func(t *testing.T) {
		update, err := parser.ParseUpdate([]byte(`{
			"update_id": 1002,
			"message": {
				"message_id": 43,
				"chat": {"id": 555},
				"text": "hello"
			}
		}`))
		require.NoError(t, err)

		query, err := parser.ExtractCallbackQuery(update)
		require.NoError(t, err)
		assert.Nil(t, query)
	})

	t.Run("callback without originating message", func(t *testing.T) {
		update, err := parser.ParseUpdate([]byte(`{
			"update_id": 1003,
			"callback_query": {
				"id": "cb-2",
				"from": {"id": 777},
				"data": "news_digest_next_1"
			}
		}`))
		require.NoError(t, err)

		_, err = parser.ExtractCallbackQuery(update)
		require.Error(t, err)
		var parsingErr WebhookParsingError
		assert.ErrorAs(t, err, &parsingErr)
	})

	t.Run("nil update", func(t *testing.T) {
		_, err := parser.ExtractCallbackQuery(nil)
		assert.Error(t, err)
	})
}
