package carousel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// listFetcher paginates a fixed list of items, one line each
func listFetcher(items []string) DataFetcher {
	return func(page, pageSize int, config *Config) (string, int, error) {
		totalPages := (len(items) + pageSize - 1) / pageSize
		start := (page - 1) * pageSize
		if start >= len(items) {
			return "", totalPages, nil
		}
		end := start + pageSize
		if end > len(items) {
			end = len(items)
		}
		text := ""
		for _, item := range items[start:end] {
			text += item + "\n"
		}
		return text, totalPages, nil
	}
}

func makeItems(n int) []string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("item %d", i+1)
	}
	return items
}

func newTestRenderer(t *testing.T, key string, fetcher DataFetcher) *Renderer {
	registry := NewRegistry()
	require.NoError(t, registry.Register(key, fetcher))
	return NewRenderer(registry)
}

func TestRender_PageCount(t *testing.T) {
	renderer := newTestRenderer(t, "list", listFetcher(makeItems(12)))
	config := &Config{FunctionName: "top", PageSize: 5, DataFetcher: "list"}

	result, err := renderer.Render(config, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalPages)
	assert.Contains(t, result.Text, "item 1")
	assert.Contains(t, result.Text, "item 5")
	assert.NotContains(t, result.Text, "item 6")

	result, err = renderer.Render(config, 3)
	require.NoError(t, err)
	assert.Contains(t, result.Text, "item 11")
	assert.Contains(t, result.Text, "item 12")
}

func TestRender_EmptySource(t *testing.T) {
	renderer := newTestRenderer(t, "empty", listFetcher(nil))
	config := &Config{FunctionName: "top", PageSize: 5, DataFetcher: "empty"}

	result, err := renderer.Render(config, 1)
	require.NoError(t, err)
	assert.Equal(t, EmptyPageText, result.Text)
	assert.Equal(t, 1, result.TotalPages)
	assert.False(t, result.Keyboard.IsEmpty())
}

func TestRender_UnregisteredFetcher(t *testing.T) {
	renderer := NewRenderer(NewRegistry())
	config := &Config{FunctionName: "top", PageSize: 5, DataFetcher: "missing"}

	_, err := renderer.Render(config, 1)
	assert.ErrorIs(t, err, ErrFetcherNotRegistered)
}

func TestRender_FetcherError(t *testing.T) {
	failing := func(page, pageSize int, config *Config) (string, int, error) {
		return "", 0, errors.New("upstream unavailable")
	}
	renderer := newTestRenderer(t, "failing", failing)
	config := &Config{ID: 7, FunctionName: "top", PageSize: 5, DataFetcher: "failing"}

	_, err := renderer.Render(config, 1)
	require.Error(t, err)
	var sendErr *SendError
	assert.ErrorAs(t, err, &sendErr)
	assert.True(t, sendErr.Temporary())
}

func TestRender_AppendsStaticButtons(t *testing.T) {
	renderer := newTestRenderer(t, "list", listFetcher(makeItems(12)))
	config := &Config{
		FunctionName: "top",
		PageSize:     5,
		DataFetcher:  "list",
		ButtonsJSON:  `{"inline_keyboard":[[{"text":"Open site","url":"https://example.com"}]]}`,
	}

	result, err := renderer.Render(config, 2)
	require.NoError(t, err)

	// Navigation row first, static rows below it
	require.Len(t, result.Keyboard.Buttons, 2)
	assert.Equal(t, "2/3", result.Keyboard.Buttons[0][1].Text)
	require.Len(t, result.Keyboard.Buttons[1], 1)
	assert.Equal(t, "Open site", result.Keyboard.Buttons[1][0].Text)
	assert.Equal(t, "https://example.com", result.Keyboard.Buttons[1][0].URL)
}

func TestRender_CorruptStaticButtons(t *testing.T) {
	renderer := newTestRenderer(t, "list", listFetcher(makeItems(3)))
	config := &Config{
		FunctionName: "top",
		PageSize:     5,
		DataFetcher:  "list",
		ButtonsJSON:  "{not json",
	}

	_, err := renderer.Render(config, 1)
	require.Error(t, err)
	var validationErr *ConfigValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestBuildKeyboard(t *testing.T) {
	tests := []struct {
		name        string
		totalPages  int
		currentPage int
		wantTexts   []string
		wantData    []string
	}{
		{
			name:        "first of several pages",
			totalPages:  3,
			currentPage: 1,
			wantTexts:   []string{"1/3", "Next ➡️"},
			wantData:    []string{"top_indicator_1", "top_next_1"},
		},
		{
			name:        "middle page",
			totalPages:  3,
			currentPage: 2,
			wantTexts:   []string{"⬅️ Prev", "2/3", "Next ➡️"},
			wantData:    []string{"top_prev_2", "top_indicator_2", "top_next_2"},
		},
		{
			name:        "last page",
			totalPages:  3,
			currentPage: 3,
			wantTexts:   []string{"⬅️ Prev", "3/3"},
			wantData:    []string{"top_prev_3", "top_indicator_3"},
		},
		{
			name:        "single page shows indicator only",
			totalPages:  1,
			currentPage: 1,
			wantTexts:   []string{"1/1"},
			wantData:    []string{"top_indicator_1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyboard := BuildKeyboard("top", tt.totalPages, tt.currentPage)
			require.Len(t, keyboard.Buttons, 1)

			row := keyboard.Buttons[0]
			require.Len(t, row, len(tt.wantTexts))
			for i, button := range row {
				assert.Equal(t, tt.wantTexts[i], button.Text)
				assert.Equal(t, tt.wantData[i], button.CallbackData)
			}
		})
	}
}
