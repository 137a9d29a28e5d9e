package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticMessageFetcher(t *testing.T) {
	config := &Config{
		PageSize:    2,
		MessageText: "*Weekly links*\n\nfirst\n\nsecond\n\nthird\n\nfourth\n\nfifth",
	}

	t.Run("first page", func(t *testing.T) {
		text, totalPages, err := StaticMessageFetcher(1, config.PageSize, config)
		require.NoError(t, err)
		assert.Equal(t, 3, totalPages)
		assert.Equal(t, "*Weekly links*\n\nfirst\n\nsecond", text)
	})

	t.Run("last partial page", func(t *testing.T) {
		text, totalPages, err := StaticMessageFetcher(3, config.PageSize, config)
		require.NoError(t, err)
		assert.Equal(t, 3, totalPages)
		assert.Equal(t, "*Weekly links*\n\nfifth", text)
	})

	t.Run("page past the end renders header alone", func(t *testing.T) {
		text, totalPages, err := StaticMessageFetcher(9, config.PageSize, config)
		require.NoError(t, err)
		assert.Equal(t, 3, totalPages)
		assert.Equal(t, "*Weekly links*", text)
	})
}

func TestStaticMessageFetcher_HeaderOnly(t *testing.T) {
	config := &Config{PageSize: 5, MessageText: "Just a header"}

	text, totalPages, err := StaticMessageFetcher(1, config.PageSize, config)
	require.NoError(t, err)
	assert.Equal(t, 1, totalPages)
	assert.Equal(t, "Just a header", text)
}

func TestStaticMessageFetcher_EmptyText(t *testing.T) {
	config := &Config{PageSize: 5}

	text, totalPages, err := StaticMessageFetcher(1, config.PageSize, config)
	require.NoError(t, err)
	assert.Equal(t, 1, totalPages)
	assert.Empty(t, text)
}

func TestStaticMessageFetcher_InvalidArguments(t *testing.T) {
	config := &Config{PageSize: 5, MessageText: "header"}

	_, _, err := StaticMessageFetcher(0, 5, config)
	assert.Error(t, err)

	_, _, err = StaticMessageFetcher(1, 0, config)
	assert.Error(t, err)
}
