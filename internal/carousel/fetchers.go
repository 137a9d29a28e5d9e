package carousel

import (
	"fmt"
	"strings"
)

// StaticMessageFetcherKey is the registry key of the built-in fetcher
const StaticMessageFetcherKey = "static_message"

// StaticMessageFetcher pages over the config's stored message text. Items
// are paragraphs separated by blank lines; each page shows up to pageSize
// of them under the first paragraph, which acts as the header.
//
// It exists so a carousel can run without any external content source and
// doubles as the reference DataFetcher implementation.
func StaticMessageFetcher(page, pageSize int, config *Config) (string, int, error) {
	if page < 1 {
		return "", 0, fmt.Errorf("page must be >= 1, got %d", page)
	}
	if pageSize < 1 {
		return "", 0, fmt.Errorf("page size must be >= 1, got %d", pageSize)
	}

	blocks := splitParagraphs(config.MessageText)
	if len(blocks) == 0 {
		return "", 1, nil
	}

	header := blocks[0]
	items := blocks[1:]
	if len(items) == 0 {
		return header, 1, nil
	}

	totalPages := (len(items) + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start >= len(items) {
		// Out-of-range pages render the header alone; the pager's range
		// check keeps users from landing here
		return header, totalPages, nil
	}

	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}

	var b strings.Builder
	b.WriteString(header)
	for _, item := range items[start:end] {
		b.WriteString("\n\n")
		b.WriteString(item)
	}

	return b.String(), totalPages, nil
}

func splitParagraphs(text string) []string {
	var blocks []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}
