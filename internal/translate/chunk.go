package translate

import (
	"strings"
	"unicode/utf8"
)

// DefaultChunkBudget is the default maximum chunk length in characters.
const DefaultChunkBudget = 2000

const paragraphSeparator = "\n\n"

// SplitIntoChunks splits text on blank-line paragraph boundaries into chunks
// of at most budget characters. A paragraph longer than the budget is kept
// whole in its own chunk.
func SplitIntoChunks(text string, budget int) []string {
	if budget <= 0 {
		budget = DefaultChunkBudget
	}

	if utf8.RuneCountInString(text) <= budget {
		return []string{text}
	}

	var (
		chunks  []string
		current string
	)

	for _, paragraph := range strings.Split(text, paragraphSeparator) {
		if utf8.RuneCountInString(current+paragraph) <= budget {
			current += paragraph + paragraphSeparator

			continue
		}

		if current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
		}

		current = paragraph + paragraphSeparator
	}

	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	return chunks
}
