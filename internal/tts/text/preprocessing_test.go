package text_test

import (
	"testing"

	"github.com/book-expert/edu-content-service/internal/tts/text"
	"github.com/stretchr/testify/assert"
)

// cleanerTestCase defines a standard test case for the cleaner.
type cleanerTestCase struct {
	name     string
	input    string
	expected string
}

func runCleanerTests(t *testing.T, tests []cleanerTestCase) {
	t.Helper()

	cleaner := text.NewCleaner()

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.expected, cleaner.Clean(testCase.input))
		})
	}
}

func TestCleaner_Clean_Basics(t *testing.T) {
	t.Parallel()

	runCleanerTests(t, []cleanerTestCase{
		{name: "empty", input: "", expected: ""},
		{name: "whitespace only", input: "  \n\t ", expected: ""},
		{name: "adds full stop", input: "Hello world", expected: "Hello world."},
		{name: "keeps question", input: "Why is the sky blue?", expected: "Why is the sky blue?"},
		{name: "collapses whitespace", input: "  line one\n\n\tline two  ", expected: "line one line two."},
		{name: "keeps cjk stop", input: "你好。", expected: "你好。"},
	})
}

func TestCleaner_Clean_References(t *testing.T) {
	t.Parallel()

	runCleanerTests(t, []cleanerTestCase{
		{
			name:     "bracketed citations",
			input:    "Plants need light [1] and water [2, 3].",
			expected: "Plants need light and water.",
		},
		{
			name:     "citation range",
			input:    "Cells divide [4-6] often",
			expected: "Cells divide often.",
		},
		{
			name:     "superscript markers",
			input:    "Energy¹² matters",
			expected: "Energy matters.",
		},
	})
}

func TestCleaner_Clean_Punctuation(t *testing.T) {
	t.Parallel()

	runCleanerTests(t, []cleanerTestCase{
		{name: "repeated marks", input: "Wait!!! Really???", expected: "Wait! Really?"},
		{name: "long ellipsis", input: "Wait....", expected: "Wait..."},
		{name: "smart quotes and ellipsis", input: "He said “hi”… then left", expected: `He said "hi"... then left.`},
		{name: "em dash", input: "A—B", expected: "A-B."},
	})
}

func TestCleaner_Clean_PreservesTokens(t *testing.T) {
	t.Parallel()

	runCleanerTests(t, []cleanerTestCase{
		{
			name:     "url",
			input:    "Visit https://example.com/a--b!! now",
			expected: "Visit https://example.com/a--b!! now.",
		},
		{
			name:     "email",
			input:    "Mail info@school.edu today",
			expected: "Mail info@school.edu today.",
		},
		{
			name:     "two urls",
			input:    "See http://a.io and http://b.io now",
			expected: "See http://a.io and http://b.io now.",
		},
	})
}
