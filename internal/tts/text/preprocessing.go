// Package text normalizes text before it is sent for speech synthesis.
//
// The cleaner is language-neutral: it never expands abbreviations or spells
// out numbers, since the text may be in any supported language.
package text

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Regex patterns for text preprocessing.
const (
	urlRegexPattern         = `https?://\S+`
	emailRegexPattern       = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`
	referenceRegexPattern   = `\[\d+(?:\s*[,–-]\s*\d+)*\]|[¹²³⁴⁵⁶⁷⁸⁹⁰]+`
	whitespaceRegexPattern  = `\s+`
	spaceBeforePunctPattern = ` +([.,;:!?])`
)

// Placeholders hold preserved tokens while the rest of the text is cleaned.
// They contain only letters and digits so no cleanup step can alter them.
const (
	urlPlaceholderPattern   = "QQURL%dQQ"
	emailPlaceholderPattern = "QQMAIL%dQQ"
)

// Punctuation and formatting constants.
const (
	emDash       = "—"
	enDash       = "–"
	figureDash   = "‒"
	ellipsis     = "..."
	ellipsisChar = "…"
	sentenceStop = "."
)

// Cleaner normalizes text for speech synthesis.
type Cleaner struct {
	urlPattern         *regexp.Regexp
	emailPattern       *regexp.Regexp
	referencePattern   *regexp.Regexp
	whitespacePattern  *regexp.Regexp
	spaceBeforePattern *regexp.Regexp
	punctuationFolder  *strings.Replacer
}

// NewCleaner creates a Cleaner with its patterns compiled.
func NewCleaner() *Cleaner {
	return &Cleaner{
		urlPattern:         regexp.MustCompile(urlRegexPattern),
		emailPattern:       regexp.MustCompile(emailRegexPattern),
		referencePattern:   regexp.MustCompile(referenceRegexPattern),
		whitespacePattern:  regexp.MustCompile(whitespaceRegexPattern),
		spaceBeforePattern: regexp.MustCompile(spaceBeforePunctPattern),
		punctuationFolder: strings.NewReplacer(
			emDash, "-",
			enDash, "-",
			figureDash, "-",
			ellipsisChar, ellipsis,
			"“", `"`, "”", `"`,
			"‘", "'", "’", "'",
		),
	}
}

// Clean runs the full normalization pipeline.
func (c *Cleaner) Clean(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	preserved, placeholders := c.preserveTokens(text)

	cleaned := c.referencePattern.ReplaceAllString(preserved, "")
	cleaned = c.punctuationFolder.Replace(cleaned)
	cleaned = c.normalizeWhitespace(cleaned)
	cleaned = squeezePunctuation(cleaned)
	cleaned = ensureSentenceEnding(cleaned)

	return restoreTokens(cleaned, placeholders)
}

// preserveTokens replaces URLs and e-mail addresses with placeholders.
func (c *Cleaner) preserveTokens(text string) (string, map[string]string) {
	placeholders := make(map[string]string)
	counter := 0

	replace := func(input string, pattern *regexp.Regexp, format string) string {
		return pattern.ReplaceAllStringFunc(input, func(match string) string {
			placeholder := fmt.Sprintf(format, counter)
			placeholders[placeholder] = match
			counter++

			return placeholder
		})
	}

	text = replace(text, c.urlPattern, urlPlaceholderPattern)
	text = replace(text, c.emailPattern, emailPlaceholderPattern)

	return text, placeholders
}

func restoreTokens(text string, placeholders map[string]string) string {
	for placeholder, original := range placeholders {
		text = strings.ReplaceAll(text, placeholder, original)
	}

	return text
}

// normalizeWhitespace collapses every whitespace run to a single space and
// drops spaces left in front of punctuation by removed references.
func (c *Cleaner) normalizeWhitespace(text string) string {
	text = c.whitespacePattern.ReplaceAllString(text, " ")
	text = c.spaceBeforePattern.ReplaceAllString(text, "$1")

	return strings.TrimSpace(text)
}

// squeezePunctuation collapses runs of the same punctuation mark, keeping
// the three-dot ellipsis intact.
func squeezePunctuation(text string) string {
	var (
		out      strings.Builder
		previous rune
		run      int
	)

	for _, char := range text {
		if char == previous && unicode.IsPunct(char) {
			run++
			if char == '.' && run <= len(ellipsis) {
				out.WriteRune(char)
			}

			continue
		}

		previous = char
		run = 1

		out.WriteRune(char)
	}

	return out.String()
}

// ensureSentenceEnding appends a full stop unless the text already ends
// with terminal punctuation.
func ensureSentenceEnding(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}

	last, _ := utf8.DecodeLastRuneInString(trimmed)

	switch last {
	case '.', '!', '?', '。', '！', '？', '؟', '।':
		return trimmed
	default:
		return trimmed + sentenceStop
	}
}
