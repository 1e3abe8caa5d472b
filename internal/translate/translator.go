// Package translate translates scripts chunk by chunk through a language
// model.
package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/book-expert/edu-content-service/internal/languages"
	"github.com/book-expert/edu-content-service/internal/llm"
	"github.com/book-expert/logger"
)

// Outcome tags a translation result.
type Outcome int

// Translation outcomes.
const (
	Translated Outcome = iota
	Failed
)

// Reason explains a failed translation.
type Reason string

// Failure reasons.
const (
	ReasonEmptyInput Reason = "empty_input"
	ReasonUpstream   Reason = "upstream"
)

// DefaultTemperature keeps translations close to the source.
const DefaultTemperature = 0.3

const (
	footerFmt        = "\n\n---\n*Translated to %s using AI*"
	footerMarker     = "\n\n---\n*Translated to "
	systemPromptFmt  = "You are a professional translator specializing in educational content. " +
		"Translate accurately to %s while maintaining the original structure and educational tone. " +
		"Provide only the translation."
	userPromptFmt = "Translate the following educational script from English to %s.\n" +
		"Maintain the educational tone, structure, and formatting. " +
		"Provide only the translation without any additional text or explanations.\n\n" +
		"Text to translate:\n%s"
	logFmtChunk       = "Translating chunk %d/%d to %s"
	logFmtChunkFailed = "Translation to %s failed on chunk %d/%d: %v"
	errFmtChunk       = "chunk %d/%d: %w"
)

// ErrEmptyInput is carried by a ReasonEmptyInput result.
var ErrEmptyInput = errors.New("no text to translate")

// Result is the tagged outcome of a translation.
type Result struct {
	Outcome Outcome
	Text    string
	// Language is the display name of the target language.
	Language string
	Reason   Reason
	Err      error
}

// Translator translates text through a completion provider.
type Translator struct {
	completer   llm.Completer
	log         *logger.Logger
	budget      int
	temperature float64
}

// NewTranslator creates a Translator. Non-positive budget and temperature
// fall back to the defaults.
func NewTranslator(
	completer llm.Completer,
	log *logger.Logger,
	budget int,
	temperature float64,
) *Translator {
	if budget <= 0 {
		budget = DefaultChunkBudget
	}

	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	return &Translator{
		completer:   completer,
		log:         log,
		budget:      budget,
		temperature: temperature,
	}
}

// Translate translates text into the language identified by key. Chunks
// are translated sequentially; any chunk failure fails the whole result.
func (t *Translator) Translate(ctx context.Context, text, key string) Result {
	name := languages.DisplayName(key)

	if strings.TrimSpace(text) == "" {
		return Result{Outcome: Failed, Language: name, Reason: ReasonEmptyInput, Err: ErrEmptyInput}
	}

	chunks := SplitIntoChunks(text, t.budget)
	translated := make([]string, 0, len(chunks))
	system := fmt.Sprintf(systemPromptFmt, name)

	for i, chunk := range chunks {
		t.log.Info(logFmtChunk, i+1, len(chunks), name)

		out, err := llm.CompleteWithTemperature(ctx, t.completer, system,
			fmt.Sprintf(userPromptFmt, name, chunk), t.temperature)
		if err != nil {
			t.log.Error(logFmtChunkFailed, name, i+1, len(chunks), err)

			return Result{
				Outcome:  Failed,
				Language: name,
				Reason:   ReasonUpstream,
				Err:      fmt.Errorf(errFmtChunk, i+1, len(chunks), err),
			}
		}

		translated = append(translated, out)
	}

	return Result{
		Outcome:  Translated,
		Text:     strings.Join(translated, paragraphSeparator) + Footer(name),
		Language: name,
	}
}

// Footer returns the attribution appended to every translation.
func Footer(displayName string) string {
	return fmt.Sprintf(footerFmt, displayName)
}

// StripFooter removes a trailing translation footer, if present.
func StripFooter(text string) string {
	idx := strings.LastIndex(text, footerMarker)
	if idx < 0 {
		return text
	}

	return text[:idx]
}
