package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/book-expert/edu-content-service/internal/translate"
	"github.com/gin-gonic/gin"
)

const (
	defaultSourceLanguage = "auto"
	reportedSourceLang    = "english"
	translatedConfidence  = 0.95
	fallbackExcerptRunes  = 500
	msgTranslationDown    = "Translation service unavailable"
	fallbackMessageFmt    = "Translation service temporarily unavailable for %s.\n\n" +
		"Original text (English):\n%s...\n\n" +
		"Please try again later or contact support.\n\n" +
		"---\n*EduAI Pro - Translation Service*"
	logFmtTranslationFailed = "Translation to %q degraded to fallback: %v"
)

// TranslateRequest is the body of /translate-script.
type TranslateRequest struct {
	Text           string `json:"text"            validate:"required"`
	TargetLanguage string `json:"target_language" validate:"required"`
	SourceLanguage string `json:"source_language"`
}

func (r *TranslateRequest) applyDefaults() {
	if strings.TrimSpace(r.Text) == "" {
		r.Text = ""
	}

	r.TargetLanguage = strings.TrimSpace(r.TargetLanguage)

	if r.SourceLanguage == "" {
		r.SourceLanguage = defaultSourceLanguage
	}
}

// TranslateResponse is returned by /translate-script for both outcomes.
type TranslateResponse struct {
	Success         bool    `json:"success"`
	TranslatedText  string  `json:"translated_text"`
	SourceLanguage  string  `json:"source_language"`
	TargetLanguage  string  `json:"target_language"`
	ConfidenceScore float64 `json:"confidence_score"`
	Error           string  `json:"error,omitempty"`
}

// TranslateScript handles POST /translate-script. Provider failures produce
// a 200 response with success false and a fallback text.
func (h *Handler) TranslateScript(c *gin.Context) {
	var req TranslateRequest

	err := bindJSON(c, &req)
	if err != nil {
		respondError(c, err)

		return
	}

	result := h.deps.Translator.Translate(c.Request.Context(), req.Text, req.TargetLanguage)
	if result.Outcome == translate.Failed {
		h.deps.Log.Warn(logFmtTranslationFailed, req.TargetLanguage, result.Err)

		c.JSON(http.StatusOK, TranslateResponse{
			Success:         false,
			TranslatedText:  fallbackMessage(req.TargetLanguage, req.Text),
			SourceLanguage:  reportedSourceLang,
			TargetLanguage:  req.TargetLanguage,
			ConfidenceScore: 0,
			Error:           msgTranslationDown,
		})

		return
	}

	c.JSON(http.StatusOK, TranslateResponse{
		Success:         true,
		TranslatedText:  result.Text,
		SourceLanguage:  reportedSourceLang,
		TargetLanguage:  req.TargetLanguage,
		ConfidenceScore: translatedConfidence,
	})
}

func fallbackMessage(target, text string) string {
	return fmt.Sprintf(fallbackMessageFmt, target, truncateRunes(text, fallbackExcerptRunes))
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit])
}
