package tts

import (
	"context"
	"strings"

	"github.com/book-expert/logger"
)

// Status messages reported by the synthesizer.
const (
	StatusNoText         = "No text found."
	statusErrorPrefix    = "TTS Error: "
	statusDetectedPrefix = "Language detected: "
	logFmtDetectFailed   = "Language detection failed, using %q"
	logFmtSynthesized    = "Synthesized %d bytes of %s audio"
	logFmtSynthesisFail  = "Speech synthesis failed: %v"
)

// SpeechGenerator produces audio for a request.
type SpeechGenerator interface {
	GenerateSpeech(ctx context.Context, req Request) ([]byte, error)
}

// LanguageDetector guesses the ISO 639-1 code of a text.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// TextCleaner normalizes text before it is spoken.
type TextCleaner interface {
	Clean(text string) string
}

// Result is the outcome of a synthesis. Audio is nil whenever synthesis
// did not succeed; Status always carries a displayable message.
type Result struct {
	Status   string
	Audio    []byte
	Language string
}

// OK reports whether audio was produced.
func (r Result) OK() bool {
	return len(r.Audio) > 0
}

// Synthesizer detects the language of a text and turns it into speech.
type Synthesizer struct {
	generator       SpeechGenerator
	detector        LanguageDetector
	cleaner         TextCleaner
	log             *logger.Logger
	defaultLanguage string
}

// NewSynthesizer creates a Synthesizer. A nil cleaner sends text as-is.
func NewSynthesizer(
	generator SpeechGenerator,
	detector LanguageDetector,
	cleaner TextCleaner,
	log *logger.Logger,
	fallbackLanguage string,
) *Synthesizer {
	if fallbackLanguage == "" {
		fallbackLanguage = defaultLanguage
	}

	return &Synthesizer{
		generator:       generator,
		detector:        detector,
		cleaner:         cleaner,
		log:             log,
		defaultLanguage: fallbackLanguage,
	}
}

// Synthesize converts text to speech. Provider failures are reported in the
// status and never returned as errors.
func (s *Synthesizer) Synthesize(ctx context.Context, text string) Result {
	if strings.TrimSpace(text) == "" {
		return Result{Status: StatusNoText}
	}

	lang, ok := s.detector.Detect(text)
	if !ok || lang == "" {
		lang = s.defaultLanguage
		s.log.Warn(logFmtDetectFailed, lang)
	}

	spoken := text
	if s.cleaner != nil {
		spoken = s.cleaner.Clean(text)
	}

	audio, err := s.generator.GenerateSpeech(ctx, Request{
		Text:     spoken,
		Language: lang,
		Speed:    DefaultSpeed,
	})
	if err != nil {
		s.log.Error(logFmtSynthesisFail, err)

		return Result{Status: statusErrorPrefix + err.Error(), Language: lang}
	}

	s.log.Info(logFmtSynthesized, len(audio), lang)

	return Result{Status: statusDetectedPrefix + lang, Audio: audio, Language: lang}
}
