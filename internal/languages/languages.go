// Package languages holds the table of supported target languages and the
// best-effort language detector shared by the translator and the speech
// synthesizer.
package languages

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Language describes one supported translation target.
type Language struct {
	Key         string
	DisplayName string
	Code        string
}

var supported = []Language{
	{Key: "chinese-simplified", DisplayName: "Chinese (Simplified)", Code: "zh"},
	{Key: "chinese-traditional", DisplayName: "Chinese (Traditional)", Code: "zh"},
	{Key: "spanish", DisplayName: "Spanish", Code: "es"},
	{Key: "french", DisplayName: "French", Code: "fr"},
	{Key: "german", DisplayName: "German", Code: "de"},
	{Key: "italian", DisplayName: "Italian", Code: "it"},
	{Key: "japanese", DisplayName: "Japanese", Code: "ja"},
	{Key: "turkish", DisplayName: "Turkish", Code: "tr"},
	{Key: "russian", DisplayName: "Russian", Code: "ru"},
	{Key: "urdu", DisplayName: "Urdu", Code: "ur"},
	{Key: "arabic", DisplayName: "Arabic", Code: "ar"},
	{Key: "hindi", DisplayName: "Hindi", Code: "hi"},
	{Key: "portuguese", DisplayName: "Portuguese", Code: "pt"},
	{Key: "korean", DisplayName: "Korean", Code: "ko"},
	{Key: "punjabi", DisplayName: "Punjabi", Code: "pa"},
	{Key: "pashto", DisplayName: "Pashto", Code: "ps"},
	{Key: "sindhi", DisplayName: "Sindhi", Code: "sd"},
	{Key: "tamil", DisplayName: "Tamil", Code: "ta"},
	{Key: "telugu", DisplayName: "Telugu", Code: "te"},
}

var byKey = func() map[string]Language {
	index := make(map[string]Language, len(supported))
	for _, lang := range supported {
		index[lang.Key] = lang
	}

	return index
}()

// Lookup returns the language registered under key. Matching ignores case
// and surrounding whitespace.
func Lookup(key string) (Language, bool) {
	lang, ok := byKey[normalizeKey(key)]

	return lang, ok
}

// DisplayName returns the human-readable name for key. Unknown keys are
// title-cased as given; they are never rejected.
func DisplayName(key string) string {
	if lang, ok := Lookup(key); ok {
		return lang.DisplayName
	}

	return cases.Title(language.English).String(strings.TrimSpace(key))
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
