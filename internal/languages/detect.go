package languages

import (
	"strings"

	"github.com/abadojack/whatlanggo"
)

// Detector guesses the language of a text. It never fails: when nothing can
// be recognised it reports the fallback code.
type Detector struct {
	fallback string
}

// NewDetector creates a Detector that reports fallback when detection fails.
func NewDetector(fallback string) *Detector {
	return &Detector{fallback: fallback}
}

// Detect returns the ISO 639-1 code of the dominant language in text. The
// boolean is false when the fallback code was used.
func (d *Detector) Detect(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return d.fallback, false
	}

	info := whatlanggo.Detect(text)
	if info.Script == nil {
		return d.fallback, false
	}

	code := info.Lang.Iso6391()
	if code == "" {
		return d.fallback, false
	}

	return code, true
}
