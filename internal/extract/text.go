package extract

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decodeText decodes UTF-8, falling back to ISO-8859-1 and finally to UTF-8
// with invalid sequences dropped.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err == nil {
		return string(decoded)
	}

	return decodeUTF8Lossy(data)
}

func decodeUTF8Lossy(data []byte) string {
	return strings.ToValidUTF8(string(data), "")
}
