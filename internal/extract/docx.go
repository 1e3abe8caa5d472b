package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxBodyPart      = "word/document.xml"
	wordNamespace     = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	elemParagraph     = "p"
	elemText          = "t"
	elemTab           = "tab"
	elemBreak         = "br"
	paragraphJoin     = "\n"
	errFmtOpenDOCX    = "failed to open docx archive: %w"
	errFmtReadDOCX    = "failed to read %s: %w"
	errFmtDecodeDOCX  = "failed to decode %s: %w"
	errMissingDOCXMsg = "docx archive has no word/document.xml"
)

var errMissingDOCXBody = errors.New(errMissingDOCXMsg)

// extractDOCX returns the paragraphs of the main document part joined by
// newlines.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf(errFmtOpenDOCX, err)
	}

	for _, file := range archive.File {
		if file.Name != docxBodyPart {
			continue
		}

		body, openErr := file.Open()
		if openErr != nil {
			return "", fmt.Errorf(errFmtReadDOCX, docxBodyPart, openErr)
		}

		paragraphs, decodeErr := readParagraphs(body)
		_ = body.Close()

		if decodeErr != nil {
			return "", fmt.Errorf(errFmtDecodeDOCX, docxBodyPart, decodeErr)
		}

		return strings.Join(paragraphs, paragraphJoin), nil
	}

	return "", errMissingDOCXBody
}

// readParagraphs walks the WordprocessingML token stream collecting the
// text runs of each w:p element. Paragraphs nest inside text boxes; a
// nested paragraph is emitted when it closes and the enclosing one keeps
// collecting its own runs.
func readParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		open       []*strings.Builder
		inText     bool
	)

	write := func(s string) {
		if len(open) > 0 {
			open[len(open)-1].WriteString(s)
		}
	}

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			return paragraphs, nil
		}

		if err != nil {
			return nil, err
		}

		switch tok := token.(type) {
		case xml.StartElement:
			if tok.Name.Space != wordNamespace {
				continue
			}

			switch tok.Name.Local {
			case elemParagraph:
				open = append(open, &strings.Builder{})
			case elemText:
				inText = true
			case elemTab:
				write("\t")
			case elemBreak:
				write("\n")
			}
		case xml.EndElement:
			if tok.Name.Space != wordNamespace {
				continue
			}

			switch tok.Name.Local {
			case elemText:
				inText = false
			case elemParagraph:
				if len(open) > 0 {
					paragraphs = append(paragraphs, open[len(open)-1].String())
					open = open[:len(open)-1]
				}
			}
		case xml.CharData:
			if inText {
				write(string(tok))
			}
		}
	}
}
