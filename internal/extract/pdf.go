package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	errFmtOpenPDF     = "failed to open pdf: %w"
	errFmtReadPDFPage = "failed to read pdf page %d: %w"
	errFmtPDFPanic    = "%w: %v"
	pageSeparator     = "\n"
)

var (
	errEmptyPDFContent = errors.New("pdf content is empty")
	errPDFParser       = errors.New("pdf parser failed")
)

// extractPDF returns the plain text of every page joined by newlines. The
// parser panics on some malformed inputs; those are converted to errors.
func extractPDF(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", errEmptyPDFContent
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf(errFmtPDFPanic, errPDFParser, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf(errFmtOpenPDF, err)
	}

	pages := make([]string, 0, reader.NumPage())

	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			return "", fmt.Errorf(errFmtReadPDFPage, i, pageErr)
		}

		pages = append(pages, pageText)
	}

	return strings.Join(pages, pageSeparator), nil
}
