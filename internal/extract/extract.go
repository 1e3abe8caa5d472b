// Package extract pulls plain text out of uploaded documents.
//
// Extraction is a pure function of the document bytes, its filename and its
// declared content type. Failures are reported through a tagged Result
// rather than through error-prefixed strings.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies the document format used for extraction.
type Kind string

// Supported document kinds.
const (
	KindText    Kind = "text"
	KindPDF     Kind = "pdf"
	KindDOCX    Kind = "docx"
	KindUnknown Kind = "unknown"
)

// Reason classifies an extraction failure.
type Reason string

// Failure reasons.
const (
	// ReasonCorrupt means the document could not be parsed.
	ReasonCorrupt Reason = "corrupt"
	// ReasonEmpty means the document parsed but contained no text.
	ReasonEmpty Reason = "empty"
)

// Content types recognised when a filename has no usable extension.
const (
	ContentTypeText = "text/plain"
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

const (
	extTXT  = ".txt"
	extPDF  = ".pdf"
	extDOCX = ".docx"
)

const (
	msgNoText         = "No text could be extracted from the document"
	errFmtCorruptKind = "Error extracting %s content: %v"
)

// ErrNoText is the error carried by a ReasonEmpty failure.
var ErrNoText = errors.New("document contains no text")

// Failure describes why extraction did not produce text.
type Failure struct {
	Reason Reason
	Err    error
}

// Result is the outcome of an extraction.
type Result struct {
	Kind    Kind
	Text    string
	Failure *Failure
}

// Failed reports whether extraction failed.
func (r Result) Failed() bool {
	return r.Failure != nil
}

// Message returns the displayable failure text, or "" on success.
func (r Result) Message() string {
	if r.Failure == nil {
		return ""
	}

	if r.Failure.Reason == ReasonEmpty {
		return msgNoText
	}

	return fmt.Sprintf(errFmtCorruptKind, strings.ToUpper(string(r.Kind)), r.Failure.Err)
}

// Extract returns the text contained in data.
func Extract(data []byte, filename, contentType string) Result {
	kind := DetectKind(filename, contentType)

	var (
		text string
		err  error
	)

	switch kind {
	case KindPDF:
		text, err = extractPDF(data)
		text = strings.TrimSpace(text)
	case KindDOCX:
		text, err = extractDOCX(data)
		text = strings.TrimSpace(text)
	case KindText:
		text = decodeText(data)
	default:
		text = decodeUTF8Lossy(data)
	}

	if err != nil {
		return Result{Kind: kind, Failure: &Failure{Reason: ReasonCorrupt, Err: err}}
	}

	if strings.TrimSpace(text) == "" {
		return Result{Kind: kind, Failure: &Failure{Reason: ReasonEmpty, Err: ErrNoText}}
	}

	return Result{Kind: kind, Text: text}
}

// DetectKind picks the format from the filename extension when a filename
// is present, else from the content type, else plain text.
func DetectKind(filename, contentType string) Kind {
	if filename != "" {
		switch strings.ToLower(filepath.Ext(filename)) {
		case extTXT:
			return KindText
		case extPDF:
			return KindPDF
		case extDOCX:
			return KindDOCX
		default:
			return KindUnknown
		}
	}

	switch contentType {
	case ContentTypePDF:
		return KindPDF
	case ContentTypeDOCX:
		return KindDOCX
	default:
		return KindText
	}
}
