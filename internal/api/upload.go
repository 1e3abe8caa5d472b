package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/book-expert/edu-content-service/internal/audio"
	"github.com/book-expert/edu-content-service/internal/extract"
	"github.com/gin-gonic/gin"
)

const (
	uploadFormField       = "file"
	uploadWordsPerMinute  = 150
	previewRunes          = 1000
	previewEllipsis       = "..."
	detectedConfidence    = 0.95
	fallbackConfidence    = 0.5
	multipartOverhead     = 1 << 20
	languageUnknown       = "Unknown"
	msgExtractionFailed   = "Text extraction failed"
	msgNoFile             = "No file provided"
	msgUnsupportedType    = "Unsupported file type"
	errFmtFileTooLarge    = "File too large (max %s)"
	errFmtReadFailed      = "Document upload failed: %v"
	logFmtUploadExtracted = "Extracted %d words from %s (%s)"
	logFmtUploadFailed    = "Extraction failed for %s: %v"
)

// UploadResponse is returned by /upload-document. On extraction failure
// Success is false, Error is set and the metrics are zeroed.
type UploadResponse struct {
	Success                bool    `json:"success"`
	Filename               string  `json:"filename"`
	FileSize               string  `json:"file_size"`
	DetectedLanguage       string  `json:"detected_language"`
	ConfidenceScore        float64 `json:"confidence_score"`
	WordCount              int     `json:"word_count"`
	EstimatedAudioDuration string  `json:"estimated_audio_duration"`
	ExtractedText          string  `json:"extracted_text"`
	Error                  string  `json:"error,omitempty"`
}

// UploadDocument handles POST /upload-document. The content type is checked
// before the file is read.
func (h *Handler) UploadDocument(c *gin.Context) {
	if h.cfg.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile(uploadFormField)
	if err != nil {
		respondError(c, h.formFileError(err))

		return
	}

	if header.Filename == "" {
		respondError(c, validationError(msgNoFile))

		return
	}

	contentType, ok := h.allowedContentType(header.Header.Get("Content-Type"))
	if !ok {
		respondError(c, validationError(msgUnsupportedType))

		return
	}

	if h.cfg.MaxUploadBytes > 0 && header.Size > h.cfg.MaxUploadBytes {
		respondError(c, h.tooLarge())

		return
	}

	data, err := readUpload(header)
	if err != nil {
		respondError(c, internalError(fmt.Sprintf(errFmtReadFailed, err)))

		return
	}

	fileSize := audio.FormatKilobytes(int64(len(data)))

	result := extract.Extract(data, header.Filename, contentType)
	if result.Failed() {
		h.deps.Log.Warn(logFmtUploadFailed, header.Filename, result.Failure.Err)

		c.JSON(http.StatusOK, UploadResponse{
			Success:                false,
			Filename:               header.Filename,
			FileSize:               fileSize,
			DetectedLanguage:       languageUnknown,
			EstimatedAudioDuration: fmt.Sprintf(durationFmt, 0),
			ExtractedText:          msgExtractionFailed,
			Error:                  result.Message(),
		})

		return
	}

	wordCount := len(strings.Fields(result.Text))

	language, detected := h.deps.Detector.Detect(result.Text)

	confidence := fallbackConfidence
	if detected {
		confidence = detectedConfidence
	}

	h.deps.Log.Info(logFmtUploadExtracted, wordCount, header.Filename, result.Kind)

	c.JSON(http.StatusOK, UploadResponse{
		Success:                true,
		Filename:               header.Filename,
		FileSize:               fileSize,
		DetectedLanguage:       language,
		ConfidenceScore:        confidence,
		WordCount:              wordCount,
		EstimatedAudioDuration: fmt.Sprintf(durationFmt, wordCount/uploadWordsPerMinute),
		ExtractedText:          previewText(result.Text),
	})
}

func (h *Handler) formFileError(err error) *Error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return h.tooLarge()
	}

	return validationError(msgNoFile)
}

func (h *Handler) tooLarge() *Error {
	return validationError(fmt.Sprintf(errFmtFileTooLarge, audio.FormatKilobytes(h.cfg.MaxUploadBytes)))
}

// allowedContentType returns the media type without parameters when it is
// one of the configured upload types.
func (h *Handler) allowedContentType(header string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "", false
	}

	return mediaType, slices.Contains(h.cfg.AllowedUploadTypes, mediaType)
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}

	defer func() { _ = file.Close() }()

	return io.ReadAll(file)
}

// previewText caps text at previewRunes runes including the ellipsis.
func previewText(text string) string {
	runes := []rune(text)
	if len(runes) <= previewRunes {
		return text
	}

	return string(runes[:previewRunes-len(previewEllipsis)]) + previewEllipsis
}
