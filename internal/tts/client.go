// Package tts synthesizes speech audio by calling a standalone
// text-to-speech HTTP service.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

// API endpoints and paths.
const (
	apiGenerateSpeech = "/v1/generate/speech"
	apiHealth         = "/health"
)

// HTTP headers.
const (
	headerContentType = "Content-Type"
	headerAccept      = "Accept"
	contentTypeJSON   = "application/json"
	contentTypeMPEG   = "audio/mpeg"
	audioTypePrefix   = "audio/"
)

// Default values.
const (
	DefaultSpeed    = 1.0
	defaultLanguage = "en"
)

// Error messages.
const (
	errFmtUnexpectedContentType = "%w: expected audio/*, got %q"
	errFmtServiceErrorWithCode  = "%w (%s): %s (code: %s)"
	errFmtServiceNonOKStatus    = "%w: %s, body: %s"
	errFmtMarshalRequest        = "failed to marshal request: %w"
	errFmtCreateRequest         = "failed to create request: %w"
	errFmtSendRequest           = "failed to send request to TTS service at %s: %w"
	errFmtReadAudio             = "failed to read audio data: %w"
	errFmtHealthRequest         = "failed to create health check request: %w"
	errFmtHealthSend            = "health check failed for service at %s: %w"
	errFmtHealthStatus          = "%w: %s"
)

var (
	// ErrTextEmpty is returned when a request carries no text.
	ErrTextEmpty = errors.New("text cannot be empty")
	// ErrEmptyAudio is returned when the service answers without audio.
	ErrEmptyAudio = errors.New("received empty audio data")
	// ErrUnexpectedContentType is returned when the service does not answer with audio.
	ErrUnexpectedContentType = errors.New("unexpected content type")
	// ErrService is returned when the service answers with a non-OK status.
	ErrService = errors.New("TTS service error")
	// ErrUnhealthy is returned when the health endpoint does not answer OK.
	ErrUnhealthy = errors.New("TTS service is unhealthy")
)

// HTTPClient represents a client for the standalone TTS HTTP service.
type HTTPClient struct {
	httpClient *http.Client
	baseURL    string
}

// Request defines the JSON payload of a speech generation request.
type Request struct {
	// Text contains the input text to convert to speech.
	Text string `json:"text"`

	// Language is the ISO 639-1 code of the text (e.g., "en", "es").
	Language string `json:"language"`

	// Speed is the playback rate multiplier. 1.0 is normal speed.
	Speed float64 `json:"speed"`

	// Voice optionally names a voice profile known to the service.
	Voice string `json:"voice,omitempty"`
}

// ErrorResponse represents a structured error response from the TTS service.
type ErrorResponse struct {
	Detail    string `json:"detail"`
	ErrorCode string `json:"error_code,omitempty"`
}

// NewHTTPClient creates and configures an HTTP client for the TTS service.
// The baseURL should include the protocol and port (e.g., "http://localhost:5002").
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateSpeech sends a speech generation request and returns the raw
// audio bytes. Any audio/* content type is accepted.
func (c *HTTPClient) GenerateSpeech(ctx context.Context, req Request) ([]byte, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrTextEmpty
	}

	if req.Speed == 0 {
		req.Speed = DefaultSpeed
	}

	if req.Language == "" {
		req.Language = defaultLanguage
	}

	requestBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf(errFmtMarshalRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+apiGenerateSpeech,
		bytes.NewReader(requestBody),
	)
	if err != nil {
		return nil, fmt.Errorf(errFmtCreateRequest, err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeMPEG)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf(errFmtSendRequest, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	contentType := resp.Header.Get(headerContentType)
	if !isAudioContentType(contentType) {
		return nil, fmt.Errorf(errFmtUnexpectedContentType, ErrUnexpectedContentType, contentType)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf(errFmtReadAudio, err)
	}

	if len(audioData) == 0 {
		return nil, ErrEmptyAudio
	}

	return audioData, nil
}

// HealthCheck verifies that the TTS service is running and operational.
func (c *HTTPClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+apiHealth, http.NoBody)
	if err != nil {
		return fmt.Errorf(errFmtHealthRequest, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf(errFmtHealthSend, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf(errFmtHealthStatus, ErrUnhealthy, resp.Status)
	}

	return nil
}

// parseErrorResponse decodes a structured JSON error from the service,
// falling back to the raw body so diagnostics are preserved.
func (c *HTTPClient) parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errorResp ErrorResponse

	err := json.Unmarshal(body, &errorResp)
	if err == nil && errorResp.Detail != "" {
		return fmt.Errorf(errFmtServiceErrorWithCode,
			ErrService, resp.Status, errorResp.Detail, errorResp.ErrorCode)
	}

	return fmt.Errorf(errFmtServiceNonOKStatus, ErrService, resp.Status, string(body))
}

func isAudioContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return strings.HasPrefix(mediaType, audioTypePrefix)
}
