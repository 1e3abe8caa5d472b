package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	apiChatCompletions = "/chat/completions"
	headerContentType  = "Content-Type"
	headerAuth         = "Authorization"
	contentTypeJSON    = "application/json"
	bearerPrefix       = "Bearer "
)

const (
	errFmtMarshalRequest   = "failed to marshal completion request: %w"
	errFmtCreateRequest    = "failed to create completion request: %w"
	errFmtSendRequest      = "failed to send completion request to %s: %w"
	errFmtReadResponse     = "failed to read completion response: %w"
	errFmtDecodeResponse   = "failed to decode completion response: %w"
	errFmtProviderError    = "%w: %s: %s (type: %s)"
	errFmtProviderRawError = "%w: %s, body: %s"
)

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("llm api key is not configured")
	// ErrProvider is returned when the provider answers with a non-OK status.
	ErrProvider = errors.New("llm provider returned an error")
	// ErrNoChoices is returned when the provider answers without any choice.
	ErrNoChoices = errors.New("llm provider returned no choices")
)

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// NewClient creates a completion client. The baseURL is the API root
// (e.g. "https://api.groq.com/openai/v1") and model is used when a request
// does not name one.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
	}
}

// Complete performs exactly one completion call. No retries are attempted.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if c.apiKey == "" {
		return CompletionResponse{}, ErrMissingAPIKey
	}

	body, err := json.Marshal(c.buildRequest(req))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf(errFmtMarshalRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+apiChatCompletions,
		bytes.NewReader(body),
	)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf(errFmtCreateRequest, err)
	}

	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAuth, bearerPrefix+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf(errFmtSendRequest, c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf(errFmtReadResponse, err)
	}

	if resp.StatusCode != http.StatusOK {
		return CompletionResponse{}, parseErrorResponse(resp.Status, data)
	}

	var decoded chatResponse

	err = json.Unmarshal(data, &decoded)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf(errFmtDecodeResponse, err)
	}

	if len(decoded.Choices) == 0 {
		return CompletionResponse{}, ErrNoChoices
	}

	return CompletionResponse{
		Content: decoded.Choices[0].Message.Content,
		Model:   decoded.Model,
		Usage:   decoded.Usage,
	}, nil
}

func (c *Client) buildRequest(req CompletionRequest) chatRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: req.SystemPrompt})
	}

	messages = append(messages, req.Messages...)

	return chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
}

// parseErrorResponse decodes the provider error envelope, falling back to
// the raw body when it is not JSON.
func parseErrorResponse(status string, body []byte) error {
	var envelope errorEnvelope

	err := json.Unmarshal(body, &envelope)
	if err == nil && envelope.Error.Message != "" {
		return fmt.Errorf(errFmtProviderError, ErrProvider, status,
			envelope.Error.Message, envelope.Error.Type)
	}

	return fmt.Errorf(errFmtProviderRawError, ErrProvider, status, string(body))
}
