// Package llm provides a client for OpenAI-compatible chat completion APIs.
package llm

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the input for a single completion call.
type CompletionRequest struct {
	// Model overrides the client's default model.
	Model string
	// SystemPrompt is sent as the first system message.
	SystemPrompt string
	Messages     []Message
	Temperature  float64
	// MaxTokens limits the response length. 0 means provider default.
	MaxTokens int
}

// CompletionResponse is the output of a completion call.
type CompletionResponse struct {
	Content string
	Model   string
	Usage   Usage
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completer is anything that can perform a completion call.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}
