package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/book-expert/edu-content-service/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

type capturedRequest struct {
	Model       string        `json:"model"`
	Messages    []llm.Message `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

func newCompletionServer(t *testing.T, content string, captured *capturedRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer "+testAPIKey, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "served-model",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": content}},
			},
			"usage": map[string]int{"prompt_tokens": 3, "completion_tokens": 5, "total_tokens": 8},
		})
	}))
}

func TestClient_Complete_Success(t *testing.T) {
	t.Parallel()

	var captured capturedRequest

	server := newCompletionServer(t, "Generated text", &captured)
	defer server.Close()

	client := llm.NewClient(server.URL+"/", testAPIKey, "default-model", 5*time.Second)

	resp, err := client.Complete(context.Background(), llm.CompletionRequest{
		SystemPrompt: "be helpful",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "hello"}},
		Temperature:  0.3,
		MaxTokens:    100,
	})
	require.NoError(t, err)

	assert.Equal(t, "Generated text", resp.Content)
	assert.Equal(t, "served-model", resp.Model)
	assert.Equal(t, 8, resp.Usage.TotalTokens)

	assert.Equal(t, "default-model", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "be helpful"}, captured.Messages[0])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "hello"}, captured.Messages[1])
	assert.InEpsilon(t, 0.3, captured.Temperature, 0.001)
	assert.Equal(t, 100, captured.MaxTokens)
}

func TestClient_Complete_ModelOverride(t *testing.T) {
	t.Parallel()

	var captured capturedRequest

	server := newCompletionServer(t, "ok", &captured)
	defer server.Close()

	client := llm.NewClient(server.URL, testAPIKey, "default-model", 5*time.Second)

	_, err := client.Complete(context.Background(), llm.CompletionRequest{
		Model:    "other-model",
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "other-model", captured.Model)
	require.Len(t, captured.Messages, 1)
}

func TestClient_Complete_MissingAPIKey(t *testing.T) {
	t.Parallel()

	client := llm.NewClient("http://127.0.0.1:1", "", "model", time.Second)

	_, err := client.Complete(context.Background(), llm.CompletionRequest{})
	require.ErrorIs(t, err, llm.ErrMissingAPIKey)
}

func TestClient_Complete_ProviderErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		status      int
		body        string
		wantErr     error
		wantMessage string
	}{
		{
			name:        "structured error",
			status:      http.StatusTooManyRequests,
			body:        `{"error":{"message":"rate limit reached","type":"rate_limit","code":"429"}}`,
			wantErr:     llm.ErrProvider,
			wantMessage: "rate limit reached",
		},
		{
			name:        "raw error",
			status:      http.StatusBadGateway,
			body:        "upstream down",
			wantErr:     llm.ErrProvider,
			wantMessage: "upstream down",
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"model":"m","choices":[]}`,
			wantErr: llm.ErrNoChoices,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := llm.NewClient(server.URL, testAPIKey, "model", 5*time.Second)

			_, err := client.Complete(context.Background(), llm.CompletionRequest{})
			require.ErrorIs(t, err, tc.wantErr)

			if tc.wantMessage != "" {
				assert.Contains(t, err.Error(), tc.wantMessage)
			}
		})
	}
}

func TestClient_Complete_Unreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := llm.NewClient(url, testAPIKey, "model", time.Second)

	_, err := client.Complete(context.Background(), llm.CompletionRequest{})
	require.Error(t, err)
}

func TestComplete_TrimsContent(t *testing.T) {
	t.Parallel()

	var captured capturedRequest

	server := newCompletionServer(t, "\n  answer  \n", &captured)
	defer server.Close()

	client := llm.NewClient(server.URL, testAPIKey, "model", 5*time.Second)

	text, err := llm.CompleteWithTemperature(context.Background(), client, "system", "user", 0.7)
	require.NoError(t, err)

	assert.Equal(t, "answer", text)
	assert.InEpsilon(t, 0.7, captured.Temperature, 0.001)
}
