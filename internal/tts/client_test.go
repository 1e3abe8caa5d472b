package tts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/book-expert/edu-content-service/internal/tts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAudioData = "ID3fake-mp3-data"

func createSuccessHandler(t *testing.T, contentType string, captured *tts.Request) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		validateHTTPRequest(t, r)

		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(testAudioData))
	}
}

func validateHTTPRequest(t *testing.T, r *http.Request) {
	t.Helper()

	assert.Equal(t, http.MethodPost, r.Method)
	assert.Equal(t, "/v1/generate/speech", r.URL.Path)
	assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
	assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))
}

func TestHTTPClient_GenerateSpeech_Success(t *testing.T) {
	t.Parallel()

	var captured tts.Request

	server := httptest.NewServer(createSuccessHandler(t, "audio/mpeg", &captured))
	defer server.Close()

	client := tts.NewHTTPClient(server.URL+"/", 10*time.Second)

	audio, err := client.GenerateSpeech(context.Background(), tts.Request{
		Text:     "Bonjour",
		Language: "fr",
		Voice:    "female",
	})
	require.NoError(t, err)

	assert.Equal(t, testAudioData, string(audio))
	assert.Equal(t, "Bonjour", captured.Text)
	assert.Equal(t, "fr", captured.Language)
	assert.Equal(t, "female", captured.Voice)
	assert.InEpsilon(t, tts.DefaultSpeed, captured.Speed, 0.001)
}

func TestHTTPClient_GenerateSpeech_Defaults(t *testing.T) {
	t.Parallel()

	var captured tts.Request

	server := httptest.NewServer(createSuccessHandler(t, "audio/wav; charset=binary", &captured))
	defer server.Close()

	client := tts.NewHTTPClient(server.URL, 10*time.Second)

	_, err := client.GenerateSpeech(context.Background(), tts.Request{Text: "Hello"})
	require.NoError(t, err)

	assert.Equal(t, "en", captured.Language)
	assert.InEpsilon(t, 1.0, captured.Speed, 0.001)
}

func TestHTTPClient_GenerateSpeech_EmptyText(t *testing.T) {
	t.Parallel()

	client := tts.NewHTTPClient("http://127.0.0.1:1", time.Second)

	_, err := client.GenerateSpeech(context.Background(), tts.Request{Text: "  "})
	require.ErrorIs(t, err, tts.ErrTextEmpty)
}

func TestHTTPClient_GenerateSpeech_ServiceError(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		contentType  string
		body         string
		wantContains []string
	}{
		{
			name:         "structured error",
			contentType:  "application/json",
			body:         `{"detail":"Unsupported language","error_code":"BAD_LANGUAGE"}`,
			wantContains: []string{"Unsupported language", "BAD_LANGUAGE"},
		},
		{
			name:         "raw error",
			contentType:  "text/plain",
			body:         "engine crashed",
			wantContains: []string{"engine crashed"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", tc.contentType)
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := tts.NewHTTPClient(server.URL, 10*time.Second)

			_, err := client.GenerateSpeech(context.Background(), tts.Request{Text: "Hello"})
			require.ErrorIs(t, err, tts.ErrService)

			for _, want := range tc.wantContains {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestHTTPClient_GenerateSpeech_WrongContentType(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(createSuccessHandler(t, "application/json", nil))
	defer server.Close()

	client := tts.NewHTTPClient(server.URL, 10*time.Second)

	_, err := client.GenerateSpeech(context.Background(), tts.Request{Text: "Hello"})
	require.ErrorIs(t, err, tts.ErrUnexpectedContentType)
}

func TestHTTPClient_GenerateSpeech_EmptyAudioData(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := tts.NewHTTPClient(server.URL, 10*time.Second)

	_, err := client.GenerateSpeech(context.Background(), tts.Request{Text: "Hello"})
	require.ErrorIs(t, err, tts.ErrEmptyAudio)
}

func TestHTTPClient_GenerateSpeech_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := tts.NewHTTPClient(server.URL, 50*time.Millisecond)

	_, err := client.GenerateSpeech(context.Background(), tts.Request{Text: "Hello"})
	require.Error(t, err)
}

func TestHTTPClient_HealthCheck(t *testing.T) {
	t.Parallel()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	require.NoError(t, tts.NewHTTPClient(healthy.URL, time.Second).HealthCheck(context.Background()))

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	err := tts.NewHTTPClient(down.URL, time.Second).HealthCheck(context.Background())
	require.ErrorIs(t, err, tts.ErrUnhealthy)
}

func TestHTTPClient_HealthCheck_NetworkError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	err := tts.NewHTTPClient(url, time.Second).HealthCheck(context.Background())
	require.Error(t, err)
}
