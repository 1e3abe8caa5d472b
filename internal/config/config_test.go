// Package config_test tests the configuration loading for the edu-content-service.
package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/book-expert/edu-content-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[server]
host = "127.0.0.1"
port = 9000
allowed_origins = ["http://example.test"]

[llm]
base_url = "http://llm.local/v1"
model = "test-model"
api_key_env = "TEST_LLM_KEY"
timeout_seconds = 10

[translation]
chunk_budget = 500
temperature = 0.5

[tts]
service_url = "http://tts.local"
default_language = "fr"

[knowledge]
enabled = true
related_results = 5

[audio]
output_dir = "/tmp/edu-audio"
registry_capacity = 10
registry_ttl_minutes = 30

[upload]
max_bytes = 2048

[nats]
enabled = true
url = "nats://127.0.0.1:4222"
audio_object_store_bucket = "AUDIO_FILES"
audio_created_subject = "audio.created"
`

	cfg, err := config.Parse([]byte(tomlData))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr())
	assert.Equal(t, []string{"http://example.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "http://llm.local/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.Equal(t, "TEST_LLM_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 10*time.Second, cfg.LLM.Timeout())
	assert.Equal(t, 500, cfg.Translation.ChunkBudget)
	assert.InEpsilon(t, 0.5, cfg.Translation.Temperature, 0.001)
	assert.Equal(t, "http://tts.local", cfg.TTS.ServiceURL)
	assert.Equal(t, "fr", cfg.TTS.DefaultLanguage)
	assert.True(t, cfg.Knowledge.Enabled)
	assert.Equal(t, 5, cfg.Knowledge.RelatedResults)
	assert.Equal(t, "/tmp/edu-audio", cfg.Audio.OutputDir)
	assert.Equal(t, 10, cfg.Audio.RegistryCapacity)
	assert.Equal(t, 30*time.Minute, cfg.Audio.TTL())
	assert.Equal(t, int64(2048), cfg.Upload.MaxBytes)
	assert.True(t, cfg.NATS.Enabled)
	assert.Equal(t, "AUDIO_FILES", cfg.NATS.AudioObjectStoreBucket)
	assert.Equal(t, "audio.created", cfg.NATS.AudioCreatedSubject)
}

func TestParseConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(""))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "EduAI Pro API", cfg.Server.ServiceName)
	assert.Len(t, cfg.Server.AllowedOrigins, 3)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "llama3-70b-8192", cfg.LLM.Model)
	assert.Equal(t, "GROQ_API_KEY", cfg.LLM.APIKeyEnv)
	assert.Equal(t, 2000, cfg.Translation.ChunkBudget)
	assert.InEpsilon(t, 0.3, cfg.Translation.Temperature, 0.001)
	assert.Equal(t, "en", cfg.TTS.DefaultLanguage)
	assert.Equal(t, "EducationalScriptApp/1.0", cfg.Knowledge.UserAgent)
	assert.Equal(t, 3, cfg.Knowledge.RelatedResults)
	assert.False(t, cfg.Knowledge.Enabled)
	assert.Equal(t, "audio_files", cfg.Audio.OutputDir)
	assert.Equal(t, "/audio", cfg.Audio.MountPath)
	assert.Equal(t, int64(10*1024*1024), cfg.Upload.MaxBytes)
	assert.Len(t, cfg.Upload.AllowedTypes, 3)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, os.TempDir(), cfg.Paths.BaseLogsDir)
}

func TestParseConfig_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		tomlData string
		wantErr  error
	}{
		{
			name:     "port out of range",
			tomlData: "[server]\nport = 70000\n",
			wantErr:  config.ErrPortOutOfRange,
		},
		{
			name:     "negative chunk budget",
			tomlData: "[translation]\nchunk_budget = -1\n",
			wantErr:  config.ErrChunkBudgetNotPositive,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := config.Parse([]byte(tc.tomlData))
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestParseConfig_Malformed(t *testing.T) {
	t.Parallel()

	_, err := config.Parse([]byte("[server\nport = "))
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "project.toml")
	err := os.WriteFile(path, []byte("[server]\nport = 8123\n"), 0o600)
	require.NoError(t, err)

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 8123, cfg.Server.Port)

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoadFile_ProjectFile(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadFile(filepath.Join("..", "..", "project.toml"))
	require.NoError(t, err)

	assert.True(t, cfg.Knowledge.Enabled)
	assert.True(t, cfg.Audio.RemoveOnEvict)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, 72*time.Hour, cfg.NATS.ObjectTTL())
	assert.Equal(t, 300*time.Second, cfg.Server.WriteTimeout())
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout())
	assert.Len(t, cfg.Upload.AllowedTypes, 3)
}
