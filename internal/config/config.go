// Package config provides the configuration structure for the edu-content-service.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/pelletier/go-toml/v2"
)

// Default values applied when the loaded configuration leaves a field unset.
const (
	defaultHost                 = "0.0.0.0"
	defaultPort                 = 8000
	defaultReadTimeoutSeconds   = 30
	defaultWriteTimeoutSeconds  = 300
	defaultShutdownSeconds      = 5
	defaultLLMBaseURL           = "https://api.groq.com/openai/v1"
	defaultLLMModel             = "llama3-70b-8192"
	defaultLLMAPIKeyEnv         = "GROQ_API_KEY"
	defaultLLMTimeoutSeconds    = 120
	defaultChunkBudget          = 2000
	defaultTranslationTemp      = 0.3
	defaultTTSServiceURL        = "http://127.0.0.1:5002"
	defaultTTSTimeoutSeconds    = 90
	defaultTTSLanguage          = "en"
	defaultKnowledgeBaseURL     = "https://en.wikipedia.org"
	defaultKnowledgeUserAgent   = "EducationalScriptApp/1.0"
	defaultKnowledgeTimeout     = 15
	defaultKnowledgeRelated     = 3
	defaultAudioOutputDir       = "audio_files"
	defaultAudioMountPath       = "/audio"
	defaultAudioCapacity        = 1000
	defaultAudioTTLMinutes      = 24 * 60
	defaultMaxUploadBytes       = 10 * 1024 * 1024
	defaultNATSBucket           = "EDU_AUDIO_FILES"
	defaultNATSAudioSubject     = "audio.chunk.created"
	defaultNATSURL              = "nats://127.0.0.1:4222"
	defaultArchiveWorkers       = 4
	defaultServiceName          = "EduAI Pro API"
	defaultServiceVersion       = "1.0.0"
	mimeTextPlain               = "text/plain"
	mimePDF                     = "application/pdf"
	mimeDOCX                    = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	errFmtReadConfigFile        = "failed to read config file '%s': %w"
	errFmtParseConfig           = "failed to parse configuration: %w"
	errFmtInvalidConfig         = "invalid configuration: %w"
	errFmtLoadFromConfigurator  = "failed to load configuration from configurator: %w"
	errFmtPortOutOfRange        = "%w: got %d"
	errFmtBudgetNotPositive     = "%w: got %d"
)

var (
	// ErrPortOutOfRange indicates the server port is not a valid TCP port.
	ErrPortOutOfRange = errors.New("server port must be between 1 and 65535")
	// ErrChunkBudgetNotPositive indicates the translation chunk budget is not positive.
	ErrChunkBudgetNotPositive = errors.New("translation chunk budget must be positive")
	// ErrAudioDirEmpty indicates the audio output directory is empty.
	ErrAudioDirEmpty = errors.New("audio output directory cannot be empty")
	// ErrNATSBucketEmpty indicates NATS archiving is enabled without a bucket.
	ErrNATSBucketEmpty = errors.New("nats audio object store bucket cannot be empty")
)

// ServerConfig holds the HTTP listener configuration.
type ServerConfig struct {
	Host                string   `toml:"host"`
	Port                int      `toml:"port"`
	ReadTimeoutSeconds  int      `toml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `toml:"write_timeout_seconds"`
	ShutdownSeconds     int      `toml:"shutdown_seconds"`
	AllowedOrigins      []string `toml:"allowed_origins"`
	ServiceName         string   `toml:"service_name"`
	Version             string   `toml:"version"`
}

// LLMConfig holds the language-model provider configuration.
type LLMConfig struct {
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	APIKeyEnv      string `toml:"api_key_env"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TranslationConfig holds the translator configuration.
type TranslationConfig struct {
	ChunkBudget int     `toml:"chunk_budget"`
	Temperature float64 `toml:"temperature"`
}

// TTSConfig holds the text-to-speech provider configuration.
type TTSConfig struct {
	ServiceURL      string `toml:"service_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
	DefaultLanguage string `toml:"default_language"`
}

// KnowledgeConfig holds the external summary source configuration.
type KnowledgeConfig struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RelatedResults int    `toml:"related_results"`
}

// AudioConfig holds the generated audio storage configuration.
type AudioConfig struct {
	OutputDir        string `toml:"output_dir"`
	MountPath        string `toml:"mount_path"`
	RegistryCapacity int    `toml:"registry_capacity"`
	RegistryTTLMins  int    `toml:"registry_ttl_minutes"`
	RemoveOnEvict    bool   `toml:"remove_on_evict"`
}

// UploadConfig holds the document upload limits.
type UploadConfig struct {
	MaxBytes     int64    `toml:"max_bytes"`
	AllowedTypes []string `toml:"allowed_types"`
}

// NATSConfig holds the configuration for the optional audio archive.
type NATSConfig struct {
	Enabled                bool   `toml:"enabled"`
	URL                    string `toml:"url"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket"`
	AudioCreatedSubject    string `toml:"audio_created_subject"`
	ObjectTTLHours         int    `toml:"object_ttl_hours"`
	ArchiveWorkers         int    `toml:"archive_workers"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	Server      ServerConfig      `toml:"server"`
	LLM         LLMConfig         `toml:"llm"`
	Translation TranslationConfig `toml:"translation"`
	TTS         TTSConfig         `toml:"tts"`
	Knowledge   KnowledgeConfig   `toml:"knowledge"`
	Audio       AudioConfig       `toml:"audio"`
	Upload      UploadConfig      `toml:"upload"`
	NATS        NATSConfig        `toml:"nats"`
	Paths       PathsConfig       `toml:"paths"`
}

// Load loads the configuration for the service through the central configurator.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf(errFmtLoadFromConfigurator, err)
	}

	return finalize(&cfg)
}

// LoadFile reads and parses a TOML configuration file from disk.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(errFmtReadConfigFile, path, err)
	}

	return Parse(data)
}

// Parse decodes TOML data, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	err := toml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf(errFmtParseConfig, err)
	}

	return finalize(&cfg)
}

func finalize(cfg *Config) (*Config, error) {
	cfg.ApplyDefaults()

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf(errFmtInvalidConfig, validateErr)
	}

	return cfg, nil
}

// ApplyDefaults fills every unset field with its default value.
func (c *Config) ApplyDefaults() {
	c.Server.applyDefaults()
	c.LLM.applyDefaults()
	c.Translation.applyDefaults()
	c.TTS.applyDefaults()
	c.Knowledge.applyDefaults()
	c.Audio.applyDefaults()
	c.Upload.applyDefaults()
	c.NATS.applyDefaults()

	if c.Paths.BaseLogsDir == "" {
		c.Paths.BaseLogsDir = os.TempDir()
	}
}

// Validate checks the values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf(errFmtPortOutOfRange, ErrPortOutOfRange, c.Server.Port)
	}

	if c.Translation.ChunkBudget <= 0 {
		return fmt.Errorf(errFmtBudgetNotPositive, ErrChunkBudgetNotPositive, c.Translation.ChunkBudget)
	}

	if c.Audio.OutputDir == "" {
		return ErrAudioDirEmpty
	}

	if c.NATS.Enabled && c.NATS.AudioObjectStoreBucket == "" {
		return ErrNATSBucketEmpty
	}

	return nil
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ReadTimeout returns the request read timeout.
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the response write timeout. It bounds the slowest
// provider round trip a handler can make.
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns how long in-flight requests get on shutdown.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownSeconds) * time.Second
}

// Timeout returns the provider call timeout as a duration.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutSeconds) * time.Second
}

// APIKey reads the provider key from the configured environment variable.
func (l LLMConfig) APIKey() string {
	return os.Getenv(l.APIKeyEnv)
}

// Timeout returns the provider call timeout as a duration.
func (t TTSConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// Timeout returns the lookup timeout as a duration.
func (k KnowledgeConfig) Timeout() time.Duration {
	return time.Duration(k.TimeoutSeconds) * time.Second
}

// ObjectTTL returns how long archived audio is kept. Zero keeps it forever.
func (n NATSConfig) ObjectTTL() time.Duration {
	return time.Duration(n.ObjectTTLHours) * time.Hour
}

// TTL returns how long a generated audio id stays downloadable.
func (a AudioConfig) TTL() time.Duration {
	return time.Duration(a.RegistryTTLMins) * time.Minute
}

func (s *ServerConfig) applyDefaults() {
	if s.Host == "" {
		s.Host = defaultHost
	}

	if s.Port == 0 {
		s.Port = defaultPort
	}

	if s.ReadTimeoutSeconds == 0 {
		s.ReadTimeoutSeconds = defaultReadTimeoutSeconds
	}

	if s.WriteTimeoutSeconds == 0 {
		s.WriteTimeoutSeconds = defaultWriteTimeoutSeconds
	}

	if s.ShutdownSeconds == 0 {
		s.ShutdownSeconds = defaultShutdownSeconds
	}

	if len(s.AllowedOrigins) == 0 {
		s.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:3001",
		}
	}

	if s.ServiceName == "" {
		s.ServiceName = defaultServiceName
	}

	if s.Version == "" {
		s.Version = defaultServiceVersion
	}
}

func (l *LLMConfig) applyDefaults() {
	if l.BaseURL == "" {
		l.BaseURL = defaultLLMBaseURL
	}

	if l.Model == "" {
		l.Model = defaultLLMModel
	}

	if l.APIKeyEnv == "" {
		l.APIKeyEnv = defaultLLMAPIKeyEnv
	}

	if l.TimeoutSeconds == 0 {
		l.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (t *TranslationConfig) applyDefaults() {
	if t.ChunkBudget == 0 {
		t.ChunkBudget = defaultChunkBudget
	}

	if t.Temperature == 0 {
		t.Temperature = defaultTranslationTemp
	}
}

func (t *TTSConfig) applyDefaults() {
	if t.ServiceURL == "" {
		t.ServiceURL = defaultTTSServiceURL
	}

	if t.TimeoutSeconds == 0 {
		t.TimeoutSeconds = defaultTTSTimeoutSeconds
	}

	if t.DefaultLanguage == "" {
		t.DefaultLanguage = defaultTTSLanguage
	}
}

func (k *KnowledgeConfig) applyDefaults() {
	if k.BaseURL == "" {
		k.BaseURL = defaultKnowledgeBaseURL
	}

	if k.UserAgent == "" {
		k.UserAgent = defaultKnowledgeUserAgent
	}

	if k.TimeoutSeconds == 0 {
		k.TimeoutSeconds = defaultKnowledgeTimeout
	}

	if k.RelatedResults == 0 {
		k.RelatedResults = defaultKnowledgeRelated
	}
}

func (a *AudioConfig) applyDefaults() {
	if a.OutputDir == "" {
		a.OutputDir = defaultAudioOutputDir
	}

	if a.MountPath == "" {
		a.MountPath = defaultAudioMountPath
	}

	if a.RegistryCapacity == 0 {
		a.RegistryCapacity = defaultAudioCapacity
	}

	if a.RegistryTTLMins == 0 {
		a.RegistryTTLMins = defaultAudioTTLMinutes
	}
}

func (u *UploadConfig) applyDefaults() {
	if u.MaxBytes == 0 {
		u.MaxBytes = defaultMaxUploadBytes
	}

	if len(u.AllowedTypes) == 0 {
		u.AllowedTypes = []string{mimeTextPlain, mimePDF, mimeDOCX}
	}
}

func (n *NATSConfig) applyDefaults() {
	if n.URL == "" {
		n.URL = defaultNATSURL
	}

	if n.AudioObjectStoreBucket == "" {
		n.AudioObjectStoreBucket = defaultNATSBucket
	}

	if n.AudioCreatedSubject == "" {
		n.AudioCreatedSubject = defaultNATSAudioSubject
	}

	if n.ArchiveWorkers == 0 {
		n.ArchiveWorkers = defaultArchiveWorkers
	}
}
