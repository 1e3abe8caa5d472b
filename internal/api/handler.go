// Package api exposes the content pipeline over HTTP.
//
// Handlers validate requests, call the script generator, translator,
// synthesizer and document extractor, persist generated audio and shape the
// JSON responses. Provider failures are mapped per endpoint: script
// generation fails loudly, translation and synthesis degrade.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/book-expert/edu-content-service/internal/audio"
	"github.com/book-expert/edu-content-service/internal/script"
	"github.com/book-expert/edu-content-service/internal/translate"
	"github.com/book-expert/edu-content-service/internal/tts"
	"github.com/book-expert/logger"
	"github.com/gin-gonic/gin"
)

const (
	msgRunning      = "🎓 EduAI Pro API is running!"
	msgHealthy      = "Backend is running smoothly! 🚀"
	statusActive    = "active"
	statusHealthy   = "healthy"
	defaultAudioURL = "/audio"
)

// ScriptGenerator produces lecture and video scripts.
type ScriptGenerator interface {
	Generate(ctx context.Context, req script.Request) (string, error)
	GenerateVideo(ctx context.Context, req script.Request) (string, error)
	ConvertToVideo(ctx context.Context, text string) (string, error)
}

// Translator translates text into a target language key.
type Translator interface {
	Translate(ctx context.Context, text, key string) translate.Result
}

// Synthesizer turns text into speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) tts.Result
}

// LanguageDetector guesses the ISO 639-1 code of a text.
type LanguageDetector interface {
	Detect(text string) (string, bool)
}

// AudioStore persists generated audio.
type AudioStore interface {
	Save(data []byte, text string) (audio.Artifact, error)
	Exists(artifact audio.Artifact) bool
}

// AudioRegistry indexes saved audio by id.
type AudioRegistry interface {
	Add(artifact audio.Artifact)
	Get(id string) (audio.Artifact, bool)
}

// Archiver mirrors saved audio in the background and returns the mirrored
// copy when the local file is gone.
type Archiver interface {
	Submit(artifact audio.Artifact, data []byte) bool
	Fetch(ctx context.Context, artifact audio.Artifact) ([]byte, error)
}

// Config holds the HTTP-facing settings of the handlers.
type Config struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	// AudioMountPath is the URL prefix under which AudioDir is served.
	AudioMountPath     string
	AudioDir           string
	MaxUploadBytes     int64
	AllowedUploadTypes []string
}

// Dependencies are the collaborators used by the handlers. Archiver may be
// nil.
type Dependencies struct {
	Scripts     ScriptGenerator
	Translator  Translator
	Synthesizer Synthesizer
	Detector    LanguageDetector
	Store       AudioStore
	Registry    AudioRegistry
	Archiver    Archiver
	Log         *logger.Logger
}

// Handler serves the content endpoints.
type Handler struct {
	cfg  Config
	deps Dependencies
}

// NewHandler creates a Handler.
func NewHandler(cfg Config, deps Dependencies) *Handler {
	if cfg.AudioMountPath == "" {
		cfg.AudioMountPath = defaultAudioURL
	}

	return &Handler{cfg: cfg, deps: deps}
}

// NewRouter builds the gin engine with middleware, routes and the static
// audio mount.
func NewRouter(cfg Config, deps Dependencies) *gin.Engine {
	handler := NewHandler(cfg, deps)

	engine := gin.New()
	engine.Use(
		Recovery(deps.Log),
		RequestID(),
		CORS(cfg.AllowedOrigins),
		RequestLogger(deps.Log),
	)

	handler.Register(engine)

	return engine
}

// Register mounts the endpoints on engine.
func (h *Handler) Register(engine *gin.Engine) {
	engine.GET("/", h.Root)
	engine.GET("/health", h.Health)
	engine.POST("/generate-script", h.GenerateScript)
	engine.POST("/generate-video-script", h.GenerateVideoScript)
	engine.POST("/translate-script", h.TranslateScript)
	engine.POST("/text-to-speech", h.TextToSpeech)
	engine.POST("/upload-document", h.UploadDocument)
	engine.GET("/download-audio/:audio_id", h.DownloadAudio)

	if h.cfg.AudioDir != "" {
		engine.Static(h.cfg.AudioMountPath, h.cfg.AudioDir)
	}
}

// Root describes the service and its endpoints.
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": msgRunning,
		"version": h.cfg.Version,
		"status":  statusActive,
		"endpoints": gin.H{
			"script_generation": "/generate-script",
			"video_script":      "/generate-video-script",
			"translation":       "/translate-script",
			"text_to_speech":    "/text-to-speech",
			"document_upload":   "/upload-document",
			"audio_download":    "/download-audio/{audio_id}",
			"health_check":      "/health",
		},
	})
}

// Health reports liveness with a fresh timestamp.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    statusHealthy,
		"timestamp": time.Now().Format(time.RFC3339Nano),
		"service":   h.cfg.ServiceName,
		"message":   msgHealthy,
	})
}
