package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/book-expert/edu-content-service/internal/api"
	"github.com/book-expert/edu-content-service/internal/archive"
	"github.com/book-expert/edu-content-service/internal/audio"
	"github.com/book-expert/edu-content-service/internal/config"
	"github.com/book-expert/edu-content-service/internal/knowledge"
	"github.com/book-expert/edu-content-service/internal/languages"
	"github.com/book-expert/edu-content-service/internal/llm"
	"github.com/book-expert/edu-content-service/internal/objectstore"
	"github.com/book-expert/edu-content-service/internal/script"
	"github.com/book-expert/edu-content-service/internal/translate"
	"github.com/book-expert/edu-content-service/internal/tts"
	"github.com/book-expert/edu-content-service/internal/tts/text"
	"github.com/book-expert/logger"
	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
)

const (
	natsClientName         = "edu-content-service"
	speechHealthTimeout    = 5 * time.Second
	logFmtSpeechHealthy    = "Speech service at %s is healthy"
	logFmtSpeechUnhealthy  = "Speech service at %s is unavailable, synthesis will fail until it recovers: %v"
	logFmtForgettingAudio  = "Forgetting %d registered audio ids"
	logFmtMissingAPIKey    = "Environment variable %s is not set; completion calls will fail"
	logFmtKnowledgeEnabled = "Knowledge lookup enabled against %s"
	logFmtArchiveEnabled   = "Archiving audio to bucket %s, announcing on %s"
	logFmtEvictRemoveFail  = "Failed to remove evicted audio %s: %v"
	errFmtAudioStore       = "failed to prepare audio store: %w"
	errFmtNATSConnect      = "failed to connect to NATS at %s: %w"
	errFmtJetStream        = "failed to get JetStream context: %w"
	errFmtObjectStore      = "failed to open audio object store: %w"
)

// application owns the long-lived components of the service.
type application struct {
	handler  http.Handler
	registry *audio.Registry
	archiver *archive.Archiver
	natsConn *nats.Conn
	log      *logger.Logger
}

func newApplication(cfg *config.Config, log *logger.Logger) (*application, error) {
	gin.SetMode(gin.ReleaseMode)

	apiKey := cfg.LLM.APIKey()
	if apiKey == "" {
		log.Warn(logFmtMissingAPIKey, cfg.LLM.APIKeyEnv)
	}

	completer := llm.NewClient(cfg.LLM.BaseURL, apiKey, cfg.LLM.Model, cfg.LLM.Timeout())

	var summarizer script.Summarizer

	if cfg.Knowledge.Enabled {
		summarizer = knowledge.NewWikipediaClient(
			cfg.Knowledge.BaseURL,
			cfg.Knowledge.UserAgent,
			cfg.Knowledge.RelatedResults,
			cfg.Knowledge.Timeout(),
		)

		log.Info(logFmtKnowledgeEnabled, cfg.Knowledge.BaseURL)
	}

	speechClient := tts.NewHTTPClient(cfg.TTS.ServiceURL, cfg.TTS.Timeout())
	checkSpeechService(speechClient, cfg.TTS.ServiceURL, log)

	detector := languages.NewDetector(cfg.TTS.DefaultLanguage)
	synthesizer := tts.NewSynthesizer(
		speechClient,
		detector,
		text.NewCleaner(),
		log,
		cfg.TTS.DefaultLanguage,
	)

	store, err := audio.NewStore(cfg.Audio.OutputDir)
	if err != nil {
		return nil, fmt.Errorf(errFmtAudioStore, err)
	}

	app := &application{log: log}
	app.registry = audio.NewRegistry(cfg.Audio.RegistryCapacity, cfg.Audio.TTL(), app.evictHook(store, cfg.Audio.RemoveOnEvict))

	deps := api.Dependencies{
		Scripts:     script.NewGenerator(completer, summarizer, log),
		Translator:  translate.NewTranslator(completer, log, cfg.Translation.ChunkBudget, cfg.Translation.Temperature),
		Synthesizer: synthesizer,
		Detector:    detector,
		Store:       store,
		Registry:    app.registry,
		Log:         log,
	}

	if cfg.NATS.Enabled {
		err = app.connectArchive(cfg.NATS)
		if err != nil {
			app.Close()

			return nil, err
		}

		deps.Archiver = app.archiver
	}

	app.handler = api.NewRouter(api.Config{
		ServiceName:        cfg.Server.ServiceName,
		Version:            cfg.Server.Version,
		AllowedOrigins:     cfg.Server.AllowedOrigins,
		AudioMountPath:     cfg.Audio.MountPath,
		AudioDir:           store.Dir(),
		MaxUploadBytes:     cfg.Upload.MaxBytes,
		AllowedUploadTypes: cfg.Upload.AllowedTypes,
	}, deps)

	return app, nil
}

type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// checkSpeechService reports whether the speech service answers its health
// endpoint. The service starts either way.
func checkSpeechService(checker healthChecker, serviceURL string, log *logger.Logger) bool {
	ctx, cancel := context.WithTimeout(context.Background(), speechHealthTimeout)
	defer cancel()

	err := checker.HealthCheck(ctx)
	if err != nil {
		log.Warn(logFmtSpeechUnhealthy, serviceURL, err)

		return false
	}

	log.Info(logFmtSpeechHealthy, serviceURL)

	return true
}

// evictHook deletes the backing file of an expired audio id when removal
// is enabled.
func (a *application) evictHook(store *audio.Store, remove bool) audio.EvictFunc {
	if !remove {
		return nil
	}

	return func(artifact audio.Artifact) {
		removeErr := store.Remove(artifact)
		if removeErr != nil {
			a.log.Warn(logFmtEvictRemoveFail, artifact.ID, removeErr)
		}
	}
}

func (a *application) connectArchive(cfg config.NATSConfig) error {
	natsConn, err := nats.Connect(cfg.URL, nats.Name(natsClientName))
	if err != nil {
		return fmt.Errorf(errFmtNATSConnect, cfg.URL, err)
	}

	a.natsConn = natsConn

	jetstreamContext, err := natsConn.JetStream()
	if err != nil {
		return fmt.Errorf(errFmtJetStream, err)
	}

	store, err := objectstore.New(jetstreamContext, cfg.AudioObjectStoreBucket, cfg.ObjectTTL())
	if err != nil {
		return fmt.Errorf(errFmtObjectStore, err)
	}

	a.archiver = archive.New(store, natsConn, cfg.AudioCreatedSubject, cfg.ArchiveWorkers, a.log)
	a.log.Info(logFmtArchiveEnabled, cfg.AudioObjectStoreBucket, cfg.AudioCreatedSubject)

	return nil
}

// Handler returns the HTTP handler of the service.
func (a *application) Handler() http.Handler {
	return a.handler
}

// Close drains pending archive uploads, closes the NATS connection and
// forgets the registered audio ids. Audio files stay on disk.
func (a *application) Close() {
	if a.archiver != nil {
		a.archiver.Close()
	}

	if a.natsConn != nil {
		_ = a.natsConn.Drain()
	}

	if a.registry != nil {
		a.log.Info(logFmtForgettingAudio, a.registry.Len())
		a.registry.Close()
	}
}
