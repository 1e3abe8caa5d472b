package api

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/book-expert/edu-content-service/internal/audio"
	"github.com/book-expert/edu-content-service/internal/tts"
	"github.com/gin-gonic/gin"
)

const (
	defaultVoiceType      = "female"
	defaultSpeechLang     = "en"
	audioFormatMP3        = "MP3"
	audioContentType      = "audio/mpeg"
	msgAudioNotFound      = "Audio file not found"
	msgAudioNotOnDisk     = "Audio file not found on disk"
	errFmtSaveFailed      = "Text-to-speech conversion failed: %v"
	logFmtSpeechSaved     = "Saved speech %s (%s, %s)"
	logFmtArchiveRejected = "Archiver rejected audio %s"
	logFmtArchiveFetch    = "Audio %s missing on disk and not restorable from archive: %v"
	attachmentFormat      = `attachment; filename="%s"`
)

// SpeechRequest is the body of /text-to-speech. Voice, pitch and language
// are accepted for compatibility; the synthesizer detects the language
// itself.
type SpeechRequest struct {
	Text      string  `json:"text"       validate:"required"`
	VoiceType string  `json:"voice_type"`
	Speed     float64 `json:"speed"      validate:"min=0.5,max=2"`
	Pitch     int     `json:"pitch"      validate:"min=-10,max=10"`
	Language  string  `json:"language"`
}

func (r *SpeechRequest) applyDefaults() {
	if strings.TrimSpace(r.Text) == "" {
		r.Text = ""
	}

	if r.VoiceType == "" {
		r.VoiceType = defaultVoiceType
	}

	if r.Speed == 0 {
		r.Speed = tts.DefaultSpeed
	}

	if r.Language == "" {
		r.Language = defaultSpeechLang
	}
}

// SpeechResponse is returned by /text-to-speech.
type SpeechResponse struct {
	Success  bool   `json:"success"`
	AudioURL string `json:"audio_url"`
	AudioID  string `json:"audio_id"`
	Duration string `json:"duration"`
	FileSize string `json:"file_size"`
	Format   string `json:"format"`
	Status   string `json:"status"`
}

// TextToSpeech handles POST /text-to-speech.
func (h *Handler) TextToSpeech(c *gin.Context) {
	var req SpeechRequest

	err := bindJSON(c, &req)
	if err != nil {
		respondError(c, err)

		return
	}

	result := h.deps.Synthesizer.Synthesize(c.Request.Context(), req.Text)
	if !result.OK() {
		respondError(c, &Error{Status: http.StatusBadRequest, Code: CodeUpstream, Message: result.Status})

		return
	}

	artifact, err := h.deps.Store.Save(result.Audio, req.Text)
	if err != nil {
		respondError(c, internalError(fmt.Sprintf(errFmtSaveFailed, err)))

		return
	}

	h.deps.Registry.Add(artifact)

	if h.deps.Archiver != nil && !h.deps.Archiver.Submit(artifact, result.Audio) {
		h.deps.Log.Warn(logFmtArchiveRejected, artifact.ID)
	}

	seconds := audio.EstimateSpeechSeconds(len(strings.Fields(req.Text)), req.Speed)
	size := audio.FormatKilobytes(artifact.Size)
	duration := audio.FormatClock(seconds)

	h.deps.Log.Info(logFmtSpeechSaved, artifact.ID, size, duration)

	c.JSON(http.StatusOK, SpeechResponse{
		Success:  true,
		AudioURL: path.Join(h.cfg.AudioMountPath, artifact.Filename),
		AudioID:  artifact.ID,
		Duration: duration,
		FileSize: size,
		Format:   audioFormatMP3,
		Status:   result.Status,
	})
}

// DownloadAudio handles GET /download-audio/:audio_id.
func (h *Handler) DownloadAudio(c *gin.Context) {
	artifact, ok := h.deps.Registry.Get(c.Param("audio_id"))
	if !ok {
		respondError(c, notFoundError(msgAudioNotFound))

		return
	}

	if !h.deps.Store.Exists(artifact) {
		h.serveArchived(c, artifact)

		return
	}

	c.Header("Content-Type", audioContentType)
	c.FileAttachment(artifact.FilePath, artifact.Filename)
}

// serveArchived answers a download whose file is gone from disk with the
// archived copy, when archiving is enabled and the copy exists.
func (h *Handler) serveArchived(c *gin.Context, artifact audio.Artifact) {
	if h.deps.Archiver == nil {
		respondError(c, notFoundError(msgAudioNotOnDisk))

		return
	}

	data, err := h.deps.Archiver.Fetch(c.Request.Context(), artifact)
	if err != nil {
		h.deps.Log.Warn(logFmtArchiveFetch, artifact.ID, err)
		respondError(c, notFoundError(msgAudioNotOnDisk))

		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(attachmentFormat, artifact.Filename))
	c.Data(http.StatusOK, audioContentType, data)
}
