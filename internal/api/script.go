package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/book-expert/edu-content-service/internal/script"
	"github.com/gin-gonic/gin"
)

const (
	defaultLanguageName   = "english"
	scriptTypeVideo       = "video_optimized"
	durationFmt           = "%d minutes"
	videoDurationFmt      = "%d minutes (video format)"
	errFmtScriptFailed    = "Script generation failed: %v"
	errFmtVideoFailed     = "Video script generation failed: %v"
	logFmtScriptGenerated = "Generated %s script for %q: %d words"
)

// ScriptRequest is the body of /generate-script.
type ScriptRequest struct {
	Topic         string `json:"topic"          validate:"required,max=200"`
	Duration      int    `json:"duration"       validate:"min=1,max=60"`
	AudienceLevel string `json:"audience_level"`
	Language      string `json:"language"`
}

func (r *ScriptRequest) applyDefaults() {
	r.Topic = strings.TrimSpace(r.Topic)

	if r.AudienceLevel == "" {
		r.AudienceLevel = script.AudienceGeneral
	}

	if r.Language == "" {
		r.Language = defaultLanguageName
	}
}

// VideoScriptRequest is the body of /generate-video-script. When Script is
// set it is converted instead of generating a new one.
type VideoScriptRequest struct {
	ScriptRequest

	Script string `json:"script"`
}

func (r *VideoScriptRequest) applyDefaults() {
	r.ScriptRequest.applyDefaults()
	r.Script = strings.TrimSpace(r.Script)
}

// ScriptResponse is returned by both script endpoints.
type ScriptResponse struct {
	Success           bool   `json:"success"`
	Script            string `json:"script"`
	WordCount         int    `json:"word_count"`
	EstimatedDuration string `json:"estimated_duration"`
	ScriptType        string `json:"script_type,omitempty"`
	GeneratedAt       string `json:"generated_at"`
}

// GenerateScript handles POST /generate-script.
func (h *Handler) GenerateScript(c *gin.Context) {
	var req ScriptRequest

	err := bindJSON(c, &req)
	if err != nil {
		respondError(c, err)

		return
	}

	text, err := h.deps.Scripts.Generate(c.Request.Context(), toScriptRequest(req))
	if err != nil {
		respondError(c, upstreamError(fmt.Sprintf(errFmtScriptFailed, err)))

		return
	}

	wordCount := len(strings.Fields(text))
	h.deps.Log.Info(logFmtScriptGenerated, "lecture", req.Topic, wordCount)

	c.JSON(http.StatusOK, ScriptResponse{
		Success:           true,
		Script:            text,
		WordCount:         wordCount,
		EstimatedDuration: fmt.Sprintf(durationFmt, req.Duration),
		GeneratedAt:       time.Now().Format(time.RFC3339),
	})
}

// GenerateVideoScript handles POST /generate-video-script.
func (h *Handler) GenerateVideoScript(c *gin.Context) {
	var req VideoScriptRequest

	err := bindJSON(c, &req)
	if err != nil {
		respondError(c, err)

		return
	}

	var text string

	if req.Script != "" {
		text, err = h.deps.Scripts.ConvertToVideo(c.Request.Context(), req.Script)
	} else {
		text, err = h.deps.Scripts.GenerateVideo(c.Request.Context(), toScriptRequest(req.ScriptRequest))
	}

	if err != nil {
		respondError(c, upstreamError(fmt.Sprintf(errFmtVideoFailed, err)))

		return
	}

	wordCount := len(strings.Fields(text))
	h.deps.Log.Info(logFmtScriptGenerated, "video", req.Topic, wordCount)

	c.JSON(http.StatusOK, ScriptResponse{
		Success:           true,
		Script:            text,
		WordCount:         wordCount,
		EstimatedDuration: fmt.Sprintf(videoDurationFmt, req.Duration),
		ScriptType:        scriptTypeVideo,
		GeneratedAt:       time.Now().Format(time.RFC3339),
	})
}

func toScriptRequest(req ScriptRequest) script.Request {
	return script.Request{
		Topic:         req.Topic,
		Minutes:       req.Duration,
		AudienceLevel: req.AudienceLevel,
	}
}
