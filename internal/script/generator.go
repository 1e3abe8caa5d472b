// Package script generates educational narration scripts with a language
// model, optionally grounded on an encyclopedic summary of the topic.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/book-expert/edu-content-service/internal/llm"
	"github.com/book-expert/logger"
)

// WordsPerMinute is the narration pace used to size scripts.
const WordsPerMinute = 130

// AudienceGeneral is the audience level that adds no prompt hint.
const AudienceGeneral = "general"

const (
	systemPromptScript = "You are an AI assistant that creates structured educational scripts. " +
		"Start directly with the script content, focusing on the topic. " +
		"Do NOT include introductory phrases, word counts, or metadata."
	systemPromptVideo = "You are an AI assistant that writes educational video scripts. " +
		"Organise the script into numbered scenes. Each scene has a short heading, " +
		"a visual description in square brackets, and the narration to be spoken. " +
		"Do NOT include introductory phrases, word counts, or metadata."
	systemPromptConvert = "You are an AI assistant that converts educational text into video scene descriptions."

	promptFmtReformat = "Format the following factual content into an educational script in English " +
		"with approximately %d words.%s Do not include extra text like " +
		"'Here is the formatted script' or descriptions.\n\n%s"
	promptFmtDirect = "Generate an educational script in English on the topic '%s' with approximately " +
		"%d words.%s Ensure the content is factual, engaging, and suitable for an educational video. " +
		"Do not include extra text like 'Here is the formatted script' or descriptions."
	promptFmtVideo = "Write an educational video script in English on the topic '%s' with approximately " +
		"%d words of narration.%s%s"
	promptFmtVideoFacts = "\n\nBase the narration on these facts:\n%s"
	promptFmtConvert    = "Convert this script into a video script with scene descriptions:\n\n%s"
	promptFmtAudience   = " Pitch the language for a %s audience."
)

const (
	logFmtSummaryMissing = "No knowledge summary for topic %q, generating directly: %v"
	logFmtGenerated      = "Generated %s script for topic %q (%d words requested)"
	errFmtGeneration     = "%w: %w"
)

// ErrGeneration wraps every failed completion call.
var ErrGeneration = errors.New("script generation failed")

// markdownMarkers are removed in order; longer heading markers go first.
var markdownMarkers = []string{"**", "*", "###", "##", "#"}

// Summarizer returns a factual summary for a topic.
type Summarizer interface {
	Summary(ctx context.Context, topic string) (string, error)
}

// Request describes the script to generate.
type Request struct {
	Topic         string
	Minutes       int
	AudienceLevel string
}

// Generator produces scripts through a completion provider.
type Generator struct {
	completer  llm.Completer
	summarizer Summarizer
	log        *logger.Logger
}

// NewGenerator creates a Generator. A nil summarizer disables the knowledge
// lookup and every script is generated directly from the topic.
func NewGenerator(completer llm.Completer, summarizer Summarizer, log *logger.Logger) *Generator {
	return &Generator{completer: completer, summarizer: summarizer, log: log}
}

// TargetWords returns the requested script length for a duration.
func TargetWords(minutes int) int {
	return minutes * WordsPerMinute
}

// Generate produces a narration script. When a summary of the topic is
// available the model reformats it; otherwise it writes from the topic.
// Exactly one completion call is made.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	words := TargetWords(req.Minutes)
	audience := audienceHint(req.AudienceLevel)

	var prompt string

	if facts := g.lookup(ctx, req.Topic); facts != "" {
		prompt = fmt.Sprintf(promptFmtReformat, words, audience, facts)
	} else {
		prompt = fmt.Sprintf(promptFmtDirect, req.Topic, words, audience)
	}

	script, err := g.complete(ctx, systemPromptScript, prompt)
	if err != nil {
		return "", err
	}

	g.log.Info(logFmtGenerated, "narration", req.Topic, words)

	return script, nil
}

// GenerateVideo produces a scene-oriented script of the same target length.
func (g *Generator) GenerateVideo(ctx context.Context, req Request) (string, error) {
	words := TargetWords(req.Minutes)

	facts := g.lookup(ctx, req.Topic)
	if facts != "" {
		facts = fmt.Sprintf(promptFmtVideoFacts, facts)
	}

	prompt := fmt.Sprintf(promptFmtVideo, req.Topic, words, audienceHint(req.AudienceLevel), facts)

	script, err := g.complete(ctx, systemPromptVideo, prompt)
	if err != nil {
		return "", err
	}

	g.log.Info(logFmtGenerated, "video", req.Topic, words)

	return script, nil
}

// ConvertToVideo turns an existing script into scene descriptions.
func (g *Generator) ConvertToVideo(ctx context.Context, script string) (string, error) {
	return g.complete(ctx, systemPromptConvert, fmt.Sprintf(promptFmtConvert, script))
}

func (g *Generator) complete(ctx context.Context, system, prompt string) (string, error) {
	text, err := llm.Complete(ctx, g.completer, system, prompt)
	if err != nil {
		return "", fmt.Errorf(errFmtGeneration, ErrGeneration, err)
	}

	return StripMarkdown(text), nil
}

// lookup returns the topic summary, or "" when none is available. Any
// lookup failure is treated as "not found".
func (g *Generator) lookup(ctx context.Context, topic string) string {
	if g.summarizer == nil {
		return ""
	}

	summary, err := g.summarizer.Summary(ctx, topic)
	if err != nil {
		g.log.Warn(logFmtSummaryMissing, topic, err)

		return ""
	}

	return strings.TrimSpace(summary)
}

// StripMarkdown removes markdown emphasis and heading markers and trims
// the result.
func StripMarkdown(text string) string {
	for _, marker := range markdownMarkers {
		text = strings.ReplaceAll(text, marker, "")
	}

	return strings.TrimSpace(text)
}

func audienceHint(level string) string {
	level = strings.TrimSpace(level)
	if level == "" || strings.EqualFold(level, AudienceGeneral) {
		return ""
	}

	return fmt.Sprintf(promptFmtAudience, level)
}
