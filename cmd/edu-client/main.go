// main package for the edu-client command line tool.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/book-expert/logger"
)

// Flag descriptions.
const (
	flagServerDesc   = "Base URL of the edu-content-service"
	flagHealthDesc   = "Check service health and exit"
	flagTopicDesc    = "Topic to generate a lecture script for"
	flagDurationDesc = "Script duration in minutes (1-60)"
	flagVideoDesc    = "Generate a video script instead of a lecture script"
	flagTextDesc     = "Text to convert to speech"
	flagOutputDesc   = "Output file path for synthesized audio (.mp3)"
	flagTimeoutDesc  = "Request timeout"
)

// Flag names.
const (
	flagServer   = "server"
	flagHealth   = "health"
	flagTopic    = "topic"
	flagDuration = "duration"
	flagVideo    = "video"
	flagText     = "text"
	flagOutput   = "output"
	flagTimeout  = "timeout"
)

// Messages, defaults and file permissions.
const (
	logFileName           = "edu-client.log"
	logFmtRequest         = "%s %s"
	logFmtSavedAudio      = "Saved audio %s to %s"
	outFmtHealthy         = "Service is %s: %s\n"
	outFmtScriptHeader    = "# %s (%d words, %s)\n\n%s\n"
	outFmtSaved           = "Generated: %s (%s, %s)\n"
	defaultServerURL      = "http://127.0.0.1:8000"
	defaultDuration       = 5
	defaultOutputFile     = "output.mp3"
	defaultRequestTimeout = 5 * time.Minute
	outputFilePerms       = 0o600
	outputDirPerms        = 0o750
)

// Error formats.
const (
	errFmtStatus    = "%w: %s returned %d: %s"
	errFmtRequest   = "request to %s failed: %w"
	errFmtDecode    = "failed to decode response from %s: %w"
	errFmtWriteFile = "failed to write %s: %w"
)

var (
	// ErrNoAction indicates that no operation flag was given.
	ErrNoAction = errors.New("one of --health, --topic or --text must be provided")
	// ErrTooManyActions indicates that more than one operation flag was given.
	ErrTooManyActions = errors.New("only one of --health, --topic or --text may be provided")
	// ErrRequestFailed indicates a non-2xx response from the service.
	ErrRequestFailed = errors.New("service request failed")
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	server   string
	topic    string
	text     string
	output   string
	duration int
	timeout  time.Duration
	health   bool
	video    bool
}

// client talks to the service over HTTP.
type client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
	out        io.Writer
}

func main() {
	err := run()
	if err != nil {
		// A logger might not be initialized yet, so use the standard log package.
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags(flag.CommandLine, os.Args[1:])

	err := validateFlags(flags)
	if err != nil {
		flag.Usage()

		return err
	}

	appLog, err := logger.New(os.TempDir(), logFileName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = appLog.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), flags.timeout)
	defer cancel()

	c := &client{
		baseURL:    flags.server,
		httpClient: &http.Client{Timeout: flags.timeout},
		log:        appLog,
		out:        os.Stdout,
	}

	return dispatch(ctx, c, flags)
}

// parseFlags defines and parses command-line flags on set.
func parseFlags(set *flag.FlagSet, args []string) appFlags {
	var flags appFlags

	set.StringVar(&flags.server, flagServer, defaultServerURL, flagServerDesc)
	set.BoolVar(&flags.health, flagHealth, false, flagHealthDesc)
	set.StringVar(&flags.topic, flagTopic, "", flagTopicDesc)
	set.IntVar(&flags.duration, flagDuration, defaultDuration, flagDurationDesc)
	set.BoolVar(&flags.video, flagVideo, false, flagVideoDesc)
	set.StringVar(&flags.text, flagText, "", flagTextDesc)
	set.StringVar(&flags.output, flagOutput, defaultOutputFile, flagOutputDesc)
	set.DurationVar(&flags.timeout, flagTimeout, defaultRequestTimeout, flagTimeoutDesc)
	_ = set.Parse(args)

	return flags
}

// validateFlags checks that exactly one operation was requested.
func validateFlags(flags appFlags) error {
	actions := 0

	for _, set := range []bool{flags.health, flags.topic != "", flags.text != ""} {
		if set {
			actions++
		}
	}

	switch actions {
	case 0:
		return ErrNoAction
	case 1:
		return nil
	default:
		return ErrTooManyActions
	}
}

func dispatch(ctx context.Context, c *client, flags appFlags) error {
	switch {
	case flags.health:
		return c.health(ctx)
	case flags.topic != "":
		return c.generateScript(ctx, flags.topic, flags.duration, flags.video)
	default:
		return c.synthesize(ctx, flags.text, flags.output)
	}
}

func (c *client) health(ctx context.Context) error {
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	err := c.doJSON(ctx, http.MethodGet, "/health", nil, &body)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.out, outFmtHealthy, body.Status, body.Message)

	return nil
}

func (c *client) generateScript(ctx context.Context, topic string, duration int, video bool) error {
	path := "/generate-script"
	if video {
		path = "/generate-video-script"
	}

	var body struct {
		Script            string `json:"script"`
		WordCount         int    `json:"word_count"`
		EstimatedDuration string `json:"estimated_duration"`
	}

	err := c.doJSON(ctx, http.MethodPost, path, map[string]any{"topic": topic, "duration": duration}, &body)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(c.out, outFmtScriptHeader, topic, body.WordCount, body.EstimatedDuration, body.Script)

	return nil
}

func (c *client) synthesize(ctx context.Context, text, output string) error {
	var body struct {
		AudioID  string `json:"audio_id"`
		Duration string `json:"duration"`
		FileSize string `json:"file_size"`
	}

	err := c.doJSON(ctx, http.MethodPost, "/text-to-speech", map[string]any{"text": text}, &body)
	if err != nil {
		return err
	}

	resp, err := c.send(ctx, http.MethodGet, "/download-audio/"+body.AudioID, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf(errFmtDecode, body.AudioID, err)
	}

	err = os.MkdirAll(filepath.Dir(output), outputDirPerms)
	if err != nil {
		return fmt.Errorf(errFmtWriteFile, output, err)
	}

	err = os.WriteFile(output, data, outputFilePerms)
	if err != nil {
		return fmt.Errorf(errFmtWriteFile, output, err)
	}

	c.log.Info(logFmtSavedAudio, body.AudioID, output)
	_, _ = fmt.Fprintf(c.out, outFmtSaved, output, body.Duration, body.FileSize)

	return nil
}

func (c *client) doJSON(ctx context.Context, method, path string, payload, target any) error {
	resp, err := c.send(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	err = json.NewDecoder(resp.Body).Decode(target)
	if err != nil {
		return fmt.Errorf(errFmtDecode, path, err)
	}

	return nil
}

// send performs the request and returns the response when its status is
// 2xx. The caller closes the body.
func (c *client) send(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf(errFmtRequest, path, err)
		}

		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf(errFmtRequest, path, err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Info(logFmtRequest, method, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf(errFmtRequest, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		return nil, fmt.Errorf(errFmtStatus, ErrRequestFailed, path, resp.StatusCode, bytes.TrimSpace(detail))
	}

	return resp, nil
}
